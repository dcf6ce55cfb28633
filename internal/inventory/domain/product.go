package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/shop-inventory/internal/apperr"
)

// Stock locations
const (
	LocationStore     = "store"
	LocationWarehouse = "warehouse"
	LocationSold      = "sold"
	LocationDamaged   = "damaged"
)

// DefaultReorderThreshold applies when a product is created without one.
const DefaultReorderThreshold = 5

// Product represents the product entity with its two stock counters
type Product struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	Name              string          `json:"name" gorm:"size:200;not null;index"`
	Description       string          `json:"description"`
	Category          string          `json:"category" gorm:"size:100;index"`
	PurchasePrice     decimal.Decimal `json:"purchase_price" gorm:"type:decimal(12,2);not null"`
	SellingPrice      decimal.Decimal `json:"selling_price" gorm:"type:decimal(12,2);not null"`
	ReorderThreshold  int             `json:"reorder_threshold" gorm:"not null"`
	StoreQuantity     int             `json:"store_quantity" gorm:"not null"`
	WarehouseQuantity int             `json:"warehouse_quantity" gorm:"not null"`
	TrackItems        bool            `json:"track_items" gorm:"not null"`
	SupplierID        *uint           `json:"supplier_id,omitempty" gorm:"index"`
	LastOrderedAt     *time.Time      `json:"last_ordered_at,omitempty"`
	ExpectedArrival   *time.Time      `json:"expected_arrival,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// TotalQuantity is store plus warehouse stock.
func (p *Product) TotalQuantity() int {
	return p.StoreQuantity + p.WarehouseQuantity
}

// Quantity returns the counter for a stock location.
func (p *Product) Quantity(location string) int {
	switch location {
	case LocationStore:
		return p.StoreQuantity
	case LocationWarehouse:
		return p.WarehouseQuantity
	}
	return 0
}

// Adjust adds delta to the counter for location.
func (p *Product) Adjust(location string, delta int) {
	switch location {
	case LocationStore:
		p.StoreQuantity += delta
	case LocationWarehouse:
		p.WarehouseQuantity += delta
	}
}

// IsLowStock reports whether the store shelf is at or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.StoreQuantity <= p.ReorderThreshold
}

// StockStatus is the report label for the product's total stock.
func (p *Product) StockStatus() string {
	switch {
	case p.TotalQuantity() == 0:
		return "Out of Stock"
	case p.TotalQuantity() <= p.ReorderThreshold:
		return "Low Stock"
	default:
		return "In Stock"
	}
}

// ApplyCounts overwrites the counters with counts derived from items.
func (p *Product) ApplyCounts(c ItemCounts) {
	p.StoreQuantity = c.Store
	p.WarehouseQuantity = c.Warehouse
}

// Validate checks the catalog fields.
func (p *Product) Validate() error {
	if p.Name == "" {
		return apperr.Validation("product name is required")
	}
	if p.PurchasePrice.IsNegative() || p.SellingPrice.IsNegative() {
		return apperr.Validation("prices cannot be negative")
	}
	if p.SellingPrice.LessThan(p.PurchasePrice) {
		return apperr.Validation("selling price %s is below purchase price %s",
			p.SellingPrice.StringFixed(2), p.PurchasePrice.StringFixed(2))
	}
	if p.ReorderThreshold < 0 {
		return apperr.Validation("reorder threshold cannot be negative")
	}
	if p.StoreQuantity < 0 || p.WarehouseQuantity < 0 {
		return apperr.Validation("quantities cannot be negative")
	}
	return nil
}

// IsStockLocation reports whether location holds sellable stock.
func IsStockLocation(location string) bool {
	return location == LocationStore || location == LocationWarehouse
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
	Update(ctx context.Context, product *Product) error
	Count(ctx context.Context) (int64, error)
}
