package domain

import (
	"context"
	"fmt"
	"time"
)

// Item statuses
const (
	ItemInStock = "in_stock"
	ItemSold    = "sold"
	ItemDamaged = "damaged"
)

// ProductItem is one individually serialized unit of a tracked product.
type ProductItem struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ProductID    uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_product_item_number"`
	ItemNumber   int       `json:"item_number" gorm:"not null;uniqueIndex:idx_product_item_number"`
	SerialNumber string    `json:"serial_number" gorm:"size:64;not null;uniqueIndex"`
	Location     string    `json:"location" gorm:"size:20;not null;index"`
	Status       string    `json:"status" gorm:"size:20;not null;index"`
	LabelRef     string    `json:"label_ref"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (ProductItem) TableName() string {
	return "product_items"
}

// SerialNumber formats the serial for an item of a product.
func SerialNumber(productID uint, itemNumber int) string {
	return fmt.Sprintf("P%dI%d", productID, itemNumber)
}

// ItemCounts tallies a product's items by where they are.
type ItemCounts struct {
	Store     int `json:"store"`
	Warehouse int `json:"warehouse"`
	Sold      int `json:"sold"`
	Damaged   int `json:"damaged"`
}

// Total counts every item ever created.
func (c ItemCounts) Total() int {
	return c.Store + c.Warehouse + c.Sold + c.Damaged
}

// ItemRepository defines the contract for product item data access
type ItemRepository interface {
	CreateBatch(ctx context.Context, items []ProductItem) error
	MaxItemNumber(ctx context.Context, productID uint) (int, error)
	FindInStock(ctx context.Context, productID uint, location string, limit int, exclude []uint) ([]ProductItem, error)
	FindBySerial(ctx context.Context, serial string) (*ProductItem, error)
	FindByProduct(ctx context.Context, productID uint) ([]ProductItem, error)
	Move(ctx context.Context, ids []uint, location, status string) error
	Counts(ctx context.Context, productID uint) (ItemCounts, error)
	CountsByProduct(ctx context.Context, productIDs []uint) (map[uint]ItemCounts, error)
}

// LabelGenerator produces a printable label for an item and returns a
// reference to it, usually a file path.
type LabelGenerator interface {
	Generate(ctx context.Context, productID uint, productName, serial string) (string, error)
}

// NopLabelGenerator produces no labels.
type NopLabelGenerator struct{}

func (NopLabelGenerator) Generate(context.Context, uint, string, string) (string, error) {
	return "", nil
}
