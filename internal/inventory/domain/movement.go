package domain

import (
	"context"
	"time"
)

// Ledger operations
const (
	OperationReceive  = "receive"
	OperationConsume  = "consume"
	OperationTransfer = "transfer"
	OperationAdjust   = "adjust"
)

// StockMovement is the audit row written with every counter change.
type StockMovement struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ProductID      uint      `json:"product_id" gorm:"not null;index"`
	Operation      string    `json:"operation" gorm:"size:20;not null;index"`
	FromLocation   string    `json:"from_location" gorm:"size:20"`
	ToLocation     string    `json:"to_location" gorm:"size:20"`
	Quantity       int       `json:"quantity" gorm:"not null"`
	StoreAfter     int       `json:"store_after" gorm:"not null"`
	WarehouseAfter int       `json:"warehouse_after" gorm:"not null"`
	Reference      string    `json:"reference" gorm:"size:100;index"`
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name
func (StockMovement) TableName() string {
	return "stock_movements"
}

// MovementRepository defines the contract for the movement log
type MovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	FindByProduct(ctx context.Context, productID uint, limit int) ([]StockMovement, error)
}

// Supplier represents a vendor products are ordered from
type Supplier struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"size:200;not null"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone" gorm:"size:50"`
	Email         string    `json:"email" gorm:"size:200"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierRepository defines the contract for supplier data access
type SupplierRepository interface {
	Create(ctx context.Context, supplier *Supplier) error
	FindByID(ctx context.Context, id uint) (*Supplier, error)
	FindAll(ctx context.Context) ([]Supplier, error)
}
