package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is applied to sale totals unless configured otherwise.
var DefaultTaxRate = decimal.RequireFromString("0.18")

// Sale represents a completed point-of-sale transaction
type Sale struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	ReceiptNumber string          `json:"receipt_number" gorm:"size:20;not null;uniqueIndex"`
	CustomerID    *uint           `json:"customer_id,omitempty" gorm:"index"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:decimal(12,2);not null"`
	SaleDate      time.Time       `json:"sale_date" gorm:"not null;index"`
	Items         []SaleItem      `json:"items" gorm:"foreignKey:SaleID"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (Sale) TableName() string {
	return "sales"
}

// GrandTotal is the amount charged: total plus tax.
func (s *Sale) GrandTotal() decimal.Decimal {
	return s.TotalAmount.Add(s.TaxAmount)
}

// ItemCount is the number of units sold.
func (s *Sale) ItemCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// SaleItem is one line of a sale. UnitCost is the purchase price at the time
// of sale.
type SaleItem struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	SaleID       uint            `json:"sale_id" gorm:"not null;index"`
	ProductID    uint            `json:"product_id" gorm:"not null;index"`
	ProductName  string          `json:"product_name" gorm:"size:200"`
	SerialNumber string          `json:"serial_number,omitempty"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	UnitPrice    decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	UnitCost     decimal.Decimal `json:"unit_cost" gorm:"type:decimal(12,2);not null"`
	Subtotal     decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
}

// TableName specifies the table name
func (SaleItem) TableName() string {
	return "sale_items"
}

// Serials splits the stored serial list.
func (i *SaleItem) Serials() []string {
	if i.SerialNumber == "" {
		return nil
	}
	return strings.Split(i.SerialNumber, ",")
}

// NewReceiptNumber generates a receipt number like SALE-1a2b3c4d.
func NewReceiptNumber() string {
	return fmt.Sprintf("SALE-%s", uuid.New().String()[:8])
}

// Tax computes the tax for total at rate, rounded to cents.
func Tax(total, rate decimal.Decimal) decimal.Decimal {
	return total.Mul(rate).Round(2)
}

// SaleRepository defines the contract for sale data access
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id uint) (*Sale, error)
	FindByReceipt(ctx context.Context, receipt string) (*Sale, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]Sale, error)
}
