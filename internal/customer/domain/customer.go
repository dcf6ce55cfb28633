package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/shop-inventory/internal/apperr"
)

// Customer represents a shop customer with a loyalty balance
type Customer struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"size:200;not null;index"`
	Phone         string    `json:"phone" gorm:"size:50"`
	Email         string    `json:"email" gorm:"size:200"`
	Address       string    `json:"address"`
	LoyaltyPoints int       `json:"loyalty_points" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Customer) TableName() string {
	return "customers"
}

// Validate checks the editable customer fields
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Validation("customer name is required")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return apperr.Validation("invalid email %q", c.Email)
	}
	if c.LoyaltyPoints < 0 {
		return apperr.Validation("loyalty points cannot be negative")
	}
	return nil
}

// PointsFor returns the loyalty points earned for spending amount: one per
// whole currency unit.
func PointsFor(amount decimal.Decimal) int {
	if !amount.IsPositive() {
		return 0
	}
	return int(amount.Floor().IntPart())
}

// CustomerRepository defines the contract for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	FindByID(ctx context.Context, id uint) (*Customer, error)
	FindAll(ctx context.Context, search string) ([]Customer, error)
	Update(ctx context.Context, customer *Customer) error
	AddPoints(ctx context.Context, id uint, points int) error
}
