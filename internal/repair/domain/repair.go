package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/shop-inventory/internal/apperr"
)

// Repair statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

var statusRank = map[string]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// RepairTask is a customer repair job billed as parts plus a service charge
type RepairTask struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	CustomerID    uint            `json:"customer_id" gorm:"not null;index"`
	Description   string          `json:"description" gorm:"not null"`
	Status        string          `json:"status" gorm:"size:20;not null;index"`
	ServiceCharge decimal.Decimal `json:"service_charge" gorm:"type:decimal(12,2);not null"`
	PartsTotal    decimal.Decimal `json:"parts_total" gorm:"type:decimal(12,2);not null"`
	TotalCost     decimal.Decimal `json:"total_cost" gorm:"type:decimal(12,2);not null"`
	CreatedBy     string          `json:"created_by" gorm:"size:100"`
	Parts         []RepairPart    `json:"parts" gorm:"foreignKey:RepairID"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (RepairTask) TableName() string {
	return "repair_tasks"
}

// RepairPart is stock used on a repair, priced at the selling price
type RepairPart struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	RepairID    uint            `json:"repair_id" gorm:"not null;index"`
	ProductID   uint            `json:"product_id" gorm:"not null;index"`
	ProductName string          `json:"product_name" gorm:"size:200"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (RepairPart) TableName() string {
	return "repair_parts"
}

// IsClosed reports whether the job can no longer be changed.
func (r *RepairTask) IsClosed() bool {
	return r.Status == StatusCompleted
}

// Recalculate derives the parts total and total cost from the parts list.
func (r *RepairTask) Recalculate() {
	parts := decimal.Zero
	for _, p := range r.Parts {
		parts = parts.Add(p.Subtotal)
	}
	r.PartsTotal = parts
	r.TotalCost = parts.Add(r.ServiceCharge)
}

// SetStatus moves the job forward. Statuses never go back.
func (r *RepairTask) SetStatus(next string, now time.Time) error {
	rank, ok := statusRank[next]
	if !ok {
		return apperr.Validation("unknown repair status %q", next)
	}
	if rank < statusRank[r.Status] {
		return apperr.Validation("repair %d cannot move from %s back to %s", r.ID, r.Status, next)
	}
	if next == StatusCompleted && r.CompletedAt == nil {
		r.CompletedAt = &now
	}
	r.Status = next
	return nil
}

// Validate checks a new repair job.
func (r *RepairTask) Validate() error {
	if r.CustomerID == 0 {
		return apperr.Validation("repair requires a customer")
	}
	if strings.TrimSpace(r.Description) == "" {
		return apperr.Validation("repair description is required")
	}
	if r.ServiceCharge.IsNegative() {
		return apperr.Validation("service charge cannot be negative")
	}
	return nil
}

// BillPayload is the text encoded into the bill's QR code.
func BillPayload(repairID uint, customerName string, total decimal.Decimal) string {
	return fmt.Sprintf("BILL#%d|%s|$%s", repairID, customerName, total.StringFixed(2))
}

// RepairFilter narrows repair listings.
type RepairFilter struct {
	Status     string
	CustomerID uint
}

// RepairRepository defines the contract for repair data access
type RepairRepository interface {
	Create(ctx context.Context, repair *RepairTask) error
	FindByID(ctx context.Context, id uint) (*RepairTask, error)
	FindAll(ctx context.Context, filter RepairFilter) ([]RepairTask, error)
	Update(ctx context.Context, repair *RepairTask) error
	AddPart(ctx context.Context, part *RepairPart) error
	DeletePart(ctx context.Context, id uint) error
}
