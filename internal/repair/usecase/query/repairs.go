package query

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	custdomain "github.com/tair/shop-inventory/internal/customer/domain"
	"github.com/tair/shop-inventory/internal/repair/domain"
)

// CustomerGetter reads one customer.
type CustomerGetter interface {
	Handle(ctx context.Context, id uint) (*custdomain.Customer, error)
}

// GetRepairHandler handles get repair query
type GetRepairHandler struct {
	repairs domain.RepairRepository
}

// NewGetRepairHandler creates a new get repair handler
func NewGetRepairHandler(repairs domain.RepairRepository) *GetRepairHandler {
	return &GetRepairHandler{repairs: repairs}
}

// Handle executes the get repair query
func (h *GetRepairHandler) Handle(ctx context.Context, id uint) (*domain.RepairTask, error) {
	repair, err := h.repairs.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get repair: %w", err)
	}
	return repair, nil
}

// ListRepairsQuery represents the query to list repairs
type ListRepairsQuery struct {
	Status     string
	CustomerID uint
}

// ListRepairsHandler handles list repairs query
type ListRepairsHandler struct {
	repairs domain.RepairRepository
}

// NewListRepairsHandler creates a new list repairs handler
func NewListRepairsHandler(repairs domain.RepairRepository) *ListRepairsHandler {
	return &ListRepairsHandler{repairs: repairs}
}

// Handle executes the list repairs query
func (h *ListRepairsHandler) Handle(ctx context.Context, query ListRepairsQuery) ([]domain.RepairTask, error) {
	repairs, err := h.repairs.FindAll(ctx, domain.RepairFilter{
		Status:     query.Status,
		CustomerID: query.CustomerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repairs: %w", err)
	}
	return repairs, nil
}

// BillLine is one part on a repair bill
type BillLine struct {
	Part      string          `json:"part"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Bill summarizes what a repair costs the customer
type Bill struct {
	RepairID      uint            `json:"repair_id"`
	CustomerName  string          `json:"customer_name"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
	Lines         []BillLine      `json:"lines"`
	PartsTotal    decimal.Decimal `json:"parts_total"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Total         decimal.Decimal `json:"total"`
	QRPayload     string          `json:"qr_payload"`
}

// GetBillHandler builds a repair bill
type GetBillHandler struct {
	repairs   domain.RepairRepository
	customers CustomerGetter
	now       func() time.Time
}

// NewGetBillHandler creates a new get bill handler
func NewGetBillHandler(repairs domain.RepairRepository, customers CustomerGetter) *GetBillHandler {
	return &GetBillHandler{repairs: repairs, customers: customers, now: time.Now}
}

// Handle executes the get bill query
func (h *GetBillHandler) Handle(ctx context.Context, repairID uint) (*Bill, error) {
	repair, err := h.repairs.FindByID(ctx, repairID)
	if err != nil {
		return nil, fmt.Errorf("failed to build bill: %w", err)
	}
	customer, err := h.customers.Handle(ctx, repair.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to build bill: %w", err)
	}

	// Totals are derived again so the bill always adds up.
	repair.Recalculate()
	bill := &Bill{
		RepairID:      repair.ID,
		CustomerName:  customer.Name,
		Description:   repair.Description,
		Date:          h.now(),
		Lines:         make([]BillLine, 0, len(repair.Parts)),
		PartsTotal:    repair.PartsTotal,
		ServiceCharge: repair.ServiceCharge,
		Total:         repair.TotalCost,
		QRPayload:     domain.BillPayload(repair.ID, customer.Name, repair.TotalCost),
	}
	for _, p := range repair.Parts {
		bill.Lines = append(bill.Lines, BillLine{
			Part:      p.ProductName,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
			Subtotal:  p.Subtotal,
		})
	}
	return bill, nil
}
