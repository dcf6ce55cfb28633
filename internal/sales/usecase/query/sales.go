package query

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/sales/domain"
)

// GetSaleQuery looks a sale up by id or, when ID is zero, by receipt number
type GetSaleQuery struct {
	ID            uint
	ReceiptNumber string
}

// GetSaleHandler handles get sale query
type GetSaleHandler struct {
	sales domain.SaleRepository
}

// NewGetSaleHandler creates a new get sale handler
func NewGetSaleHandler(sales domain.SaleRepository) *GetSaleHandler {
	return &GetSaleHandler{sales: sales}
}

// Handle executes the get sale query
func (h *GetSaleHandler) Handle(ctx context.Context, query GetSaleQuery) (*domain.Sale, error) {
	var (
		sale *domain.Sale
		err  error
	)
	switch {
	case query.ID != 0:
		sale, err = h.sales.FindByID(ctx, query.ID)
	case query.ReceiptNumber != "":
		sale, err = h.sales.FindByReceipt(ctx, query.ReceiptNumber)
	default:
		return nil, apperr.Validation("sale id or receipt number is required")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return sale, nil
}

// SalesReportQuery selects sales dated within [From, To]
type SalesReportQuery struct {
	From time.Time
	To   time.Time
}

// SalesReport lists sales in a period with their sums
type SalesReport struct {
	From  time.Time       `json:"from"`
	To    time.Time       `json:"to"`
	Sales []domain.Sale   `json:"sales"`
	Count int             `json:"count"`
	Units int             `json:"units"`
	Total decimal.Decimal `json:"total"`
	Tax   decimal.Decimal `json:"tax"`
}

// SalesReportHandler handles sales report query
type SalesReportHandler struct {
	sales domain.SaleRepository
}

// NewSalesReportHandler creates a new sales report handler
func NewSalesReportHandler(sales domain.SaleRepository) *SalesReportHandler {
	return &SalesReportHandler{sales: sales}
}

// Handle executes the sales report query
func (h *SalesReportHandler) Handle(ctx context.Context, query SalesReportQuery) (*SalesReport, error) {
	if query.From.After(query.To) {
		return nil, apperr.Validation("start date must be before end date")
	}

	sales, err := h.sales.FindBetween(ctx, query.From, query.To)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}

	report := &SalesReport{
		From:  query.From,
		To:    query.To,
		Sales: sales,
		Count: len(sales),
		Total: decimal.Zero,
		Tax:   decimal.Zero,
	}
	for i := range sales {
		report.Units += sales[i].ItemCount()
		report.Total = report.Total.Add(sales[i].TotalAmount)
		report.Tax = report.Tax.Add(sales[i].TaxAmount)
	}
	return report, nil
}
