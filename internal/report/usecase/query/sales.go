package query

import (
	"context"
	"fmt"
	"strconv"
	"time"

	custquery "github.com/tair/shop-inventory/internal/customer/usecase/query"
	"github.com/tair/shop-inventory/internal/report/export"
	salesquery "github.com/tair/shop-inventory/internal/sales/usecase/query"
)

const walkIn = "Walk-in Customer"

// SalesRow is one sale with its customer resolved
type SalesRow struct {
	SaleID   uint      `json:"sale_id"`
	Receipt  string    `json:"receipt"`
	Date     time.Time `json:"date"`
	Customer string    `json:"customer"`
	Items    int       `json:"items"`
	Total    string    `json:"total"`
}

// SalesTableReport is the sales report ready for display and export
type SalesTableReport struct {
	*salesquery.SalesReport
	Rows []SalesRow `json:"rows"`
}

// Table renders the report for export.
func (r *SalesTableReport) Table() export.Table {
	t := export.Table{
		Title:   "Sales Report",
		Headers: []string{"Sale ID", "Receipt", "Date", "Customer", "Items", "Total Amount"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			strconv.FormatUint(uint64(row.SaleID), 10),
			row.Receipt,
			row.Date.Format("2006-01-02 15:04"),
			row.Customer,
			strconv.Itoa(row.Items),
			row.Total,
		})
	}
	return t
}

// SalesTableHandler builds the sales report with customer names
type SalesTableHandler struct {
	sales     SalesReporter
	customers CustomerLister
}

// NewSalesTableHandler creates a new sales table handler
func NewSalesTableHandler(sales SalesReporter, customers CustomerLister) *SalesTableHandler {
	return &SalesTableHandler{sales: sales, customers: customers}
}

// Handle executes the sales report query
func (h *SalesTableHandler) Handle(ctx context.Context, query salesquery.SalesReportQuery) (*SalesTableReport, error) {
	report, err := h.sales.Handle(ctx, query)
	if err != nil {
		return nil, err
	}
	customers, err := h.customers.Handle(ctx, custquery.ListCustomersQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}
	names := make(map[uint]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	out := &SalesTableReport{SalesReport: report, Rows: make([]SalesRow, 0, len(report.Sales))}
	for i := range report.Sales {
		sale := &report.Sales[i]
		customer := walkIn
		if sale.CustomerID != nil {
			if name, ok := names[*sale.CustomerID]; ok {
				customer = name
			}
		}
		out.Rows = append(out.Rows, SalesRow{
			SaleID:   sale.ID,
			Receipt:  sale.ReceiptNumber,
			Date:     sale.SaleDate,
			Customer: customer,
			Items:    sale.ItemCount(),
			Total:    sale.TotalAmount.StringFixed(2),
		})
	}
	return out, nil
}
