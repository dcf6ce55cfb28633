package query

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	invquery "github.com/tair/shop-inventory/internal/inventory/usecase/query"
	salesquery "github.com/tair/shop-inventory/internal/sales/usecase/query"
)

// Dashboard is the at-a-glance shop summary
type Dashboard struct {
	ProductCount  int             `json:"product_count"`
	LowStockCount int             `json:"low_stock_count"`
	TodaySales    decimal.Decimal `json:"today_sales"`
	MonthRevenue  decimal.Decimal `json:"month_revenue"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// DashboardHandler handles dashboard query
type DashboardHandler struct {
	products ProductLister
	sales    SalesReporter
	now      func() time.Time
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(products ProductLister, sales SalesReporter) *DashboardHandler {
	return &DashboardHandler{products: products, sales: sales, now: time.Now}
}

// Handle executes the dashboard query. Today and this month are taken in the
// local time zone.
func (h *DashboardHandler) Handle(ctx context.Context) (*Dashboard, error) {
	now := h.now()
	products, err := h.products.Handle(ctx, invquery.ListProductsQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	d := &Dashboard{ProductCount: len(products), GeneratedAt: now}
	for i := range products {
		if products[i].IsLowStock() {
			d.LowStockCount++
		}
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := h.sales.Handle(ctx, salesquery.SalesReportQuery{From: dayStart, To: dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)})
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	d.TodaySales = today.Total

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	month, err := h.sales.Handle(ctx, salesquery.SalesReportQuery{From: monthStart, To: monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)})
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	d.MonthRevenue = month.Total
	return d, nil
}
