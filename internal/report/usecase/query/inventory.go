package query

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	invquery "github.com/tair/shop-inventory/internal/inventory/usecase/query"
	"github.com/tair/shop-inventory/internal/report/export"
)

const uncategorized = "Uncategorized"

// InventoryRow values one product's stock at purchase price
type InventoryRow struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Value     decimal.Decimal `json:"value"`
	Status    string          `json:"status"`
}

// InventoryReport is the stock valuation of the whole catalog
type InventoryReport struct {
	Rows       []InventoryRow  `json:"rows"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Table renders the report for export.
func (r *InventoryReport) Table() export.Table {
	t := export.Table{
		Title:   "Inventory Report",
		Headers: []string{"Product ID", "Name", "Category", "Quantity", "Value", "Status"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			strconv.FormatUint(uint64(row.ProductID), 10),
			row.Name,
			row.Category,
			strconv.Itoa(row.Quantity),
			row.Value.StringFixed(2),
			row.Status,
		})
	}
	return t
}

// InventoryReportHandler handles inventory report query
type InventoryReportHandler struct {
	products ProductLister
}

// NewInventoryReportHandler creates a new inventory report handler
func NewInventoryReportHandler(products ProductLister) *InventoryReportHandler {
	return &InventoryReportHandler{products: products}
}

// Handle executes the inventory report query
func (h *InventoryReportHandler) Handle(ctx context.Context) (*InventoryReport, error) {
	products, err := h.products.Handle(ctx, invquery.ListProductsQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to build inventory report: %w", err)
	}

	report := &InventoryReport{Rows: make([]InventoryRow, 0, len(products)), TotalValue: decimal.Zero}
	for i := range products {
		p := &products[i]
		category := p.Category
		if category == "" {
			category = uncategorized
		}
		value := p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.TotalQuantity())))
		report.Rows = append(report.Rows, InventoryRow{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  category,
			Quantity:  p.TotalQuantity(),
			Value:     value,
			Status:    p.StockStatus(),
		})
		report.TotalValue = report.TotalValue.Add(value)
	}
	return report, nil
}

// BreakdownTable renders the store/warehouse breakdown for export.
func BreakdownTable(b *invquery.InventoryBreakdown) export.Table {
	t := export.Table{
		Title:   "Inventory Breakdown",
		Headers: []string{"Product ID", "Name", "Store", "Warehouse", "Total", "Threshold", "Low Stock"},
	}
	for _, row := range b.Rows {
		t.Rows = append(t.Rows, []string{
			strconv.FormatUint(uint64(row.ProductID), 10),
			row.Name,
			strconv.Itoa(row.Store),
			strconv.Itoa(row.Warehouse),
			strconv.Itoa(row.Total),
			strconv.Itoa(row.Threshold),
			strconv.FormatBool(row.LowStock),
		})
	}
	return t
}
