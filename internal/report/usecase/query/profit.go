package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/shop-inventory/internal/report/export"
	salesquery "github.com/tair/shop-inventory/internal/sales/usecase/query"
)

var hundred = decimal.NewFromInt(100)

// ProfitRow aggregates the sales of one product
type ProfitRow struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
	// Margin is profit / revenue × 100, nil when there was no revenue.
	Margin *decimal.Decimal `json:"margin,omitempty"`
}

// ProfitReport is the per-product profit for a period
type ProfitReport struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Rows    []ProfitRow     `json:"rows"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// Table renders the report for export.
func (r *ProfitReport) Table() export.Table {
	t := export.Table{
		Title:   "Profit Analysis",
		Headers: []string{"Product", "Quantity Sold", "Revenue", "Cost", "Profit", "Margin %"},
	}
	for _, row := range r.Rows {
		margin := "N/A"
		if row.Margin != nil {
			margin = row.Margin.StringFixed(2)
		}
		t.Rows = append(t.Rows, []string{
			row.Name,
			strconv.Itoa(row.Quantity),
			row.Revenue.StringFixed(2),
			row.Cost.StringFixed(2),
			row.Profit.StringFixed(2),
			margin,
		})
	}
	return t
}

// ProfitReportQuery selects the period to analyse
type ProfitReportQuery struct {
	From time.Time
	To   time.Time
}

// ProfitReportHandler handles profit report query
type ProfitReportHandler struct {
	sales SalesReporter
}

// NewProfitReportHandler creates a new profit report handler
func NewProfitReportHandler(sales SalesReporter) *ProfitReportHandler {
	return &ProfitReportHandler{sales: sales}
}

// Handle executes the profit report query. Cost uses the purchase price
// recorded on each sale line.
func (h *ProfitReportHandler) Handle(ctx context.Context, query ProfitReportQuery) (*ProfitReport, error) {
	sales, err := h.sales.Handle(ctx, salesquery.SalesReportQuery{From: query.From, To: query.To})
	if err != nil {
		return nil, fmt.Errorf("failed to build profit report: %w", err)
	}

	byProduct := make(map[uint]*ProfitRow)
	for _, sale := range sales.Sales {
		for _, item := range sale.Items {
			row, ok := byProduct[item.ProductID]
			if !ok {
				row = &ProfitRow{
					ProductID: item.ProductID,
					Name:      item.ProductName,
					Revenue:   decimal.Zero,
					Cost:      decimal.Zero,
				}
				byProduct[item.ProductID] = row
			}
			qty := decimal.NewFromInt(int64(item.Quantity))
			row.Quantity += item.Quantity
			row.Revenue = row.Revenue.Add(item.Subtotal)
			row.Cost = row.Cost.Add(item.UnitCost.Mul(qty))
		}
	}

	report := &ProfitReport{
		From:    query.From,
		To:      query.To,
		Rows:    make([]ProfitRow, 0, len(byProduct)),
		Revenue: decimal.Zero,
		Cost:    decimal.Zero,
		Profit:  decimal.Zero,
	}
	for _, row := range byProduct {
		row.Profit = row.Revenue.Sub(row.Cost)
		if row.Revenue.IsPositive() {
			m := Margin(row.Profit, row.Revenue)
			row.Margin = &m
		}
		report.Rows = append(report.Rows, *row)
		report.Revenue = report.Revenue.Add(row.Revenue)
		report.Cost = report.Cost.Add(row.Cost)
		report.Profit = report.Profit.Add(row.Profit)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].ProductID < report.Rows[j].ProductID
	})
	return report, nil
}

// Margin returns profit as a percentage of revenue, rounded to two places.
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred).Round(2)
}
