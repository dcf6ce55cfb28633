package report

import (
	"github.com/google/wire"

	"github.com/tair/shop-inventory/internal/customer"
	"github.com/tair/shop-inventory/internal/inventory"
	"github.com/tair/shop-inventory/internal/report/usecase/query"
	"github.com/tair/shop-inventory/internal/sales"
)

// Module exposes the read-only reports.
type Module struct {
	Inventory *query.InventoryReportHandler
	Profit    *query.ProfitReportHandler
	Sales     *query.SalesTableHandler
	Dashboard *query.DashboardHandler
	Breakdown query.BreakdownReader
}

// ProvideModule assembles the reports over the other modules' queries.
func ProvideModule(inv *inventory.Module, s *sales.Module, customers *customer.Module) *Module {
	return &Module{
		Inventory: query.NewInventoryReportHandler(inv.ListProducts),
		Profit:    query.NewProfitReportHandler(s.Report),
		Sales:     query.NewSalesTableHandler(s.Report, customers.List),
		Dashboard: query.NewDashboardHandler(inv.ListProducts, s.Report),
		Breakdown: inv.Breakdown,
	}
}

// Wire sets
var ProviderSet = wire.NewSet(ProvideModule)
