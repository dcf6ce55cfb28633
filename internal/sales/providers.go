package sales

import (
	"github.com/google/wire"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/customer"
	"github.com/tair/shop-inventory/internal/inventory"
	"github.com/tair/shop-inventory/internal/sales/domain"
	"github.com/tair/shop-inventory/internal/sales/repository"
	"github.com/tair/shop-inventory/internal/sales/usecase/command"
	"github.com/tair/shop-inventory/internal/sales/usecase/query"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/metrics"
)

// TaxRate is the fraction of a sale total charged as tax.
type TaxRate decimal.Decimal

// Module exposes the sale handlers.
type Module struct {
	Record *command.RecordSaleHandler
	Scan   *command.ScanSaleHandler
	Get    *query.GetSaleHandler
	Report *query.SalesReportHandler
}

// Models lists the tables owned by the sales module.
func Models() []any {
	return []any{&domain.Sale{}, &domain.SaleItem{}}
}

// ProvideSaleRepository provides the sale repository
func ProvideSaleRepository(db *gorm.DB) domain.SaleRepository {
	return repository.NewGormSaleRepository(db)
}

// ProvideModule assembles the sale handlers. scanner may be nil when no
// scanning device is attached.
func ProvideModule(
	tx *database.Transactor,
	sales domain.SaleRepository,
	inv *inventory.Module,
	customers *customer.Module,
	scanner domain.Scanner,
	rate TaxRate,
	m *metrics.Metrics,
) *Module {
	return &Module{
		Record: command.NewRecordSaleHandler(tx, sales, inv.Consume, customers.AddPoints, decimal.Decimal(rate), m),
		Scan:   command.NewScanSaleHandler(scanner, inv.GetProduct),
		Get:    query.NewGetSaleHandler(sales),
		Report: query.NewSalesReportHandler(sales),
	}
}

// New wires the module by hand.
func New(
	db *gorm.DB,
	tx *database.Transactor,
	inv *inventory.Module,
	customers *customer.Module,
	scanner domain.Scanner,
	rate decimal.Decimal,
	m *metrics.Metrics,
) *Module {
	return ProvideModule(tx, ProvideSaleRepository(db), inv, customers, scanner, TaxRate(rate), m)
}

// Wire sets
var ProviderSet = wire.NewSet(
	ProvideSaleRepository,
	ProvideModule,
)
