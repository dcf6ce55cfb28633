package app

import (
	"github.com/google/wire"
	"github.com/shopspring/decimal"

	"github.com/tair/shop-inventory/events"
	"github.com/tair/shop-inventory/internal/config"
	"github.com/tair/shop-inventory/internal/customer"
	"github.com/tair/shop-inventory/internal/inventory"
	invdomain "github.com/tair/shop-inventory/internal/inventory/domain"
	invcommand "github.com/tair/shop-inventory/internal/inventory/usecase/command"
	"github.com/tair/shop-inventory/internal/repair"
	"github.com/tair/shop-inventory/internal/report"
	"github.com/tair/shop-inventory/internal/sales"
	salesdomain "github.com/tair/shop-inventory/internal/sales/domain"
	"github.com/tair/shop-inventory/internal/todo"
	tododomain "github.com/tair/shop-inventory/internal/todo/domain"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/metrics"
)

// ProvidePolicy reads the task generation policy from configuration.
func ProvidePolicy(cfg *config.Config) (tododomain.Policy, error) {
	policy := tododomain.Policy{
		AssemblyBuffer:       cfg.Policy.AssemblyBuffer,
		HighPriorityStoreMax: cfg.Policy.HighPriorityStoreMax,
		AssemblyDestination:  cfg.Policy.AssemblyDestination,
	}
	if err := policy.Validate(); err != nil {
		return tododomain.Policy{}, err
	}
	return policy, nil
}

// ProvideTaxRate reads the sales tax rate from configuration.
func ProvideTaxRate(cfg *config.Config) sales.TaxRate {
	return sales.TaxRate(decimal.NewFromFloat(cfg.Sales.TaxRate))
}

// ProvideLabelGenerator provides the label generator. Printing labels is
// left to an external tool, so references stay empty.
func ProvideLabelGenerator() invdomain.LabelGenerator {
	return invdomain.NopLabelGenerator{}
}

// ProvideScanner provides the scanner. No device is attached by default.
func ProvideScanner() salesdomain.Scanner {
	return nil
}

var InfraSet = wire.NewSet(
	database.NewTransactor,
	events.NewBus,
	metrics.New,
	wire.Bind(new(invcommand.StockEventPublisher), new(*events.Bus)),
	ProvidePolicy,
	ProvideTaxRate,
	ProvideLabelGenerator,
	ProvideScanner,
)

var ProviderSet = wire.NewSet(
	InfraSet,
	inventory.ProviderSet,
	todo.ProviderSet,
	customer.ProviderSet,
	sales.ProviderSet,
	repair.ProviderSet,
	report.ProviderSet,
	NewApp,
)
