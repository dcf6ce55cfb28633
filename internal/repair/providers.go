package repair

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/customer"
	"github.com/tair/shop-inventory/internal/inventory"
	"github.com/tair/shop-inventory/internal/repair/domain"
	"github.com/tair/shop-inventory/internal/repair/repository"
	"github.com/tair/shop-inventory/internal/repair/usecase/command"
	"github.com/tair/shop-inventory/internal/repair/usecase/query"
	"github.com/tair/shop-inventory/pkg/database"
)

// Module exposes the repair handlers.
type Module struct {
	Create           *command.CreateRepairHandler
	AddPart          *command.AddPartHandler
	RemovePart       *command.RemovePartHandler
	SetServiceCharge *command.SetServiceChargeHandler
	UpdateStatus     *command.UpdateStatusHandler
	Get              *query.GetRepairHandler
	List             *query.ListRepairsHandler
	Bill             *query.GetBillHandler
}

// Models lists the tables owned by the repair module.
func Models() []any {
	return []any{&domain.RepairTask{}, &domain.RepairPart{}}
}

// ProvideRepairRepository provides the repair repository
func ProvideRepairRepository(db *gorm.DB) domain.RepairRepository {
	return repository.NewGormRepairRepository(db)
}

// ProvideModule assembles the repair handlers.
func ProvideModule(
	tx *database.Transactor,
	repairs domain.RepairRepository,
	inv *inventory.Module,
	customers *customer.Module,
) *Module {
	return &Module{
		Create:           command.NewCreateRepairHandler(repairs, customers.Get),
		AddPart:          command.NewAddPartHandler(tx, repairs, inv.Consume),
		RemovePart:       command.NewRemovePartHandler(tx, repairs, inv.Receive),
		SetServiceCharge: command.NewSetServiceChargeHandler(tx, repairs),
		UpdateStatus:     command.NewUpdateStatusHandler(tx, repairs),
		Get:              query.NewGetRepairHandler(repairs),
		List:             query.NewListRepairsHandler(repairs),
		Bill:             query.NewGetBillHandler(repairs, customers.Get),
	}
}

// New wires the module by hand.
func New(db *gorm.DB, tx *database.Transactor, inv *inventory.Module, customers *customer.Module) *Module {
	return ProvideModule(tx, ProvideRepairRepository(db), inv, customers)
}

// Wire sets
var ProviderSet = wire.NewSet(
	ProvideRepairRepository,
	ProvideModule,
)
