package customer

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/customer/domain"
	"github.com/tair/shop-inventory/internal/customer/repository"
	"github.com/tair/shop-inventory/internal/customer/usecase/command"
	"github.com/tair/shop-inventory/internal/customer/usecase/query"
	"github.com/tair/shop-inventory/pkg/database"
)

// Module exposes the customer handlers.
type Module struct {
	Create    *command.CreateCustomerHandler
	Update    *command.UpdateCustomerHandler
	AddPoints *command.AddLoyaltyPointsHandler
	Get       *query.GetCustomerHandler
	List      *query.ListCustomersHandler
}

// Models lists the tables owned by the customer module.
func Models() []any {
	return []any{&domain.Customer{}}
}

// ProvideCustomerRepository provides the customer repository
func ProvideCustomerRepository(db *gorm.DB) domain.CustomerRepository {
	return repository.NewGormCustomerRepository(db)
}

// ProvideModule assembles the customer handlers.
func ProvideModule(tx *database.Transactor, repo domain.CustomerRepository) *Module {
	return &Module{
		Create:    command.NewCreateCustomerHandler(repo),
		Update:    command.NewUpdateCustomerHandler(tx, repo),
		AddPoints: command.NewAddLoyaltyPointsHandler(tx, repo),
		Get:       query.NewGetCustomerHandler(repo),
		List:      query.NewListCustomersHandler(repo),
	}
}

// New wires the module by hand.
func New(db *gorm.DB, tx *database.Transactor) *Module {
	return ProvideModule(tx, ProvideCustomerRepository(db))
}

// Wire sets
var ProviderSet = wire.NewSet(
	ProvideCustomerRepository,
	ProvideModule,
)
