package inventory

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/inventory/domain"
	"github.com/tair/shop-inventory/internal/inventory/repository"
	"github.com/tair/shop-inventory/internal/inventory/usecase/command"
	"github.com/tair/shop-inventory/internal/inventory/usecase/query"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/metrics"
)

// Module exposes the stock ledger's command and query handlers.
type Module struct {
	Receive        *command.ReceiveStockHandler
	Consume        *command.ConsumeStockHandler
	Transfer       *command.TransferStockHandler
	CreateProduct  *command.CreateProductHandler
	UpdateProduct  *command.UpdateProductHandler
	MarkOrdered    *command.MarkOrderedHandler
	MarkDamaged    *command.MarkDamagedHandler
	CreateSupplier *command.CreateSupplierHandler

	GetProduct       *query.GetProductHandler
	ListProducts     *query.ListProductsHandler
	ListLowStock     *query.ListLowStockHandler
	Breakdown        *query.InventoryBreakdownHandler
	ProductSummary   *query.ProductSummaryHandler
	FindItemBySerial *query.FindItemBySerialHandler
	ListItems        *query.ListItemsHandler
	ListMovements    *query.ListMovementsHandler
	ListSuppliers    *query.ListSuppliersHandler
}

// Models lists the tables owned by the ledger.
func Models() []any {
	return []any{
		&domain.Supplier{},
		&domain.Product{},
		&domain.ProductItem{},
		&domain.StockMovement{},
	}
}

// ProvideProductRepository provides the traced product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewTracedProductRepository(repository.NewGormProductRepository(db))
}

// ProvideItemRepository provides the product item repository
func ProvideItemRepository(db *gorm.DB) domain.ItemRepository {
	return repository.NewGormItemRepository(db)
}

// ProvideMovementRepository provides the stock movement repository
func ProvideMovementRepository(db *gorm.DB) domain.MovementRepository {
	return repository.NewGormMovementRepository(db)
}

// ProvideSupplierRepository provides the supplier repository
func ProvideSupplierRepository(db *gorm.DB) domain.SupplierRepository {
	return repository.NewGormSupplierRepository(db)
}

// ProvideModule assembles every handler over one store bundle.
func ProvideModule(
	store *command.Store,
	products domain.ProductRepository,
	items domain.ItemRepository,
	movements domain.MovementRepository,
	suppliers domain.SupplierRepository,
) *Module {
	receive := command.NewReceiveStockHandler(store)
	list := query.NewListProductsHandler(products, items)
	get := query.NewGetProductHandler(products, items)

	return &Module{
		Receive:        receive,
		Consume:        command.NewConsumeStockHandler(store),
		Transfer:       command.NewTransferStockHandler(store),
		CreateProduct:  command.NewCreateProductHandler(store, suppliers, receive),
		UpdateProduct:  command.NewUpdateProductHandler(store, suppliers),
		MarkOrdered:    command.NewMarkOrderedHandler(store, suppliers),
		MarkDamaged:    command.NewMarkDamagedHandler(store),
		CreateSupplier: command.NewCreateSupplierHandler(suppliers),

		GetProduct:       get,
		ListProducts:     list,
		ListLowStock:     query.NewListLowStockHandler(list),
		Breakdown:        query.NewInventoryBreakdownHandler(list),
		ProductSummary:   query.NewProductSummaryHandler(get, items),
		FindItemBySerial: query.NewFindItemBySerialHandler(items),
		ListItems:        query.NewListItemsHandler(items),
		ListMovements:    query.NewListMovementsHandler(movements),
		ListSuppliers:    query.NewListSuppliersHandler(suppliers),
	}
}

// New wires the module by hand. The application injector uses ProviderSet.
func New(db *gorm.DB, tx *database.Transactor, labels domain.LabelGenerator, publisher command.StockEventPublisher, m *metrics.Metrics) *Module {
	products := ProvideProductRepository(db)
	items := ProvideItemRepository(db)
	movements := ProvideMovementRepository(db)
	store := command.NewStore(tx, products, items, movements, labels, publisher, m)
	return ProvideModule(store, products, items, movements, ProvideSupplierRepository(db))
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
	ProvideItemRepository,
	ProvideMovementRepository,
	ProvideSupplierRepository,
)

var ProviderSet = wire.NewSet(
	RepositorySet,
	command.NewStore,
	ProvideModule,
)
