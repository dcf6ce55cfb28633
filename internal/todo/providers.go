package todo

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/inventory"
	"github.com/tair/shop-inventory/internal/todo/domain"
	"github.com/tair/shop-inventory/internal/todo/listener"
	"github.com/tair/shop-inventory/internal/todo/repository"
	"github.com/tair/shop-inventory/internal/todo/usecase/command"
	"github.com/tair/shop-inventory/internal/todo/usecase/query"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/metrics"
)

// Module exposes the task generator, the executor and task queries.
type Module struct {
	Create       *command.CreateTaskHandler
	Reconcile    *command.ReconcileHandler
	Start        *command.StartTaskHandler
	Assign       *command.AssignTaskHandler
	Complete     *command.CompleteTaskHandler
	Get          *query.GetTaskHandler
	List         *query.ListTasksHandler
	HighPriority *query.ListHighPriorityHandler
	Listener     *listener.StockListener
}

// Models lists the tables owned by the task module.
func Models() []any {
	return []any{&domain.Task{}}
}

// ProvideTaskRepository provides the task repository
func ProvideTaskRepository(db *gorm.DB) domain.TaskRepository {
	return repository.NewGormTaskRepository(db)
}

// ProvideModule assembles the task handlers on top of the stock ledger.
func ProvideModule(
	tx *database.Transactor,
	tasks domain.TaskRepository,
	inv *inventory.Module,
	policy domain.Policy,
	m *metrics.Metrics,
) *Module {
	reconcile := command.NewReconcileHandler(tx, tasks, inv.ListProducts, policy, m)
	return &Module{
		Create:       command.NewCreateTaskHandler(tasks, inv.GetProduct, m),
		Reconcile:    reconcile,
		Start:        command.NewStartTaskHandler(tx, tasks),
		Assign:       command.NewAssignTaskHandler(tx, tasks),
		Complete:     command.NewCompleteTaskHandler(tx, tasks, inv.Transfer, inv.Receive, policy, m),
		Get:          query.NewGetTaskHandler(tasks),
		List:         query.NewListTasksHandler(tasks),
		HighPriority: query.NewListHighPriorityHandler(tasks),
		Listener:     listener.NewStockListener(reconcile),
	}
}

// New wires the module by hand. The application injector uses ProviderSet.
func New(db *gorm.DB, tx *database.Transactor, inv *inventory.Module, policy domain.Policy, m *metrics.Metrics) *Module {
	return ProvideModule(tx, ProvideTaskRepository(db), inv, policy, m)
}

// Wire sets
var ProviderSet = wire.NewSet(
	ProvideTaskRepository,
	ProvideModule,
)
