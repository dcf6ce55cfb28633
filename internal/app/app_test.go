package app_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/shop-inventory/internal/app"
	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/config"
	invcommand "github.com/tair/shop-inventory/internal/inventory/usecase/command"
	salescommand "github.com/tair/shop-inventory/internal/sales/usecase/command"
	"github.com/tair/shop-inventory/internal/testsupport"
	tododomain "github.com/tair/shop-inventory/internal/todo/domain"
	todocommand "github.com/tair/shop-inventory/internal/todo/usecase/command"
	todoquery "github.com/tair/shop-inventory/internal/todo/usecase/query"
)

func newApp(t *testing.T, autoReconcile bool) *app.App {
	t.Helper()
	db := testsupport.NewDB(t)
	require.NoError(t, app.Migrate(context.Background(), db))

	cfg := config.FromEnv()
	cfg.Policy.AutoReconcile = autoReconcile
	a, err := app.InitializeApp(cfg, db)
	require.NoError(t, err)
	return a
}

func TestSaleGeneratesRestockTask(t *testing.T) {
	a := newApp(t, true)
	ctx := context.Background()

	res, err := a.Inventory.CreateProduct.Handle(ctx, invcommand.CreateProductCommand{
		Name:              "Lamp",
		PurchasePrice:     decimal.RequireFromString("10"),
		SellingPrice:      decimal.RequireFromString("15"),
		StoreQuantity:     7,
		WarehouseQuantity: 20,
	})
	require.NoError(t, err)
	id := res.Product.ID

	_, err = a.Sales.Record.Handle(ctx, salescommand.RecordSaleCommand{
		Lines: []salescommand.SaleLine{{ProductID: id, Quantity: 5}},
	})
	require.NoError(t, err)

	tasks, err := a.Todo.List.Handle(ctx, todoquery.ListTasksQuery{ProductID: &id})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, tododomain.TypeRestock, task.TaskType)
	assert.Equal(t, 3, task.QuantityNeeded)
	assert.Equal(t, tododomain.PriorityHigh, task.Priority)

	_, err = a.Todo.Start.Handle(ctx, task.ID)
	require.NoError(t, err)
	_, err = a.Todo.Complete.Handle(ctx, todocommand.CompleteTaskCommand{ID: task.ID})
	require.NoError(t, err)

	summary, err := a.Inventory.ProductSummary.Handle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Product.StoreQuantity)
	assert.Equal(t, 17, summary.Product.WarehouseQuantity)

	open, err := a.Todo.List.Handle(ctx, todoquery.ListTasksQuery{Status: tododomain.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, open, "restocked shelf is back at the threshold with no warehouse shortfall")
}

func TestAutoReconcileDisabled(t *testing.T) {
	a := newApp(t, false)
	ctx := context.Background()

	_, err := a.Inventory.CreateProduct.Handle(ctx, invcommand.CreateProductCommand{
		Name:          "Chair",
		PurchasePrice: decimal.RequireFromString("10"),
		SellingPrice:  decimal.RequireFromString("15"),
		StoreQuantity: 1,
	})
	require.NoError(t, err)

	tasks, err := a.Todo.List.Handle(ctx, todoquery.ListTasksQuery{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	created, err := a.Todo.Reconcile.Handle(ctx)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, tododomain.TypeAssembly, created[0].TaskType)
}

func TestInvalidPolicyIsRejected(t *testing.T) {
	db := testsupport.NewDB(t)
	cfg := config.FromEnv()
	cfg.Policy.AssemblyDestination = "attic"

	_, err := app.InitializeApp(cfg, db)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
