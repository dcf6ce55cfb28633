package repair_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/customer"
	custcommand "github.com/tair/shop-inventory/internal/customer/usecase/command"
	"github.com/tair/shop-inventory/internal/inventory"
	invdomain "github.com/tair/shop-inventory/internal/inventory/domain"
	invcommand "github.com/tair/shop-inventory/internal/inventory/usecase/command"
	invquery "github.com/tair/shop-inventory/internal/inventory/usecase/query"
	"github.com/tair/shop-inventory/internal/repair"
	"github.com/tair/shop-inventory/internal/repair/domain"
	"github.com/tair/shop-inventory/internal/repair/usecase/command"
	"github.com/tair/shop-inventory/internal/repair/usecase/query"
	"github.com/tair/shop-inventory/internal/testsupport"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/metrics"
)

type fixture struct {
	inv      *inventory.Module
	repair   *repair.Module
	customer uint
	part     *invdomain.Product
}

func setup(t *testing.T) *fixture {
	t.Helper()
	var models []any
	models = append(models, inventory.Models()...)
	models = append(models, customer.Models()...)
	models = append(models, repair.Models()...)
	db := testsupport.NewDB(t, models...)
	tx := database.NewTransactor(db)

	inv := inventory.New(db, tx, nil, nil, metrics.New())
	customers := customer.New(db, tx)
	f := &fixture{inv: inv, repair: repair.New(db, tx, inv, customers)}

	c, err := customers.Create.Handle(context.Background(), custcommand.CreateCustomerCommand{Name: "Dana"})
	require.NoError(t, err)
	f.customer = c.ID

	res, err := inv.CreateProduct.Handle(context.Background(), invcommand.CreateProductCommand{
		Name:          "Hinge",
		PurchasePrice: decimal.RequireFromString("3"),
		SellingPrice:  decimal.RequireFromString("5.25"),
		StoreQuantity: 4,
	})
	require.NoError(t, err)
	f.part = res.Product
	return f
}

func (f *fixture) storeQty(t *testing.T) int {
	t.Helper()
	p, err := f.inv.GetProduct.Handle(context.Background(), invquery.GetProductQuery{ID: f.part.ID})
	require.NoError(t, err)
	return p.StoreQuantity
}

func TestRepairBillAddsUp(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	r, err := f.repair.Create.Handle(ctx, command.CreateRepairCommand{CustomerID: f.customer, Description: "Fix cabinet door"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, r.Status)

	r, err = f.repair.AddPart.Handle(ctx, command.AddPartCommand{RepairID: r.ID, ProductID: f.part.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "10.50", r.PartsTotal.StringFixed(2))
	assert.Equal(t, 2, f.storeQty(t))

	r, err = f.repair.SetServiceCharge.Handle(ctx, command.SetServiceChargeCommand{RepairID: r.ID, Amount: decimal.RequireFromString("29")})
	require.NoError(t, err)
	assert.Equal(t, "39.50", r.TotalCost.StringFixed(2))

	bill, err := f.repair.Bill.Handle(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", bill.CustomerName)
	require.Len(t, bill.Lines, 1)
	assert.Equal(t, "Hinge", bill.Lines[0].Part)
	assert.True(t, bill.Total.Equal(bill.PartsTotal.Add(bill.ServiceCharge)))
	assert.Equal(t, "BILL#"+uitoa(r.ID)+"|Dana|$39.50", bill.QRPayload)

	movements, err := f.inv.ListMovements.Handle(ctx, invquery.ListMovementsQuery{ProductID: f.part.ID})
	require.NoError(t, err)
	var found bool
	for _, mv := range movements {
		if mv.Reference == "repair-"+uitoa(r.ID) && mv.Operation == invdomain.OperationConsume {
			found = true
		}
	}
	assert.True(t, found, "part consumption is on the ledger")
}

func TestRemovePartReturnsStock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r, err := f.repair.Create.Handle(ctx, command.CreateRepairCommand{
		CustomerID:    f.customer,
		Description:   "Replace hinges",
		ServiceCharge: decimal.RequireFromString("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "10.00", r.TotalCost.StringFixed(2))

	r, err = f.repair.AddPart.Handle(ctx, command.AddPartCommand{RepairID: r.ID, ProductID: f.part.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, r.Parts, 1)
	assert.Equal(t, 1, f.storeQty(t))

	r, err = f.repair.RemovePart.Handle(ctx, command.RemovePartCommand{RepairID: r.ID, PartID: r.Parts[0].ID})
	require.NoError(t, err)
	assert.Empty(t, r.Parts)
	assert.True(t, r.PartsTotal.IsZero())
	assert.Equal(t, "10.00", r.TotalCost.StringFixed(2))
	assert.Equal(t, 4, f.storeQty(t))

	stored, err := f.repair.Get.Handle(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Parts)

	_, err = f.repair.RemovePart.Handle(ctx, command.RemovePartCommand{RepairID: r.ID, PartID: 999})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddPartInsufficientStock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r, err := f.repair.Create.Handle(ctx, command.CreateRepairCommand{CustomerID: f.customer, Description: "Big job"})
	require.NoError(t, err)

	_, err = f.repair.AddPart.Handle(ctx, command.AddPartCommand{RepairID: r.ID, ProductID: f.part.ID, Quantity: 5})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	stored, err := f.repair.Get.Handle(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Parts)
	assert.Equal(t, 4, f.storeQty(t))
}

func TestCompletedRepairIsClosed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r, err := f.repair.Create.Handle(ctx, command.CreateRepairCommand{CustomerID: f.customer, Description: "Quick fix"})
	require.NoError(t, err)

	r, err = f.repair.UpdateStatus.Handle(ctx, command.UpdateStatusCommand{RepairID: r.ID, Status: domain.StatusCompleted})
	require.NoError(t, err)
	assert.NotNil(t, r.CompletedAt)

	_, err = f.repair.AddPart.Handle(ctx, command.AddPartCommand{RepairID: r.ID, ProductID: f.part.ID, Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.repair.SetServiceCharge.Handle(ctx, command.SetServiceChargeCommand{RepairID: r.ID, Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.repair.UpdateStatus.Handle(ctx, command.UpdateStatusCommand{RepairID: r.ID, Status: domain.StatusInProgress})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, 4, f.storeQty(t))
}

func TestCreateRepairValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.repair.Create.Handle(ctx, command.CreateRepairCommand{CustomerID: f.customer})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.repair.Create.Handle(ctx, command.CreateRepairCommand{CustomerID: 77, Description: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.repair.Create.Handle(ctx, command.CreateRepairCommand{
		CustomerID: f.customer, Description: "x", ServiceCharge: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListRepairs(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first, err := f.repair.Create.Handle(ctx, command.CreateRepairCommand{CustomerID: f.customer, Description: "One"})
	require.NoError(t, err)
	_, err = f.repair.Create.Handle(ctx, command.CreateRepairCommand{CustomerID: f.customer, Description: "Two"})
	require.NoError(t, err)
	_, err = f.repair.UpdateStatus.Handle(ctx, command.UpdateStatusCommand{RepairID: first.ID, Status: domain.StatusInProgress})
	require.NoError(t, err)

	all, err := f.repair.List.Handle(ctx, query.ListRepairsQuery{CustomerID: f.customer})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.repair.List.Handle(ctx, query.ListRepairsQuery{Status: domain.StatusInProgress})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)
}

func uitoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
