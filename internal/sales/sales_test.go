package sales_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
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
	"github.com/tair/shop-inventory/internal/sales"
	"github.com/tair/shop-inventory/internal/sales/domain"
	"github.com/tair/shop-inventory/internal/sales/usecase/command"
	"github.com/tair/shop-inventory/internal/sales/usecase/query"
	"github.com/tair/shop-inventory/internal/testsupport"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/metrics"
)

type stubScanner struct {
	payload string
	err     error
}

func (s stubScanner) Scan(context.Context) (string, error) {
	return s.payload, s.err
}

type fixture struct {
	inv       *inventory.Module
	customers *customer.Module
	sales     *sales.Module
	metrics   *metrics.Metrics
}

func setup(t *testing.T, scanner domain.Scanner) *fixture {
	t.Helper()
	var models []any
	models = append(models, inventory.Models()...)
	models = append(models, customer.Models()...)
	models = append(models, sales.Models()...)
	db := testsupport.NewDB(t, models...)
	tx := database.NewTransactor(db)

	f := &fixture{metrics: metrics.New()}
	f.inv = inventory.New(db, tx, nil, nil, f.metrics)
	f.customers = customer.New(db, tx)
	f.sales = sales.New(db, tx, f.inv, f.customers, scanner, domain.DefaultTaxRate, f.metrics)
	return f
}

func (f *fixture) product(t *testing.T, name, price string, store int, tracked bool) *invdomain.Product {
	t.Helper()
	res, err := f.inv.CreateProduct.Handle(context.Background(), invcommand.CreateProductCommand{
		Name:          name,
		PurchasePrice: decimal.RequireFromString("1"),
		SellingPrice:  decimal.RequireFromString(price),
		StoreQuantity: store,
		TrackItems:    tracked,
	})
	require.NoError(t, err)
	return res.Product
}

func (f *fixture) storeQty(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.inv.GetProduct.Handle(context.Background(), invquery.GetProductQuery{ID: id})
	require.NoError(t, err)
	return p.StoreQuantity
}

func TestRecordSale(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	pen := f.product(t, "Pen", "2.50", 10, false)
	lamp := f.product(t, "Lamp", "40", 3, true)
	c, err := f.customers.Create.Handle(ctx, custcommand.CreateCustomerCommand{Name: "Noor"})
	require.NoError(t, err)

	sale, err := f.sales.Record.Handle(ctx, command.RecordSaleCommand{
		CustomerID: &c.ID,
		Lines: []command.SaleLine{
			{ProductID: pen.ID, Quantity: 4},
			{ProductID: lamp.ID, Quantity: 1, Serials: []string{invdomain.SerialNumber(lamp.ID, 2)}},
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^SALE-[0-9a-f]{8}$`, sale.ReceiptNumber)
	assert.Equal(t, "50.00", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "9.00", sale.TaxAmount.StringFixed(2))
	require.Len(t, sale.Items, 2)
	assert.Equal(t, "10.00", sale.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, invdomain.SerialNumber(lamp.ID, 2), sale.Items[1].SerialNumber)

	assert.Equal(t, 6, f.storeQty(t, pen.ID))
	assert.Equal(t, 2, f.storeQty(t, lamp.ID))

	got, err := f.customers.Get.Handle(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.LoyaltyPoints)

	stored, err := f.sales.Get.Handle(ctx, query.GetSaleQuery{ReceiptNumber: sale.ReceiptNumber})
	require.NoError(t, err)
	assert.Equal(t, sale.ID, stored.ID)
	assert.Len(t, stored.Items, 2)

	movements, err := f.inv.ListMovements.Handle(ctx, invquery.ListMovementsQuery{ProductID: pen.ID})
	require.NoError(t, err)
	refs := make([]string, 0, len(movements))
	for _, mv := range movements {
		refs = append(refs, mv.Reference)
	}
	assert.Contains(t, refs, sale.ReceiptNumber)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.SalesRecorded))
	assert.InDelta(t, 59.0, testutil.ToFloat64(f.metrics.SalesAmount), 0.001)
}

func TestRecordSaleIsAtomic(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	pen := f.product(t, "Pen", "2.50", 10, false)
	lamp := f.product(t, "Lamp", "40", 1, true)
	c, err := f.customers.Create.Handle(ctx, custcommand.CreateCustomerCommand{Name: "Omar"})
	require.NoError(t, err)

	_, err = f.sales.Record.Handle(ctx, command.RecordSaleCommand{
		CustomerID: &c.ID,
		Lines: []command.SaleLine{
			{ProductID: pen.ID, Quantity: 4},
			{ProductID: lamp.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	var insufficient *apperr.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Available)

	assert.Equal(t, 10, f.storeQty(t, pen.ID))
	assert.Equal(t, 1, f.storeQty(t, lamp.ID))
	got, err := f.customers.Get.Handle(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LoyaltyPoints)

	report, err := f.sales.Report.Handle(ctx, query.SalesReportQuery{From: time.Now().Add(-time.Hour), To: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Zero(t, report.Count)
	assert.Zero(t, testutil.ToFloat64(f.metrics.SalesRecorded))
}

func TestRecordSaleValidation(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	pen := f.product(t, "Pen", "2.50", 10, false)
	missing := uint(99)

	_, err := f.sales.Record.Handle(ctx, command.RecordSaleCommand{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.sales.Record.Handle(ctx, command.RecordSaleCommand{Lines: []command.SaleLine{{ProductID: pen.ID}}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.sales.Record.Handle(ctx, command.RecordSaleCommand{
		CustomerID: &missing,
		Lines:      []command.SaleLine{{ProductID: pen.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 10, f.storeQty(t, pen.ID), "unknown customer rolls the sale back")
}

func TestSalesReportRange(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	pen := f.product(t, "Pen", "2", 10, false)
	jan := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	for _, day := range []time.Time{jan, feb, feb.Add(time.Hour)} {
		_, err := f.sales.Record.Handle(ctx, command.RecordSaleCommand{
			SaleDate: day,
			Lines:    []command.SaleLine{{ProductID: pen.ID, Quantity: 2}},
		})
		require.NoError(t, err)
	}

	report, err := f.sales.Report.Handle(ctx, query.SalesReportQuery{
		From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, 4, report.Units)
	assert.Equal(t, "8.00", report.Total.StringFixed(2))
	assert.Equal(t, "1.44", report.Tax.StringFixed(2))

	_, err = f.sales.Report.Handle(ctx, query.SalesReportQuery{From: feb, To: jan})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestScanSale(t *testing.T) {
	ctx := context.Background()

	t.Run("tracked product keeps serial", func(t *testing.T) {
		f := setup(t, nil)
		lamp := f.product(t, "Lamp", "40", 3, true)
		serial := invdomain.SerialNumber(lamp.ID, 3)

		line, product, err := f.sales.Scan.Resolve(ctx, itoa(lamp.ID)+"|Lamp|1|"+serial)
		require.NoError(t, err)
		assert.Equal(t, lamp.ID, product.ID)
		assert.Equal(t, []string{serial}, line.Serials)

		sale, err := f.sales.Record.Handle(ctx, command.RecordSaleCommand{Lines: []command.SaleLine{*line}})
		require.NoError(t, err)
		assert.Equal(t, serial, sale.Items[0].SerialNumber)

		item, err := f.inv.FindItemBySerial.Handle(ctx, serial)
		require.NoError(t, err)
		assert.Equal(t, invdomain.ItemSold, item.Status)
	})

	t.Run("untracked product drops serial", func(t *testing.T) {
		f := setup(t, nil)
		pen := f.product(t, "Pen", "2", 5, false)

		line, _, err := f.sales.Scan.Resolve(ctx, itoa(pen.ID)+"|Pen|2|SN-OLD")
		require.NoError(t, err)
		assert.Equal(t, 2, line.Quantity)
		assert.Empty(t, line.Serials)
	})

	t.Run("insufficient store stock", func(t *testing.T) {
		f := setup(t, nil)
		pen := f.product(t, "Pen", "2", 1, false)

		_, _, err := f.sales.Scan.Resolve(ctx, itoa(pen.ID)+"|Pen|2")
		assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := setup(t, nil)
		_, _, err := f.sales.Scan.Resolve(ctx, "404|Ghost|1")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("scanner payload", func(t *testing.T) {
		f := setup(t, stubScanner{payload: "1|Pen"})
		pen := f.product(t, "Pen", "2", 5, false)
		require.Equal(t, uint(1), pen.ID)

		line, _, err := f.sales.Scan.Handle(ctx)
		require.NoError(t, err)
		assert.Equal(t, pen.ID, line.ProductID)
		assert.Equal(t, 1, line.Quantity)
	})

	t.Run("cancelled", func(t *testing.T) {
		f := setup(t, stubScanner{err: domain.ErrScanCancelled})
		_, _, err := f.sales.Scan.Handle(ctx)
		assert.ErrorIs(t, err, domain.ErrScanCancelled)
	})

	t.Run("no scanner", func(t *testing.T) {
		f := setup(t, nil)
		_, _, err := f.sales.Scan.Handle(ctx)
		assert.ErrorIs(t, err, domain.ErrNoScanner)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
