package inventory_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"

	"github.com/tair/shop-inventory/events"
	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/inventory"
	"github.com/tair/shop-inventory/internal/inventory/domain"
	"github.com/tair/shop-inventory/internal/inventory/usecase/command"
	"github.com/tair/shop-inventory/internal/inventory/usecase/query"
	"github.com/tair/shop-inventory/internal/testsupport"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/metrics"
)

type recordingLabels struct {
	serials []string
	failOn  string
}

func (l *recordingLabels) Generate(_ context.Context, _ uint, _ string, serial string) (string, error) {
	if serial == l.failOn {
		return "", errors.New("printer jammed")
	}
	l.serials = append(l.serials, serial)
	return "labels/" + serial + ".png", nil
}

type recordingPublisher struct {
	events []events.StockChangedEvent
}

func (p *recordingPublisher) PublishStockChanged(_ context.Context, e events.StockChangedEvent) error {
	p.events = append(p.events, e)
	return nil
}

type fixture struct {
	db      *gorm.DB
	mod     *inventory.Module
	labels  *recordingLabels
	events  *recordingPublisher
	metrics *metrics.Metrics
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testsupport.NewDB(t, inventory.Models()...)
	f := &fixture{
		db:      db,
		labels:  &recordingLabels{},
		events:  &recordingPublisher{},
		metrics: metrics.New(),
	}
	f.mod = inventory.New(db, database.NewTransactor(db), f.labels, f.events, f.metrics)
	return f
}

func intPtr(v int) *int { return &v }

func (f *fixture) product(t *testing.T, threshold, store, warehouse int, tracked bool) *domain.Product {
	t.Helper()
	res, err := f.mod.CreateProduct.Handle(context.Background(), command.CreateProductCommand{
		Name:              fmt.Sprintf("Widget %d", time.Now().UnixNano()),
		Category:          "widgets",
		PurchasePrice:     decimal.RequireFromString("10.00"),
		SellingPrice:      decimal.RequireFromString("15.50"),
		ReorderThreshold:  intPtr(threshold),
		StoreQuantity:     store,
		WarehouseQuantity: warehouse,
		TrackItems:        tracked,
	})
	require.NoError(t, err)
	return res.Product
}

func (f *fixture) reload(t *testing.T, id uint) *domain.Product {
	t.Helper()
	p, err := f.mod.GetProduct.Handle(context.Background(), query.GetProductQuery{ID: id})
	require.NoError(t, err)
	return p
}

func TestCreateProductBooksInitialStock(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 3, 7, false)

	got := f.reload(t, p.ID)
	assert.Equal(t, 3, got.StoreQuantity)
	assert.Equal(t, 7, got.WarehouseQuantity)
	assert.Equal(t, 10, got.TotalQuantity())
	assert.True(t, got.SellingPrice.Equal(decimal.RequireFromString("15.50")))

	movements, err := f.mod.ListMovements.Handle(context.Background(), query.ListMovementsQuery{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, domain.OperationReceive, movements[0].Operation)
	assert.Equal(t, domain.LocationWarehouse, movements[0].ToLocation)
	assert.Equal(t, 3, movements[0].StoreAfter)
	assert.Equal(t, 7, movements[0].WarehouseAfter)
}

func TestCreateProductRejectsSellingBelowPurchase(t *testing.T) {
	f := setup(t)
	_, err := f.mod.CreateProduct.Handle(context.Background(), command.CreateProductCommand{
		Name:          "Loss leader",
		PurchasePrice: decimal.RequireFromString("20"),
		SellingPrice:  decimal.RequireFromString("19.99"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	products, err := f.mod.ListProducts.Handle(context.Background(), query.ListProductsQuery{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCreateProductDefaultsThreshold(t *testing.T) {
	f := setup(t)
	res, err := f.mod.CreateProduct.Handle(context.Background(), command.CreateProductCommand{
		Name:          "Cable",
		PurchasePrice: decimal.RequireFromString("1"),
		SellingPrice:  decimal.RequireFromString("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultReorderThreshold, res.Product.ReorderThreshold)
}

func TestReceiveTrackedAllocatesSerials(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 2, 1, true)

	res, err := f.mod.Receive.Handle(context.Background(), command.ReceiveStockCommand{
		ProductID:         p.ID,
		StoreQuantity:     1,
		WarehouseQuantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	want := []string{
		domain.SerialNumber(p.ID, 4),
		domain.SerialNumber(p.ID, 5),
		domain.SerialNumber(p.ID, 6),
	}
	for i, item := range res.Items {
		assert.Equal(t, want[i], item.SerialNumber)
		assert.Equal(t, domain.ItemInStock, item.Status)
		assert.Equal(t, "labels/"+want[i]+".png", item.LabelRef)
	}
	assert.Equal(t, domain.LocationStore, res.Items[0].Location)
	assert.Equal(t, domain.LocationWarehouse, res.Items[2].Location)
	assert.Equal(t, fmt.Sprintf("P%dI1", p.ID), f.labels.serials[0])

	got := f.reload(t, p.ID)
	assert.Equal(t, 3, got.StoreQuantity)
	assert.Equal(t, 3, got.WarehouseQuantity)
}

func TestReceiveAndTransferLargeTrackedBatch(t *testing.T) {
	const units = 5000
	f := setup(t)
	p := f.product(t, 5, 0, 0, true)

	res, err := f.mod.Receive.Handle(context.Background(), command.ReceiveStockCommand{
		ProductID:         p.ID,
		WarehouseQuantity: units,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, units)
	assert.Equal(t, domain.SerialNumber(p.ID, units), res.Items[units-1].SerialNumber)

	moved, err := f.mod.Transfer.Handle(context.Background(), command.TransferStockCommand{
		ProductID: p.ID, Quantity: units,
	})
	require.NoError(t, err)
	assert.Len(t, moved.Items, units)

	got := f.reload(t, p.ID)
	assert.Equal(t, units, got.StoreQuantity)
	assert.Equal(t, 0, got.WarehouseQuantity)

	last, err := f.mod.FindItemBySerial.Handle(context.Background(), domain.SerialNumber(p.ID, units))
	require.NoError(t, err)
	assert.Equal(t, domain.LocationStore, last.Location)
}

func TestReceiveRollsBackWhenLabelFails(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 1, 0, true)
	f.labels.failOn = domain.SerialNumber(p.ID, 3)
	published := len(f.events.events)

	_, err := f.mod.Receive.Handle(context.Background(), command.ReceiveStockCommand{
		ProductID:     p.ID,
		StoreQuantity: 3,
	})
	require.Error(t, err)

	got := f.reload(t, p.ID)
	assert.Equal(t, 1, got.StoreQuantity)
	items, err := f.mod.ListItems.Handle(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Len(t, f.events.events, published, "no event for a rolled back receipt")
}

func TestReceiveValidation(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 0, 0, false)

	_, err := f.mod.Receive.Handle(context.Background(), command.ReceiveStockCommand{ProductID: p.ID})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.mod.Receive.Handle(context.Background(), command.ReceiveStockCommand{ProductID: p.ID, StoreQuantity: -1, WarehouseQuantity: 2})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.mod.Receive.Handle(context.Background(), command.ReceiveStockCommand{ProductID: 9999, StoreQuantity: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConsumeInsufficientLeavesStockUnchanged(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 2, 10, false)

	_, err := f.mod.Consume.Handle(context.Background(), command.ConsumeStockCommand{
		ProductID: p.ID,
		Quantity:  3,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	var insufficient *apperr.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, domain.LocationStore, insufficient.Location)

	got := f.reload(t, p.ID)
	assert.Equal(t, 2, got.StoreQuantity)
	assert.Equal(t, 10, got.WarehouseQuantity)
}

func TestConsumeTrackedMarksOldestSold(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 4, 0, true)

	res, err := f.mod.Consume.Handle(context.Background(), command.ConsumeStockCommand{
		ProductID: p.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, domain.SerialNumber(p.ID, 1), res.Items[0].SerialNumber)
	assert.Equal(t, domain.SerialNumber(p.ID, 2), res.Items[1].SerialNumber)
	assert.Equal(t, 2, res.Product.StoreQuantity)

	summary, err := f.mod.ProductSummary.Handle(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemCounts{Store: 2, Sold: 2}, summary.Counts)
	assert.Equal(t, 4, summary.Total)
}

func TestConsumeNamedSerialFirst(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 3, 0, true)
	third := domain.SerialNumber(p.ID, 3)

	res, err := f.mod.Consume.Handle(context.Background(), command.ConsumeStockCommand{
		ProductID: p.ID,
		Quantity:  2,
		Serials:   []string{third},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, third, res.Items[0].SerialNumber)
	assert.Equal(t, domain.SerialNumber(p.ID, 1), res.Items[1].SerialNumber)

	_, err = f.mod.Consume.Handle(context.Background(), command.ConsumeStockCommand{
		ProductID: p.ID,
		Quantity:  1,
		Serials:   []string{third},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation, "sold item cannot be sold again")
}

func TestConsumeSerialsOnUntrackedProduct(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 3, 0, false)

	_, err := f.mod.Consume.Handle(context.Background(), command.ConsumeStockCommand{
		ProductID: p.ID,
		Quantity:  1,
		Serials:   []string{"P1I1"},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTransferRoundTripRestoresCounts(t *testing.T) {
	for _, tracked := range []bool{false, true} {
		t.Run(fmt.Sprintf("tracked=%v", tracked), func(t *testing.T) {
			f := setup(t)
			p := f.product(t, 5, 2, 6, tracked)

			_, err := f.mod.Transfer.Handle(context.Background(), command.TransferStockCommand{
				ProductID: p.ID, Quantity: 4,
			})
			require.NoError(t, err)
			mid := f.reload(t, p.ID)
			assert.Equal(t, 6, mid.StoreQuantity)
			assert.Equal(t, 2, mid.WarehouseQuantity)

			_, err = f.mod.Transfer.Handle(context.Background(), command.TransferStockCommand{
				ProductID: p.ID, Quantity: 4, From: domain.LocationStore, To: domain.LocationWarehouse,
			})
			require.NoError(t, err)
			got := f.reload(t, p.ID)
			assert.Equal(t, 2, got.StoreQuantity)
			assert.Equal(t, 6, got.WarehouseQuantity)
		})
	}
}

func TestTransferTrackedMovesOldestFirst(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 1, 3, true)

	res, err := f.mod.Transfer.Handle(context.Background(), command.TransferStockCommand{
		ProductID: p.ID, Quantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	// item 1 was received into store, warehouse holds 2..4
	assert.Equal(t, domain.SerialNumber(p.ID, 2), res.Items[0].SerialNumber)
	assert.Equal(t, domain.SerialNumber(p.ID, 3), res.Items[1].SerialNumber)

	item, err := f.mod.FindItemBySerial.Handle(context.Background(), domain.SerialNumber(p.ID, 3))
	require.NoError(t, err)
	assert.Equal(t, domain.LocationStore, item.Location)
	item, err = f.mod.FindItemBySerial.Handle(context.Background(), domain.SerialNumber(p.ID, 4))
	require.NoError(t, err)
	assert.Equal(t, domain.LocationWarehouse, item.Location)
}

func TestTransferInsufficientIsAllOrNothing(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 1, 2, true)

	_, err := f.mod.Transfer.Handle(context.Background(), command.TransferStockCommand{
		ProductID: p.ID, Quantity: 3,
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	got := f.reload(t, p.ID)
	assert.Equal(t, 1, got.StoreQuantity)
	assert.Equal(t, 2, got.WarehouseQuantity)
}

func TestTransferValidation(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 1, 2, false)

	cases := []command.TransferStockCommand{
		{ProductID: p.ID, Quantity: 1, From: domain.LocationStore, To: domain.LocationStore},
		{ProductID: p.ID, Quantity: 0},
		{ProductID: p.ID, Quantity: 1, From: domain.LocationSold},
	}
	for _, cmd := range cases {
		_, err := f.mod.Transfer.Handle(context.Background(), cmd)
		assert.ErrorIs(t, err, apperr.ErrValidation, "%+v", cmd)
	}
}

func TestCountersNeverNegative(t *testing.T) {
	for _, tracked := range []bool{false, true} {
		t.Run(fmt.Sprintf("tracked=%v", tracked), func(t *testing.T) {
			f := setup(t)
			p := f.product(t, 5, 3, 3, tracked)
			rng := rand.New(rand.NewSource(42))
			ctx := context.Background()

			for i := 0; i < 60; i++ {
				n := rng.Intn(4) + 1
				var err error
				switch rng.Intn(4) {
				case 0:
					_, err = f.mod.Receive.Handle(ctx, command.ReceiveStockCommand{ProductID: p.ID, StoreQuantity: rng.Intn(2), WarehouseQuantity: 1})
				case 1:
					_, err = f.mod.Consume.Handle(ctx, command.ConsumeStockCommand{ProductID: p.ID, Quantity: n})
				case 2:
					_, err = f.mod.Transfer.Handle(ctx, command.TransferStockCommand{ProductID: p.ID, Quantity: n})
				case 3:
					_, err = f.mod.Transfer.Handle(ctx, command.TransferStockCommand{ProductID: p.ID, Quantity: n, From: domain.LocationStore, To: domain.LocationWarehouse})
				}
				if err != nil {
					require.ErrorIs(t, err, apperr.ErrInsufficientStock)
				}

				got := f.reload(t, p.ID)
				require.GreaterOrEqual(t, got.StoreQuantity, 0)
				require.GreaterOrEqual(t, got.WarehouseQuantity, 0)

				var stored domain.Product
				require.NoError(t, f.db.First(&stored, p.ID).Error)
				require.Equal(t, got.StoreQuantity, stored.StoreQuantity, "stored counter matches items")
				require.Equal(t, got.WarehouseQuantity, stored.WarehouseQuantity)
			}
		})
	}
}

func TestStockChangedPublishedAfterCommit(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 0, 4, false)
	f.events.events = nil

	_, err := f.mod.Transfer.Handle(context.Background(), command.TransferStockCommand{
		ProductID: p.ID, Quantity: 3, Reference: "manual",
	})
	require.NoError(t, err)
	require.Len(t, f.events.events, 1)
	e := f.events.events[0]
	assert.Equal(t, p.ID, e.ProductID)
	assert.Equal(t, domain.OperationTransfer, e.Operation)
	assert.Equal(t, 3, e.StoreQuantity)
	assert.Equal(t, 1, e.WarehouseQuantity)

	assert.Equal(t, float64(3), testutil.ToFloat64(f.metrics.StockMovements.WithLabelValues(domain.OperationTransfer)))
}

func TestLedgerSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	f := setup(t)
	p := f.product(t, 5, 1, 0, false)
	_, err := f.mod.Consume.Handle(context.Background(), command.ConsumeStockCommand{ProductID: p.ID, Quantity: 5})
	require.Error(t, err)

	var found bool
	for _, span := range recorder.Ended() {
		if span.Name() == "inventory.consume" {
			found = true
			assert.Equal(t, "Error", span.Status().Code.String())
		}
	}
	assert.True(t, found, "inventory.consume span recorded")
}

func TestMarkDamagedWritesOffItem(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 2, 1, true)
	serial := domain.SerialNumber(p.ID, 3)

	item, err := f.mod.MarkDamaged.Handle(context.Background(), command.MarkDamagedCommand{SerialNumber: serial})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemDamaged, item.Status)

	got := f.reload(t, p.ID)
	assert.Equal(t, 2, got.StoreQuantity)
	assert.Equal(t, 0, got.WarehouseQuantity)

	_, err = f.mod.MarkDamaged.Handle(context.Background(), command.MarkDamagedCommand{SerialNumber: serial})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.mod.MarkDamaged.Handle(context.Background(), command.MarkDamagedCommand{SerialNumber: "P0I0"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMarkDamagedFailureLogsProduct(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Logger
	logger.Logger = zerolog.New(&buf)
	t.Cleanup(func() { logger.Logger = prev })

	f := setup(t)
	p := f.product(t, 5, 1, 0, true)
	serial := domain.SerialNumber(p.ID, 1)

	_, err := f.mod.MarkDamaged.Handle(context.Background(), command.MarkDamagedCommand{SerialNumber: serial})
	require.NoError(t, err)
	buf.Reset()

	_, err = f.mod.MarkDamaged.Handle(context.Background(), command.MarkDamagedCommand{SerialNumber: serial})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, buf.String(), fmt.Sprintf(`"product_id":%d`, p.ID))
	assert.Contains(t, buf.String(), `"operation":"adjust"`)
}

func TestMarkOrdered(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 0, 0, false)
	supplier, err := f.mod.CreateSupplier.Handle(context.Background(), command.CreateSupplierCommand{Name: "Acme"})
	require.NoError(t, err)

	eta := time.Now().Add(72 * time.Hour)
	got, err := f.mod.MarkOrdered.Handle(context.Background(), command.MarkOrderedCommand{
		ProductID:       p.ID,
		SupplierID:      &supplier.ID,
		ExpectedArrival: &eta,
	})
	require.NoError(t, err)
	require.NotNil(t, got.LastOrderedAt)
	require.NotNil(t, got.SupplierID)
	assert.Equal(t, supplier.ID, *got.SupplierID)

	past := time.Now().Add(-time.Hour)
	_, err = f.mod.MarkOrdered.Handle(context.Background(), command.MarkOrderedCommand{ProductID: p.ID, ExpectedArrival: &past})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	missing := uint(999)
	_, err = f.mod.MarkOrdered.Handle(context.Background(), command.MarkOrderedCommand{ProductID: p.ID, SupplierID: &missing})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProductKeepsTrackingWhileStocked(t *testing.T) {
	f := setup(t)
	p := f.product(t, 5, 1, 0, false)

	cmd := command.UpdateProductCommand{
		ID:               p.ID,
		Name:             "Renamed",
		Category:         p.Category,
		PurchasePrice:    p.PurchasePrice,
		SellingPrice:     p.SellingPrice,
		ReorderThreshold: 3,
		TrackItems:       true,
	}
	_, err := f.mod.UpdateProduct.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	cmd.TrackItems = false
	got, err := f.mod.UpdateProduct.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 3, got.ReorderThreshold)
	assert.Equal(t, 1, got.StoreQuantity)
}

func TestLowStockAndBreakdown(t *testing.T) {
	f := setup(t)
	low := f.product(t, 5, 2, 10, false)
	f.product(t, 5, 8, 0, false)

	products, err := f.mod.ListLowStock.Handle(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, low.ID, products[0].ID)

	breakdown, err := f.mod.Breakdown.Handle(context.Background())
	require.NoError(t, err)
	require.Len(t, breakdown.Rows, 2)
	assert.Equal(t, 10, breakdown.TotalStore)
	assert.Equal(t, 10, breakdown.TotalWarehouse)
	assert.True(t, breakdown.Rows[0].LowStock)
	assert.False(t, breakdown.Rows[1].LowStock)
}
