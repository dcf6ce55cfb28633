package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/shop-inventory/internal/apperr"
	custdomain "github.com/tair/shop-inventory/internal/customer/domain"
	custcommand "github.com/tair/shop-inventory/internal/customer/usecase/command"
	invdomain "github.com/tair/shop-inventory/internal/inventory/domain"
	invcommand "github.com/tair/shop-inventory/internal/inventory/usecase/command"
	"github.com/tair/shop-inventory/internal/sales/domain"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/metrics"
	"github.com/tair/shop-inventory/pkg/tracing"
)

// SaleLine is one product on a sale. Serials pick specific units of a
// tracked product; remaining units are taken oldest first.
type SaleLine struct {
	ProductID uint
	Quantity  int
	Serials   []string
}

// RecordSaleCommand represents the command to record a sale
type RecordSaleCommand struct {
	CustomerID *uint
	Lines      []SaleLine
	// SaleDate defaults to now.
	SaleDate time.Time
}

// RecordSaleHandler records a sale. Stock for every line is taken from the
// store, and the sale, its items, the ledger movements and the customer's
// loyalty points commit together or not at all.
type RecordSaleHandler struct {
	tx        *database.Transactor
	sales     domain.SaleRepository
	consume   StockConsumer
	customers PointsAdder
	taxRate   decimal.Decimal
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewRecordSaleHandler creates a new record sale handler
func NewRecordSaleHandler(
	tx *database.Transactor,
	sales domain.SaleRepository,
	consume StockConsumer,
	customers PointsAdder,
	taxRate decimal.Decimal,
	m *metrics.Metrics,
) *RecordSaleHandler {
	return &RecordSaleHandler{
		tx:        tx,
		sales:     sales,
		consume:   consume,
		customers: customers,
		taxRate:   taxRate,
		metrics:   m,
		now:       time.Now,
	}
}

// Handle executes the record sale command
func (h *RecordSaleHandler) Handle(ctx context.Context, cmd RecordSaleCommand) (*domain.Sale, error) {
	ctx, span := tracing.Start(ctx, tracerName, "sales.record", attribute.Int("sale.lines", len(cmd.Lines)))
	defer span.End()

	if len(cmd.Lines) == 0 {
		return nil, tracing.Fail(span, apperr.Validation("a sale needs at least one line"))
	}
	for i, line := range cmd.Lines {
		if line.Quantity <= 0 {
			return nil, tracing.Fail(span, apperr.Validation("line %d: quantity must be positive", i+1))
		}
	}
	if h.taxRate.IsNegative() {
		return nil, tracing.Fail(span, apperr.Validation("tax rate cannot be negative"))
	}

	saleDate := cmd.SaleDate
	if saleDate.IsZero() {
		saleDate = h.now()
	}
	sale := &domain.Sale{
		ReceiptNumber: domain.NewReceiptNumber(),
		CustomerID:    cmd.CustomerID,
		SaleDate:      saleDate.UTC(),
	}
	span.SetAttributes(attribute.String("sale.receipt", sale.ReceiptNumber))

	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		total := decimal.Zero
		for _, line := range cmd.Lines {
			item, err := h.sell(ctx, sale.ReceiptNumber, line)
			if err != nil {
				return err
			}
			total = total.Add(item.Subtotal)
			sale.Items = append(sale.Items, *item)
		}
		sale.TotalAmount = total
		sale.TaxAmount = domain.Tax(total, h.taxRate)

		if err := h.sales.Create(ctx, sale); err != nil {
			return err
		}

		if sale.CustomerID != nil {
			_, err := h.customers.Handle(ctx, custcommand.AddLoyaltyPointsCommand{
				CustomerID: *sale.CustomerID,
				Points:     custdomain.PointsFor(total),
			})
			if err != nil {
				return err
			}
		}

		return database.AfterCommit(ctx, func(context.Context) error {
			if h.metrics != nil {
				h.metrics.SalesRecorded.Inc()
				h.metrics.SalesAmount.Add(sale.GrandTotal().InexactFloat64())
			}
			return nil
		})
	})
	if err != nil && !database.IsAfterCommit(err) {
		tracing.Fail(span, err)
		logger.Warn(ctx).Err(err).Str("receipt", sale.ReceiptNumber).Msg("Sale rejected")
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	logger.Info(ctx).
		Uint("sale_id", sale.ID).
		Str("receipt", sale.ReceiptNumber).
		Str("total", sale.TotalAmount.StringFixed(2)).
		Str("tax", sale.TaxAmount.StringFixed(2)).
		Msg("Sale recorded")
	return sale, err
}

func (h *RecordSaleHandler) sell(ctx context.Context, receipt string, line SaleLine) (*domain.SaleItem, error) {
	res, err := h.consume.Handle(ctx, invcommand.ConsumeStockCommand{
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		From:      invdomain.LocationStore,
		Serials:   line.Serials,
		Reference: receipt,
		Note:      "sale",
	})
	if err != nil {
		return nil, err
	}

	product := res.Product
	serials := make([]string, len(res.Items))
	for i, item := range res.Items {
		serials[i] = item.SerialNumber
	}
	return &domain.SaleItem{
		ProductID:    product.ID,
		ProductName:  product.Name,
		SerialNumber: strings.Join(serials, ","),
		Quantity:     line.Quantity,
		UnitPrice:    product.SellingPrice,
		UnitCost:     product.PurchasePrice,
		Subtotal:     product.SellingPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
	}, nil
}
