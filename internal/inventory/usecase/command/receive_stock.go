package command

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/inventory/domain"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/tracing"
)

// ReceiveStockCommand represents the command to add stock to a product
type ReceiveStockCommand struct {
	ProductID         uint
	StoreQuantity     int
	WarehouseQuantity int
	Reference         string
	Note              string
}

// ReceiveStockResult is the product after the receipt and the items created
// for it when the product tracks items.
type ReceiveStockResult struct {
	Product *domain.Product
	Items   []domain.ProductItem
}

// ReceiveStockHandler handles receive stock command
type ReceiveStockHandler struct {
	store *Store
}

// NewReceiveStockHandler creates a new receive stock handler
func NewReceiveStockHandler(store *Store) *ReceiveStockHandler {
	return &ReceiveStockHandler{store: store}
}

// Handle executes the receive stock command. When err is an
// *database.AfterCommitError the receipt has been committed and the result
// is valid.
func (h *ReceiveStockHandler) Handle(ctx context.Context, cmd ReceiveStockCommand) (*ReceiveStockResult, error) {
	ctx, span := h.store.startSpan(ctx, "inventory.receive",
		attribute.Int("product.id", int(cmd.ProductID)),
		attribute.Int("quantity.store", cmd.StoreQuantity),
		attribute.Int("quantity.warehouse", cmd.WarehouseQuantity),
	)
	defer span.End()

	if cmd.StoreQuantity < 0 || cmd.WarehouseQuantity < 0 {
		return nil, tracing.Fail(span, apperr.Validation("received quantities cannot be negative"))
	}
	if cmd.StoreQuantity == 0 && cmd.WarehouseQuantity == 0 {
		return nil, tracing.Fail(span, apperr.Validation("nothing to receive"))
	}

	var result *ReceiveStockResult
	err := h.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		product, err := h.store.Products.FindByID(ctx, cmd.ProductID)
		if err != nil {
			return err
		}
		res, err := h.receive(ctx, product, cmd)
		result = res
		return err
	})
	if err != nil && !database.IsAfterCommit(err) {
		tracing.Fail(span, err)
		logFailure(ctx, domain.OperationReceive, cmd.ProductID, err)
		return nil, fmt.Errorf("failed to receive stock: %w", err)
	}

	logger.Info(ctx).
		Uint("product_id", cmd.ProductID).
		Int("store", cmd.StoreQuantity).
		Int("warehouse", cmd.WarehouseQuantity).
		Int("items", len(result.Items)).
		Msg("Stock received")
	return result, err
}

// receive applies the receipt to an already loaded product. It must run
// inside a transaction.
func (h *ReceiveStockHandler) receive(ctx context.Context, product *domain.Product, cmd ReceiveStockCommand) (*ReceiveStockResult, error) {
	result := &ReceiveStockResult{Product: product}

	for _, part := range []struct {
		location string
		quantity int
	}{
		{domain.LocationStore, cmd.StoreQuantity},
		{domain.LocationWarehouse, cmd.WarehouseQuantity},
	} {
		if part.quantity == 0 {
			continue
		}

		if product.TrackItems {
			items, err := h.allocateItems(ctx, product, part.location, part.quantity)
			if err != nil {
				return nil, err
			}
			result.Items = append(result.Items, items...)
			if err := h.store.syncCounters(ctx, product); err != nil {
				return nil, err
			}
		} else {
			product.Adjust(part.location, part.quantity)
		}

		err := h.store.record(ctx, product, domain.StockMovement{
			Operation:  domain.OperationReceive,
			ToLocation: part.location,
			Quantity:   part.quantity,
			Reference:  cmd.Reference,
			Note:       cmd.Note,
		})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// allocateItems creates n serialized items continuing the product's sequence.
func (h *ReceiveStockHandler) allocateItems(ctx context.Context, product *domain.Product, location string, n int) ([]domain.ProductItem, error) {
	last, err := h.store.Items.MaxItemNumber(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.ProductItem, 0, n)
	for i := 1; i <= n; i++ {
		number := last + i
		serial := domain.SerialNumber(product.ID, number)
		label, err := h.store.Labels.Generate(ctx, product.ID, product.Name, serial)
		if err != nil {
			return nil, fmt.Errorf("failed to generate label for %s: %w", serial, err)
		}
		items = append(items, domain.ProductItem{
			ProductID:    product.ID,
			ItemNumber:   number,
			SerialNumber: serial,
			Location:     location,
			Status:       domain.ItemInStock,
			LabelRef:     label,
		})
	}

	if err := h.store.Items.CreateBatch(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}
