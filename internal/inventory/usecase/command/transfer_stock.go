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

// TransferStockCommand represents the command to move stock between locations
type TransferStockCommand struct {
	ProductID uint
	Quantity  int
	From      string
	To        string
	Reference string
	Note      string
}

// TransferStockResult is the product after the move and the relabelled items.
type TransferStockResult struct {
	Product *domain.Product
	Items   []domain.ProductItem
}

// TransferStockHandler handles transfer stock command
type TransferStockHandler struct {
	store *Store
}

// NewTransferStockHandler creates a new transfer stock handler
func NewTransferStockHandler(store *Store) *TransferStockHandler {
	return &TransferStockHandler{store: store}
}

// Handle executes the transfer stock command. Items move oldest item number
// first. Nothing moves when the source holds fewer than Quantity.
func (h *TransferStockHandler) Handle(ctx context.Context, cmd TransferStockCommand) (*TransferStockResult, error) {
	if cmd.From == "" {
		cmd.From = domain.LocationWarehouse
	}
	if cmd.To == "" {
		cmd.To = domain.LocationStore
	}

	ctx, span := h.store.startSpan(ctx, "inventory.transfer",
		attribute.Int("product.id", int(cmd.ProductID)),
		attribute.Int("quantity", cmd.Quantity),
		attribute.String("location.from", cmd.From),
		attribute.String("location.to", cmd.To),
	)
	defer span.End()

	if cmd.Quantity <= 0 {
		return nil, tracing.Fail(span, apperr.Validation("quantity must be positive"))
	}
	if err := checkLocation("source", cmd.From); err != nil {
		return nil, tracing.Fail(span, err)
	}
	if err := checkLocation("destination", cmd.To); err != nil {
		return nil, tracing.Fail(span, err)
	}
	if cmd.From == cmd.To {
		return nil, tracing.Fail(span, apperr.Validation("source and destination are both %s", cmd.From))
	}

	var result *TransferStockResult
	err := h.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		res, err := h.transfer(ctx, cmd)
		result = res
		return err
	})
	if err != nil && !database.IsAfterCommit(err) {
		tracing.Fail(span, err)
		logFailure(ctx, domain.OperationTransfer, cmd.ProductID, err)
		return nil, fmt.Errorf("failed to transfer stock: %w", err)
	}

	logger.Info(ctx).
		Uint("product_id", cmd.ProductID).
		Int("quantity", cmd.Quantity).
		Str("from", cmd.From).
		Str("to", cmd.To).
		Msg("Stock transferred")
	return result, err
}

func (h *TransferStockHandler) transfer(ctx context.Context, cmd TransferStockCommand) (*TransferStockResult, error) {
	product, err := h.store.Products.FindByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if err := h.store.syncCounters(ctx, product); err != nil {
		return nil, err
	}

	if available := product.Quantity(cmd.From); cmd.Quantity > available {
		return nil, &apperr.InsufficientStockError{
			ProductID: product.ID,
			Location:  cmd.From,
			Requested: cmd.Quantity,
			Available: available,
		}
	}

	result := &TransferStockResult{Product: product}
	if product.TrackItems {
		items, err := h.store.Items.FindInStock(ctx, product.ID, cmd.From, cmd.Quantity, nil)
		if err != nil {
			return nil, err
		}
		if len(items) < cmd.Quantity {
			return nil, &apperr.InsufficientStockError{
				ProductID: product.ID,
				Location:  cmd.From,
				Requested: cmd.Quantity,
				Available: len(items),
			}
		}
		ids := make([]uint, len(items))
		for i := range items {
			ids[i] = items[i].ID
			items[i].Location = cmd.To
		}
		if err := h.store.Items.Move(ctx, ids, cmd.To, domain.ItemInStock); err != nil {
			return nil, err
		}
		if err := h.store.syncCounters(ctx, product); err != nil {
			return nil, err
		}
		result.Items = items
	} else {
		product.Adjust(cmd.From, -cmd.Quantity)
		product.Adjust(cmd.To, cmd.Quantity)
	}

	err = h.store.record(ctx, product, domain.StockMovement{
		Operation:    domain.OperationTransfer,
		FromLocation: cmd.From,
		ToLocation:   cmd.To,
		Quantity:     cmd.Quantity,
		Reference:    cmd.Reference,
		Note:         cmd.Note,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
