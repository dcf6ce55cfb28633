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

// ConsumeStockCommand represents the command to take stock out of a location
type ConsumeStockCommand struct {
	ProductID uint
	Quantity  int
	From      string
	// Serials names specific items to consume first. Only valid for
	// products that track items.
	Serials   []string
	Reference string
	Note      string
}

// ConsumeStockResult is the product after consumption and the items that
// were marked sold.
type ConsumeStockResult struct {
	Product *domain.Product
	Items   []domain.ProductItem
}

// ConsumeStockHandler handles consume stock command
type ConsumeStockHandler struct {
	store *Store
}

// NewConsumeStockHandler creates a new consume stock handler
func NewConsumeStockHandler(store *Store) *ConsumeStockHandler {
	return &ConsumeStockHandler{store: store}
}

// Handle executes the consume stock command. Availability is checked before
// anything is written.
func (h *ConsumeStockHandler) Handle(ctx context.Context, cmd ConsumeStockCommand) (*ConsumeStockResult, error) {
	if cmd.From == "" {
		cmd.From = domain.LocationStore
	}

	ctx, span := h.store.startSpan(ctx, "inventory.consume",
		attribute.Int("product.id", int(cmd.ProductID)),
		attribute.Int("quantity", cmd.Quantity),
		attribute.String("location.from", cmd.From),
	)
	defer span.End()

	if cmd.Quantity <= 0 {
		return nil, tracing.Fail(span, apperr.Validation("quantity must be positive"))
	}
	if err := checkLocation("source", cmd.From); err != nil {
		return nil, tracing.Fail(span, err)
	}
	if len(cmd.Serials) > cmd.Quantity {
		return nil, tracing.Fail(span, apperr.Validation("%d serials given for quantity %d", len(cmd.Serials), cmd.Quantity))
	}

	var result *ConsumeStockResult
	err := h.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		res, err := h.consume(ctx, cmd)
		result = res
		return err
	})
	if err != nil && !database.IsAfterCommit(err) {
		tracing.Fail(span, err)
		logFailure(ctx, domain.OperationConsume, cmd.ProductID, err)
		return nil, fmt.Errorf("failed to consume stock: %w", err)
	}

	logger.Info(ctx).
		Uint("product_id", cmd.ProductID).
		Int("quantity", cmd.Quantity).
		Str("from", cmd.From).
		Str("reference", cmd.Reference).
		Msg("Stock consumed")
	return result, err
}

func (h *ConsumeStockHandler) consume(ctx context.Context, cmd ConsumeStockCommand) (*ConsumeStockResult, error) {
	product, err := h.store.Products.FindByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if len(cmd.Serials) > 0 && !product.TrackItems {
		return nil, apperr.Validation("product %d does not track serial numbers", product.ID)
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

	result := &ConsumeStockResult{Product: product}
	if product.TrackItems {
		items, err := h.pickItems(ctx, product, cmd)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, len(items))
		for i := range items {
			ids[i] = items[i].ID
			items[i].Location = domain.LocationSold
			items[i].Status = domain.ItemSold
		}
		if err := h.store.Items.Move(ctx, ids, domain.LocationSold, domain.ItemSold); err != nil {
			return nil, err
		}
		if err := h.store.syncCounters(ctx, product); err != nil {
			return nil, err
		}
		result.Items = items
	} else {
		product.Adjust(cmd.From, -cmd.Quantity)
	}

	err = h.store.record(ctx, product, domain.StockMovement{
		Operation:    domain.OperationConsume,
		FromLocation: cmd.From,
		ToLocation:   domain.LocationSold,
		Quantity:     cmd.Quantity,
		Reference:    cmd.Reference,
		Note:         cmd.Note,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// pickItems returns the named serials followed by the oldest remaining items.
func (h *ConsumeStockHandler) pickItems(ctx context.Context, product *domain.Product, cmd ConsumeStockCommand) ([]domain.ProductItem, error) {
	picked := make([]domain.ProductItem, 0, cmd.Quantity)
	ids := make([]uint, 0, cmd.Quantity)
	seen := make(map[string]bool, len(cmd.Serials))

	for _, serial := range cmd.Serials {
		if seen[serial] {
			return nil, apperr.Validation("serial %s listed twice", serial)
		}
		seen[serial] = true

		item, err := h.store.Items.FindBySerial(ctx, serial)
		if err != nil {
			return nil, err
		}
		if item.ProductID != product.ID {
			return nil, apperr.Validation("serial %s belongs to product %d", serial, item.ProductID)
		}
		if item.Status != domain.ItemInStock || item.Location != cmd.From {
			return nil, apperr.Validation("item %s is not in stock in %s", serial, cmd.From)
		}
		picked = append(picked, *item)
		ids = append(ids, item.ID)
	}

	rest := cmd.Quantity - len(picked)
	if rest == 0 {
		return picked, nil
	}
	items, err := h.store.Items.FindInStock(ctx, product.ID, cmd.From, rest, ids)
	if err != nil {
		return nil, err
	}
	if len(items) < rest {
		return nil, &apperr.InsufficientStockError{
			ProductID: product.ID,
			Location:  cmd.From,
			Requested: cmd.Quantity,
			Available: len(picked) + len(items),
		}
	}
	return append(picked, items...), nil
}
