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

// MarkDamagedCommand writes off one serialized item
type MarkDamagedCommand struct {
	SerialNumber string
	Note         string
}

// MarkDamagedHandler handles mark damaged command
type MarkDamagedHandler struct {
	store *Store
}

// NewMarkDamagedHandler creates a new mark damaged handler
func NewMarkDamagedHandler(store *Store) *MarkDamagedHandler {
	return &MarkDamagedHandler{store: store}
}

// Handle executes the mark damaged command
func (h *MarkDamagedHandler) Handle(ctx context.Context, cmd MarkDamagedCommand) (*domain.ProductItem, error) {
	ctx, span := h.store.startSpan(ctx, "inventory.mark_damaged",
		attribute.String("item.serial", cmd.SerialNumber),
	)
	defer span.End()

	if cmd.SerialNumber == "" {
		return nil, tracing.Fail(span, apperr.Validation("serial number is required"))
	}

	var (
		item      *domain.ProductItem
		productID uint
	)
	err := h.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		found, err := h.store.Items.FindBySerial(ctx, cmd.SerialNumber)
		if err != nil {
			return err
		}
		productID = found.ProductID
		if found.Status != domain.ItemInStock {
			return apperr.Validation("item %s is already %s", found.SerialNumber, found.Status)
		}

		product, err := h.store.Products.FindByID(ctx, found.ProductID)
		if err != nil {
			return err
		}

		from := found.Location
		if err := h.store.Items.Move(ctx, []uint{found.ID}, domain.LocationDamaged, domain.ItemDamaged); err != nil {
			return err
		}
		found.Location = domain.LocationDamaged
		found.Status = domain.ItemDamaged
		item = found

		if err := h.store.syncCounters(ctx, product); err != nil {
			return err
		}
		return h.store.record(ctx, product, domain.StockMovement{
			Operation:    domain.OperationAdjust,
			FromLocation: from,
			ToLocation:   domain.LocationDamaged,
			Quantity:     1,
			Reference:    found.SerialNumber,
			Note:         cmd.Note,
		})
	})
	if err != nil && !database.IsAfterCommit(err) {
		tracing.Fail(span, err)
		logFailure(ctx, domain.OperationAdjust, productID, err)
		return nil, fmt.Errorf("failed to mark item damaged: %w", err)
	}

	logger.Info(ctx).
		Str("serial", item.SerialNumber).
		Uint("product_id", item.ProductID).
		Msg("Item marked damaged")
	return item, err
}
