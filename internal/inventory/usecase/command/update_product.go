package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/inventory/domain"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/tracing"
)

// UpdateProductCommand replaces a product's catalog fields. Stock counters
// only change through the ledger commands.
type UpdateProductCommand struct {
	ID               uint
	Name             string
	Description      string
	Category         string
	PurchasePrice    decimal.Decimal
	SellingPrice     decimal.Decimal
	ReorderThreshold int
	TrackItems       bool
	SupplierID       *uint
}

// UpdateProductHandler handles update product command
type UpdateProductHandler struct {
	store     *Store
	suppliers domain.SupplierRepository
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(store *Store, suppliers domain.SupplierRepository) *UpdateProductHandler {
	return &UpdateProductHandler{store: store, suppliers: suppliers}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	ctx, span := h.store.startSpan(ctx, "inventory.update_product",
		attribute.Int("product.id", int(cmd.ID)),
	)
	defer span.End()

	var product *domain.Product
	err := h.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := h.store.Products.FindByID(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if p.TrackItems != cmd.TrackItems {
			if err := h.store.syncCounters(ctx, p); err != nil {
				return err
			}
			if p.TotalQuantity() > 0 {
				return apperr.Validation("cannot change item tracking while product %d holds stock", p.ID)
			}
		}
		if cmd.SupplierID != nil {
			if _, err := h.suppliers.FindByID(ctx, *cmd.SupplierID); err != nil {
				return err
			}
		}

		p.Name = cmd.Name
		p.Description = cmd.Description
		p.Category = cmd.Category
		p.PurchasePrice = cmd.PurchasePrice
		p.SellingPrice = cmd.SellingPrice
		p.ReorderThreshold = cmd.ReorderThreshold
		p.TrackItems = cmd.TrackItems
		p.SupplierID = cmd.SupplierID
		if err := p.Validate(); err != nil {
			return err
		}

		product = p
		return h.store.Products.Update(ctx, p)
	})
	if err != nil {
		tracing.Fail(span, err)
		logFailure(ctx, "update_product", cmd.ID, err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	logger.Info(ctx).
		Uint("product_id", product.ID).
		Msg("Product updated")
	return product, nil
}
