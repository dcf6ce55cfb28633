package command

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/inventory/domain"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/tracing"
)

// MarkOrderedCommand records that a product has been reordered
type MarkOrderedCommand struct {
	ProductID       uint
	SupplierID      *uint
	OrderedAt       *time.Time
	ExpectedArrival *time.Time
}

// MarkOrderedHandler handles mark ordered command
type MarkOrderedHandler struct {
	store     *Store
	suppliers domain.SupplierRepository
	now       func() time.Time
}

// NewMarkOrderedHandler creates a new mark ordered handler
func NewMarkOrderedHandler(store *Store, suppliers domain.SupplierRepository) *MarkOrderedHandler {
	return &MarkOrderedHandler{store: store, suppliers: suppliers, now: time.Now}
}

// Handle executes the mark ordered command
func (h *MarkOrderedHandler) Handle(ctx context.Context, cmd MarkOrderedCommand) (*domain.Product, error) {
	ctx, span := h.store.startSpan(ctx, "inventory.mark_ordered",
		attribute.Int("product.id", int(cmd.ProductID)),
	)
	defer span.End()

	orderedAt := h.now()
	if cmd.OrderedAt != nil {
		orderedAt = *cmd.OrderedAt
	}
	if cmd.ExpectedArrival != nil && cmd.ExpectedArrival.Before(orderedAt) {
		return nil, tracing.Fail(span, apperr.Validation("expected arrival precedes order date"))
	}

	var product *domain.Product
	err := h.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := h.store.Products.FindByID(ctx, cmd.ProductID)
		if err != nil {
			return err
		}
		if cmd.SupplierID != nil {
			if _, err := h.suppliers.FindByID(ctx, *cmd.SupplierID); err != nil {
				return err
			}
			p.SupplierID = cmd.SupplierID
		}
		p.LastOrderedAt = &orderedAt
		p.ExpectedArrival = cmd.ExpectedArrival
		product = p
		return h.store.Products.Update(ctx, p)
	})
	if err != nil {
		tracing.Fail(span, err)
		logFailure(ctx, "mark_ordered", cmd.ProductID, err)
		return nil, fmt.Errorf("failed to mark product ordered: %w", err)
	}

	logger.Info(ctx).
		Uint("product_id", product.ID).
		Time("ordered_at", orderedAt).
		Msg("Product marked as ordered")
	return product, nil
}

// CreateSupplierCommand represents the command to register a supplier
type CreateSupplierCommand struct {
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
}

// CreateSupplierHandler handles create supplier command
type CreateSupplierHandler struct {
	repo domain.SupplierRepository
}

// NewCreateSupplierHandler creates a new create supplier handler
func NewCreateSupplierHandler(repo domain.SupplierRepository) *CreateSupplierHandler {
	return &CreateSupplierHandler{repo: repo}
}

// Handle executes the create supplier command
func (h *CreateSupplierHandler) Handle(ctx context.Context, cmd CreateSupplierCommand) (*domain.Supplier, error) {
	if cmd.Name == "" {
		return nil, apperr.Validation("supplier name is required")
	}

	supplier := &domain.Supplier{
		Name:          cmd.Name,
		ContactPerson: cmd.ContactPerson,
		Phone:         cmd.Phone,
		Email:         cmd.Email,
		Address:       cmd.Address,
	}
	if err := h.repo.Create(ctx, supplier); err != nil {
		logger.Error(ctx).Err(err).Str("name", cmd.Name).Msg("Failed to create supplier")
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return supplier, nil
}
