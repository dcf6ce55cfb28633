package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/inventory/domain"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/tracing"
)

// CreateProductCommand represents product intake. Initial quantities are
// booked through a stock receipt.
type CreateProductCommand struct {
	Name              string
	Description       string
	Category          string
	PurchasePrice     decimal.Decimal
	SellingPrice      decimal.Decimal
	ReorderThreshold  *int
	StoreQuantity     int
	WarehouseQuantity int
	TrackItems        bool
	SupplierID        *uint
}

// CreateProductHandler handles create product command
type CreateProductHandler struct {
	store     *Store
	suppliers domain.SupplierRepository
	receiver  *ReceiveStockHandler
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(store *Store, suppliers domain.SupplierRepository, receiver *ReceiveStockHandler) *CreateProductHandler {
	return &CreateProductHandler{store: store, suppliers: suppliers, receiver: receiver}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*ReceiveStockResult, error) {
	ctx, span := h.store.startSpan(ctx, "inventory.create_product",
		attribute.String("product.name", cmd.Name),
		attribute.Bool("product.track_items", cmd.TrackItems),
	)
	defer span.End()

	threshold := domain.DefaultReorderThreshold
	if cmd.ReorderThreshold != nil {
		threshold = *cmd.ReorderThreshold
	}

	product := &domain.Product{
		Name:             cmd.Name,
		Description:      cmd.Description,
		Category:         cmd.Category,
		PurchasePrice:    cmd.PurchasePrice,
		SellingPrice:     cmd.SellingPrice,
		ReorderThreshold: threshold,
		TrackItems:       cmd.TrackItems,
		SupplierID:       cmd.SupplierID,
	}
	if err := product.Validate(); err != nil {
		return nil, tracing.Fail(span, err)
	}
	if cmd.StoreQuantity < 0 || cmd.WarehouseQuantity < 0 {
		return nil, tracing.Fail(span, apperr.Validation("initial quantities cannot be negative"))
	}

	result := &ReceiveStockResult{Product: product}
	err := h.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if cmd.SupplierID != nil {
			if _, err := h.suppliers.FindByID(ctx, *cmd.SupplierID); err != nil {
				return err
			}
		}
		if err := h.store.Products.Create(ctx, product); err != nil {
			return err
		}
		if cmd.StoreQuantity == 0 && cmd.WarehouseQuantity == 0 {
			return nil
		}

		res, err := h.receiver.receive(ctx, product, ReceiveStockCommand{
			ProductID:         product.ID,
			StoreQuantity:     cmd.StoreQuantity,
			WarehouseQuantity: cmd.WarehouseQuantity,
			Note:              "initial stock",
		})
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil && !database.IsAfterCommit(err) {
		tracing.Fail(span, err)
		logFailure(ctx, "create_product", 0, err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	span.SetAttributes(attribute.Int("product.id", int(product.ID)))
	logger.Info(ctx).
		Uint("product_id", product.ID).
		Str("name", product.Name).
		Int("store", product.StoreQuantity).
		Int("warehouse", product.WarehouseQuantity).
		Msg("Product created")
	return result, err
}
