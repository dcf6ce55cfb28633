package command

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/shop-inventory/events"
	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/inventory/domain"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/metrics"
	"github.com/tair/shop-inventory/pkg/tracing"
)

const tracerName = "inventory"

// StockEventPublisher receives stock.changed events after commit.
type StockEventPublisher interface {
	PublishStockChanged(ctx context.Context, event events.StockChangedEvent) error
}

// Store bundles what every ledger handler needs.
type Store struct {
	Tx        *database.Transactor
	Products  domain.ProductRepository
	Items     domain.ItemRepository
	Movements domain.MovementRepository
	Labels    domain.LabelGenerator
	Events    StockEventPublisher
	Metrics   *metrics.Metrics
}

// NewStore creates the ledger store bundle
func NewStore(
	tx *database.Transactor,
	products domain.ProductRepository,
	items domain.ItemRepository,
	movements domain.MovementRepository,
	labels domain.LabelGenerator,
	publisher StockEventPublisher,
	m *metrics.Metrics,
) *Store {
	if labels == nil {
		labels = domain.NopLabelGenerator{}
	}
	return &Store{
		Tx:        tx,
		Products:  products,
		Items:     items,
		Movements: movements,
		Labels:    labels,
		Events:    publisher,
		Metrics:   m,
	}
}

func (s *Store) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracing.Start(ctx, tracerName, name, attrs...)
}

// syncCounters re-derives a tracked product's counters from its items.
func (s *Store) syncCounters(ctx context.Context, product *domain.Product) error {
	if !product.TrackItems {
		return nil
	}
	counts, err := s.Items.Counts(ctx, product.ID)
	if err != nil {
		return err
	}
	product.ApplyCounts(counts)
	return nil
}

// record persists the product, appends the movement row and schedules the
// stock.changed event for after commit.
func (s *Store) record(ctx context.Context, product *domain.Product, mv domain.StockMovement) error {
	if product.StoreQuantity < 0 || product.WarehouseQuantity < 0 {
		return fmt.Errorf("product %d would go negative: %w", product.ID, apperr.ErrInsufficientStock)
	}
	if err := s.Products.Update(ctx, product); err != nil {
		return err
	}

	mv.ProductID = product.ID
	mv.StoreAfter = product.StoreQuantity
	mv.WarehouseAfter = product.WarehouseQuantity
	if err := s.Movements.Create(ctx, &mv); err != nil {
		return err
	}

	event := events.StockChangedEvent{
		ProductID:         product.ID,
		Operation:         mv.Operation,
		Quantity:          mv.Quantity,
		StoreQuantity:     product.StoreQuantity,
		WarehouseQuantity: product.WarehouseQuantity,
		Reference:         mv.Reference,
	}
	return database.AfterCommit(ctx, func(ctx context.Context) error {
		if s.Metrics != nil {
			s.Metrics.StockMovements.WithLabelValues(event.Operation).Add(float64(event.Quantity))
		}
		if s.Events == nil {
			return nil
		}
		return s.Events.PublishStockChanged(ctx, event)
	})
}

// logFailure logs store failures at error and rule violations at warn.
func logFailure(ctx context.Context, operation string, productID uint, err error) {
	event := logger.Warn(ctx)
	if errors.Is(err, apperr.ErrPersistence) {
		event = logger.Error(ctx)
	}
	event.Err(err).
		Str("operation", operation).
		Uint("product_id", productID).
		Msg("Stock operation failed")
}

func checkLocation(name, location string) error {
	if !domain.IsStockLocation(location) {
		return apperr.Validation("%s location %q must be %s or %s",
			name, location, domain.LocationStore, domain.LocationWarehouse)
	}
	return nil
}
