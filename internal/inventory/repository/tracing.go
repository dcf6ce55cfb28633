package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/shop-inventory/internal/inventory/domain"
)

const tracerName = "inventory-repository"

// TracedProductRepository wraps a ProductRepository with tracing
type TracedProductRepository struct {
	next domain.ProductRepository
}

// NewTracedProductRepository creates a new repository with tracing
func NewTracedProductRepository(next domain.ProductRepository) *TracedProductRepository {
	return &TracedProductRepository{next: next}
}

func (r *TracedProductRepository) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Create with tracing
func (r *TracedProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.start(ctx, "repository.CreateProduct",
		attribute.String("product.name", product.Name),
		attribute.String("product.category", product.Category),
	)
	defer span.End()

	if err := r.next.Create(ctx, product); err != nil {
		fail(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("product.id", int(product.ID)))
	return nil
}

// FindByID with tracing
func (r *TracedProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, span := r.start(ctx, "repository.FindProductByID",
		attribute.Int("product.id", int(id)),
	)
	defer span.End()

	product, err := r.next.FindByID(ctx, id)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("product.store_quantity", product.StoreQuantity),
		attribute.Int("product.warehouse_quantity", product.WarehouseQuantity),
	)
	return product, nil
}

// FindAll with tracing
func (r *TracedProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, span := r.start(ctx, "repository.FindAllProducts",
		attribute.String("query.category", filter.Category),
		attribute.Int("query.limit", filter.Limit),
		attribute.Int("query.offset", filter.Offset),
	)
	defer span.End()

	products, err := r.next.FindAll(ctx, filter)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, nil
}

// Update with tracing
func (r *TracedProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.start(ctx, "repository.UpdateProduct",
		attribute.Int("product.id", int(product.ID)),
		attribute.Int("product.store_quantity", product.StoreQuantity),
		attribute.Int("product.warehouse_quantity", product.WarehouseQuantity),
	)
	defer span.End()

	if err := r.next.Update(ctx, product); err != nil {
		fail(span, err)
		return err
	}
	return nil
}

// Count with tracing
func (r *TracedProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := r.start(ctx, "repository.CountProducts")
	defer span.End()

	n, err := r.next.Count(ctx)
	if err != nil {
		fail(span, err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("result.count", n))
	return n, nil
}
