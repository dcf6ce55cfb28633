package query

import (
	"context"
	"fmt"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/inventory/domain"
)

// ProductSummary counts a product's serialized items by where they are
type ProductSummary struct {
	Product *domain.Product   `json:"product"`
	Counts  domain.ItemCounts `json:"counts"`
	Total   int               `json:"total_items"`
}

// ProductSummaryHandler handles product summary query
type ProductSummaryHandler struct {
	get   *GetProductHandler
	items domain.ItemRepository
}

// NewProductSummaryHandler creates a new product summary handler
func NewProductSummaryHandler(get *GetProductHandler, items domain.ItemRepository) *ProductSummaryHandler {
	return &ProductSummaryHandler{get: get, items: items}
}

// Handle executes the product summary query
func (h *ProductSummaryHandler) Handle(ctx context.Context, productID uint) (*ProductSummary, error) {
	product, err := h.get.Handle(ctx, GetProductQuery{ID: productID})
	if err != nil {
		return nil, err
	}

	counts, err := h.items.Counts(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize product: %w", err)
	}
	return &ProductSummary{Product: product, Counts: counts, Total: counts.Total()}, nil
}

// FindItemBySerialHandler looks up one serialized item
type FindItemBySerialHandler struct {
	items domain.ItemRepository
}

// NewFindItemBySerialHandler creates a new find item handler
func NewFindItemBySerialHandler(items domain.ItemRepository) *FindItemBySerialHandler {
	return &FindItemBySerialHandler{items: items}
}

// Handle executes the find item query
func (h *FindItemBySerialHandler) Handle(ctx context.Context, serial string) (*domain.ProductItem, error) {
	if serial == "" {
		return nil, apperr.Validation("serial number is required")
	}
	item, err := h.items.FindBySerial(ctx, serial)
	if err != nil {
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return item, nil
}

// ListItemsHandler lists every item of a product in item number order
type ListItemsHandler struct {
	items domain.ItemRepository
}

// NewListItemsHandler creates a new list items handler
func NewListItemsHandler(items domain.ItemRepository) *ListItemsHandler {
	return &ListItemsHandler{items: items}
}

// Handle executes the list items query
func (h *ListItemsHandler) Handle(ctx context.Context, productID uint) ([]domain.ProductItem, error) {
	items, err := h.items.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// ListMovementsQuery represents the query to read a product's movement log
type ListMovementsQuery struct {
	ProductID uint
	Limit     int
}

// ListMovementsHandler handles list movements query
type ListMovementsHandler struct {
	movements domain.MovementRepository
}

// NewListMovementsHandler creates a new list movements handler
func NewListMovementsHandler(movements domain.MovementRepository) *ListMovementsHandler {
	return &ListMovementsHandler{movements: movements}
}

// Handle executes the list movements query, newest first
func (h *ListMovementsHandler) Handle(ctx context.Context, query ListMovementsQuery) ([]domain.StockMovement, error) {
	if query.Limit == 0 {
		query.Limit = 50
	}
	movements, err := h.movements.FindByProduct(ctx, query.ProductID, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}

// ListSuppliersHandler lists suppliers by name
type ListSuppliersHandler struct {
	suppliers domain.SupplierRepository
}

// NewListSuppliersHandler creates a new list suppliers handler
func NewListSuppliersHandler(suppliers domain.SupplierRepository) *ListSuppliersHandler {
	return &ListSuppliersHandler{suppliers: suppliers}
}

// Handle executes the list suppliers query
func (h *ListSuppliersHandler) Handle(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := h.suppliers.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}
