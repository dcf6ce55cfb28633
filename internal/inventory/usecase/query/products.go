package query

import (
	"context"
	"fmt"

	"github.com/tair/shop-inventory/internal/inventory/domain"
)

// deriveCounts replaces the counters of tracked products with counts taken
// from their items.
func deriveCounts(ctx context.Context, items domain.ItemRepository, products []domain.Product) error {
	var ids []uint
	for _, p := range products {
		if p.TrackItems {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	counts, err := items.CountsByProduct(ctx, ids)
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].TrackItems {
			products[i].ApplyCounts(counts[products[i].ID])
		}
	}
	return nil
}

// GetProductQuery represents the query to get a product by ID
type GetProductQuery struct {
	ID uint
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	products domain.ProductRepository
	items    domain.ItemRepository
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(products domain.ProductRepository, items domain.ItemRepository) *GetProductHandler {
	return &GetProductHandler{products: products, items: items}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(ctx context.Context, query GetProductQuery) (*domain.Product, error) {
	product, err := h.products.FindByID(ctx, query.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	one := []domain.Product{*product}
	if err := deriveCounts(ctx, h.items, one); err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &one[0], nil
}

// ListProductsQuery represents the query to list products
type ListProductsQuery struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	products domain.ProductRepository
	items    domain.ItemRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(products domain.ProductRepository, items domain.ItemRepository) *ListProductsHandler {
	return &ListProductsHandler{products: products, items: items}
}

// Handle executes the list products query. A zero Limit lists everything.
func (h *ListProductsHandler) Handle(ctx context.Context, query ListProductsQuery) ([]domain.Product, error) {
	if query.Limit < 0 {
		query.Limit = 0
	}

	products, err := h.products.FindAll(ctx, domain.ProductFilter{
		Category: query.Category,
		Search:   query.Search,
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if err := deriveCounts(ctx, h.items, products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListLowStockHandler lists products whose store shelf is at or below the
// reorder threshold.
type ListLowStockHandler struct {
	list *ListProductsHandler
}

// NewListLowStockHandler creates a new list low stock handler
func NewListLowStockHandler(list *ListProductsHandler) *ListLowStockHandler {
	return &ListLowStockHandler{list: list}
}

// Handle executes the low stock query
func (h *ListLowStockHandler) Handle(ctx context.Context) ([]domain.Product, error) {
	products, err := h.list.Handle(ctx, ListProductsQuery{})
	if err != nil {
		return nil, err
	}

	low := make([]domain.Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}

// BreakdownRow is one product line of the inventory breakdown
type BreakdownRow struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Store     int    `json:"store_quantity"`
	Warehouse int    `json:"warehouse_quantity"`
	Total     int    `json:"total_quantity"`
	Threshold int    `json:"reorder_threshold"`
	LowStock  bool   `json:"low_stock"`
}

// InventoryBreakdown lists store and warehouse stock per product
type InventoryBreakdown struct {
	Rows           []BreakdownRow `json:"rows"`
	TotalStore     int            `json:"total_store"`
	TotalWarehouse int            `json:"total_warehouse"`
}

// InventoryBreakdownHandler handles inventory breakdown query
type InventoryBreakdownHandler struct {
	list *ListProductsHandler
}

// NewInventoryBreakdownHandler creates a new inventory breakdown handler
func NewInventoryBreakdownHandler(list *ListProductsHandler) *InventoryBreakdownHandler {
	return &InventoryBreakdownHandler{list: list}
}

// Handle executes the inventory breakdown query
func (h *InventoryBreakdownHandler) Handle(ctx context.Context) (*InventoryBreakdown, error) {
	products, err := h.list.Handle(ctx, ListProductsQuery{})
	if err != nil {
		return nil, err
	}

	out := &InventoryBreakdown{Rows: make([]BreakdownRow, 0, len(products))}
	for _, p := range products {
		out.Rows = append(out.Rows, BreakdownRow{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Store:     p.StoreQuantity,
			Warehouse: p.WarehouseQuantity,
			Total:     p.TotalQuantity(),
			Threshold: p.ReorderThreshold,
			LowStock:  p.IsLowStock(),
		})
		out.TotalStore += p.StoreQuantity
		out.TotalWarehouse += p.WarehouseQuantity
	}
	return out, nil
}
