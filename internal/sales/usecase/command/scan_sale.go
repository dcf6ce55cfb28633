package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/shop-inventory/internal/apperr"
	invdomain "github.com/tair/shop-inventory/internal/inventory/domain"
	invquery "github.com/tair/shop-inventory/internal/inventory/usecase/query"
	"github.com/tair/shop-inventory/internal/sales/domain"
	"github.com/tair/shop-inventory/pkg/logger"
)

// ScanSaleHandler turns one scanner read into a sale line.
type ScanSaleHandler struct {
	scanner  domain.Scanner
	products ProductGetter
}

// NewScanSaleHandler creates a new scan sale handler
func NewScanSaleHandler(scanner domain.Scanner, products ProductGetter) *ScanSaleHandler {
	return &ScanSaleHandler{scanner: scanner, products: products}
}

// Handle reads the scanner and resolves the payload against the catalog. A
// cancelled scan returns domain.ErrScanCancelled.
func (h *ScanSaleHandler) Handle(ctx context.Context) (*SaleLine, *invdomain.Product, error) {
	if h.scanner == nil {
		return nil, nil, domain.ErrNoScanner
	}
	payload, err := h.scanner.Scan(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrScanCancelled) {
			logger.Debug(ctx).Msg("Scan cancelled")
		}
		return nil, nil, err
	}
	return h.Resolve(ctx, payload)
}

// Resolve parses payload and checks the product can be sold from the store.
// A serial is kept only for products that track items.
func (h *ScanSaleHandler) Resolve(ctx context.Context, payload string) (*SaleLine, *invdomain.Product, error) {
	scanned, err := domain.ParseScan(payload)
	if err != nil {
		return nil, nil, err
	}

	product, err := h.products.Handle(ctx, invquery.GetProductQuery{ID: scanned.ProductID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve scan: %w", err)
	}
	if product.StoreQuantity < scanned.Quantity {
		return nil, nil, &apperr.InsufficientStockError{
			ProductID: product.ID,
			Location:  invdomain.LocationStore,
			Requested: scanned.Quantity,
			Available: product.StoreQuantity,
		}
	}

	line := &SaleLine{ProductID: product.ID, Quantity: scanned.Quantity}
	if scanned.Serial != "" && product.TrackItems {
		line.Serials = []string{scanned.Serial}
	}
	return line, product, nil
}
