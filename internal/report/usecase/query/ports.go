package query

import (
	"context"

	custdomain "github.com/tair/shop-inventory/internal/customer/domain"
	custquery "github.com/tair/shop-inventory/internal/customer/usecase/query"
	invdomain "github.com/tair/shop-inventory/internal/inventory/domain"
	invquery "github.com/tair/shop-inventory/internal/inventory/usecase/query"
	salesquery "github.com/tair/shop-inventory/internal/sales/usecase/query"
)

// ProductLister reads the catalog with current stock.
type ProductLister interface {
	Handle(ctx context.Context, query invquery.ListProductsQuery) ([]invdomain.Product, error)
}

// SalesReporter reads sales in a period.
type SalesReporter interface {
	Handle(ctx context.Context, query salesquery.SalesReportQuery) (*salesquery.SalesReport, error)
}

// CustomerLister reads customers.
type CustomerLister interface {
	Handle(ctx context.Context, query custquery.ListCustomersQuery) ([]custdomain.Customer, error)
}

// BreakdownReader reads the store/warehouse breakdown.
type BreakdownReader interface {
	Handle(ctx context.Context) (*invquery.InventoryBreakdown, error)
}
