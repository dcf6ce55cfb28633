package command

import (
	"context"

	invdomain "github.com/tair/shop-inventory/internal/inventory/domain"
	invcommand "github.com/tair/shop-inventory/internal/inventory/usecase/command"
	invquery "github.com/tair/shop-inventory/internal/inventory/usecase/query"
)

const tracerName = "todo"

// ProductLister reads products with their current stock.
type ProductLister interface {
	Handle(ctx context.Context, query invquery.ListProductsQuery) ([]invdomain.Product, error)
}

// ProductGetter reads one product.
type ProductGetter interface {
	Handle(ctx context.Context, query invquery.GetProductQuery) (*invdomain.Product, error)
}

// StockTransferer moves stock between locations.
type StockTransferer interface {
	Handle(ctx context.Context, cmd invcommand.TransferStockCommand) (*invcommand.TransferStockResult, error)
}

// StockReceiver books new stock.
type StockReceiver interface {
	Handle(ctx context.Context, cmd invcommand.ReceiveStockCommand) (*invcommand.ReceiveStockResult, error)
}
