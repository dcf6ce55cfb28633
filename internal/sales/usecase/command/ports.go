package command

import (
	"context"

	custdomain "github.com/tair/shop-inventory/internal/customer/domain"
	custcommand "github.com/tair/shop-inventory/internal/customer/usecase/command"
	invdomain "github.com/tair/shop-inventory/internal/inventory/domain"
	invcommand "github.com/tair/shop-inventory/internal/inventory/usecase/command"
	invquery "github.com/tair/shop-inventory/internal/inventory/usecase/query"
)

const tracerName = "sales"

// StockConsumer takes sold units out of the store.
type StockConsumer interface {
	Handle(ctx context.Context, cmd invcommand.ConsumeStockCommand) (*invcommand.ConsumeStockResult, error)
}

// ProductGetter reads one product.
type ProductGetter interface {
	Handle(ctx context.Context, query invquery.GetProductQuery) (*invdomain.Product, error)
}

// PointsAdder credits loyalty points to a customer.
type PointsAdder interface {
	Handle(ctx context.Context, cmd custcommand.AddLoyaltyPointsCommand) (*custdomain.Customer, error)
}
