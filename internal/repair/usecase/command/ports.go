package command

import (
	"context"

	custdomain "github.com/tair/shop-inventory/internal/customer/domain"
	invcommand "github.com/tair/shop-inventory/internal/inventory/usecase/command"
)

const tracerName = "repair"

// CustomerGetter reads one customer.
type CustomerGetter interface {
	Handle(ctx context.Context, id uint) (*custdomain.Customer, error)
}

// StockConsumer takes parts out of the store.
type StockConsumer interface {
	Handle(ctx context.Context, cmd invcommand.ConsumeStockCommand) (*invcommand.ConsumeStockResult, error)
}

// StockReceiver puts returned parts back on the shelf.
type StockReceiver interface {
	Handle(ctx context.Context, cmd invcommand.ReceiveStockCommand) (*invcommand.ReceiveStockResult, error)
}
