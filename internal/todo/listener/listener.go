package listener

import (
	"context"

	"github.com/tair/shop-inventory/events"
	"github.com/tair/shop-inventory/internal/todo/domain"
	"github.com/tair/shop-inventory/pkg/logger"
)

// Reconciler runs a task generation pass.
type Reconciler interface {
	Handle(ctx context.Context) ([]domain.Task, error)
}

// StockListener reconciles tasks whenever committed stock changes.
type StockListener struct {
	reconciler Reconciler
}

func NewStockListener(reconciler Reconciler) *StockListener {
	return &StockListener{reconciler: reconciler}
}

// Register subscribes the listener to stock.changed on bus.
func (l *StockListener) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeStockChanged, l.HandleStockChanged)
}

func (l *StockListener) HandleStockChanged(ctx context.Context, event events.StockChangedEvent) error {
	created, err := l.reconciler.Handle(ctx)
	if err != nil {
		return err
	}
	if len(created) > 0 {
		logger.Info(ctx).
			Str("event_id", event.EventID).
			Uint("product_id", event.ProductID).
			Int("created", len(created)).
			Msg("Tasks generated after stock change")
	}
	return nil
}
