package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/shop-inventory/pkg/logger"
)

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event StockChangedEvent) error

// Bus dispatches events to in-process subscribers synchronously, in
// registration order.
type Bus struct {
	handlers      map[string][]EventHandler
	handlersMutex sync.RWMutex
	now           func() time.Time
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]EventHandler),
		now:      time.Now,
	}
}

// Subscribe registers an event handler for a specific event type
func (b *Bus) Subscribe(eventType string, handler EventHandler) {
	b.handlersMutex.Lock()
	defer b.handlersMutex.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	logger.Logger.Info().
		Str("event_type", eventType).
		Msg("Event handler registered")
}

// PublishStockChanged delivers a stock.changed event to every subscriber.
// All handlers run; their failures are joined into the returned error.
func (b *Bus) PublishStockChanged(ctx context.Context, event StockChangedEvent) error {
	if event.EventID == "" {
		event.EventID = "evt_" + uuid.NewString()
	}
	event.EventType = EventTypeStockChanged
	if event.Timestamp.IsZero() {
		event.Timestamp = b.now()
	}

	tracer := otel.Tracer("event-bus")
	ctx, span := tracer.Start(ctx, "events.publish.stock_changed",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("event.type", event.EventType),
			attribute.String("event.id", event.EventID),
			attribute.Int64("product.id", int64(event.ProductID)),
			attribute.String("stock.operation", event.Operation),
		),
	)
	defer span.End()

	b.handlersMutex.RLock()
	handlers := append([]EventHandler(nil), b.handlers[event.EventType]...)
	b.handlersMutex.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			logger.Error(ctx).
				Err(err).
				Str("event_id", event.EventID).
				Uint("product_id", event.ProductID).
				Msg("Event handler failed")
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		return fmt.Errorf("failed to handle %s event: %w", event.EventType, err)
	}

	logger.Debug(ctx).
		Str("event_id", event.EventID).
		Uint("product_id", event.ProductID).
		Int("handlers", len(handlers)).
		Msg("Stock changed event published")
	return nil
}
