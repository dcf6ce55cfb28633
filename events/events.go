package events

import "time"

// StockChangedEvent is published after a ledger mutation commits
type StockChangedEvent struct {
	EventID           string    `json:"event_id"`
	EventType         string    `json:"event_type"`
	ProductID         uint      `json:"product_id"`
	Operation         string    `json:"operation"`
	Quantity          int       `json:"quantity"`
	StoreQuantity     int       `json:"store_quantity"`
	WarehouseQuantity int       `json:"warehouse_quantity"`
	Reference         string    `json:"reference"`
	Timestamp         time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeStockChanged = "stock.changed"
)
