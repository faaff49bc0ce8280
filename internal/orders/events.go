package orders

import (
	"context"
	"encoding/json"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"strconv"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"

	eventVersion = 1
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemPrice struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	Price     int64  `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      string      `json:"user_id"`
	Items       []ItemPrice `json:"items"`
	Total       int64       `json:"total"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}

// Publisher is satisfied by kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Events fans order lifecycle events out to one producer per topic. A nil
// *Events, or a nil producer, drops the event.
type Events struct {
	Created       Publisher
	StatusChanged Publisher
	Service       string
	Now           func() time.Time
}

func (e *Events) envelope(ctx context.Context, typ, orderID string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if e.Now != nil {
		now = e.Now()
	}
	return json.Marshal(Envelope{
		EventID:       uuid.NewString(),
		EventType:     typ,
		EventVersion:  eventVersion,
		OccurredAt:    now,
		Producer:      e.Service,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: orderID,
		Payload:       body,
	})
}

func headers(typ string) []kafkago.Header {
	return []kafkago.Header{
		{Key: "x-event-type", Value: []byte(typ)},
		{Key: "x-event-version", Value: []byte(strconv.Itoa(eventVersion))},
	}
}

func (e *Events) orderCreated(ctx context.Context, o Order) error {
	if e == nil || e.Created == nil {
		return nil
	}
	items := make([]ItemPrice, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemPrice{ProductID: it.ProductID, Qty: it.Quantity, Price: it.Price})
	}
	b, err := e.envelope(ctx, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Items:       items,
		Total:       o.Total,
	})
	if err != nil {
		return err
	}
	e.Created.Publish(PartitionKey(o.ID), b, headers(EventOrderCreated)...)
	return nil
}

func (e *Events) statusChanged(ctx context.Context, orderID string, from, to Status) error {
	if e == nil || e.StatusChanged == nil {
		return nil
	}
	b, err := e.envelope(ctx, EventOrderStatusChanged, orderID, OrderStatusChangedPayload{
		OrderID: orderID, From: from, To: to,
	})
	if err != nil {
		return err
	}
	e.StatusChanged.Publish(PartitionKey(orderID), b, headers(EventOrderStatusChanged)...)
	return nil
}
