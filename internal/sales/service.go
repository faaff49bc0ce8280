// Package sales keeps the informational sold tally of each product in step
// with order.created events.
package sales

import (
	"context"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
	"log"
)

// Deduper is satisfied by redisx.Dedup.
type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type SaleRecorder interface {
	RecordSale(ctx context.Context, sold map[string]int) error
}

type Service struct {
	Dedup   Deduper
	Catalog SaleRecorder
}

// HandleOrderCreated is installed as the consumer handler. Malformed messages
// are logged and committed; they would fail the same way on every retry.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	if t := kafkax.Header(m, "x-event-type"); t != "" && t != orders.EventOrderCreated {
		return nil
	}

	var env orders.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		log.Printf("sales: skip offset %d: %v", m.Offset, err)
		return nil
	}
	if env.EventType != orders.EventOrderCreated {
		return nil
	}
	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		log.Printf("sales: skip event %s: %v", env.EventID, err)
		return nil
	}

	// dedup via Redis (pakai event_id)
	first, err := s.Dedup.FirstSeen(ctx, env.EventID)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	sold := make(map[string]int, len(p.Items))
	for _, it := range p.Items {
		sold[it.ProductID] += it.Qty
	}
	if err := s.Catalog.RecordSale(ctx, sold); err != nil {
		// let the redelivery through the dedup gate
		if ferr := s.Dedup.Forget(ctx, env.EventID); ferr != nil {
			log.Printf("sales: forget %s: %v", env.EventID, ferr)
		}
		return err
	}
	log.Printf("sales: order %s recorded (%d products) trace=%s", p.OrderNumber, len(sold), env.TraceID)
	return nil
}
