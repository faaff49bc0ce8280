package sales

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/identity"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/store"
	kafkago "github.com/segmentio/kafka-go"
	"testing"
)

type memDedup struct{ seen map[string]bool }

func (d *memDedup) FirstSeen(_ context.Context, id string) (bool, error) {
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func (d *memDedup) Forget(_ context.Context, id string) error {
	delete(d.seen, id)
	return nil
}

type failingRecorder struct{ calls int }

func (f *failingRecorder) RecordSale(context.Context, map[string]int) error {
	f.calls++
	return errors.New("store down")
}

func message(t *testing.T, eventID, typ string, p orders.OrderCreatedPayload) kafkago.Message {
	t.Helper()
	body, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	v, err := json.Marshal(orders.Envelope{EventID: eventID, EventType: typ, EventVersion: 1, Payload: body})
	if err != nil {
		t.Fatal(err)
	}
	return kafkago.Message{
		Value:   v,
		Headers: []kafkago.Header{{Key: "x-event-type", Value: []byte(typ)}},
	}
}

func TestHandleOrderCreated(t *testing.T) {
	ctx := context.Background()
	admin := identity.Principal{UserID: "admin", Role: identity.RoleAdmin}
	cat := &catalog.Service{Store: store.NewMemory(), Locks: store.NewLocker()}
	kopi, _ := cat.Create(ctx, admin, catalog.ProductInput{Name: "Kopi", Price: 10000, Stock: 5})
	teh, _ := cat.Create(ctx, admin, catalog.ProductInput{Name: "Teh", Price: 4000, Stock: 5})

	s := &Service{Dedup: &memDedup{seen: map[string]bool{}}, Catalog: cat}
	m := message(t, "ev-1", orders.EventOrderCreated, orders.OrderCreatedPayload{
		OrderID: "o-1",
		Items: []orders.ItemPrice{
			{ProductID: kopi.ID, Qty: 2, Price: 10000},
			{ProductID: teh.ID, Qty: 1, Price: 4000},
		},
	})

	if err := s.HandleOrderCreated(ctx, m); err != nil {
		t.Fatal(err)
	}
	// redelivery of the same event is ignored
	if err := s.HandleOrderCreated(ctx, m); err != nil {
		t.Fatal(err)
	}

	gk, _ := cat.Get(ctx, kopi.ID)
	gt, _ := cat.Get(ctx, teh.ID)
	if gk.Sold != 2 || gt.Sold != 1 {
		t.Fatalf("sold kopi=%d teh=%d", gk.Sold, gt.Sold)
	}
	if gk.Stock != 5 {
		t.Fatalf("stock changed: %d", gk.Stock)
	}
}

func TestHandleIgnoresOtherEvents(t *testing.T) {
	rec := &failingRecorder{}
	s := &Service{Dedup: &memDedup{seen: map[string]bool{}}, Catalog: rec}

	m := message(t, "ev-2", orders.EventOrderStatusChanged, orders.OrderCreatedPayload{})
	if err := s.HandleOrderCreated(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	if err := s.HandleOrderCreated(context.Background(), kafkago.Message{Value: []byte("not json")}); err != nil {
		t.Fatalf("malformed message should be skipped: %v", err)
	}
	if rec.calls != 0 {
		t.Fatalf("recorder called %d times", rec.calls)
	}
}

func TestHandleFailureAllowsRetry(t *testing.T) {
	rec := &failingRecorder{}
	dedup := &memDedup{seen: map[string]bool{}}
	s := &Service{Dedup: dedup, Catalog: rec}
	m := message(t, "ev-3", orders.EventOrderCreated, orders.OrderCreatedPayload{
		Items: []orders.ItemPrice{{ProductID: "p", Qty: 1}},
	})

	if err := s.HandleOrderCreated(context.Background(), m); err == nil {
		t.Fatal("want error")
	}
	if dedup.seen["ev-3"] {
		t.Fatal("failed event still marked as seen")
	}
	_ = s.HandleOrderCreated(context.Background(), m)
	if rec.calls != 2 {
		t.Fatalf("calls = %d, want 2", rec.calls)
	}
}
