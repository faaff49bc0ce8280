package kafka

import (
	"encoding/json"
	kafkago "github.com/segmentio/kafka-go"
	"testing"
	"time"
)

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
		Total   int64  `json:"total"`
	}
	var env struct {
		EventType string          `json:"event_type"`
		Payload   json.RawMessage `json:"payload"`
	}
	raw := []byte(`{"event_type":"OrderCreated","payload":{"order_id":"o-1","total":24000}}`)
	if err := UnmarshalEnvelope(raw, &env); err != nil {
		t.Fatal(err)
	}
	p, err := UnwrapPayload[payload](env.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if env.EventType != "OrderCreated" || p.OrderID != "o-1" || p.Total != 24000 {
		t.Fatalf("env=%+v payload=%+v", env, p)
	}

	if err := UnmarshalEnvelope([]byte("{"), &env); err == nil {
		t.Fatal("want error for truncated envelope")
	}
	if _, err := UnwrapPayload[payload](json.RawMessage(`"x"`)); err == nil {
		t.Fatal("want error for wrong payload shape")
	}
}

func TestHeader(t *testing.T) {
	m := kafkago.Message{Headers: []kafkago.Header{
		{Key: "x-event-type", Value: []byte("OrderCreated")},
		{Key: "x-event-version", Value: []byte("1")},
	}}
	if got := Header(m, "x-event-type"); got != "OrderCreated" {
		t.Fatalf("x-event-type = %q", got)
	}
	if got := Header(m, "missing"); got != "" {
		t.Fatalf("missing = %q", got)
	}
}

func TestProducerDropsWhenFull(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "t", 1)
	p.Publish([]byte("a"), []byte("1"))
	p.Publish([]byte("b"), []byte("2"))
	if n := len(p.inbox); n != 1 {
		t.Fatalf("queued = %d, want 1", n)
	}
}

func TestProducerCloseIsIdempotent(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "t", 4)
	p.Start()
	p.Close()
	p.Close()
	p.Publish([]byte("late"), []byte("x"))

	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer loop did not exit")
	}
}
