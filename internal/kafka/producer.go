package kafka

import (
	"context"
	kafkago "github.com/segmentio/kafka-go"
	"log"
	"sync"
	"time"
)

const writeTimeout = 5 * time.Second

// Producer buffers messages in memory and writes them from one goroutine so
// request handlers never wait on the broker.
type Producer struct {
	w     *kafkago.Writer
	inbox chan kafkago.Message
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
		inbox: make(chan kafkago.Message, buf),
		done:  make(chan struct{}),
	}
}

// Start runs the write loop until Close is called and the inbox is drained.
func (p *Producer) Start() {
	go p.loop()
}

func (p *Producer) loop() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		// error cukup di-log; order sudah tersimpan
		if err := p.w.WriteMessages(ctx, m); err != nil {
			log.Printf("kafka: write %s key=%s: %v", p.w.Topic, m.Key, err)
		}
		cancel()
	}
	if err := p.w.Close(); err != nil {
		log.Printf("kafka: close writer %s: %v", p.w.Topic, err)
	}
}

// Publish drops the message, with a log line, when the inbox is full or the
// producer is closed.
func (p *Producer) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		log.Printf("kafka: producer %s closed, dropping key=%s", p.w.Topic, key)
		return
	}
	m := kafkago.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}
	select {
	case p.inbox <- m:
	default:
		log.Printf("kafka: inbox %s full, dropping key=%s", p.w.Topic, key)
	}
}

// Close stops accepting messages; the loop flushes what is queued and exits.
// Safe to call more than once.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

// WaitClosed blocks until the loop has flushed and closed the writer.
func (p *Producer) WaitClosed() { <-p.done }
