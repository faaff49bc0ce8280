package kafka

import (
	"context"
	"errors"
	kafkago "github.com/segmentio/kafka-go"
	"log"
	"sync"
	"time"
)

// Handler returns nil only when the message was fully processed and its offset
// may be committed.
type Handler func(ctx context.Context, m kafkago.Message) error

// reader is the part of *kafkago.Reader the consumer needs.
type reader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Consumer struct {
	r       reader
	workers int

	// retry backoff for a failing handler, doubled up to maxBackoff
	backoff    time.Duration
	maxBackoff time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(r, workers)
}

func newConsumer(r reader, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, backoff: 200 * time.Millisecond, maxBackoff: 5 * time.Second}
}

// Start fetches until ctx is cancelled. Each partition is owned by exactly one
// worker, which handles its messages in offset order. A failing message is
// retried in place until it succeeds or ctx ends; nothing behind it on the
// same partition is handled or committed meanwhile, so a commit never skips
// an unprocessed offset.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make([]chan kafkago.Message, c.workers)
	var wg sync.WaitGroup
	for i := range jobs {
		jobs[i] = make(chan kafkago.Message, 64)
		wg.Add(1)
		go func(id int, in <-chan kafkago.Message) {
			defer wg.Done()
			for m := range in {
				if !c.handle(ctx, id, h, m) {
					return // ctx done; the rest is redelivered after restart
				}
				if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
					log.Printf("kafka: commit %s@%d/%d: %v", m.Topic, m.Partition, m.Offset, err)
				}
			}
		}(i, jobs[i])
	}
	defer wg.Wait()
	defer func() {
		for _, ch := range jobs {
			close(ch)
		}
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case jobs[m.Partition%c.workers] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// handle runs h until it succeeds. It reports false when ctx ended first.
func (c *Consumer) handle(ctx context.Context, id int, h Handler, m kafkago.Message) bool {
	wait := c.backoff
	for {
		err := h(ctx, m)
		if err == nil {
			return true
		}
		log.Printf("kafka: worker %d %s@%d/%d: %v (retry in %s)", id, m.Topic, m.Partition, m.Offset, err, wait)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		if wait *= 2; wait > c.maxBackoff {
			wait = c.maxBackoff
		}
	}
}
