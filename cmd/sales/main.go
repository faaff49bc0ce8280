package main

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/sales"
	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/joho/godotenv"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// Standalone sales worker. Its locks are not shared with cmd/api, so a sold
// update can overwrite a product edit made at the same moment in the API
// process; set SALES_IN_API=true to run the consumer inside the API instead.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatalf("KAFKA_BROKERS is required for the sales worker")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record store (harus sama dengan yang dipakai API)
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &sales.Service{
		Dedup:   &redisx.Dedup{RDB: rdb, Service: cfg.ServiceName + "-sales"},
		Catalog: &catalog.Service{Store: st, Locks: store.NewLocker()},
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.SalesGroup, orders.TopicOrderCreated, cfg.SalesWorkers)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Printf("sales consumer started: group=%s topic=%s workers=%d", cfg.SalesGroup, orders.TopicOrderCreated, cfg.SalesWorkers)
		if err := cons.Start(ctx, svc.HandleOrderCreated); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
	<-done // worker selesai sebelum store & redis ditutup
}
