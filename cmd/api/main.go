package main

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	"github.com/ariefcatur/go-storefront/internal/identity"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/sales"
	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Record store
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()
	locks := store.NewLocker()

	// Services
	ids := &identity.Service{
		Store:  st,
		Locks:  locks,
		Tokens: &identity.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL},
	}
	cat := &catalog.Service{Store: st, Locks: locks}
	carts := &cart.Service{Store: st, Locks: locks, Products: cat}
	ords := &orders.Service{Store: st, Locks: locks, Carts: carts, Products: cat, Users: ids}

	// Seed
	if err := ids.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if cfg.SeedCatalog {
		seeded, err := cat.Seed(ctx, catalog.DefaultProducts())
		if err != nil {
			log.Fatalf("seed catalog: %v", err)
		}
		if seeded {
			log.Printf("catalog seeded with %d products", len(catalog.DefaultProducts()))
		}
	}

	// Kafka producers (opsional)
	var producers []*kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
		pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 1024)
		pCreated.Start()
		pStatus.Start()
		producers = append(producers, pCreated, pStatus)
		ords.Events = &orders.Events{Created: pCreated, StatusChanged: pStatus, Service: cfg.ServiceName}
		log.Printf("order events -> %v", cfg.KafkaBrokers)
	} else {
		log.Printf("KAFKA_BROKERS empty, order events disabled")
	}

	router := httpx.NewRouter(httpx.Deps{Identity: ids, Catalog: cat, Cart: carts, Orders: ords})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// sales consumer satu proses dengan API: pakai locker yang sama
	// supaya update sold tidak menimpa edit produk dari admin
	if cfg.SalesInAPI && len(cfg.KafkaBrokers) > 0 {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc := &sales.Service{
			Dedup:   &redisx.Dedup{RDB: rdb, Service: cfg.ServiceName + "-sales"},
			Catalog: cat,
		}
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.SalesGroup, orders.TopicOrderCreated, cfg.SalesWorkers)
		g.Go(func() error {
			log.Printf("sales consumer (in-process) started: group=%s workers=%d", cfg.SalesGroup, cfg.SalesWorkers)
			return cons.Start(gctx, svc.HandleOrderCreated)
		})
	}

	// tunggu sinyal atau salah satu task gagal
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down...")
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx2)
	})

	if err := g.Wait(); err != nil {
		log.Printf("exit: %v", err)
	}
	// handler sudah berhenti; flush sisa event
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
}
