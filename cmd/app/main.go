package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/wichananm65/chat-shop-backend/internal/config"
	"github.com/wichananm65/chat-shop-backend/internal/metrics"
	"github.com/wichananm65/chat-shop-backend/internal/outbox"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewRegistry()
	b, err := openBackend(ctx, cfg, m)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer b.Close()

	// Without Postgres there is no cmd/relay to drain the outbox, so relay
	// from this process when brokers are configured.
	if b.db == nil && len(cfg.KafkaBrokers) > 0 {
		w := outbox.NewKafkaWriter(cfg.OrderEventsTopic, cfg.KafkaBrokers...)
		defer w.Close()
		go outbox.NewPoller(b.events, w, cfg.OutboxInterval, m).Run(ctx)
	}

	app := newApp(cfg, b, m)
	go func() {
		log.Printf("starting server on %s", cfg.Addr)
		if err := app.Listen(cfg.Addr); err != nil {
			log.Printf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
