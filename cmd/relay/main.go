// Command relay publishes committed order events from the Postgres outbox to
// Kafka.
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/wichananm65/chat-shop-backend/internal/config"
	"github.com/wichananm65/chat-shop-backend/internal/infrastructure/database/postgres"
	"github.com/wichananm65/chat-shop-backend/internal/metrics"
	"github.com/wichananm65/chat-shop-backend/internal/outbox"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" || len(cfg.KafkaBrokers) == 0 {
		log.Fatalf("relay needs DATABASE_URL and KAFKA_BROKERS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	m := metrics.NewRegistry()
	srv := &http.Server{Addr: cfg.RelayMetricsAddr, Handler: m.Handler()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
	defer srv.Close()

	w := outbox.NewKafkaWriter(cfg.OrderEventsTopic, cfg.KafkaBrokers...)
	defer w.Close()

	log.Printf("relaying outbox to %v topic %s every %s", cfg.KafkaBrokers, cfg.OrderEventsTopic, cfg.OutboxInterval)
	outbox.NewPoller(outbox.NewPostgresRepository(db), w, cfg.OutboxInterval, m).Run(ctx)
	log.Printf("relay stopped")
}
