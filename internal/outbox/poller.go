package outbox

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wichananm65/chat-shop-backend/internal/metrics"
)

const batchSize = 100

// MessageWriter is the part of *kafka.Writer the poller needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Poller publishes pending outbox events in id order. An event that fails to
// publish stops the batch so later events for the same order never overtake
// it; it is retried on the next tick.
type Poller struct {
	repo     Repository
	writer   MessageWriter
	interval time.Duration
	metrics  *metrics.Registry
	now      func() time.Time
}

func NewPoller(repo Repository, w MessageWriter, interval time.Duration, m *metrics.Registry) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{repo: repo, writer: w, interval: interval, metrics: m, now: func() time.Time { return time.Now().UTC() }}
}

// NewKafkaWriter builds the writer used by cmd/relay.
func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.Flush(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Flush publishes one batch and returns how many events were relayed.
func (p *Poller) Flush(ctx context.Context) int {
	events, err := p.repo.FetchUnprocessed(ctx, batchSize)
	if err != nil {
		log.Printf("[outbox] failed to fetch events: %v", err)
		return 0
	}

	sent := 0
	for _, e := range events {
		msg := kafka.Message{
			Key:   []byte(e.AggregateID),
			Value: e.Payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(e.Type)},
			},
		}
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("[outbox] failed to publish event id=%d: %v", e.ID, err)
			p.metrics.PublishFailed()
			break
		}
		if err := p.repo.MarkProcessed(ctx, e.ID, p.now()); err != nil {
			log.Printf("[outbox] failed to mark event id=%d processed: %v", e.ID, err)
			break
		}
		sent++
	}
	p.metrics.Published(sent)
	return sent
}
