package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and enables JetStream.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeSearchEvents delivers new search events to handler. Malformed
// messages and handler errors are logged and acknowledged so the ephemeral
// consumer never stalls.
func (s *Subscriber) SubscribeSearchEvents(ctx context.Context, handler func(ctx context.Context, event *domain.SearchEvent) error) error {
	sub, err := s.js.Subscribe(searchSubjects, func(msg *nats.Msg) {
		defer func() { _ = msg.Ack() }()

		var event domain.SearchEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("malformed search event", "subject", msg.Subject, "error", err)
			return
		}
		if err := handler(ctx, &event); err != nil {
			slog.Warn("search event handler failed", "subject", msg.Subject, "error", err)
		}
	},
		nats.DeliverNew(),
		nats.ManualAck(),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", searchSubjects, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
