package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeAnalysisCompleted consumes completed analyses durably. A handler
// error redelivers the message, up to three attempts.
func (s *Subscriber) SubscribeAnalysisCompleted(ctx context.Context, handler func(ctx context.Context, a *domain.Analysis) error) error {
	sub, err := s.js.Subscribe(SubjectCompletedAll, func(msg *nats.Msg) {
		var a domain.Analysis
		if err := json.Unmarshal(msg.Data, &a); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &a); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("analysis-consumer"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeProgress receives progress ticks for every session. Progress is
// not persisted, so nothing published before subscribing is seen.
func (s *Subscriber) SubscribeProgress(ctx context.Context, handler func(ctx context.Context, p *domain.SearchProgress) error) error {
	sub, err := s.conn.Subscribe(SubjectProgressAll, func(msg *nats.Msg) {
		var p domain.SearchProgress
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		_ = handler(ctx, &p)
	})
	if err != nil {
		return err
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
