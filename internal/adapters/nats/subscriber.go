package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
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

// SubscribeRawPaths consumes raw paths pushed by the routing service. The
// driver id defaults to the last subject token. Malformed messages are
// terminated rather than redelivered.
func (s *Subscriber) SubscribeRawPaths(ctx context.Context, handler func(ctx context.Context, msg *domain.RawPathMessage) error) error {
	sub, err := s.js.Subscribe(SubjectRawPaths, func(msg *nats.Msg) {
		raw, err := decodeRawPath(msg.Subject, msg.Data)
		if err != nil {
			slog.Warn("dropping malformed raw path", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, raw); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("path-reconciler"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func decodeRawPath(subject string, data []byte) (*domain.RawPathMessage, error) {
	var msg domain.RawPathMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		// A bare JSON array is accepted as the path itself.
		var path []any
		if err2 := json.Unmarshal(data, &path); err2 != nil {
			return nil, err
		}
		msg.Path = path
	}
	if msg.DriverID == "" {
		msg.DriverID = lastToken(subject)
	}
	return &msg, nil
}

func lastToken(subject string) string {
	for i := len(subject) - 1; i >= 0; i-- {
		if subject[i] == '.' {
			return subject[i+1:]
		}
	}
	return subject
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
