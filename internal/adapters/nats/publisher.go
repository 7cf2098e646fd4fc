package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// Subjects used on the broker.
const (
	SubjectRouteReconciled = "dashboard.route.reconciled"
	SubjectRouteAll        = "dashboard.route.>"
	SubjectBroadcast       = "dashboard.updates.broadcast"
	SubjectDashboardAll    = "dashboard.>"
	SubjectRawPaths        = "routing.path.>"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "DASHBOARD_ROUTES",
			Subjects:  []string{SubjectRouteAll},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "ROUTING_PATHS",
			Subjects:  []string{SubjectRawPaths},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishRoute publishes a reconciled route. Events without an id get one.
func (p *Publisher) PublishRoute(ctx context.Context, event *domain.RouteEvent) error {
	data, err := encodeRouteEvent(event, time.Now)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectRouteReconciled, data, nats.Context(ctx), nats.MsgId(event.ID))
	return err
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish(SubjectBroadcast, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

func encodeRouteEvent(event *domain.RouteEvent, now func() time.Time) ([]byte, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Time.IsZero() {
		event.Time = now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode route event: %w", err)
	}
	return data, nil
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("driverdash"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
