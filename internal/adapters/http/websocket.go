package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/driverdash/internal/adapters/nats"
	"github.com/samirrijal/driverdash/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`            // "subscribe" | "unsubscribe"
	Channel string `json:"channel"`           // "routes" | "broadcast" (default: routes)
	TripID  string `json:"trip_id,omitempty"` // routes only; "" = all trips
}

// routeEnvelope is the part of a route event used for trip filtering.
type routeEnvelope struct {
	TripID             string `json:"trip_id"`
	AutoSelectedTripID string `json:"auto_selected_trip_id"`
}

// wsSubject maps a channel to its broker subject.
func wsSubject(channel string) (string, bool) {
	switch channel {
	case "", "routes":
		return natsadapter.SubjectRouteAll, true
	case "broadcast":
		return natsadapter.SubjectBroadcast, true
	}
	return "", false
}

// tripFilter reports whether a route event concerns tripID.
func tripFilter(tripID string, data []byte) bool {
	if tripID == "" {
		return true
	}
	var env routeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	return env.TripID == tripID || env.AutoSelectedTripID == tripID
}

// WebSocketHandler returns a handler that relays reconciled routes from NATS
// to connected dashboards. Every client starts subscribed to all routes and
// may send {"action":"subscribe","channel":"routes","trip_id":"A"} to narrow
// or widen what it receives.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // key -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		subscribe := func(subject, tripID string) (*nats.Subscription, error) {
			return nc.Subscribe(subject, func(msg *nats.Msg) {
				if subject == natsadapter.SubjectRouteAll && !tripFilter(tripID, msg.Data) {
					return
				}
				_ = writeJSON(json.RawMessage(msg.Data))
			})
		}

		sub, err := subscribe(natsadapter.SubjectRouteAll, "")
		if err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[natsadapter.SubjectRouteAll] = sub

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, ok := wsSubject(m.Channel)
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}
			key := subject
			if m.TripID != "" {
				key = subject + "#" + m.TripID
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[key]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": key})
					continue
				}
				// A trip filter replaces the catch-all route feed.
				if m.TripID != "" {
					if all, exists := subs[subject]; exists {
						_ = all.Unsubscribe()
						delete(subs, subject)
					}
				}
				s, err := subscribe(subject, m.TripID)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[key] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": key})

			case "unsubscribe":
				if s, exists := subs[key]; exists {
					_ = s.Unsubscribe()
					delete(subs, key)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": key})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + key})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
