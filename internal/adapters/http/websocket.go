package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/jobbmapper/jobbmapper-api/internal/adapters/nats"
	"github.com/jobbmapper/jobbmapper-api/internal/pkg/metrics"
)

// wsMessage is sent by the client. With no action, or action "query", the
// embedded viewport is answered with one outcome. "subscribe" and
// "unsubscribe" toggle the live relay of search events when NATS is
// configured.
type wsMessage struct {
	Action string `json:"action"`
	viewportRequest
}

// WebSocketHandler answers viewport queries as the user pans the map, one
// outcome per inbound message, in order.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Keep-alive ping
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

		var relay *nats.Subscription

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

			switch m.Action {
			case "", "query":
				out := deps.Search.BuildURL(context.Background(), m.toQuery())
				_ = writeJSON(out)

			case "subscribe":
				if deps.NATS == nil {
					_ = writeJSON(map[string]string{"error": "event relay not configured"})
					continue
				}
				if relay != nil {
					_ = writeJSON(map[string]string{"status": "already subscribed"})
					continue
				}
				s, err := deps.NATS.Subscribe(natsadapter.SearchSubjectPrefix+">", func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				relay = s
				_ = writeJSON(map[string]string{"status": "subscribed"})

			case "unsubscribe":
				if relay == nil {
					_ = writeJSON(map[string]string{"error": "not subscribed"})
					continue
				}
				_ = relay.Unsubscribe()
				relay = nil
				_ = writeJSON(map[string]string{"status": "unsubscribed"})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		if relay != nil {
			_ = relay.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
