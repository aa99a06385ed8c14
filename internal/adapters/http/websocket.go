package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/jelajah/internal/adapters/nats"
	"github.com/samirrijal/jelajah/internal/core/usecases"
	"github.com/samirrijal/jelajah/internal/pkg/metrics"
)

// wsMessage is sent by clients to follow or stop following a feed.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "session" (default) | "dataset"
	Session string `json:"session"` // session ID, required for the session channel
}

// WebSocketHandler relays NATS events to connected clients. Clients send
// {"action":"subscribe","session":"<id>"} to receive that session's route
// updates, or {"action":"subscribe","channel":"dataset"} for import notices.
func WebSocketHandler(nc *nats.Conn, explorer *usecases.ExplorerService) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

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
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			var subject string
			switch m.Channel {
			case "", "session":
				s, err := sessionSubject(context.Background(), explorer, m.Session)
				if err != nil {
					_ = writeJSON(map[string]string{"error": err.Error()})
					continue
				}
				subject = s
			case "dataset":
				subject = natsadapter.SubjectDatasetImported
			default:
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				s, exists := subs[subject]
				if !exists {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
					continue
				}
				_ = s.Unsubscribe()
				delete(subs, subject)
				_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})

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

// sessionSubject resolves the NATS subject for an existing session. IDs that
// are not UUIDs or that name no live session are rejected.
func sessionSubject(ctx context.Context, explorer *usecases.ExplorerService, id string) (string, error) {
	if id == "" {
		return "", errors.New("session is required")
	}
	subject, err := natsadapter.SessionSubject(id)
	if err != nil {
		return "", err
	}
	if _, err := explorer.GetSession(ctx, id); err != nil {
		return "", err
	}
	return subject, nil
}
