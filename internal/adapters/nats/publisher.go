package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

const (
	sessionSubjectPrefix = "jelajah.session."
	// SubjectDatasetImported announces a completed POI import.
	SubjectDatasetImported = "jelajah.dataset.imported"
)

// ErrInvalidSessionID is returned for session IDs that are not UUIDs.
var ErrInvalidSessionID = errors.New("invalid session id")

// SessionSubject is the subject carrying route updates for one session.
// Only UUIDs are accepted so a client cannot smuggle the wildcard tokens
// "*" or ">" into the subject.
func SessionSubject(sessionID string) (string, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return sessionSubjectPrefix + id.String(), nil
}

// DatasetImported is the payload published after an import.
type DatasetImported struct {
	Count      int       `json:"count"`
	ImportedAt time.Time `json:"imported_at"`
}

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
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "ROUTE_SESSIONS",
			Subjects:  []string{sessionSubjectPrefix + ">"},
			Retention: nats.LimitsPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.MemoryStorage,
		},
		{
			Name:      "POI_DATASET",
			Subjects:  []string{"jelajah.dataset.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishRouteUpdate sends the update on the session's subject.
func (p *Publisher) PublishRouteUpdate(ctx context.Context, update *domain.RouteUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	subject, err := SessionSubject(update.SessionID)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data, nats.Context(ctx))
	return err
}

// PublishDatasetImported announces a new POI dataset.
func (p *Publisher) PublishDatasetImported(ctx context.Context, count int) error {
	data, err := json.Marshal(DatasetImported{Count: count, ImportedAt: time.Now()})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectDatasetImported, data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("jelajah"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
