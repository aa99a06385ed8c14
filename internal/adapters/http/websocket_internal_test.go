package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/jelajah/internal/adapters/memory"
	natsadapter "github.com/samirrijal/jelajah/internal/adapters/nats"
	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/usecases"
)

type emptySource struct{}

func (emptySource) Describe() string { return "empty" }
func (emptySource) LoadAll(context.Context) ([]domain.PointOfInterest, error) {
	return nil, nil
}

func newWSExplorer() *usecases.ExplorerService {
	return usecases.NewExplorerService(usecases.NewPOIStore(emptySource{}), nil,
		usecases.NewTravelTimeRanker(nil, domain.TravelModeDriving),
		memory.NewSessionStore(time.Hour), nil, nil, usecases.DefaultExplorerOptions())
}

func TestSessionSubject_ExistingSession(t *testing.T) {
	explorer := newWSExplorer()
	snap := explorer.StartSession(context.Background())

	subject, err := sessionSubject(context.Background(), explorer, snap.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "jelajah.session."+snap.ID {
		t.Errorf("unexpected subject %q", subject)
	}
}

func TestSessionSubject_RejectsWildcards(t *testing.T) {
	explorer := newWSExplorer()
	explorer.StartSession(context.Background())

	for _, id := range []string{">", "*", "jelajah.>"} {
		_, err := sessionSubject(context.Background(), explorer, id)
		if !errors.Is(err, natsadapter.ErrInvalidSessionID) {
			t.Errorf("session %q: expected ErrInvalidSessionID, got %v", id, err)
		}
	}
}

func TestSessionSubject_UnknownSession(t *testing.T) {
	_, err := sessionSubject(context.Background(), newWSExplorer(), "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionSubject_Missing(t *testing.T) {
	if _, err := sessionSubject(context.Background(), newWSExplorer(), ""); err == nil {
		t.Error("expected error for empty session")
	}
}
