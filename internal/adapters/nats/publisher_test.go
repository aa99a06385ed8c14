package natsadapter_test

import (
	"errors"
	"testing"

	natsadapter "github.com/samirrijal/jelajah/internal/adapters/nats"
)

func TestSessionSubject_AcceptsUUID(t *testing.T) {
	subject, err := natsadapter.SessionSubject("1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "jelajah.session.1b4e28ba-2fa1-11d2-883f-0016d3cca427" {
		t.Errorf("unexpected subject %q", subject)
	}
}

func TestSessionSubject_RejectsWildcards(t *testing.T) {
	for _, id := range []string{">", "*", "", "abc.>", "1b4e28ba-2fa1-11d2-883f-0016d3cca427.*"} {
		if subject, err := natsadapter.SessionSubject(id); !errors.Is(err, natsadapter.ErrInvalidSessionID) {
			t.Errorf("SessionSubject(%q) = %q, %v; want ErrInvalidSessionID", id, subject, err)
		}
	}
}
