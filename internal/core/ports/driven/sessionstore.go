package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SessionStore keeps upload sessions.
type SessionStore interface {
	// Save stores or replaces a session.
	Save(ctx context.Context, session domain.Session) error

	// Get returns a session by ID.
	// Returns domain.ErrSessionNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// List returns all sessions.
	List(ctx context.Context) ([]domain.Session, error)
}
