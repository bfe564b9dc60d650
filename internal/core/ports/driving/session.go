package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SessionService manages upload sessions for the HTTP layer.
type SessionService interface {
	// Create allocates a new session with its own folder and identity.
	Create(ctx context.Context) (*domain.Session, error)

	// Get returns an existing session.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Destroy removes the session, its folder and its index.
	Destroy(ctx context.Context, id string) error

	// List returns all live sessions.
	List(ctx context.Context) ([]domain.Session, error)
}
