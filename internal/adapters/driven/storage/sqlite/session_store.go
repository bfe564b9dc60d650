package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// Save stores or replaces a session.
func (s *sessionStore) Save(ctx context.Context, session domain.Session) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, identity, folder, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			identity = excluded.identity,
			folder = excluded.folder
	`, session.ID, session.Identity, session.Folder, session.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (s *sessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, identity, folder, created_at FROM sessions WHERE id = ?
	`, id)

	var session domain.Session
	var createdAt sql.NullTime
	if err := row.Scan(&session.ID, &session.Identity, &session.Folder, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	if createdAt.Valid {
		session.CreatedAt = createdAt.Time
	}
	return &session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *sessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// List returns all sessions, oldest first.
func (s *sessionStore) List(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, identity, folder, created_at FROM sessions ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var session domain.Session
		var createdAt sql.NullTime
		if err := rows.Scan(&session.ID, &session.Identity, &session.Folder, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if createdAt.Valid {
			session.CreatedAt = createdAt.Time
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}
