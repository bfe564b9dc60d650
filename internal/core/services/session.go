package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService manages upload sessions. Each session owns a folder
// under the sessions directory and an index named after its ID.
type SessionService struct {
	store   driven.SessionStore
	indexes driven.IndexStore
	dir     string
}

// NewSessionService creates a session service rooted at dir.
func NewSessionService(store driven.SessionStore, indexes driven.IndexStore, dir string) *SessionService {
	return &SessionService{
		store:   store,
		indexes: indexes,
		dir:     dir,
	}
}

// Create allocates a session and its upload folder.
func (s *SessionService) Create(ctx context.Context) (*domain.Session, error) {
	id := uuid.New().String()
	session := domain.Session{
		ID:        id,
		Identity:  id,
		Folder:    filepath.Join(s.dir, id),
		CreatedAt: time.Now(),
	}

	if err := os.MkdirAll(session.Folder, 0o700); err != nil {
		return nil, fmt.Errorf("create session folder: %w", err)
	}
	if err := s.store.Save(ctx, session); err != nil {
		_ = os.RemoveAll(session.Folder)
		return nil, fmt.Errorf("save session: %w", err)
	}

	logger.Debug("session %s created at %s", id, session.Folder)
	return &session, nil
}

// Get returns a session by ID.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return s.store.Get(ctx, id)
}

// Destroy removes the session's folder and index, then the session.
func (s *SessionService) Destroy(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var errs []error
	if err := os.RemoveAll(session.Folder); err != nil {
		errs = append(errs, fmt.Errorf("remove folder: %w", err))
	}
	if err := s.indexes.Delete(session.Identity); err != nil {
		errs = append(errs, fmt.Errorf("delete index: %w", err))
	}
	if err := s.store.Delete(ctx, id); err != nil {
		errs = append(errs, fmt.Errorf("delete session: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Debug("session %s destroyed", id)
	return nil
}

// List returns all sessions.
func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	return s.store.List(ctx)
}
