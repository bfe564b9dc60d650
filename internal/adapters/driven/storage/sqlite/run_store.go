package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun creates or updates a run.
func (s *runStore) SaveRun(ctx context.Context, run domain.IndexRun) error {
	var finishedAt sql.NullTime
	if run.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, identity, folder, status, added, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			added = excluded.added,
			error = excluded.error,
			finished_at = excluded.finished_at
	`, run.ID, run.Identity, run.Folder, string(run.Status), run.Added,
		nullString(run.Error), run.StartedAt.UTC(), finishedAt)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// SaveOutcome appends a document outcome to a run.
func (s *runStore) SaveOutcome(ctx context.Context, runID string, o domain.DocumentOutcome) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO run_outcomes (run_id, filename, status, title, chunks, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, o.Filename, string(o.Status), nullString(o.Title), o.Chunks, nullString(o.Error))
	if err != nil {
		return fmt.Errorf("saving outcome: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.IndexRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, identity, folder, status, added, error, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first. An empty identity lists all.
func (s *runStore) ListRuns(ctx context.Context, identity string, limit int) ([]domain.IndexRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, identity, folder, status, added, error, started_at, finished_at
		FROM runs
		WHERE ? = '' OR identity = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, identity, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.IndexRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ListOutcomes returns a run's outcomes in the order they were saved.
func (s *runStore) ListOutcomes(ctx context.Context, runID string) ([]domain.DocumentOutcome, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT filename, status, title, chunks, error
		FROM run_outcomes WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []domain.DocumentOutcome{}
	for rows.Next() {
		var (
			o            domain.DocumentOutcome
			status       string
			title, cause sql.NullString
		)
		if err := rows.Scan(&o.Filename, &status, &title, &o.Chunks, &cause); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Status = domain.DocumentStatus(status)
		o.Title = title.String
		o.Error = cause.String
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcomes: %w", err)
	}
	return outcomes, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.IndexRun, error) {
	var (
		run        domain.IndexRun
		status     string
		cause      sql.NullString
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)
	err := row.Scan(&run.ID, &run.Identity, &run.Folder, &status, &run.Added,
		&cause, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Status = domain.RunStatus(status)
	run.Error = cause.String
	if startedAt.Valid {
		run.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
