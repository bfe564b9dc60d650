package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/folio/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/folio/internal/core/domain"
)

func newSessionService(t *testing.T) (*SessionService, *flat.FileStore, string) {
	t.Helper()
	root := t.TempDir()
	indexes := flat.NewFileStore(filepath.Join(root, "indexes"))
	dir := filepath.Join(root, "sessions")
	return NewSessionService(memory.NewSessionStore(), indexes, dir), indexes, dir
}

func TestSessionService_CreateAndGet(t *testing.T) {
	svc, _, dir := newSessionService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.ID, s.Identity)
	assert.Equal(t, filepath.Join(dir, s.ID), s.Folder)
	assert.DirExists(t, s.Folder)
	assert.NoError(t, ValidateIdentity(s.Identity))

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Folder, got.Folder)

	other, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSessionService_GetRejectsForeignIDs(t *testing.T) {
	svc, _, _ := newSessionService(t)

	for _, id := range []string{"", "../../etc", "default", "550e8400-e29b-41d4-a716-446655440000"} {
		_, err := svc.Get(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, id)
	}
}

func TestSessionService_DestroyRemovesEverything(t *testing.T) {
	svc, indexes, _ := newSessionService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Folder, "a.pdf"), []byte("%PDF"), 0o600))

	idx := indexes.New(3)
	_, err = idx.Add([][]float32{{1, 0, 0}})
	require.NoError(t, err)
	require.NoError(t, indexes.Save(s.Identity, idx, []domain.Record{
		{ID: 0, Chunk: domain.Chunk{Document: "a.pdf", Title: "T", Content: "T - body", Page: 1}},
	}))

	require.NoError(t, svc.Destroy(ctx, s.ID))

	assert.NoDirExists(t, s.Folder)
	ok, err := indexes.Exists(s.Identity)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Get(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.ErrorIs(t, svc.Destroy(ctx, s.ID), domain.ErrSessionNotFound)
}
