//go:build cgo

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), dbPath, 4)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesSchemaAndParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sub")
	dbPath := filepath.Join(dir, "docs.db")
	s, err := Open(context.Background(), dbPath, 8)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, 8, s.EmbeddingDim())
}

func TestOpen_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "docs.db")
	s1, err := Open(context.Background(), dbPath, 4)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(context.Background(), dbPath, 4)
	require.NoError(t, err)
	defer s2.Close()
}
