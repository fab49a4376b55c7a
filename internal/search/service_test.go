//go:build cgo

package search

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-docs/mcp-docs/internal/embedcache"
	"github.com/mcp-docs/mcp-docs/internal/store"
)

type constEmbedder struct {
	dims int
	vec  []float32
}

func (e constEmbedder) Dimensions() int { return e.dims }

func (e constEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vec
	}
	return out, nil
}

func newTestService(t *testing.T, embedder constEmbedder) (*Service, *store.Store) {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), 3)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return &Service{
		Store:    s,
		Cache:    embedcache.New(10, time.Minute),
		Embedder: embedder,
	}, s
}

func seedDocument(t *testing.T, s *store.Store, sourceID int64, url, title, content string, vec []float32) {
	t.Helper()
	ctx := context.Background()
	docID, err := s.UpsertDocument(ctx, store.Document{
		SourceID: sourceID, URL: url, Title: title, Content: content, ContentHash: url,
	})
	require.NoError(t, err)
	_, err = s.InsertChunk(ctx, store.Chunk{DocumentID: docID, ChunkIndex: 0, Content: content, Embedding: vec})
	require.NoError(t, err)
}

func TestSearch_ReturnsDocumentsForKnownSource(t *testing.T) {
	svc, s := newTestService(t, constEmbedder{dims: 3, vec: []float32{1, 0, 0}})
	ctx := context.Background()

	sourceID, err := s.UpsertSource(ctx, "docs", store.SourceTypeLinkManifest, "https://example.com", "", "", nil)
	require.NoError(t, err)
	seedDocument(t, s, sourceID, "https://example.com/a", "A", "hello world, this is about widgets", []float32{1, 0, 0})
	seedDocument(t, s, sourceID, "https://example.com/b", "B", "completely unrelated gadget content", []float32{0, 1, 0})

	out, err := svc.Search(ctx, "docs", "widgets", 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, out.Documents)
	assert.Equal(t, "https://example.com/a", out.Documents[0].URL)
}

func TestSearch_UnknownSourceIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, constEmbedder{dims: 3, vec: []float32{1, 0, 0}})
	_, err := svc.Search(context.Background(), "missing", "query", 5, 0)
	assert.Error(t, err)
}

func TestSearch_CachesQueryEmbeddingAcrossCalls(t *testing.T) {
	svc, s := newTestService(t, constEmbedder{dims: 3, vec: []float32{1, 0, 0}})
	ctx := context.Background()

	sourceID, err := s.UpsertSource(ctx, "docs", store.SourceTypeLinkManifest, "https://example.com", "", "", nil)
	require.NoError(t, err)
	seedDocument(t, s, sourceID, "https://example.com/a", "A", "widget content here", []float32{1, 0, 0})

	_, err = svc.Search(ctx, "docs", "widgets", 5, 0)
	require.NoError(t, err)
	assert.True(t, svc.Cache.Has("widgets"))

	_, err = svc.Search(ctx, "docs", "widgets", 5, 0)
	require.NoError(t, err)
	stats := svc.Cache.StatsSnapshot()
	assert.Equal(t, 1, stats.Hits)
}

func TestSearch_RespectsMaxTotalCharsBudget(t *testing.T) {
	svc, s := newTestService(t, constEmbedder{dims: 3, vec: []float32{1, 0, 0}})
	ctx := context.Background()

	sourceID, err := s.UpsertSource(ctx, "docs", store.SourceTypeLinkManifest, "https://example.com", "", "", nil)
	require.NoError(t, err)

	big := make([]byte, 500)
	for i := range big {
		big[i] = 'a'
	}
	seedDocument(t, s, sourceID, "https://example.com/a", "A", string(big)+" widget", []float32{1, 0, 0})

	out, err := svc.Search(ctx, "docs", "widget", 5, 100)
	require.NoError(t, err)
	assert.True(t, out.Truncated)
	assert.LessOrEqual(t, out.TotalChars, 100)
}

func TestSearchGroup_UnknownGroupIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, constEmbedder{dims: 3, vec: []float32{1, 0, 0}})
	_, err := svc.SearchGroup(context.Background(), "missing", "query", nil, 5, 0)
	assert.Error(t, err)
}

func TestSearchGroup_FiltersToNamedSources(t *testing.T) {
	svc, s := newTestService(t, constEmbedder{dims: 3, vec: []float32{1, 0, 0}})
	ctx := context.Background()

	aID, err := s.UpsertSource(ctx, "a-docs", store.SourceTypeLinkManifest, "https://a.example.com", "stack", "", nil)
	require.NoError(t, err)
	bID, err := s.UpsertSource(ctx, "b-docs", store.SourceTypeLinkManifest, "https://b.example.com", "stack", "", nil)
	require.NoError(t, err)

	seedDocument(t, s, aID, "https://a.example.com/x", "AX", "widget details", []float32{1, 0, 0})
	seedDocument(t, s, bID, "https://b.example.com/y", "BY", "widget facts", []float32{1, 0, 0})

	out, err := svc.SearchGroup(ctx, "stack", "widget", []string{"a-docs"}, 5, 0)
	require.NoError(t, err)
	require.Len(t, out.Documents, 1)
	assert.Equal(t, "https://a.example.com/x", out.Documents[0].URL)
}
