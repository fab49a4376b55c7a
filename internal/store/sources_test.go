//go:build cgo

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSource_CreateThenUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertSource(ctx, "demo", SourceTypeLinkManifest, "https://d/llms.txt", "", "", nil)
	require.NoError(t, err)
	require.NotZero(t, id)

	id2, err := s.UpsertSource(ctx, "demo", SourceTypeLinkManifest, "https://d/llms2.txt", "grp", "desc", &SourceOptions{CrawlLimit: 50})
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	src, err := s.GetSource(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "https://d/llms2.txt", src.BaseURL)
	assert.Equal(t, "grp", src.GroupName)
	assert.Equal(t, "desc", src.Description)
	require.NotNil(t, src.Options)
	assert.Equal(t, 50, src.Options.CrawlLimit)
}

func TestRemoveSource_CascadesAndReportsMiss(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.RemoveSource(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := s.UpsertSource(ctx, "demo", SourceTypeLinkManifest, "https://d", "", "", nil)
	require.NoError(t, err)

	docID, err := s.UpsertDocument(ctx, Document{
		SourceID: id, URL: "https://d/one", Title: "One", Content: "hello", ContentHash: "h1",
	})
	require.NoError(t, err)
	_, err = s.InsertChunk(ctx, Chunk{DocumentID: docID, ChunkIndex: 0, Content: "hello", Embedding: []float32{1, 0, 0, 0}})
	require.NoError(t, err)

	ok, err = s.RemoveSource(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.GetSource(ctx, "demo")
	assert.Error(t, err)
}

func TestIsGroup_SourcesShadowGroups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertSource(ctx, "docs-a", SourceTypeLinkManifest, "https://a", "docs", "", nil)
	require.NoError(t, err)
	_, err = s.UpsertSource(ctx, "docs-b", SourceTypeLinkManifest, "https://b", "docs", "", nil)
	require.NoError(t, err)

	isGroup, err := s.IsGroup(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, isGroup)

	// "docs-a" is an exact source name, not a group, even though no source
	// carries group_name "docs-a".
	isGroup, err = s.IsGroup(ctx, "docs-a")
	require.NoError(t, err)
	assert.False(t, isGroup)

	// A source named exactly "docs" shadows the group.
	_, err = s.UpsertSource(ctx, "docs", SourceTypeLinkManifest, "https://c", "", "", nil)
	require.NoError(t, err)
	isGroup, err = s.IsGroup(ctx, "docs")
	require.NoError(t, err)
	assert.False(t, isGroup)
}

func TestSourcesByGroupAndRemoveGroup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertSource(ctx, "docs-a", SourceTypeLinkManifest, "https://a", "docs", "", nil)
	require.NoError(t, err)
	_, err = s.UpsertSource(ctx, "docs-b", SourceTypeLinkManifest, "https://b", "docs", "", nil)
	require.NoError(t, err)

	members, err := s.SourcesByGroup(ctx, "docs")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	removed, err := s.RemoveGroup(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	members, err = s.SourcesByGroup(ctx, "docs")
	require.NoError(t, err)
	assert.Empty(t, members)
}
