package ui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainRenderer_StartIsNoop(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	require.NoError(t, r.Start(context.Background()))
}

func TestPlainRenderer_UpdateProgressWithTotal(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	r.UpdateProgress(ProgressEvent{Stage: StageFetching, Current: 3, Total: 10, CurrentURL: "https://example.com/a"})
	assert.Contains(t, buf.String(), "[FETCH] 3/10 - https://example.com/a")
}

func TestPlainRenderer_UpdateProgressWithoutTotal(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	r.UpdateProgress(ProgressEvent{Stage: StageEmbedding, Message: "warming up"})
	assert.Contains(t, buf.String(), "[EMBED] warming up")
}

func TestPlainRenderer_AddErrorWithURL(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	r.AddError(ErrorEvent{URL: "https://example.com/a", Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "ERROR: https://example.com/a: boom")
}

func TestPlainRenderer_AddWarning(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	r.AddError(ErrorEvent{Err: errors.New("slow response"), IsWarn: true})
	assert.Contains(t, buf.String(), "WARN: slow response")
}

func TestPlainRenderer_Complete(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	r.Complete(CompletionStats{Documents: 12, Chunks: 240, Duration: 2 * time.Second})
	out := buf.String()
	assert.Contains(t, out, "Complete: 12 documents, 240 chunks indexed in 2s")
}

func TestPlainRenderer_CompleteWithErrorsAndBreakdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	r.Complete(CompletionStats{
		Documents: 1, Chunks: 5, Duration: time.Second,
		Errors: 1, Warnings: 2,
		Stages:   StageTimings{Fetch: time.Second, Embed: 500 * time.Millisecond, Store: 200 * time.Millisecond},
		Embedder: EmbedderInfo{Provider: "openai", Model: "text-embedding-3-small", Dimensions: 1536},
	})
	out := buf.String()
	assert.Contains(t, out, "1 errors, 2 warnings")
	assert.Contains(t, out, "Stage Breakdown:")
	assert.Contains(t, out, "Embedder: openai (text-embedding-3-small, 1536 dims)")
}

func TestPlainRenderer_Stop(t *testing.T) {
	r := NewPlainRenderer(NewConfig(nil))
	assert.NoError(t, r.Stop())
}
