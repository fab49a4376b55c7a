package ui

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_InitialStage(t *testing.T) {
	p := NewProgressTracker()
	assert.Equal(t, StageFetching, p.Stats().Stage)
}

func TestProgressTracker_SetStageResetsCurrent(t *testing.T) {
	p := NewProgressTracker()
	p.SetStage(StageChunking, 100)
	p.Update(50, "doc-1")

	p.SetStage(StageEmbedding, 10)
	stats := p.Stats()
	assert.Equal(t, StageEmbedding, stats.Stage)
	assert.Equal(t, 0, stats.Current)
	assert.Equal(t, 10, stats.Total)
	assert.Empty(t, stats.CurrentURL)
}

func TestProgressTracker_ProgressClampsToOne(t *testing.T) {
	p := NewProgressTracker()
	p.SetStage(StageFetching, 10)
	p.Update(50, "")
	assert.Equal(t, 1.0, p.Progress())
}

func TestProgressTracker_ProgressZeroTotal(t *testing.T) {
	p := NewProgressTracker()
	assert.Equal(t, 0.0, p.Progress())
}

func TestProgressTracker_AddErrorSeparatesWarnings(t *testing.T) {
	p := NewProgressTracker()
	p.AddError(ErrorEvent{URL: "a", IsWarn: true})
	p.AddError(ErrorEvent{URL: "b"})

	assert.Len(t, p.Warnings(), 1)
	assert.Len(t, p.Errors(), 1)
	assert.Equal(t, 1, p.Stats().WarnCount)
	assert.Equal(t, 1, p.Stats().ErrorCount)
}

func TestProgressTracker_ETAZeroBeforeProgress(t *testing.T) {
	p := NewProgressTracker()
	p.SetStage(StageFetching, 10)
	assert.Equal(t, time.Duration(0), p.Stats().ETA)
}

func TestProgressTracker_ETAPositiveMidProgress(t *testing.T) {
	p := NewProgressTracker()
	p.SetStage(StageFetching, 10)
	time.Sleep(5 * time.Millisecond)
	p.Update(5, "")
	assert.Greater(t, p.Stats().ETA, time.Duration(0))
}

func TestProgressTracker_ElapsedIncreases(t *testing.T) {
	p := NewProgressTracker()
	first := p.Elapsed()
	time.Sleep(2 * time.Millisecond)
	assert.Greater(t, p.Elapsed(), first)
}

func TestProgressTracker_ConcurrentUpdatesAreSafe(t *testing.T) {
	p := NewProgressTracker()
	p.SetStage(StageEmbedding, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p.Update(n, "")
			p.Stats()
		}(i)
	}
	wg.Wait()
}
