package embedcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(n float32) []float32 { return []float32{n} }

func TestCache_SetThenGet(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("Hello World", vec(1))

	v, ok := c.Get("  hello world  ")
	require.True(t, ok)
	assert.Equal(t, vec(1), v)
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	c := New(10, time.Minute)
	_, ok := c.Get("nope")
	assert.False(t, ok)

	stats := c.StatsSnapshot()
	assert.Equal(t, 0, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
}

func TestCache_ExpiredEntryIsMissAndEvicted(t *testing.T) {
	c := New(10, time.Millisecond)
	c.Set("q", vec(1))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("q")
	assert.False(t, ok)
	assert.Equal(t, 0, c.StatsSnapshot().Size)
}

func TestCache_LRUEviction(t *testing.T) {
	// max_size=3: set q1, q2, q3; get q1 (refreshes recency); set q4 evicts q2.
	c := New(3, 10*time.Minute)
	c.Set("q1", vec(1))
	c.Set("q2", vec(2))
	c.Set("q3", vec(3))

	_, ok := c.Get("q1")
	require.True(t, ok)

	c.Set("q4", vec(4))

	_, ok = c.Get("q2")
	assert.False(t, ok, "q2 should have been evicted as least-recently-used")

	for _, q := range []string{"q1", "q3", "q4"} {
		v, ok := c.Get(q)
		assert.True(t, ok, "%s should still be cached", q)
		_ = v
	}
}

func TestCache_Has_DoesNotAffectCounters(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("q", vec(1))

	assert.True(t, c.Has("q"))
	assert.False(t, c.Has("missing"))

	stats := c.StatsSnapshot()
	assert.Equal(t, 0, stats.Hits)
	assert.Equal(t, 0, stats.Misses)
}

func TestCache_Prune_ReturnsEvictedCount(t *testing.T) {
	c := New(10, time.Millisecond)
	c.Set("a", vec(1))
	c.Set("b", vec(2))
	time.Sleep(5 * time.Millisecond)
	c.Set("c", vec(3)) // fresh, should survive

	evicted := c.Prune()
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 1, c.StatsSnapshot().Size)
}

func TestCache_Clear_ResetsCountersAndEntries(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("q", vec(1))
	c.Get("q")
	c.Get("missing")

	c.Clear()

	stats := c.StatsSnapshot()
	assert.Equal(t, 0, stats.Hits)
	assert.Equal(t, 0, stats.Misses)
	assert.Equal(t, 0, stats.Size)
	assert.False(t, c.Has("q"))
}

func TestCache_HitRate(t *testing.T) {
	c := New(10, time.Minute)
	assert.Equal(t, 0.0, c.HitRate())

	c.Set("q", vec(1))
	c.Get("q")
	c.Get("q")
	c.Get("missing")

	assert.InDelta(t, 2.0/3.0, c.HitRate(), 0.0001)
}

func TestCache_DefaultsAppliedForNonPositiveInputs(t *testing.T) {
	c := New(0, 0)
	assert.Equal(t, DefaultMaxSize, c.maxSize)
	assert.Equal(t, DefaultTTL, c.ttl)
}
