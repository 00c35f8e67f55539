package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withClock[V any](c *LRU[V], t *time.Time) *LRU[V] {
	c.now = func() time.Time { return *t }
	return c
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Stats().Size)
}

func TestLRUOverwriteKeepsSize(t *testing.T) {
	c := NewLRU[string](2, 0)
	c.Set("a", "x")
	c.Set("a", "y")

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "y", v)
	assert.Equal(t, 1, c.Stats().Size)
}

func TestLRUExpiry(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := withClock(NewLRU[int](10, time.Minute), &clock)
	c.Set("a", 1)
	c.Set("b", 2)

	clock = clock.Add(30 * time.Second)
	c.Set("c", 3)

	clock = clock.Add(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)

	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Stats().Size)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUStatsAndPurge(t *testing.T) {
	c := NewLRU[int](4, 0)
	c.Set("a", 1)
	c.Get("a")
	c.Get("missing")

	assert.Equal(t, Stats{Size: 1, Hits: 1, Misses: 1}, c.Stats())

	c.Set("b", 2)
	c.Purge()
	assert.Equal(t, Stats{}, c.Stats())
}

func TestJanitorSweep(t *testing.T) {
	clock := time.Now()
	first := withClock(NewLRU[int](4, time.Second), &clock)
	second := withClock(NewLRU[string](4, time.Second), &clock)
	first.Set("a", 1)
	second.Set("b", "x")
	second.Set("c", "y")

	j := NewJanitor(nil, first, second)
	assert.Zero(t, j.Sweep())

	clock = clock.Add(2 * time.Second)
	assert.Equal(t, 3, j.Sweep())
}

func TestJanitorRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewJanitor(nil).Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
