package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	s := New[string, int](time.Now)

	s.Put("a", 1)

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestGetItemTouched(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	s := New[string, string](func() time.Time { return now })

	s.Put("k", "v")

	item, ok := s.GetItem("k")
	require.True(t, ok)
	assert.Equal(t, "k", item.Key)
	assert.Equal(t, "v", item.Value)
	assert.Equal(t, now, item.Touched)
}

func TestTouchRefreshes(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	s := New[string, string](func() time.Time { return now })

	s.Put("k", "v")
	now = now.Add(time.Minute)

	require.True(t, s.Touch("k"))
	assert.False(t, s.Touch("missing"))

	item, _ := s.GetItem("k")
	assert.Equal(t, now, item.Touched)
}

func TestUpdateConditional(t *testing.T) {
	s := New[string, int](time.Now)
	s.Put("k", 1)

	ok := s.Update("k", func(v int) (int, bool) { return v + 1, true })
	require.True(t, ok)

	v, _ := s.Get("k")
	assert.Equal(t, 2, v)

	// Declined update leaves the value untouched.
	ok = s.Update("k", func(v int) (int, bool) { return 99, false })
	assert.False(t, ok)

	v, _ = s.Get("k")
	assert.Equal(t, 2, v)

	assert.False(t, s.Update("missing", func(v int) (int, bool) { return v, true }))
}

func TestUpsert(t *testing.T) {
	s := New[string, []int](time.Now)

	s.Upsert("k", func(cur []int, exists bool) []int {
		assert.False(t, exists)
		return []int{1}
	})
	s.Upsert("k", func(cur []int, exists bool) []int {
		assert.True(t, exists)
		return append(cur, 2)
	})

	v, _ := s.Get("k")
	assert.Equal(t, []int{1, 2}, v)
}

func TestDeleteAndLen(t *testing.T) {
	s := New[string, int](time.Now)
	s.Put("a", 1)
	s.Put("b", 2)

	assert.Equal(t, 2, s.Len())

	s.Delete("a")
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("a")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	s.Delete("a")
	assert.Equal(t, 1, s.Len())
}

func TestListFilterSort(t *testing.T) {
	s := New[string, int](time.Now)
	s.Put("a", 3)
	s.Put("b", 1)
	s.Put("c", 2)
	s.Put("d", 10)

	got := s.List(
		func(v int) bool { return v < 10 },
		func(a, b int) bool { return a < b },
	)

	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestSweep(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	s := New[string, int](func() time.Time { return now })

	s.Put("old", 1)
	now = now.Add(time.Hour)
	s.Put("new", 2)

	removed := s.Sweep(func(_ string, _ int, touched time.Time) bool {
		return now.Sub(touched) > 30*time.Minute
	})

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("new")
	assert.True(t, ok)
}

func TestSweepKeepsEntryRefreshedMidSweep(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	s := New[string, int](func() time.Time { return now })

	s.Put("k", 1)
	ttl := time.Minute
	now = now.Add(2 * ttl)

	// The predicate sees the stale timestamp and plays the part of a writer
	// racing the sweep: it refreshes the entry before the delete runs.
	removed := s.Sweep(func(key string, _ int, touched time.Time) bool {
		if key == "k" {
			s.Put("k", 2)
		}
		return now.Sub(touched) > ttl
	})

	assert.Equal(t, 0, removed)

	v, ok := s.Get("k")
	require.True(t, ok, "refreshed entry must survive the sweep")
	assert.Equal(t, 2, v)
}

func TestSweepKeepsEntryReplacedMidSweep(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	s := New[string, int](func() time.Time { return now })

	s.Put("k", 1)
	now = now.Add(time.Hour)

	// Delete-then-reinsert swaps the entry for a fresh one; the sweep must
	// not remove the replacement on the strength of the old timestamp.
	removed := s.Sweep(func(key string, _ int, touched time.Time) bool {
		if key == "k" {
			s.Delete("k")
			s.Put("k", 3)
		}
		return now.Sub(touched) > 30*time.Minute
	})

	assert.Equal(t, 0, removed)

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestConcurrentAccess(t *testing.T) {
	s := New[int, int](time.Now)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := i % 10
			s.Put(key, i)
			s.Get(key)
			s.Update(key, func(v int) (int, bool) { return v + 1, true })
			s.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, s.Len())
}
