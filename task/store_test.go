package task

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(clock func() time.Time, optFns ...func(o *Options)) *Store {
	fns := append([]func(o *Options){func(o *Options) { o.Clock = clock }}, optFns...)
	return NewStore(fns...)
}

func fixedClock() func() time.Time {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func TestCreatePending(t *testing.T) {
	s := NewStore()

	id := s.Create("recuérdame llamar a Ana")
	require.NotEmpty(t, id)

	r, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, "recuérdame llamar a Ana", r.Query)
	assert.False(t, r.CreatedAt.IsZero())
	assert.True(t, r.FinishedAt.IsZero())
}

func TestCompleteTransition(t *testing.T) {
	s := NewStore()
	id := s.Create("q")

	require.True(t, s.Complete(id, "hecho"))

	r, _ := s.Get(id)
	assert.Equal(t, StatusCompleted, r.Status)
	assert.Equal(t, "hecho", r.Result)
	assert.False(t, r.FinishedAt.IsZero())
}

func TestFailTransition(t *testing.T) {
	s := NewStore()
	id := s.Create("q")

	require.True(t, s.Fail(id, "boom"))

	r, _ := s.Get(id)
	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "boom", r.Err)
	assert.Empty(t, r.Result)
	assert.False(t, r.FinishedAt.IsZero())
}

// Transitions only apply out of pending. The losing side of the deadline
// race must not overwrite the winner.
func TestTransitionIdempotence(t *testing.T) {
	s := NewStore()
	id := s.Create("q")

	require.True(t, s.Complete(id, "first"))

	assert.False(t, s.Complete(id, "second"))
	assert.False(t, s.Fail(id, "late failure"))

	r, _ := s.Get(id)
	assert.Equal(t, StatusCompleted, r.Status)
	assert.Equal(t, "first", r.Result)
	assert.Empty(t, r.Err)
}

func TestTransitionUnknownID(t *testing.T) {
	s := NewStore()

	assert.False(t, s.Complete("nope", "r"))
	assert.False(t, s.Fail("nope", "e"))
}

func TestConsumeOnce(t *testing.T) {
	s := NewStore()
	id := s.Create("q")
	s.Complete(id, "resultado")

	r, ok := s.Consume(id)
	require.True(t, ok)
	assert.Equal(t, "resultado", r.Result)
	assert.Equal(t, StatusCompleted, r.Status)

	// Second consume reports not-found; the result is delivered once.
	_, ok = s.Consume(id)
	assert.False(t, ok)

	stored, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusConsumed, stored.Status)
}

func TestConsumePendingRefused(t *testing.T) {
	s := NewStore()
	id := s.Create("q")

	_, ok := s.Consume(id)
	assert.False(t, ok)

	r, _ := s.Get(id)
	assert.Equal(t, StatusPending, r.Status)
}

func TestConsumeFailedCarriesError(t *testing.T) {
	s := NewStore()
	id := s.Create("q")
	s.Fail(id, "timeout upstream")

	r, ok := s.Consume(id)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "timeout upstream", r.Err)
}

func TestListPendingOrder(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	s := newTestStore(func() time.Time { return now })

	id1 := s.Create("t1")
	now = now.Add(time.Second)
	id2 := s.Create("t2")
	now = now.Add(time.Second)
	id3 := s.Create("t3")

	got := s.ListPending()
	require.Len(t, got, 3)
	assert.Equal(t, []string{id3, id2, id1}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestListPendingSameInstantOrder(t *testing.T) {
	s := newTestStore(fixedClock())

	id1 := s.Create("t1")
	id2 := s.Create("t2")

	got := s.ListPending()
	require.Len(t, got, 2)
	// Creation order breaks the tie when timestamps collide.
	assert.Equal(t, id2, got[0].ID)
	assert.Equal(t, id1, got[1].ID)
}

func TestListCompletedUnconsumedOrder(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	s := newTestStore(func() time.Time { return now })

	id1 := s.Create("t1")
	id2 := s.Create("t2")
	id3 := s.Create("t3")

	now = now.Add(time.Second)
	s.Complete(id1, "r1")
	now = now.Add(time.Second)
	s.Fail(id3, "e3")

	got := s.ListCompletedUnconsumed()
	require.Len(t, got, 2)
	assert.Equal(t, id3, got[0].ID)
	assert.Equal(t, id1, got[1].ID)

	pending := s.ListPending()
	require.Len(t, pending, 1)
	assert.Equal(t, id2, pending[0].ID)
}

func TestListingsExcludeConsumed(t *testing.T) {
	s := NewStore()
	id := s.Create("q")
	s.Complete(id, "r")
	s.Consume(id)

	assert.Empty(t, s.ListCompletedUnconsumed())
	assert.Empty(t, s.ListPending())
}

func TestCreateSweepsConsumed(t *testing.T) {
	s := NewStore()
	id := s.Create("q")
	s.Complete(id, "r")
	s.Consume(id)

	s.Create("next")

	_, ok := s.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestCreateSweepsExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	s := newTestStore(func() time.Time { return now }, func(o *Options) {
		o.TTL = time.Minute
	})

	old := s.Create("old")
	s.Complete(old, "r")

	now = now.Add(2 * time.Minute)
	s.Create("fresh")

	_, ok := s.Get(old)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestCapEvictsOldest(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	s := newTestStore(func() time.Time { return now }, func(o *Options) {
		o.MaxRecords = 3
		o.TTL = 0
	})

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, s.Create(fmt.Sprintf("t%d", i)))
		now = now.Add(time.Second)
	}

	assert.Equal(t, 3, s.Len())

	for _, id := range ids[:2] {
		_, ok := s.Get(id)
		assert.False(t, ok)
	}
	for _, id := range ids[2:] {
		_, ok := s.Get(id)
		assert.True(t, ok)
	}
}

func TestConcurrentLifecycle(t *testing.T) {
	s := NewStore(func(o *Options) { o.MaxRecords = 0; o.TTL = 0 })

	const n = 32

	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = s.Create(fmt.Sprintf("t%d", i))
	}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string, i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.Complete(id, "r")
			} else {
				s.Fail(id, "e")
			}
			s.ListPending()
			s.ListCompletedUnconsumed()
		}(ids[i], i)
	}
	wg.Wait()

	// Every record made exactly one transition out of pending.
	assert.Empty(t, s.ListPending())
	assert.Len(t, s.ListCompletedUnconsumed(), n)

	for _, id := range ids {
		_, ok := s.Consume(id)
		assert.True(t, ok)
		_, ok = s.Consume(id)
		assert.False(t, ok)
	}
}
