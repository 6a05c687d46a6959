package task

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jpcolombo/mayordomo/store"
)

// Options configure a task Store.
type Options struct {
	// MaxRecords caps the number of retained records; the oldest are dropped
	// when the cap is exceeded. Zero means no cap.
	MaxRecords int
	// TTL evicts records older than this at the next Create. Zero disables
	// age-based eviction.
	TTL time.Duration
	// Clock overrides the time source.
	Clock store.Clock
}

// Store is a thread-safe in-memory store for background task records.
type Store struct {
	records *store.Store[string, Record]
	opts    Options
	clock   store.Clock
	seq     atomic.Uint64
}

// NewStore constructs a task store with optional overrides.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{
		MaxRecords: 50,
		TTL:        5 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		records: store.New[string, Record](clock),
		opts:    opts,
		clock:   clock,
	}
}

// Create allocates a fresh id, stores a pending record and returns the id.
// The record is visible to listings immediately. Consumed and expired
// records are swept here, and the total is capped, matching the lazy
// cleanup discipline of the rest of the store.
func (s *Store) Create(query string) string {
	s.cleanup()
	id := uuid.NewString()
	s.records.Put(id, Record{
		ID:        id,
		Query:     query,
		Status:    StatusPending,
		CreatedAt: s.clock(),
		seq:       s.seq.Add(1),
	})
	return id
}

// Complete transitions a pending record to completed with its result.
// Calling it on a record that already left pending is a no-op; the benign
// race (both deadline branches believing they finished first) is absorbed
// rather than reported. Reports whether the transition was applied.
func (s *Store) Complete(id, result string) bool {
	return s.finish(id, StatusCompleted, result, "")
}

// Fail transitions a pending record to failed with an error description.
// Same idempotent no-op semantics as Complete.
func (s *Store) Fail(id, errMsg string) bool {
	return s.finish(id, StatusFailed, "", errMsg)
}

// finish applies the single atomic transition out of pending: status,
// payload and FinishedAt become visible together, never individually.
func (s *Store) finish(id string, status Status, result, errMsg string) bool {
	return s.records.Update(id, func(r Record) (Record, bool) {
		if r.Status != StatusPending {
			return r, false
		}
		r.Status = status
		r.Result = result
		r.Err = errMsg
		r.FinishedAt = s.clock()
		return r, true
	})
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (Record, bool) {
	return s.records.Get(id)
}

// ListPending returns all pending records, most recently created first.
func (s *Store) ListPending() []Record {
	return s.records.List(
		func(r Record) bool { return r.Status == StatusPending },
		newestCreatedFirst,
	)
}

// ListCompletedUnconsumed returns all completed and failed records that have
// not been consumed, most recently finished first.
func (s *Store) ListCompletedUnconsumed() []Record {
	return s.records.List(
		func(r Record) bool { return r.Status == StatusCompleted || r.Status == StatusFailed },
		newestFinishedFirst,
	)
}

// Consume atomically retires a completed or failed record and returns a copy
// carrying its result. A record that is still pending, already consumed, or
// unknown reports not-found so stale results are never re-delivered.
func (s *Store) Consume(id string) (Record, bool) {
	var consumed Record
	ok := s.records.Update(id, func(r Record) (Record, bool) {
		if r.Status != StatusCompleted && r.Status != StatusFailed {
			return r, false
		}
		consumed = r
		r.Status = StatusConsumed
		return r, true
	})
	if !ok {
		return Record{}, false
	}
	return consumed, true
}

// Len returns the number of retained records.
func (s *Store) Len() int {
	return s.records.Len()
}

// cleanup drops consumed and expired records, then enforces the cap by
// evicting the oldest records.
func (s *Store) cleanup() {
	now := s.clock()
	s.records.Sweep(func(_ string, r Record, _ time.Time) bool {
		if r.Status == StatusConsumed {
			return true
		}
		return s.opts.TTL > 0 && now.Sub(r.CreatedAt) > s.opts.TTL
	})

	if s.opts.MaxRecords <= 0 {
		return
	}
	// The caller is about to add one record; leave room for it.
	excess := s.records.Len() + 1 - s.opts.MaxRecords
	if excess <= 0 {
		return
	}
	all := s.records.List(nil, nil)
	sort.SliceStable(all, func(i, j int) bool { return oldestCreatedFirst(all[i], all[j]) })
	for i := 0; i < excess && i < len(all); i++ {
		s.records.Delete(all[i].ID)
	}
}

func newestCreatedFirst(a, b Record) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.seq > b.seq
}

func oldestCreatedFirst(a, b Record) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.seq < b.seq
}

func newestFinishedFirst(a, b Record) bool {
	if !a.FinishedAt.Equal(b.FinishedAt) {
		return a.FinishedAt.After(b.FinishedAt)
	}
	return a.seq > b.seq
}
