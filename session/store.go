package session

import (
	"time"

	"github.com/jpcolombo/mayordomo/store"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversation turn. Turns are opaque text blocks tagged
// with a role; order is append order and is never rearranged.
type Turn struct {
	Role    string
	Content string
	At      time.Time
}

// Options configure a session Store.
type Options struct {
	// MaxTurns bounds the window kept per session; the oldest turn is
	// dropped on overflow. Must be at least 1.
	MaxTurns int
	// TTL evicts a session once it has been inactive for longer than this.
	// Zero disables expiry.
	TTL time.Duration
	// MaxSessions triggers an eviction pass when the session count exceeds
	// it. Zero disables the cap check.
	MaxSessions int
	// Clock overrides the time source.
	Clock store.Clock
}

// Store is a thread-safe in-memory store for conversation sessions. Lookups
// are exact-key only; one session's turns are never returned for another's
// key.
type Store struct {
	sessions *store.Store[string, []Turn]
	opts     Options
	clock    store.Clock
}

// NewStore constructs a session store with optional overrides.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{
		MaxTurns:    5,
		TTL:         2 * time.Minute,
		MaxSessions: 100,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxTurns < 1 {
		opts.MaxTurns = 1
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		sessions: store.New[string, []Turn](clock),
		opts:     opts,
		clock:    clock,
	}
}

// AppendTurn adds a turn to a session, creating the session on first use.
// The window is trimmed to MaxTurns, oldest first. An empty session id is
// ignored so callers without conversation tracking cost nothing.
func (s *Store) AppendTurn(sessionID, role, content string) {
	if sessionID == "" {
		return
	}
	if s.opts.MaxSessions > 0 && s.sessions.Len() > s.opts.MaxSessions {
		s.EvictExpired()
	}
	s.expireIfStale(sessionID)

	turn := Turn{Role: role, Content: content, At: s.clock()}
	s.sessions.Upsert(sessionID, func(turns []Turn, _ bool) []Turn {
		// Always build a fresh slice so snapshots handed out earlier stay
		// immune to this append.
		next := make([]Turn, 0, len(turns)+1)
		next = append(next, turns...)
		next = append(next, turn)
		if len(next) > s.opts.MaxTurns {
			next = next[len(next)-s.opts.MaxTurns:]
		}
		return next
	})
}

// RecentTurns returns the current window for the session, oldest first, and
// refreshes its activity timestamp. An expired or unknown session yields an
// empty result, indistinguishable from one that never existed.
func (s *Store) RecentTurns(sessionID string) []Turn {
	if sessionID == "" {
		return nil
	}
	if s.expireIfStale(sessionID) {
		return nil
	}
	turns, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil
	}
	s.sessions.Touch(sessionID)
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Clear removes a session outright.
func (s *Store) Clear(sessionID string) {
	s.sessions.Delete(sessionID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.sessions.Len()
}

// EvictExpired removes every session idle for longer than the TTL and
// returns the number removed. Expiry also happens lazily on access, so
// calling this is optional.
func (s *Store) EvictExpired() int {
	if s.opts.TTL <= 0 {
		return 0
	}
	now := s.clock()
	return s.sessions.Sweep(func(_ string, _ []Turn, touched time.Time) bool {
		return now.Sub(touched) > s.opts.TTL
	})
}

// expireIfStale lazily drops the session when its inactivity exceeds the
// TTL. Reports whether the session was evicted.
func (s *Store) expireIfStale(sessionID string) bool {
	if s.opts.TTL <= 0 {
		return false
	}
	item, ok := s.sessions.GetItem(sessionID)
	if !ok {
		return false
	}
	if s.clock().Sub(item.Touched) <= s.opts.TTL {
		return false
	}
	s.sessions.Delete(sessionID)
	return true
}
