// Package session keeps per-session conversational memory: the most recently
// resolved entity set and the last visited site. The store is in-memory only
// and owned by the orchestrator; nothing survives the process.
package session

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"heyq/internal/domain/entity"
)

const (
	defaultMaxSessions = 512
	defaultTTL         = 30 * time.Minute
)

type state struct {
	mu       sync.Mutex
	entities entity.EntitySet
	lastSite string
}

// Store is keyed by session id. Sessions expire after a TTL and the oldest
// are evicted past the capacity cap.
type Store struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *state]
}

type Option func(*options)

type options struct {
	maxSessions int
	ttl         time.Duration
}

func WithCapacity(n int) Option        { return func(o *options) { o.maxSessions = n } }
func WithTTL(ttl time.Duration) Option { return func(o *options) { o.ttl = ttl } }

func NewStore(opts ...Option) *Store {
	o := options{maxSessions: defaultMaxSessions, ttl: defaultTTL}
	for _, fn := range opts {
		fn(&o)
	}
	return &Store{
		sessions: expirable.NewLRU[string, *state](o.maxSessions, nil, o.ttl),
	}
}

func (s *Store) get(sessionID string, create bool) *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions.Get(sessionID); ok {
		return st
	}
	if !create {
		return nil
	}
	st := &state{entities: entity.EntitySet{}}
	s.sessions.Add(sessionID, st)
	return st
}

// Resolve merges the new entity set with what the session remembers: any kind
// missing from the fresh extraction is filled from the previous turn and
// tagged inferred-from-context. The input set is not mutated.
func (s *Store) Resolve(sessionID string, fresh entity.EntitySet) entity.EntitySet {
	merged := fresh.Clone()
	st := s.get(sessionID, false)
	if st == nil {
		return merged
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	for kind, e := range st.entities {
		if merged.Has(kind) {
			continue
		}
		e.Confidence = entity.ConfidenceInferred
		merged[kind] = e
	}
	return merged
}

// Update records the resolved entity set after a successful plan resolution.
func (s *Store) Update(sessionID string, resolved entity.EntitySet) {
	st := s.get(sessionID, true)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.entities = resolved.Clone()
	if site := resolved.Value(entity.EntitySite); site != "" {
		st.lastSite = site
	}
}

// LastSite returns the most recently visited site for the session, if any.
func (s *Store) LastSite(sessionID string) string {
	st := s.get(sessionID, false)
	if st == nil {
		return ""
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lastSite
}

// Clear handles the clear/cancel control signal.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Remove(sessionID)
}

// Len reports how many live sessions the store holds.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Len()
}
