// Package memdb is an in-memory db.Store used for dry runs and tests.
//
// Units of work are serialized: WithTx holds the store lock for the duration
// of fn and operates on a copy of the state, which replaces the live state only
// when fn returns nil.
package memdb

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/series-publisher/internal/db"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("memdb: store is closed")

// Store implements db.Store in memory.
type Store struct {
	mu     sync.Mutex
	state  *state
	closed bool
	now    func() time.Time
}

var _ db.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{state: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// WithTx runs fn against a snapshot and publishes the snapshot on success.
func (s *Store) WithTx(ctx context.Context, fn func(db.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	snapshot := s.state.clone()
	if err := fn(&memTx{st: snapshot, now: s.now}); err != nil {
		return err
	}
	s.state = snapshot
	return nil
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

type state struct {
	plans     map[uuid.UUID]db.Plan
	planOrder []uuid.UUID
	topics    map[uuid.UUID]db.Topic
	refs      map[uuid.UUID][]db.ReferenceItem
	contents  map[uuid.UUID]db.Content
	byTopic   map[uuid.UUID]uuid.UUID
	attempts  map[uuid.UUID][]db.PublishAttempt
}

func newState() *state {
	return &state{
		plans:    make(map[uuid.UUID]db.Plan),
		topics:   make(map[uuid.UUID]db.Topic),
		refs:     make(map[uuid.UUID][]db.ReferenceItem),
		contents: make(map[uuid.UUID]db.Content),
		byTopic:  make(map[uuid.UUID]uuid.UUID),
		attempts: make(map[uuid.UUID][]db.PublishAttempt),
	}
}

func (st *state) clone() *state {
	c := newState()
	c.planOrder = append([]uuid.UUID(nil), st.planOrder...)
	for k, v := range st.plans {
		c.plans[k] = v
	}
	for k, v := range st.topics {
		v.Keywords = cloneStrings(v.Keywords)
		c.topics[k] = v
	}
	for k, v := range st.refs {
		c.refs[k] = append([]db.ReferenceItem(nil), v...)
	}
	for k, v := range st.contents {
		c.contents[k] = cloneContent(v)
	}
	for k, v := range st.byTopic {
		c.byTopic[k] = v
	}
	for k, v := range st.attempts {
		c.attempts[k] = append([]db.PublishAttempt(nil), v...)
	}
	return c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string{}, in...)
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneContent(c db.Content) db.Content {
	c.Tags = cloneStrings(c.Tags)
	c.RefinedTitle = cloneString(c.RefinedTitle)
	c.RefinedBody = cloneString(c.RefinedBody)
	c.OptimizationNotes = cloneString(c.OptimizationNotes)
	return c
}

func cloneAttempt(a db.PublishAttempt) db.PublishAttempt {
	a.ExternalPostID = cloneString(a.ExternalPostID)
	a.ErrorMessage = cloneString(a.ErrorMessage)
	if a.PublishTime != nil {
		t := *a.PublishTime
		a.PublishTime = &t
	}
	return a
}
