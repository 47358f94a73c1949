// Package queue keeps the ordered list of sweeps that will be exported and
// run. Entry order is the execution order.
package queue

import (
	"sync"
	"time"

	"sweepq/internal/shared/observability"
	"sweepq/internal/sweep"
)

// State is an immutable snapshot of the store.
type State struct {
	Entries    []sweep.Entry
	SelectedID string
}

// Selected returns the selected entry, if the selection is set and present.
func (s State) Selected() (sweep.Entry, bool) {
	if s.SelectedID == "" {
		return sweep.Entry{}, false
	}
	for _, e := range s.Entries {
		if e.ID == s.SelectedID {
			return e, true
		}
	}
	return sweep.Entry{}, false
}

type Observer func(State)

type Option func(*Store)

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the single authoritative queue. Invalid operations are no-ops;
// nothing here returns an error.
type Store struct {
	mu         sync.Mutex
	entries    []sweep.Entry
	selectedID string
	now        func() time.Time

	observers  map[int]Observer
	nextHandle int
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddOrReplace replaces the entry with the same ID in place, keeping its
// CreatedAt, or appends entry. ModifiedAt is always set to now.
func (s *Store) AddOrReplace(entry sweep.Entry) {
	s.mu.Lock()
	ts := sweep.Millis(s.now())
	stored := entry.Clone()
	stored.ModifiedAt = ts

	idx := s.indexOf(entry.ID)
	if idx >= 0 {
		stored.CreatedAt = s.entries[idx].CreatedAt
		s.entries[idx] = stored
	} else {
		stored.CreatedAt = ts
		s.entries = append(s.entries, stored)
	}
	op := "add"
	if idx >= 0 {
		op = "replace"
	}
	s.commit(op)
}

// Remove deletes the entry with id. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.entries = append(s.entries[:idx:idx], s.entries[idx+1:]...)
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.commit("remove")
}

// Move relocates the entry at from so it lands before the entry currently at
// to. to == len places it last. Out of range arguments are ignored.
func (s *Store) Move(from, to int) {
	s.mu.Lock()
	n := len(s.entries)
	if from < 0 || from >= n || to < 0 || to > n {
		s.mu.Unlock()
		return
	}
	if to == from || to == from+1 {
		s.mu.Unlock()
		return
	}

	item := s.entries[from]
	rest := make([]sweep.Entry, 0, n)
	rest = append(rest, s.entries[:from]...)
	rest = append(rest, s.entries[from+1:]...)
	if to > from {
		to--
	}
	out := make([]sweep.Entry, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, item)
	out = append(out, rest[to:]...)
	s.entries = out
	s.commit("move")
}

// Clear drops every entry and the selection.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.selectedID = ""
	s.commit("clear")
}

// Select marks id as the entry open for editing; "" clears the selection.
func (s *Store) Select(id string) {
	s.mu.Lock()
	s.selectedID = id
	s.commit("select")
}

func (s *Store) Entries() []sweep.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntries(s.entries)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

func (s *Store) Get(id string) (sweep.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return sweep.Entry{}, false
	}
	return s.entries[idx].Clone(), true
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every subsequent mutation and returns a func
// that removes it.
func (s *Store) Subscribe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	handle := s.nextHandle
	s.nextHandle++
	s.observers[handle] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, handle)
			s.mu.Unlock()
		})
	}
}

// commit must be called with s.mu held; it releases the lock before
// notifying so observers may read the store.
func (s *Store) commit(op string) {
	state := s.snapshotLocked()
	observers := make([]Observer, 0, len(s.observers))
	for i := 0; i < s.nextHandle; i++ {
		if fn, ok := s.observers[i]; ok {
			observers = append(observers, fn)
		}
	}
	s.mu.Unlock()

	observability.QueueMutationsTotal.WithLabelValues(op).Inc()
	observability.QueueLength.Set(float64(len(state.Entries)))

	for _, fn := range observers {
		fn(state)
	}
}

func (s *Store) snapshotLocked() State {
	return State{Entries: cloneEntries(s.entries), SelectedID: s.selectedID}
}

func (s *Store) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneEntries(entries []sweep.Entry) []sweep.Entry {
	out := make([]sweep.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
