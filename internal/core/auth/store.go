package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Observer is called after every applied dispatch, outside the store lock.
type Observer func(a Action, prev, next State)

// Store owns one State. It is created at session start, mutated only through
// Dispatch and torn down with Close. Each dispatch runs to completion before
// the next one starts.
type Store struct {
	mu        sync.Mutex
	state     State
	settled   chan struct{} // closed while !state.IsLoading
	closed    bool
	observers []Observer
	log       zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithObserver registers a callback fired after each dispatch.
func WithObserver(o Observer) StoreOption {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// WithLogger sets the store logger.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore returns a store holding InitialState.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		state:   InitialState(),
		settled: make(chan struct{}),
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Dispatch applies a to the current state and returns the new state. After
// Close it is a no-op that returns the final state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	if s.closed {
		st := s.state.clone()
		s.mu.Unlock()
		s.log.Debug().Str("action", ActionName(a)).Msg("dispatch on closed store ignored")
		return st
	}
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	switch {
	case prev.IsLoading && !next.IsLoading:
		close(s.settled)
	case !prev.IsLoading && next.IsLoading:
		s.settled = make(chan struct{})
	}
	observers := s.observers
	s.mu.Unlock()

	s.log.Trace().
		Str("action", ActionName(a)).
		Str("from", prev.Logical().String()).
		Str("to", next.Logical().String()).
		Bool("loading", next.IsLoading).
		Msg("auth transition")

	for _, o := range observers {
		o(a, prev.clone(), next.clone())
	}
	return next.clone()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// WaitSettled blocks until no operation holds the loading flag, the store is
// closed, or ctx ends. It always returns the latest snapshot; the error is
// ctx.Err() when the wait was cut short.
func (s *Store) WaitSettled(ctx context.Context) (State, error) {
	s.mu.Lock()
	ch := s.settled
	done := !s.state.IsLoading || s.closed
	s.mu.Unlock()
	if done {
		return s.Snapshot(), nil
	}

	select {
	case <-ch:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Close ends the store's lifecycle and releases any waiters.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.state.IsLoading {
		close(s.settled)
	}
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
