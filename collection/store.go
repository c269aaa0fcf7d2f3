// Package collection implements the list-screen pattern shared by every
// entity view: a loader that discards stale responses, a locally held
// collection, criteria filtering and mutations that are applied once the
// backend confirms them.
package collection

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStale is returned by Load when a newer Load (or Close) superseded it.
var ErrStale = errors.New("collection: response superseded")

// FetchFunc retrieves the full collection from the backend.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

type Option[T any] func(*Store[T])

// WithRetry retries failed loads up to n extra times, waiting delay between
// attempts. Mutations are never retried.
func WithRetry[T any](n int, delay time.Duration) Option[T] {
	return func(s *Store[T]) {
		s.retries = n
		s.retryDelay = delay
	}
}

func WithMatcher[T any](m Matcher[T]) Option[T] {
	return func(s *Store[T]) { s.matcher = m }
}

func WithConfirmer[T any](c Confirmer) Option[T] {
	return func(s *Store[T]) { s.confirmer = c }
}

func WithNotifier[T any](n Notifier) Option[T] {
	return func(s *Store[T]) { s.notifier = n }
}

// WithLabel names the entity in notifier messages ("Job created").
func WithLabel[T any](label string) Option[T] {
	return func(s *Store[T]) { s.label = label }
}

// Store holds one screen's collection. All methods are safe for concurrent
// use.
type Store[T any] struct {
	key func(T) string

	mu      sync.Mutex
	items   []T
	loading bool
	err     error
	version uint64

	gen    uint64
	cancel context.CancelFunc
	closed bool

	retries    int
	retryDelay time.Duration

	matcher   Matcher[T]
	confirmer Confirmer
	notifier  Notifier
	label     string

	memo struct {
		valid    bool
		version  uint64
		criteria Criteria
		out      []T
	}
}

// New creates an empty store. key returns the backend identity of an entity.
func New[T any](key func(T) string, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		key:       key,
		confirmer: AlwaysConfirm{},
		notifier:  nopNotifier{},
		label:     "Item",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the result of fetch. Starting a Load
// cancels the one in flight; only the most recently issued Load may update
// the store, earlier ones return ErrStale.
func (s *Store[T]) Load(ctx context.Context, fetch FetchFunc[T]) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStale
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	s.mu.Unlock()
	defer cancel()

	items, err := s.fetchWithRetry(ctx, fetch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return ErrStale
	}
	s.loading = false
	s.cancel = nil
	if err != nil {
		s.err = err
		return err
	}
	s.err = nil
	s.items = items
	s.version++
	return nil
}

func (s *Store[T]) fetchWithRetry(ctx context.Context, fetch FetchFunc[T]) ([]T, error) {
	for attempt := 0; ; attempt++ {
		items, err := fetch(ctx)
		if err == nil || attempt >= s.retries || ctx.Err() != nil {
			return items, err
		}
		timer := time.NewTimer(s.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Close abandons any in-flight Load. The store keeps its last items.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.loading = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Items returns a copy of the collection in backend order.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err is the error of the last settled Load, nil after a success.
func (s *Store[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Version increases every time the collection changes.
func (s *Store[T]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// View filters the collection with the store's matcher. Results are cached
// until the collection or the criteria change.
func (s *Store[T]) View(c Criteria) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memo.valid && s.memo.version == s.version && s.memo.criteria == c {
		return append([]T(nil), s.memo.out...)
	}
	out := Filter(s.items, s.matcher, c)
	s.memo.valid = true
	s.memo.version = s.version
	s.memo.criteria = c
	s.memo.out = out
	return append([]T(nil), out...)
}

func (s *Store[T]) indexOf(id string) int {
	for i, it := range s.items {
		if s.key(it) == id {
			return i
		}
	}
	return -1
}
