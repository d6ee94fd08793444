// Package cache implements the keyed read cache and the invalidate-and-refetch
// contract every mutation in the application honors. A read result is memoized
// under a composite key; a successful mutation marks the exact keys it affects
// stale so the next read refetches instead of serving the previous value.
package cache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Key is the composite address a read result is memoized under: a resource
// tag followed by its discriminators, e.g. "comments/42/9f3c…".
type Key string

// NewKey builds a Key from a resource tag and its discriminators.
func NewKey(resource string, discriminators ...string) Key {
	if len(discriminators) == 0 {
		return Key(resource)
	}

	return Key(resource + "/" + strings.Join(discriminators, "/"))
}

// matches reports whether k addresses the same value as other, or a value
// nested under it. Invalidating "posts/u1" must cover "posts/u1/tip" because
// every per-category list shares the mutated rows.
func (k Key) matches(other Key) bool {
	if k == other {
		return true
	}

	return strings.HasPrefix(string(other), string(k)+"/")
}

type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
}

// Store holds the memoized read results. All access is serialized by a single
// mutex; loaders run outside the lock so a slow fetch never blocks unrelated
// keys.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	logger  *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewStore creates an empty cache store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		entries: make(map[Key]*entry),
		logger:  logger,
		now:     time.Now,
	}
}

// Fetch returns the value cached under key when it is present, unexpired and
// not marked stale; otherwise it runs loader and memoizes the result.
// A staleAfter of zero or less means entries stay fresh until invalidated.
// Loader failures are returned to the caller and nothing is cached, so a
// previously cached value (if any) remains available for the next read.
func Fetch[T any](ctx context.Context, s *Store, key Key, staleAfter time.Duration, loader func(context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && !e.stale {
		if staleAfter <= 0 || s.now().Sub(e.fetchedAt) < staleAfter {
			value, ok := e.value.(T)
			if ok {
				s.mu.Unlock()

				return value, nil
			}
		}
	}
	s.mu.Unlock()

	value, err := loader(ctx)
	if err != nil {
		var zero T

		return zero, err
	}

	s.mu.Lock()
	s.entries[key] = &entry{value: value, fetchedAt: s.now()}
	s.mu.Unlock()

	return value, nil
}

// Invalidate marks every entry addressed by the given keys stale. A key also
// covers entries nested under it (additional discriminators). Unrelated keys
// are untouched.
func (s *Store) Invalidate(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		for existing, e := range s.entries {
			if k.matches(existing) {
				e.stale = true
			}
		}
	}

	if s.logger != nil {
		s.logger.Debug("cache invalidated", slog.Any("keys", keys))
	}
}

// Clear drops every entry. Used when the signed-in identity changes, since
// all cached reads are viewer-scoped or viewer-overlaid.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[Key]*entry)
}

// Mutate runs op and, only when it succeeds, invalidates the declared keys.
// On failure no invalidation occurs and prior cached values stay
// authoritative. "Success" means op observed the backend write acknowledged,
// not merely enqueued.
func (s *Store) Mutate(ctx context.Context, op func(context.Context) error, keys ...Key) error {
	if err := op(ctx); err != nil {
		return err
	}

	s.Invalidate(keys...)

	return nil
}
