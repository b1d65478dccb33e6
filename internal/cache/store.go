package cache

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Forever is a staleness window that never expires
const Forever time.Duration = -1

const fetchTimeout = 15 * time.Second

// Key identifies one cached view entry. Dep parameterizes views such as
// artwork (track uri and size); it is empty for plain views.
type Key struct {
	View string
	Dep  string
}

func (k Key) String() string {
	if k.Dep == "" {
		return k.View
	}
	return k.View + "[" + k.Dep + "]"
}

// Fetcher loads the value of one entry
type Fetcher func(ctx context.Context) (any, error)

// Status describes an entry without reading it
type Status struct {
	FetchedAt time.Time
	Loading   bool
	Valid     bool
	Stale     bool
}

type entry struct {
	value     any
	fetchedAt time.Time
	valid     bool
	stale     bool
	loading   bool
	// gen is bumped by invalidation; a fetch started under an older gen leaves the entry stale
	gen       uint64
	storedGen uint64
	fetch     Fetcher
}

// Store is a keyed read-through cache. Concurrent loads of one key share a
// single fetch; invalidated entries that have been read are refetched in
// the background.
type Store struct {
	logger *zap.Logger
	clock  clock.Clock
	group  singleflight.Group

	mu        sync.Mutex
	entries   map[Key]*entry
	delayed   map[string]*clock.Timer
	listeners map[int]func(Key, any)
	nextID    int
	closed    bool
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces the wall clock
func WithClock(clk clock.Clock) Option {
	return func(s *Store) { s.clock = clk }
}

// NewStore creates an empty store
func NewStore(logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		logger:    logger,
		clock:     clock.New(),
		entries:   make(map[Key]*entry),
		delayed:   make(map[string]*clock.Timer),
		listeners: make(map[int]func(Key, any)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value of key, fetching it when missing, older than ttl,
// or invalidated. It blocks until the first fetch resolves.
func (s *Store) Get(ctx context.Context, key Key, ttl time.Duration, fetch Fetcher) (any, error) {
	s.mu.Lock()
	e := s.entries[key]
	if e == nil {
		e = &entry{}
		s.entries[key] = e
	}
	e.fetch = fetch
	if e.valid && !e.stale && (ttl == Forever || s.clock.Since(e.fetchedAt) < ttl) {
		v := e.value
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	return s.load(ctx, key)
}

// Peek returns the cached value of key without fetching
func (s *Store) Peek(key Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[key]
	if e == nil || !e.valid {
		return nil, false
	}
	return e.value, true
}

// Set stores value for key as freshly fetched
func (s *Store) Set(key Key, value any) {
	s.mu.Lock()
	e := s.entries[key]
	if e == nil {
		e = &entry{}
		s.entries[key] = e
	}
	e.value = value
	e.valid = true
	e.stale = false
	e.fetchedAt = s.clock.Now()
	s.mu.Unlock()

	s.notify(key, value)
}

// Status reports the state of key
func (s *Store) Status(key Key) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[key]
	if e == nil {
		return Status{}
	}
	return Status{FetchedAt: e.fetchedAt, Loading: e.loading, Valid: e.valid, Stale: e.stale}
}

// Invalidate marks every entry of view stale and refetches those that have a fetcher
func (s *Store) Invalidate(view string) {
	s.mu.Lock()
	var refetch []Key
	for key, e := range s.entries {
		if key.View != view {
			continue
		}
		e.stale = true
		e.gen++
		s.group.Forget(flightKey(key))
		if e.fetch != nil && !s.closed {
			refetch = append(refetch, key)
		}
	}
	s.mu.Unlock()

	s.logger.Debug("View invalidated", zap.String("view", view), zap.Int("refetch", len(refetch)))
	for _, key := range refetch {
		go func(key Key) {
			if _, err := s.load(context.Background(), key); err != nil {
				s.logger.Debug("Background refetch failed", zap.Stringer("key", key), zap.Error(err))
			}
		}(key)
	}
}

// InvalidateAll invalidates every view in the store
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	views := make(map[string]struct{})
	for key := range s.entries {
		views[key.View] = struct{}{}
	}
	s.mu.Unlock()

	for view := range views {
		s.Invalidate(view)
	}
}

// InvalidateAfter invalidates view once d has elapsed. A later call for
// the same view replaces the pending one.
func (s *Store) InvalidateAfter(view string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if t, ok := s.delayed[view]; ok {
		t.Stop()
	}
	var timer *clock.Timer
	timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.delayed[view] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.delayed, view)
		s.mu.Unlock()
		s.Invalidate(view)
	})
	s.delayed[view] = timer
}

// OnUpdate subscribes fn to every successfully stored value
func (s *Store) OnUpdate(fn func(Key, any)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Close cancels pending delayed invalidations
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for view, t := range s.delayed {
		t.Stop()
		delete(s.delayed, view)
	}
}

func (s *Store) load(ctx context.Context, key Key) (any, error) {
	ch := s.group.DoChan(flightKey(key), func() (any, error) {
		s.mu.Lock()
		e := s.entries[key]
		gen, fetch := e.gen, e.fetch
		e.loading = true
		s.mu.Unlock()

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		v, err := fetch(fetchCtx)

		s.mu.Lock()
		e.loading = false
		stored := err == nil && gen >= e.storedGen
		if stored {
			e.value = v
			e.valid = true
			e.fetchedAt = s.clock.Now()
			e.stale = gen != e.gen
			e.storedGen = gen
		}
		s.mu.Unlock()

		if stored {
			s.notify(key, v)
		}
		return v, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

func (s *Store) notify(key Key, value any) {
	s.mu.Lock()
	fns := make([]func(Key, any), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(key, value)
	}
}

func flightKey(k Key) string {
	return k.View + "\x00" + k.Dep
}
