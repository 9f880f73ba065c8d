// Package live keeps in-memory snapshots of stored collections and pushes
// every change to subscribers.
//
// Each Collection owns one dispatch goroutine (started by Run). Loads and
// handler calls happen only on that goroutine, so a handler never runs
// concurrently with itself or with another handler of the same collection.
package live

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// LoadFunc reads the full contents of a collection from the store.
type LoadFunc[T any] func(ctx context.Context) ([]T, error)

// Snapshot is an immutable view of a collection at one point in time.
type Snapshot[T any] struct {
	items    []T
	Version  uint64
	LoadedAt time.Time
}

// Items returns a copy of the snapshot contents.
func (s Snapshot[T]) Items() []T {
	return slices.Clone(s.items)
}

// Len returns the number of items.
func (s Snapshot[T]) Len() int {
	return len(s.items)
}

type subscription[T any] struct {
	handler func(Snapshot[T])
	active  atomic.Bool
	// pending is set until the subscriber has seen its first snapshot.
	pending bool
}

// Collection is a live view of one stored collection.
type Collection[T any] struct {
	name   string
	load   LoadFunc[T]
	logger *slog.Logger

	wake chan struct{}

	mu      sync.Mutex
	subs    []*subscription[T]
	dirty   bool
	current Snapshot[T]
	loaded  bool
	running bool
}

// NewCollection creates a collection. Nothing is loaded until Run is called.
func NewCollection[T any](name string, load LoadFunc[T], logger *slog.Logger) *Collection[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection[T]{
		name:   name,
		load:   load,
		logger: logger.With("collection", name),
		wake:   make(chan struct{}, 1),
		dirty:  true,
	}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Current returns the latest snapshot and whether one has been loaded.
func (c *Collection[T]) Current() (Snapshot[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.loaded
}

// Subscribe registers handler. It receives the current snapshot as soon as
// one is available and every later snapshot, until the returned function is
// called. The unsubscribe function is safe to call more than once and from
// inside the handler.
func (c *Collection[T]) Subscribe(handler func(Snapshot[T])) (unsubscribe func()) {
	sub := &subscription[T]{handler: handler, pending: true}
	sub.active.Store(true)

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.signal()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			c.mu.Lock()
			c.subs = slices.DeleteFunc(c.subs, func(s *subscription[T]) bool { return s == sub })
			c.mu.Unlock()
		})
	}
}

// SubscribeAny is Subscribe for callers that do not know T.
func (c *Collection[T]) SubscribeAny(handler func(items any)) (unsubscribe func()) {
	return c.Subscribe(func(s Snapshot[T]) {
		handler(s.items)
	})
}

// Subscribers returns the number of active subscriptions.
func (c *Collection[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Refresh asks the dispatch goroutine to reload the collection. Requests
// made while a load is pending are coalesced.
func (c *Collection[T]) Refresh() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
	c.signal()
}

func (c *Collection[T]) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Run loads the collection and delivers snapshots until ctx is done.
// It must be called at most once.
func (c *Collection[T]) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		panic("live: Run called twice on collection " + c.name)
	}
	c.running = true
	c.mu.Unlock()

	c.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.wake:
			c.cycle(ctx)
		}
	}
}

func (c *Collection[T]) cycle(ctx context.Context) {
	c.mu.Lock()
	reload := c.dirty
	c.dirty = false
	c.mu.Unlock()

	if reload {
		c.reload(ctx)
	}

	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return
	}
	snap := c.current
	targets := make([]*subscription[T], 0, len(c.subs))
	for _, sub := range c.subs {
		if reload || sub.pending {
			sub.pending = false
			targets = append(targets, sub)
		}
	}
	c.mu.Unlock()

	for _, sub := range targets {
		if !sub.active.Load() {
			continue
		}
		sub.handler(snap)
	}
}

// reload replaces the snapshot. A failed load is logged and yields an
// empty collection.
func (c *Collection[T]) reload(ctx context.Context) {
	start := time.Now()
	items, err := c.load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error("failed to load collection", "error", err)
		items = nil
	}
	if items == nil {
		items = []T{}
	}

	c.mu.Lock()
	c.current = Snapshot[T]{items: items, Version: c.current.Version + 1, LoadedAt: time.Now()}
	c.loaded = true
	c.mu.Unlock()

	observeLoad(c.name, len(items), err, time.Since(start))
	c.logger.Debug("collection loaded", "items", len(items), "duration", time.Since(start))
}
