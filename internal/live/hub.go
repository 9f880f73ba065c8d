package live

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Feed is the type-erased face of a Collection, used by the websocket
// endpoint and by Hub.
type Feed interface {
	Name() string
	Refresh()
	SubscribeAny(handler func(items any)) (unsubscribe func())
	Run(ctx context.Context) error
}

// Hub owns a set of named feeds and runs their dispatch goroutines.
type Hub struct {
	mu    sync.RWMutex
	feeds map[string]Feed
}

// NewHub creates a hub with the given feeds registered.
func NewHub(feeds ...Feed) *Hub {
	h := &Hub{feeds: make(map[string]Feed)}
	for _, f := range feeds {
		h.Register(f)
	}
	return h
}

// Register adds f, replacing any feed with the same name.
func (h *Hub) Register(f Feed) {
	h.mu.Lock()
	h.feeds[f.Name()] = f
	h.mu.Unlock()
}

// Feed looks up a feed by name.
func (h *Hub) Feed(name string) (Feed, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, ok := h.feeds[name]
	return f, ok
}

// Names lists the registered feeds, sorted.
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.feeds))
	for name := range h.feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Refresh reloads the named feeds. Unknown names are ignored.
func (h *Hub) Refresh(names ...string) {
	for _, name := range names {
		if f, ok := h.Feed(name); ok {
			f.Refresh()
		}
	}
}

// Run runs every feed until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	h.mu.RLock()
	feeds := make([]Feed, 0, len(h.feeds))
	for _, f := range h.feeds {
		feeds = append(feeds, f)
	}
	h.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range feeds {
		g.Go(func() error { return f.Run(ctx) })
	}
	return g.Wait()
}

// Link refreshes dst whenever src publishes a snapshot, so a derived view
// is recomputed when one of its sources changes.
func Link(src, dst Feed) (unlink func()) {
	return src.SubscribeAny(func(any) { dst.Refresh() })
}
