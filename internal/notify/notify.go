// Package notify holds the transient notifications shown to signed-in
// administrators ("Member saved", "Failed to load events").
//
// A Queue is created at startup, handed to whoever raises notifications and
// closed on shutdown, which cancels pending expiry timers.
package notify

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// Kinds of notification.
const (
	KindInfo    = "info"
	KindSuccess = "success"
	KindWarning = "warning"
	KindError   = "error"
)

// DefaultDuration is how long a notification stays queued.
const DefaultDuration = 3 * time.Second

// ErrClosed is returned when adding to a closed queue.
var ErrClosed = errors.New("notification queue closed")

// Notification is a single queued message.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Kind      string    `json:"type"`
	Duration  int64     `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
}

// Refresher is told when the queue changes.
type Refresher interface {
	Refresh(names ...string)
}

// Feed is the live collection name for notifications.
const Feed = "notifications"

// Queue is a concurrency-safe notification queue. Entries with a positive
// duration remove themselves when it elapses.
type Queue struct {
	mu      sync.Mutex
	nextID  int64
	items   []Notification
	timers  map[int64]*time.Timer
	closed  bool
	max     int
	refresh Refresher
}

// New creates a queue holding at most max entries; older entries are
// dropped first. refresh may be nil.
func New(max int, refresh Refresher) *Queue {
	if max <= 0 {
		max = 50
	}
	return &Queue{timers: make(map[int64]*time.Timer), max: max, refresh: refresh}
}

// Add queues a message and returns its id. A zero duration keeps the entry
// until it is removed.
func (q *Queue) Add(message, kind string, duration time.Duration) (int64, error) {
	if kind == "" {
		kind = KindInfo
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0, ErrClosed
	}
	q.nextID++
	id := q.nextID
	q.items = append(q.items, Notification{
		ID:        id,
		Message:   message,
		Kind:      kind,
		Duration:  duration.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	})
	for len(q.items) > q.max {
		q.stopTimer(q.items[0].ID)
		q.items = q.items[1:]
	}
	if duration > 0 {
		q.timers[id] = time.AfterFunc(duration, func() { q.Remove(id) })
	}
	q.mu.Unlock()

	q.changed()
	return id, nil
}

func (q *Queue) Info(message string) (int64, error) {
	return q.Add(message, KindInfo, DefaultDuration)
}

func (q *Queue) Success(message string) (int64, error) {
	return q.Add(message, KindSuccess, DefaultDuration)
}

func (q *Queue) Warning(message string) (int64, error) {
	return q.Add(message, KindWarning, DefaultDuration)
}

func (q *Queue) Error(message string) (int64, error) {
	return q.Add(message, KindError, DefaultDuration)
}

// Remove drops an entry and reports whether it was queued.
func (q *Queue) Remove(id int64) bool {
	q.mu.Lock()
	i := slices.IndexFunc(q.items, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		q.mu.Unlock()
		return false
	}
	q.stopTimer(id)
	q.items = slices.Delete(q.items, i, i+1)
	q.mu.Unlock()

	q.changed()
	return true
}

// List returns a copy of the queued notifications, oldest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Drain returns and clears every queued notification.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	out := q.items
	q.items = nil
	for id := range q.timers {
		q.stopTimer(id)
	}
	q.mu.Unlock()

	if len(out) > 0 {
		q.changed()
	}
	return out
}

// Close stops pending timers and rejects further additions.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for id := range q.timers {
		q.stopTimer(id)
	}
	q.items = nil
}

// stopTimer must be called with mu held.
func (q *Queue) stopTimer(id int64) {
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
}

func (q *Queue) changed() {
	if q.refresh != nil {
		q.refresh.Refresh(Feed)
	}
}
