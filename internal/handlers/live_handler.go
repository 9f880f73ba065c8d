package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"churchadmin/internal/live"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
)

// liveMessage is one snapshot pushed to a subscriber.
type liveMessage struct {
	Collection string `json:"collection"`
	Items      any    `json:"items"`
}

// LiveHandler streams collection snapshots over websockets. A client
// receives the current snapshot on connect and a new one after every
// change until it disconnects.
type LiveHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewLiveHandler accepts same-origin connections plus any origin listed in
// allowedOrigins ("*" allows all).
func NewLiveHandler(hub *live.Hub, allowedOrigins []string, logger *slog.Logger) *LiveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &LiveHandler{hub: hub, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin) {
				return true
			}
			return origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
	return h
}

// Collections lists the feed names a client may subscribe to.
func (h *LiveHandler) Collections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.hub.Names())
}

// latest holds the newest undelivered snapshot. Older ones are overwritten,
// so a slow client only ever skips to the most recent state.
type latest struct {
	mu      sync.Mutex
	items   any
	pending bool
	ready   chan struct{}
}

func (l *latest) put(items any) {
	l.mu.Lock()
	l.items, l.pending = items, true
	l.mu.Unlock()
	select {
	case l.ready <- struct{}{}:
	default:
	}
}

func (l *latest) take() (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, ok := l.items, l.pending
	l.items, l.pending = nil, false
	return items, ok
}

// Subscribe upgrades the connection and streams /api/live/{collection}.
func (h *LiveHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("collection")
	feed, ok := h.hub.Feed(name)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Unknown collection", "", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed", "collection", name, "error", err)
		return
	}
	defer conn.Close()

	box := &latest{ready: make(chan struct{}, 1)}
	unsubscribe := feed.SubscribeAny(box.put)
	defer unsubscribe()

	logger := h.logger.With("collection", name, "remote", r.RemoteAddr)
	logger.Debug("live subscriber connected")

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			logger.Debug("live subscriber disconnected")
			return
		case <-r.Context().Done():
			return
		case <-box.ready:
			items, ok := box.take()
			if !ok {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(liveMessage{Collection: name, Items: items}); err != nil {
				logger.Debug("live write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and closes done when the peer goes away
// or stops answering pings.
func (h *LiveHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
