package handlers

import (
	"net/http"

	"churchadmin/internal/notify"
)

// NotificationHandler exposes the notification queue.
type NotificationHandler struct {
	queue *notify.Queue
}

func NewNotificationHandler(queue *notify.Queue) *NotificationHandler {
	return &NotificationHandler{queue: queue}
}

// List returns the queued notifications. ?drain=true also clears them.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("drain") == "true" {
		writeJSON(w, http.StatusOK, nonNil(h.queue.Drain()))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(h.queue.List()))
}

// Dismiss removes one notification.
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !h.queue.Remove(id) {
		respondWithError(w, http.StatusNotFound, "Notification not found", "", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// announce queues a success message when a queue is configured.
func announce(q *notify.Queue, msg string) {
	if q != nil {
		_, _ = q.Success(msg)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
