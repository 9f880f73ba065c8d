package handlers

import (
	"net/http"

	"churchadmin/internal/models"
	"churchadmin/internal/notify"
	"churchadmin/internal/service"
)

// PrayerHandler serves prayer concerns.
type PrayerHandler struct {
	prayer *service.PrayerService
	notes  *notify.Queue
}

func NewPrayerHandler(prayer *service.PrayerService, notes *notify.Queue) *PrayerHandler {
	return &PrayerHandler{prayer: prayer, notes: notes}
}

func (h *PrayerHandler) List(w http.ResponseWriter, r *http.Request) {
	concerns, err := h.prayer.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "list prayer concerns")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(concerns))
}

func (h *PrayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.prayer.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get prayer concern")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create stores a concern. Urgent concerns are emailed to the prayer team.
func (h *PrayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.PrayerConcern
	if !decodeJSON(w, r, &c) {
		return
	}
	if c.CreatedBy == "" {
		c.CreatedBy = author(r)
	}
	if err := h.prayer.Create(r.Context(), &c); err != nil {
		respondServiceError(w, err, "create prayer concern")
		return
	}
	announce(h.notes, "Prayer concern added: "+c.Title)
	writeJSON(w, http.StatusCreated, c)
}

func (h *PrayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var c models.PrayerConcern
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = id
	if err := h.prayer.Update(r.Context(), &c); err != nil {
		respondServiceError(w, err, "update prayer concern")
		return
	}
	announce(h.notes, "Prayer concern updated: "+c.Title)
	writeJSON(w, http.StatusOK, c)
}

func (h *PrayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.prayer.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete prayer concern")
		return
	}
	announce(h.notes, "Prayer concern removed")
	w.WriteHeader(http.StatusNoContent)
}
