package handlers

import (
	"net/http"

	"churchadmin/internal/calendar"
	"churchadmin/internal/models"
	"churchadmin/internal/notify"
	"churchadmin/internal/service"
)

// EventHandler serves persisted events and event presets.
type EventHandler struct {
	events *service.EventService
	notes  *notify.Queue
}

func NewEventHandler(events *service.EventService, notes *notify.Queue) *EventHandler {
	return &EventHandler{events: events, notes: notes}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "list events")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	e, err := h.events.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get event")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Create stores an event. Setting overrideOf to a virtual occurrence id
// replaces that occurrence; only one override per occurrence is allowed.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if !decodeJSON(w, r, &e) {
		return
	}
	if e.OverrideOf != "" && !calendar.IsVirtualID(e.OverrideOf) {
		respondServiceError(w, service.ErrNotAnOccurrence, "create event")
		return
	}
	if err := h.events.Create(r.Context(), &e); err != nil {
		respondServiceError(w, err, "create event")
		return
	}
	announce(h.notes, "Event saved: "+e.Title)
	writeJSON(w, http.StatusCreated, e)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var e models.Event
	if !decodeJSON(w, r, &e) {
		return
	}
	e.ID = id
	if err := h.events.Update(r.Context(), &e); err != nil {
		respondServiceError(w, err, "update event")
		return
	}
	announce(h.notes, "Event updated: "+e.Title)
	writeJSON(w, http.StatusOK, e)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.events.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete event")
		return
	}
	announce(h.notes, "Event deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.events.Presets(r.Context())
	if err != nil {
		respondServiceError(w, err, "list presets")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(presets))
}

func (h *EventHandler) CreatePreset(w http.ResponseWriter, r *http.Request) {
	var p models.EventPreset
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := h.events.CreatePreset(r.Context(), &p); err != nil {
		respondServiceError(w, err, "create preset")
		return
	}
	announce(h.notes, "Preset saved: "+p.Name)
	writeJSON(w, http.StatusCreated, p)
}

func (h *EventHandler) UpdatePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var p models.EventPreset
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = id
	if err := h.events.UpdatePreset(r.Context(), &p); err != nil {
		respondServiceError(w, err, "update preset")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *EventHandler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.events.DeletePreset(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete preset")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FromPreset creates an event on {"date": "YYYY-MM-DD"} from a preset.
func (h *EventHandler) FromPreset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		Date string `json:"date"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := h.events.CreateFromPreset(r.Context(), id, in.Date)
	if err != nil {
		respondServiceError(w, err, "create event from preset")
		return
	}
	announce(h.notes, "Event saved: "+e.Title)
	writeJSON(w, http.StatusCreated, e)
}
