package handlers

import (
	"errors"
	"net/http"

	"churchadmin/internal/enhance"
	"churchadmin/internal/models"
	"churchadmin/internal/notify"
	"churchadmin/internal/service"
)

// MinutesHandler serves meeting minutes and the notes enhancement endpoint.
type MinutesHandler struct {
	minutes *service.MinutesService
	notes   *notify.Queue
}

func NewMinutesHandler(minutes *service.MinutesService, notes *notify.Queue) *MinutesHandler {
	return &MinutesHandler{minutes: minutes, notes: notes}
}

// author names the signed-in user for CreatedBy fields.
func author(r *http.Request) string {
	if u := GetUserFromContext(r.Context()); u != nil {
		if u.Name != "" {
			return u.Name
		}
		return u.Email
	}
	return ""
}

func (h *MinutesHandler) List(w http.ResponseWriter, r *http.Request) {
	minutes, err := h.minutes.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "list minutes")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(minutes))
}

func (h *MinutesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.minutes.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get minute")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MinutesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var m models.Minute
	if !decodeJSON(w, r, &m) {
		return
	}
	if m.CreatedBy == "" {
		m.CreatedBy = author(r)
	}
	if err := h.minutes.Create(r.Context(), &m); err != nil {
		respondServiceError(w, err, "create minute")
		return
	}
	announce(h.notes, "Minutes saved: "+m.Title)
	writeJSON(w, http.StatusCreated, m)
}

func (h *MinutesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var m models.Minute
	if !decodeJSON(w, r, &m) {
		return
	}
	m.ID = id
	if err := h.minutes.Update(r.Context(), &m); err != nil {
		respondServiceError(w, err, "update minute")
		return
	}
	announce(h.notes, "Minutes updated: "+m.Title)
	writeJSON(w, http.StatusOK, m)
}

func (h *MinutesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.minutes.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete minute")
		return
	}
	announce(h.notes, "Minutes deleted")
	w.WriteHeader(http.StatusNoContent)
}

// Enhance formats raw notes with the hosted model. The response is
// {"enhanced": "..."} on success and {"error": "..."} otherwise, with the
// upstream status passed through.
func (h *MinutesHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	var req enhance.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.minutes.Enhance(r.Context(), req)
	if err != nil {
		var upstream *enhance.UpstreamError
		switch {
		case errors.Is(err, enhance.ErrNoNotes):
			respondWithError(w, http.StatusBadRequest, "No notes provided", "", nil)
		case errors.Is(err, enhance.ErrNotConfigured):
			respondWithError(w, http.StatusInternalServerError, "AI enhancement is not configured", "enhance called without a model", err)
		case errors.As(err, &upstream):
			status, msg := enhance.StatusFor(upstream.Status)
			respondWithError(w, status, msg, "enhance request failed", err)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to enhance notes", "enhance request failed", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"enhanced": out})
}

// EnhanceMinute formats every agenda item of a stored minute and saves it.
func (h *MinutesHandler) EnhanceMinute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.minutes.EnhanceMinute(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "enhance minute")
		return
	}
	announce(h.notes, "Minutes enhanced: "+m.Title)
	writeJSON(w, http.StatusOK, m)
}
