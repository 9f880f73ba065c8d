package handlers

import (
	"net/http"

	"churchadmin/internal/models"
	"churchadmin/internal/notify"
	"churchadmin/internal/service"
)

// AttendanceHandler serves attendance records and the merged history.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	notes      *notify.Queue
}

func NewAttendanceHandler(attendance *service.AttendanceService, notes *notify.Queue) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, notes: notes}
}

func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.attendance.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "list attendance")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

// History merges attendance records with minutes attendees.
func (h *AttendanceHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.attendance.History(r.Context())
	if err != nil {
		respondServiceError(w, err, "build attendance history")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(history))
}

func (h *AttendanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.attendance.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get attendance")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AttendanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var a models.Attendance
	if !decodeJSON(w, r, &a) {
		return
	}
	if err := h.attendance.Create(r.Context(), &a); err != nil {
		respondServiceError(w, err, "record attendance")
		return
	}
	announce(h.notes, "Attendance recorded: "+a.EventTitle)
	writeJSON(w, http.StatusCreated, a)
}

func (h *AttendanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var a models.Attendance
	if !decodeJSON(w, r, &a) {
		return
	}
	a.ID = id
	if err := h.attendance.Update(r.Context(), &a); err != nil {
		respondServiceError(w, err, "update attendance")
		return
	}
	announce(h.notes, "Attendance updated: "+a.EventTitle)
	writeJSON(w, http.StatusOK, a)
}

func (h *AttendanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.attendance.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete attendance")
		return
	}
	announce(h.notes, "Attendance deleted")
	w.WriteHeader(http.StatusNoContent)
}
