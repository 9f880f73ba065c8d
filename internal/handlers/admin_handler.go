package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"churchadmin/internal/models"
	"churchadmin/internal/notify"
	"churchadmin/internal/service"
)

// AdminHandler handles administrator accounts and database backups.
type AdminHandler struct {
	authService   *service.AuthService
	backupService *service.BackupService
	notes         *notify.Queue
	version       string
	logger        *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *service.AuthService, backupService *service.BackupService, notes *notify.Queue, version string, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		authService:   authService,
		backupService: backupService,
		notes:         notes,
		version:       version,
		logger:        logger,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, err, "list users")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"isAdmin"`
}

// CreateUser adds another account. Accounts created here can also sign in
// with Google using the same email.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, err, "create user")
		return
	}
	if req.IsAdmin && !user.IsAdmin {
		if err := h.authService.SetAdmin(r.Context(), user.ID, true); err != nil {
			respondServiceError(w, err, "grant admin")
			return
		}
		user.IsAdmin = true
	}
	h.logger.Info("user created", "email", user.Email, "by", author(r))
	announce(h.notes, "User added: "+user.Email)
	writeJSON(w, http.StatusCreated, user)
}

// SetAdmin grants or revokes admin rights with {"isAdmin": bool}.
func (h *AdminHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.authService.SetAdmin(r.Context(), id, req.IsAdmin); err != nil {
		respondServiceError(w, err, "update user")
		return
	}
	user, err := h.authService.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if me := GetUserFromContext(r.Context()); me != nil && me.ID == id {
		respondWithError(w, http.StatusConflict, "You cannot delete your own account", "", nil)
		return
	}
	if err := h.authService.DeleteUser(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete user")
		return
	}
	announce(h.notes, "User removed")
	w.WriteHeader(http.StatusNoContent)
}

// ExportDatabase streams a JSON backup as a file download.
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("churchadmin_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := h.backupService.ExportToWriter(r.Context(), w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export database", "Error exporting database", err)
		return
	}
	h.logger.Info("database exported", "by", author(r))
}

// ImportDatabase restores a backup from the request body. With
// ?replace=true existing rows are cleared first; otherwise rows that
// collide with existing ids fail the whole import.
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	replace, err := strconv.ParseBool(r.URL.Query().Get("replace"))
	if err != nil && r.URL.Query().Get("replace") != "" {
		respondWithError(w, http.StatusBadRequest, "Invalid replace flag", "", nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBackupBytes)

	data, err := h.backupService.ImportFromReader(r.Context(), r.Body, replace)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to import database: "+err.Error(), "Error importing database", err)
		return
	}
	h.logger.Info("database imported", "by", author(r), "replace", replace)
	announce(h.notes, "Database imported")
	writeJSON(w, http.StatusOK, map[string]any{
		"version":  data.Version,
		"imported": data.Counts(),
	})
}

// DatabaseStats holds row counts per table.
type DatabaseStats struct {
	Version string         `json:"version"`
	Counts  map[string]int `json:"counts"`
	User    *models.User   `json:"user,omitempty"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.backupService.Snapshot(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting database stats", err)
		return
	}
	writeJSON(w, http.StatusOK, DatabaseStats{
		Version: h.version,
		Counts:  snap.Counts(),
		User:    GetUserFromContext(r.Context()),
	})
}
