package handlers

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"churchadmin/internal/metrics"
	"churchadmin/internal/security"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Members       *MemberHandler
	Events        *EventHandler
	Calendar      *CalendarHandler
	Minutes       *MinutesHandler
	Attendance    *AttendanceHandler
	Prayer        *PrayerHandler
	Admin         *AdminHandler
	Notifications *NotificationHandler
	Live          *LiveHandler
	Health        *HealthHandler
}

// NewRouter registers every route and wraps the mux in CORS and request
// logging.
func NewRouter(h Handlers, m *Middleware, corsOrigins []string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /healthz", h.Health.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth
	mux.HandleFunc("GET /api/auth/status", h.Auth.Status)
	mux.HandleFunc("POST /api/auth/register", m.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/auth/token", m.RateLimit(h.Auth.Token))
	mux.HandleFunc("POST /api/auth/logout", m.Protected(h.Auth.Logout))
	mux.HandleFunc("GET /api/auth/me", m.RequireAuth(h.Auth.Me))
	mux.HandleFunc("POST /api/auth/password", m.Protected(h.Auth.ChangePassword))
	mux.HandleFunc("GET /auth/{provider}/start", h.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", h.Auth.OAuthCallback)

	// Members and families
	mux.HandleFunc("GET /api/members", m.RequireAuth(h.Members.List))
	mux.HandleFunc("GET /api/members/tags", m.RequireAuth(h.Members.Tags))
	mux.HandleFunc("GET /api/members/{id}", m.RequireAuth(h.Members.Get))
	mux.HandleFunc("POST /api/members", m.Protected(h.Members.Create))
	mux.HandleFunc("PUT /api/members/{id}", m.Protected(h.Members.Update))
	mux.HandleFunc("DELETE /api/members/{id}", m.Protected(h.Members.Delete))
	mux.HandleFunc("GET /api/families", m.RequireAuth(h.Members.Families))

	// Events and presets
	mux.HandleFunc("GET /api/events", m.RequireAuth(h.Events.List))
	mux.HandleFunc("GET /api/events/{id}", m.RequireAuth(h.Events.Get))
	mux.HandleFunc("POST /api/events", m.Protected(h.Events.Create))
	mux.HandleFunc("PUT /api/events/{id}", m.Protected(h.Events.Update))
	mux.HandleFunc("DELETE /api/events/{id}", m.Protected(h.Events.Delete))
	mux.HandleFunc("GET /api/presets", m.RequireAuth(h.Events.ListPresets))
	mux.HandleFunc("POST /api/presets", m.Protected(h.Events.CreatePreset))
	mux.HandleFunc("PUT /api/presets/{id}", m.Protected(h.Events.UpdatePreset))
	mux.HandleFunc("DELETE /api/presets/{id}", m.Protected(h.Events.DeletePreset))
	mux.HandleFunc("POST /api/presets/{id}/events", m.Protected(h.Events.FromPreset))

	// Calendar
	mux.HandleFunc("GET /api/calendar", m.RequireAuth(h.Calendar.Events))
	mux.HandleFunc("GET /api/calendar/month", m.RequireAuth(h.Calendar.Month))
	mux.HandleFunc("GET /api/calendar/grid", m.RequireAuth(h.Calendar.Grid))
	mux.HandleFunc("GET /api/calendar/upcoming", m.RequireAuth(h.Calendar.Upcoming))
	mux.HandleFunc("GET /api/calendar/types", m.RequireAuth(h.Calendar.Types))
	mux.HandleFunc("GET /api/calendar/birthdays", m.RequireAuth(h.Calendar.Birthdays))
	mux.HandleFunc("GET /api/calendar.ics", m.RequireAuth(h.Calendar.ICS))
	mux.HandleFunc("GET /api/occurrences/{id}", m.RequireAuth(h.Calendar.Occurrence))
	mux.HandleFunc("PUT /api/occurrences/{id}", m.Protected(h.Calendar.EditOccurrence))
	mux.HandleFunc("POST /api/occurrences/{id}/cancel", m.Protected(h.Calendar.CancelOccurrence))
	mux.HandleFunc("DELETE /api/occurrences/{id}/override", m.Protected(h.Calendar.RestoreOccurrence))

	// Minutes
	mux.HandleFunc("GET /api/minutes", m.RequireAuth(h.Minutes.List))
	mux.HandleFunc("GET /api/minutes/{id}", m.RequireAuth(h.Minutes.Get))
	mux.HandleFunc("POST /api/minutes", m.Protected(h.Minutes.Create))
	mux.HandleFunc("PUT /api/minutes/{id}", m.Protected(h.Minutes.Update))
	mux.HandleFunc("DELETE /api/minutes/{id}", m.Protected(h.Minutes.Delete))
	mux.HandleFunc("POST /api/minutes/{id}/enhance", m.Protected(h.Minutes.EnhanceMinute))
	mux.HandleFunc("POST /api/enhance", m.Protected(m.RateLimit(h.Minutes.Enhance)))

	// Attendance
	mux.HandleFunc("GET /api/attendance", m.RequireAuth(h.Attendance.List))
	mux.HandleFunc("GET /api/attendance/history", m.RequireAuth(h.Attendance.History))
	mux.HandleFunc("GET /api/attendance/{id}", m.RequireAuth(h.Attendance.Get))
	mux.HandleFunc("POST /api/attendance", m.Protected(h.Attendance.Create))
	mux.HandleFunc("PUT /api/attendance/{id}", m.Protected(h.Attendance.Update))
	mux.HandleFunc("DELETE /api/attendance/{id}", m.Protected(h.Attendance.Delete))

	// Prayer concerns
	mux.HandleFunc("GET /api/prayer", m.RequireAuth(h.Prayer.List))
	mux.HandleFunc("GET /api/prayer/{id}", m.RequireAuth(h.Prayer.Get))
	mux.HandleFunc("POST /api/prayer", m.Protected(h.Prayer.Create))
	mux.HandleFunc("PUT /api/prayer/{id}", m.Protected(h.Prayer.Update))
	mux.HandleFunc("DELETE /api/prayer/{id}", m.Protected(h.Prayer.Delete))

	// Notifications and live snapshots
	mux.HandleFunc("GET /api/notifications", m.RequireAuth(h.Notifications.List))
	mux.HandleFunc("DELETE /api/notifications/{id}", m.Protected(h.Notifications.Dismiss))
	mux.HandleFunc("GET /api/live", m.RequireAuth(h.Live.Collections))
	mux.HandleFunc("GET /api/live/{collection}", m.RequireAuth(h.Live.Subscribe))

	// Admin
	mux.HandleFunc("GET /api/admin/stats", m.Admin(h.Admin.Stats))
	mux.HandleFunc("GET /api/admin/users", m.Admin(h.Admin.ListUsers))
	mux.HandleFunc("POST /api/admin/users", m.Admin(h.Admin.CreateUser))
	mux.HandleFunc("PUT /api/admin/users/{id}/admin", m.Admin(h.Admin.SetAdmin))
	mux.HandleFunc("DELETE /api/admin/users/{id}", m.Admin(h.Admin.DeleteUser))
	mux.HandleFunc("GET /api/admin/backup", m.Admin(h.Admin.ExportDatabase))
	mux.HandleFunc("POST /api/admin/backup", m.Admin(h.Admin.ImportDatabase))

	c := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", security.CSRFHeader},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return Logging(logger, c.Handler(mux))
}
