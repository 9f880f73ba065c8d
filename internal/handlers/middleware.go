package handlers

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"churchadmin/internal/metrics"
	"churchadmin/internal/models"
	"churchadmin/internal/security"
	"churchadmin/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey    ContextKey = "user"
	SessionContextKey ContextKey = "session"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	limiter     *security.RateLimiter
	logger      *slog.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrf *security.CSRFGenerator, limiter *security.RateLimiter, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{
		authService: authService,
		csrf:        csrf,
		limiter:     limiter,
		logger:      logger,
	}
}

// RequireAuth accepts a session cookie or a bearer token. Requests
// authenticated by cookie carry the session id in the context so that
// CSRFProtect can check them.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token, ok := security.BearerToken(r); ok {
			user, err := m.authService.ValidateToken(r.Context(), token)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), UserContextKey, user)))
			return
		}

		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		user, err := m.authService.ValidateSession(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, service.ErrSessionNotFound) && !errors.Is(err, service.ErrSessionExpired) {
				m.logger.Error("failed to validate session", "error", err)
			}
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, SessionContextKey, cookie.Value)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is RequireAuth restricted to administrators.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil || !user.IsAdmin {
			respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}
		next(w, r)
	})
}

// CSRFProtect checks the CSRF token on state-changing requests made with a
// session cookie. Bearer-token requests are not exposed to CSRF.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := r.Context().Value(SessionContextKey).(string)
		if ok && security.RequiresCSRF(r.Method) && !m.csrf.ValidateToken(sessionID, security.TokenFromRequest(r)) {
			respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}
		next(w, r)
	}
}

// Protected is RequireAuth plus CSRFProtect, the usual wrapping for API routes.
func (m *Middleware) Protected(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(m.CSRFProtect(next))
}

// Admin is RequireAdmin plus CSRFProtect.
func (m *Middleware) Admin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAdmin(m.CSRFProtect(next))
}

// RateLimit rejects clients that exceed the limiter's budget.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(security.GetClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later", "", nil)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack passes the connection through for websocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.status = http.StatusSwitchingProtocols
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

// Logging logs every request and records it in the HTTP metrics.
func Logging(logger *slog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.ObserveSince(metrics.HTTPDuration.WithLabelValues(route), start)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
