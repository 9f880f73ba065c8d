package handlers

import (
	"net/http"
	"time"

	"churchadmin/internal/models"
	"churchadmin/internal/security"
	"churchadmin/internal/service"
)

// CSRFTokens issues the CSRF token bound to a session.
type CSRFTokens interface {
	GenerateToken(sessionID string) (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	csrf                 CSRFTokens
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	appBaseURL           string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf CSRFTokens, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL, appBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		appBaseURL:           appBaseURL,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type sessionResponse struct {
	User      *models.User `json:"user"`
	CSRFToken string       `json:"csrfToken"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type statusResponse struct {
	Authenticated bool                `json:"authenticated"`
	NeedsSetup    bool                `json:"needsSetup"`
	User          *models.User        `json:"user,omitempty"`
	CSRFToken     string              `json:"csrfToken,omitempty"`
	Providers     []OAuthProviderView `json:"providers"`
}

// Status reports whether the caller is signed in and, for a fresh install,
// that the first account still needs to be created.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	hasUsers, err := h.authService.HasUsers(r.Context())
	if err != nil {
		respondServiceError(w, err, "check users")
		return
	}
	resp := statusResponse{NeedsSetup: !hasUsers, Providers: h.oauthProviderViews()}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if user, err := h.authService.ValidateSession(r.Context(), cookie.Value); err == nil {
			token, err := h.csrf.GenerateToken(cookie.Value)
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to generate CSRF token", err)
				return
			}
			resp.Authenticated = true
			resp.User = user
			resp.CSRFToken = token
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Register creates the first administrator. Later accounts are added by an
// administrator through the admin API.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	hasUsers, err := h.authService.HasUsers(r.Context())
	if err != nil {
		respondServiceError(w, err, "check users")
		return
	}
	if hasUsers {
		respondWithError(w, http.StatusForbidden, "Registration is closed; ask an administrator for an account", "", nil)
		return
	}
	if _, err := h.authService.Register(r.Context(), in.Email, in.Password, in.Name); err != nil {
		respondServiceError(w, err, "register")
		return
	}
	h.startSession(w, r, in.Email, in.Password, http.StatusCreated)
}

// Login handles password sign-in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	h.startSession(w, r, in.Email, in.Password, http.StatusOK)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, email, password string, status int) {
	session, user, err := h.authService.Login(r.Context(), email, password)
	if err != nil {
		respondServiceError(w, err, "login")
		return
	}
	h.writeSession(w, r, session, user, status)
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, session *models.Session, user *models.User, status int) {
	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	token, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to generate CSRF token", err)
		return
	}
	writeJSON(w, status, sessionResponse{User: user, CSRFToken: token, ExpiresAt: session.ExpiresAt})
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		_ = h.authService.Logout(r.Context(), cookie.Value)
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Token exchanges credentials for a bearer token for API clients.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	token, expires, user, err := h.authService.IssueToken(r.Context(), in.Email, in.Password)
	if err != nil {
		respondServiceError(w, err, "issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expires, User: user})
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GetUserFromContext(r.Context()))
}

// ChangePassword replaces the signed-in user's password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	user := GetUserFromContext(r.Context())
	if err := h.authService.ChangePassword(r.Context(), user.ID, in.CurrentPassword, in.NewPassword); err != nil {
		respondServiceError(w, err, "change password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
