package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"churchadmin/internal/models"
	"churchadmin/internal/repository"
	"churchadmin/internal/security"
	"churchadmin/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotInvited         = errors.New("no account exists for this email; ask an administrator to add you")
	ErrLastAdmin          = errors.New("cannot remove the last administrator")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	tokens          *security.TokenManager
	sessionDuration time.Duration
	now             Clock
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenManager, sessionDuration time.Duration, now Clock) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		tokens:          tokens,
		sessionDuration: sessionDuration,
		now:             clockOrNow(now),
	}
}

// HasUsers reports whether any account exists. Until one does, anyone may
// register and becomes the first administrator.
func (s *AuthService) HasUsers(ctx context.Context) (bool, error) {
	n, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateAccount(email, password, name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) newSession(ctx context.Context, user *models.User) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := s.now().Add(s.sessionDuration)
	session, err := s.userRepo.CreateSession(ctx, sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// authenticate checks an email and password pair.
func (s *AuthService) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.newSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		_ = s.userRepo.DeleteSession(ctx, sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.userRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions and returns how many went.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.userRepo.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}

// OAuthLogin signs in with an OAuth identity. The identity is linked to the
// account with the same email. A new account is only created while no
// account exists at all; otherwise an administrator must add the user first.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		switch {
		case existingUser != nil:
			if existingUser.OAuthProvider != "" {
				return nil, nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(ctx, existingUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existingUser
		default:
			hasUsers, err := s.HasUsers(ctx)
			if err != nil {
				return nil, nil, err
			}
			if hasUsers {
				return nil, nil, ErrNotInvited
			}
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			newUser, err := s.userRepo.CreateUser(ctx, email, "", name)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
			if err := s.userRepo.LinkOAuthProvider(ctx, newUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = newUser
		}
	}

	session, err := s.newSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// IssueToken exchanges credentials for a bearer token.
func (s *AuthService) IssueToken(ctx context.Context, email, password string) (string, time.Time, *models.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	token, expires, err := s.tokens.Issue(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expires, user, nil
}

// ValidateToken resolves a bearer token to its user. The user is re-read so
// that deleted accounts lose access before the token expires.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, security.ErrInvalidToken
	}
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, security.ErrInvalidToken
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
// Accounts created through OAuth have no password and may set one directly.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash != "" && !security.CheckPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if err := validation.ValidatePassword(next); err != nil {
		return err
	}
	hash, err := security.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, hash)
}

// GetUser returns a user or ErrUserNotFound.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAllUsers(ctx)
}

func (s *AuthService) adminCount(ctx context.Context) (int, error) {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range users {
		if u.IsAdmin {
			n++
		}
	}
	return n, nil
}

// SetAdmin grants or revokes admin rights, keeping at least one admin.
func (s *AuthService) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin && !isAdmin {
		n, err := s.adminCount(ctx)
		if err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastAdmin
		}
	}
	return s.userRepo.SetAdmin(ctx, id, isAdmin)
}

// DeleteUser removes an account and its sessions, keeping at least one admin.
func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		n, err := s.adminCount(ctx)
		if err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastAdmin
		}
	}
	return s.userRepo.DeleteUser(ctx, id)
}
