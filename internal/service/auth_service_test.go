package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchadmin/internal/security"
)

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)

	has, err := s.auth.HasUsers(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	pastor, err := s.auth.Register(ctx, "Pastor@Example.com", "password123", "Pastor Ben")
	require.NoError(t, err)
	assert.True(t, pastor.IsAdmin)
	assert.Equal(t, "pastor@example.com", pastor.Email)

	_, err = s.auth.Register(ctx, "pastor@example.com", "password123", "Again")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = s.auth.Login(ctx, "pastor@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, user, err := s.auth.Login(ctx, "pastor@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, pastor.ID, user.ID)

	validated, err := s.auth.ValidateSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, pastor.ID, validated.ID)

	s.now = s.now.Add(25 * time.Hour)
	_, err = s.auth.ValidateSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, err = s.auth.ValidateSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound, "expired sessions are deleted on sight")
}

func TestAuthServiceCleanupExpiredSessions(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)
	_, err := s.auth.Register(ctx, "a@example.com", "password123", "Admin")
	require.NoError(t, err)
	_, _, err = s.auth.Login(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	n, err := s.auth.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	s.now = s.now.Add(48 * time.Hour)
	n, err = s.auth.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAuthServiceOAuth(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)

	_, first, err := s.auth.OAuthLogin(ctx, "google", "sub-1", "first@example.com", "")
	require.NoError(t, err)
	assert.True(t, first.IsAdmin, "first account bootstraps the admin")
	assert.Equal(t, "first", first.Name)

	_, again, err := s.auth.OAuthLogin(ctx, "google", "sub-1", "first@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, _, err = s.auth.OAuthLogin(ctx, "google", "sub-2", "stranger@example.com", "Stranger")
	assert.ErrorIs(t, err, ErrNotInvited)

	_, err = s.auth.Register(ctx, "secretary@example.com", "password123", "Secretary")
	require.NoError(t, err)
	_, linked, err := s.auth.OAuthLogin(ctx, "google", "sub-3", "secretary@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Secretary", linked.Name)

	_, _, err = s.auth.OAuthLogin(ctx, "google", "sub-4", "secretary@example.com", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceTokens(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)
	admin, err := s.auth.Register(ctx, "a@example.com", "password123", "Admin")
	require.NoError(t, err)

	token, expires, user, err := s.auth.IssueToken(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, user.ID)
	assert.True(t, expires.After(time.Now()))

	resolved, err := s.auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resolved.ID)

	_, err = s.auth.ValidateToken(ctx, token+"x")
	assert.ErrorIs(t, err, security.ErrInvalidToken)

	_, _, _, err = s.auth.IssueToken(ctx, "a@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceAdminManagement(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)
	admin, err := s.auth.Register(ctx, "a@example.com", "password123", "Admin")
	require.NoError(t, err)
	helper, err := s.auth.Register(ctx, "b@example.com", "password123", "Helper")
	require.NoError(t, err)

	assert.ErrorIs(t, s.auth.SetAdmin(ctx, admin.ID, false), ErrLastAdmin)
	assert.ErrorIs(t, s.auth.DeleteUser(ctx, admin.ID), ErrLastAdmin)

	require.NoError(t, s.auth.SetAdmin(ctx, helper.ID, true))
	require.NoError(t, s.auth.SetAdmin(ctx, admin.ID, false))

	require.NoError(t, s.auth.ChangePassword(ctx, helper.ID, "password123", "newpassword1"))
	assert.ErrorIs(t, s.auth.ChangePassword(ctx, helper.ID, "password123", "another1"), ErrInvalidCredentials)
	_, _, err = s.auth.Login(ctx, "b@example.com", "newpassword1")
	require.NoError(t, err)

	require.NoError(t, s.auth.DeleteUser(ctx, admin.ID))
	assert.ErrorIs(t, s.auth.DeleteUser(ctx, admin.ID), ErrUserNotFound)

	users, err := s.auth.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
