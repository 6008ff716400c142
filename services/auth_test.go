package services

import (
	"context"
	"testing"
	"time"

	"campusgpt-backend/apperr"
	"campusgpt-backend/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(users *memUsers, sessions *memSessions) *AuthService {
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	return NewAuthService(users, sessions, tokens, bcrypt.MinCost, discardLogger())
}

func TestSignup_IssuesToken(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	svc := newAuthService(users, newMemSessions())

	user, token, err := svc.Signup(context.Background(), SignupInput{
		Username: "amrit",
		Email:    "amrit@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.Id)
	assert.NotEmpty(t, token)
	assert.NoError(t, user.ComparePassword("hunter2hunter2"))
	assert.Error(t, user.ComparePassword("wrong"))
	assert.Equal(t, 1, users.count())
}

func TestSignup_DuplicateEmailConflict(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	svc := newAuthService(users, newMemSessions())

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Username: "amrit", Email: "amrit@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, _, err = svc.Signup(context.Background(), SignupInput{
		Username: "someone-else", Email: "amrit@example.com", Password: "hunter2hunter2",
	})
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.Conflict, ae.Kind)

	// No duplicate row.
	assert.Equal(t, 1, users.count())
}

func TestLogin_OpensExactlyOneActiveSession(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	sessions := newMemSessions()
	svc := newAuthService(users, sessions)

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Username: "amrit", Email: "amrit@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "amrit@example.com", "hunter2hunter2", "10.0.0.1", "ua")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 1, sessions.activeFor(user.Id))

	// A second login supersedes the first: still exactly one live session.
	_, token2, err := svc.Login(context.Background(), "amrit@example.com", "hunter2hunter2", "10.0.0.2", "ua2")
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
	assert.Equal(t, 1, sessions.activeFor(user.Id))
	assert.Equal(t, 2, sessions.total())
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	sessions := newMemSessions()
	svc := newAuthService(users, sessions)

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Username: "amrit", Email: "amrit@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "amrit@example.com", "not-the-password", "10.0.0.1", "ua")
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.Unauthenticated, ae.Kind)
	assert.Equal(t, "invalid credentials", ae.Message)

	// No session row created.
	assert.Equal(t, 0, sessions.total())
}

func TestLogin_UnknownEmailSameMessage(t *testing.T) {
	t.Parallel()

	svc := newAuthService(newMemUsers(), newMemSessions())

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever", "10.0.0.1", "ua")
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	// Must not reveal whether the email exists.
	assert.Equal(t, "invalid credentials", ae.Message)
}

func TestLogout_ClosesSession(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	sessions := newMemSessions()
	svc := newAuthService(users, sessions)

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Username: "amrit", Email: "amrit@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	user, token, err := svc.Login(context.Background(), "amrit@example.com", "hunter2hunter2", "10.0.0.1", "ua")
	require.NoError(t, err)
	require.Equal(t, 1, sessions.activeFor(user.Id))

	require.NoError(t, svc.Logout(context.Background(), token))
	assert.Equal(t, 0, sessions.activeFor(user.Id))

	// Logging out again is a quiet no-op.
	require.NoError(t, svc.Logout(context.Background(), token))
}
