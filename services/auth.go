package services

import (
	"context"
	"errors"
	"log/slog"

	"campusgpt-backend/apperr"
	"campusgpt-backend/auth"
	"campusgpt-backend/models"
	"campusgpt-backend/stores"
)

type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FullName  string
	StudentId *string
}

type AuthService struct {
	users      stores.CredentialStore
	sessions   stores.SessionLedger
	tokens     *auth.TokenService
	bcryptCost int
	log        *slog.Logger
}

func NewAuthService(users stores.CredentialStore, sessions stores.SessionLedger, tokens *auth.TokenService, bcryptCost int, log *slog.Logger) *AuthService {
	return &AuthService{users: users, sessions: sessions, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

// Signup creates the user and returns a token for immediate use. Duplicate
// username or email is a conflict, checked up front and again by the unique
// indexes on insert.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	taken, err := s.users.Taken(ctx, in.Username, in.Email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", apperr.New(apperr.Conflict, "username or email already exists")
	}

	user := models.User{
		Username:  in.Username,
		Email:     in.Email,
		FullName:  in.FullName,
		StudentId: in.StudentId,
	}
	if err := user.SetPassword(in.Password, s.bcryptCost); err != nil {
		return nil, "", apperr.Wrap(apperr.ServerError, "could not hash password", err)
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.Id, user.Username, user.Email)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.ServerError, "could not issue token", err)
	}
	return &user, token, nil
}

// Login verifies credentials, issues a token and opens the session
// (superseding any prior sessions for the user). The rejection message is
// the same whether the email is unknown or the password wrong.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, stores.ErrNotFound) {
		return nil, "", apperr.New(apperr.Unauthenticated, "invalid credentials")
	}
	if err != nil {
		return nil, "", err
	}
	if err := user.ComparePassword(password); err != nil {
		return nil, "", apperr.New(apperr.Unauthenticated, "invalid credentials")
	}

	token, err := s.tokens.Issue(user.Id, user.Username, user.Email)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.ServerError, "could not issue token", err)
	}
	if err := s.sessions.Open(ctx, user.Id, token, ipAddress, userAgent); err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout expires the session matching the presented token. Closing an
// already-expired or unknown session succeeds quietly.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Close(ctx, token)
}
