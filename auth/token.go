// Package auth issues and verifies the signed identity tokens carried as
// bearer tokens. Tokens embed user id, username and email and expire after
// the configured TTL. Nothing here touches storage.
package auth

import (
	"errors"
	"time"

	"campusgpt-backend/apperr"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is our custom JWT payload (subject=userID, plus username/email).
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Issue signs a new HS256 token for the user. No side effects.
func (s *TokenService) Issue(userId, username, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userId,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token. Expiry and malformed/forged tokens
// are reported as distinct Unauthenticated errors.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	var claims Claims
	token, err := s.parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// Parser already restricts to HS256; this is just defense-in-depth.
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.New(apperr.Unauthenticated, "token expired")
		}
		return nil, apperr.New(apperr.Unauthenticated, "invalid token")
	}
	if !token.Valid || claims.Subject == "" {
		return nil, apperr.New(apperr.Unauthenticated, "invalid token")
	}
	return &claims, nil
}
