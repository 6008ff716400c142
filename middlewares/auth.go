package middlewares

import (
	"context"
	"strings"

	"campusgpt-backend/auth"

	"github.com/gofiber/fiber/v2"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "

	// Locals keys set for the handler chain.
	LocalUserId       = "userID"
	LocalClaims       = "claims"
	LocalSessionToken = "sessionToken"
)

// UserChecker is the liveness check against the credential store: a token
// may verify while the account it references is already gone.
type UserChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// AuthGate validates a Bearer token and admits the request with the decoded
// principal in c.Locals. Pure read-check, no mutation; runs before the query
// pipeline and before any profile access.
func AuthGate(tokens *auth.TokenService, users UserChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(authHeader)
		if h == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "authorization header missing"})
		}
		if !strings.HasPrefix(strings.ToLower(h), strings.ToLower(bearerPrefix)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "bearer token missing"})
		}
		raw := strings.TrimSpace(h[len(bearerPrefix):])
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "bearer token missing"})
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			return err
		}

		exists, err := users.Exists(c.UserContext(), claims.Subject)
		if err != nil {
			return err
		}
		if !exists {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "user not found"})
		}

		// Stash the principal for the request.
		c.Locals(LocalUserId, claims.Subject)
		c.Locals(LocalClaims, claims)
		c.Locals(LocalSessionToken, raw)

		return c.Next()
	}
}
