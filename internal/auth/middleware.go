package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"riskintel-backend/internal/access"
	"riskintel-backend/internal/api"
	"riskintel-backend/internal/store"
)

// Middleware returns a Fiber middleware that validates JWT bearer tokens
// and installs the Session on the request. The session is loaded fresh
// from the store per request so profile or role updates are visible to the
// very next read, not just after re-login.
func Middleware(s *store.Store, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return api.UnauthorizedError("Missing auth token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return api.UnauthorizedError("Invalid auth header format")
		}

		claims, err := ParseAccessToken(parts[1], secret)
		if err != nil {
			return api.UnauthorizedError("Invalid or expired token")
		}

		sess, err := loadSession(c, s, claims.Subject)
		if err != nil {
			return api.UnauthorizedError("Unknown or disabled account")
		}

		c.Locals(access.SessionKey, sess)
		return c.Next()
	}
}

func loadSession(c *fiber.Ctx, s *store.Store, userID string) (*access.Session, error) {
	row, err := store.QueryRow(c.Context(), s.Pool,
		"SELECT id, email, name, role, permissions, active FROM _users WHERE id = $1", userID)
	if err != nil {
		return nil, err
	}
	if active, _ := row["active"].(bool); !active {
		return nil, store.ErrNotFound
	}

	id, _ := row["id"].(string)
	email, _ := row["email"].(string)
	name, _ := row["name"].(string)
	role, _ := row["role"].(string)

	return &access.Session{
		ID:          id,
		Name:        name,
		Email:       email,
		Role:        role,
		Permissions: store.ExtractStrings(row["permissions"]),
	}, nil
}
