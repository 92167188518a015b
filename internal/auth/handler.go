package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"riskintel-backend/internal/access"
	"riskintel-backend/internal/api"
	"riskintel-backend/internal/audit"
	"riskintel-backend/internal/store"
)

// Handler handles authentication endpoints.
type Handler struct {
	store     *store.Store
	jwtSecret string
	audit     *audit.Buffer
}

// NewHandler creates a Handler. The audit buffer may be nil.
func NewHandler(s *store.Store, jwtSecret string, auditBuf *audit.Buffer) *Handler {
	return &Handler{store: s, jwtSecret: jwtSecret, audit: auditBuf}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}
	if body.Email == "" || body.Password == "" {
		return api.UnauthorizedError("Email and password are required")
	}

	ctx := c.Context()

	user, err := h.findUserByEmail(ctx, body.Email)
	if err != nil {
		return api.UnauthorizedError("Invalid email or password")
	}

	active, _ := user["active"].(bool)
	if !active {
		return api.UnauthorizedError("Account is disabled")
	}

	userID, _ := user["id"].(string)
	role, _ := user["role"].(string)

	passwordHash, _ := user["password_hash"].(string)
	if !CheckPassword(body.Password, passwordHash) {
		h.audit.Enqueue(audit.Event{Type: "login_failed", UserID: userID, Role: role, Path: c.Path()})
		return api.UnauthorizedError("Invalid email or password")
	}

	permissions := store.ExtractStrings(user["permissions"])

	pair, err := h.generateTokenPair(ctx, userID, role, permissions)
	if err != nil {
		return err
	}

	h.audit.Enqueue(audit.Event{Type: "login", UserID: userID, Role: role, Path: c.Path()})
	return c.JSON(fiber.Map{"data": pair})
}

// Refresh handles POST /api/auth/refresh.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}
	if body.RefreshToken == "" {
		return api.UnauthorizedError("Refresh token is required")
	}

	ctx := c.Context()

	row, err := store.QueryRow(ctx, h.store.Pool,
		`SELECT rt.id, rt.user_id, rt.expires_at, u.role, u.permissions, u.active
		 FROM _refresh_tokens rt
		 JOIN _users u ON u.id = rt.user_id
		 WHERE rt.token = $1`, body.RefreshToken)
	if err != nil {
		return api.UnauthorizedError("Invalid refresh token")
	}

	expiresAt, _ := row["expires_at"].(time.Time)
	if time.Now().After(expiresAt) {
		_, _ = store.Exec(ctx, h.store.Pool,
			"DELETE FROM _refresh_tokens WHERE token = $1", body.RefreshToken)
		return api.UnauthorizedError("Refresh token expired")
	}

	active, _ := row["active"].(bool)
	if !active {
		return api.UnauthorizedError("Account is disabled")
	}

	// Delete the used refresh token (rotation)
	tokenID, _ := row["id"].(string)
	_, _ = store.Exec(ctx, h.store.Pool,
		"DELETE FROM _refresh_tokens WHERE id = $1", tokenID)

	userID, _ := row["user_id"].(string)
	role, _ := row["role"].(string)
	permissions := store.ExtractStrings(row["permissions"])

	pair, err := h.generateTokenPair(ctx, userID, role, permissions)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": pair})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}
	if body.RefreshToken == "" {
		return api.UnauthorizedError("Refresh token is required")
	}

	_, _ = store.Exec(c.Context(), h.store.Pool,
		"DELETE FROM _refresh_tokens WHERE token = $1", body.RefreshToken)

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me — the session bootstrap/verify call. It runs
// behind the auth middleware, so the session is already loaded and current.
func (h *Handler) Me(c *fiber.Ctx) error {
	sess := access.SessionFrom(c)
	if sess == nil {
		return api.UnauthorizedError("Authentication required")
	}
	return c.JSON(fiber.Map{"data": sess})
}

// RegisterRoutes registers auth routes on the given Fiber app. Login,
// refresh and logout are public; /me requires the auth middleware.
func RegisterRoutes(app *fiber.App, h *Handler, authMW fiber.Handler) {
	grp := app.Group("/api/auth")
	grp.Post("/login", h.Login)
	grp.Post("/refresh", h.Refresh)
	grp.Post("/logout", h.Logout)
	grp.Get("/me", authMW, h.Me)
}

// --- helpers ---

func (h *Handler) findUserByEmail(ctx context.Context, email string) (map[string]any, error) {
	return store.QueryRow(ctx, h.store.Pool,
		"SELECT id, email, password_hash, role, permissions, active FROM _users WHERE email = $1", email)
}

func (h *Handler) generateTokenPair(ctx context.Context, userID, role string, permissions []string) (*TokenPair, error) {
	accessToken, err := GenerateAccessToken(userID, role, permissions, h.jwtSecret)
	if err != nil {
		return nil, api.NewAppError("INTERNAL_ERROR", 500, "Failed to generate access token")
	}

	refreshToken := GenerateRefreshToken()
	expiresAt := time.Now().Add(RefreshTokenTTL)

	_, err = store.Exec(ctx, h.store.Pool,
		`INSERT INTO _refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, refreshToken, expiresAt)
	if err != nil {
		return nil, api.NewAppError("INTERNAL_ERROR", 500, "Failed to store refresh token")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
