package admin

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"riskintel-backend/internal/access"
	"riskintel-backend/internal/api"
	"riskintel-backend/internal/auth"
	"riskintel-backend/internal/store"
)

// Handler manages user accounts. Every route is admin-gated.
type Handler struct {
	store *store.Store
}

func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

var knownRoles = map[string]bool{
	access.RoleAdmin:             true,
	access.RoleAnalyst:           true,
	access.RoleComplianceOfficer: true,
	access.RoleViewer:            true,
}

var knownPermissions = map[string]bool{
	access.PermViewRisk:       true,
	access.PermViewFraud:      true,
	access.PermViewCompliance: true,
	access.PermManageAlerts:   true,
	access.PermManageUsers:    true,
	access.PermExportReports:  true,
}

const userColumns = "id, email, name, role, permissions, active, created_at, updated_at"

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	rows, err := store.QueryRows(c.Context(), h.store.Pool,
		"SELECT "+userColumns+" FROM _users ORDER BY email")
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(fiber.Map{"data": rows})
}

// GetUser handles GET /api/admin/users/:id.
func (h *Handler) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")
	row, err := store.QueryRow(c.Context(), h.store.Pool,
		"SELECT "+userColumns+" FROM _users WHERE id = $1", id)
	if err != nil {
		return api.NotFoundError("user", id)
	}
	return c.JSON(fiber.Map{"data": row})
}

type createUserBody struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// CreateUser handles POST /api/admin/users.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var body createUserBody
	if err := c.BodyParser(&body); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}
	if body.Role == "" {
		body.Role = access.RoleViewer
	}
	if err := validateUser(body.Email, body.Password, body.Role, body.Permissions); err != nil {
		return err
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		return api.NewAppError("INTERNAL_ERROR", 500, "Failed to hash password")
	}
	if body.Permissions == nil {
		body.Permissions = []string{}
	}

	row, err := store.QueryRow(c.Context(), h.store.Pool,
		`INSERT INTO _users (email, name, password_hash, role, permissions)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		body.Email, body.Name, hash, body.Role, body.Permissions)
	if err != nil {
		return api.NewAppError("DUPLICATE_EMAIL", 409, "A user with that email already exists")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": row})
}

type updateUserBody struct {
	Name        *string   `json:"name"`
	Role        *string   `json:"role"`
	Permissions *[]string `json:"permissions"`
	Active      *bool     `json:"active"`
	Password    *string   `json:"password"`
}

// UpdateUser handles PUT /api/admin/users/:id. The body is a partial
// update; the change is visible to the user's very next request, since
// auth middleware reloads sessions from the store.
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	id := c.Params("id")

	var body updateUserBody
	if err := c.BodyParser(&body); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}

	set := "updated_at = NOW()"
	args := []any{}
	n := 0
	add := func(col string, val any) {
		n++
		set += fmt.Sprintf(", %s = $%d", col, n)
		args = append(args, val)
	}

	if body.Name != nil {
		add("name", *body.Name)
	}
	if body.Role != nil {
		if !knownRoles[*body.Role] {
			return api.ValidationError([]api.ErrorDetail{{
				Field: "role", Rule: "enum", Message: fmt.Sprintf("unknown role %q", *body.Role),
			}})
		}
		add("role", *body.Role)
	}
	if body.Permissions != nil {
		if err := validatePermissions(*body.Permissions); err != nil {
			return err
		}
		add("permissions", *body.Permissions)
	}
	if body.Active != nil {
		add("active", *body.Active)
	}
	if body.Password != nil {
		hash, err := auth.HashPassword(*body.Password)
		if err != nil {
			return api.NewAppError("INTERNAL_ERROR", 500, "Failed to hash password")
		}
		add("password_hash", hash)
	}

	row, err := store.QueryRow(c.Context(), h.store.Pool,
		fmt.Sprintf("UPDATE _users SET %s WHERE id = $%d RETURNING %s", set, n+1, userColumns),
		append(args, id)...)
	if err != nil {
		return api.NotFoundError("user", id)
	}
	return c.JSON(fiber.Map{"data": row})
}

// DeleteUser handles DELETE /api/admin/users/:id.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	n, err := store.Exec(c.Context(), h.store.Pool,
		"DELETE FROM _users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return api.NotFoundError("user", id)
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

// RegisterRoutes wires user management behind auth + admin gates.
func RegisterRoutes(app *fiber.App, h *Handler, authMW fiber.Handler, gate *access.Gate) {
	grp := app.Group("/api/admin/users", authMW, gate.RequireAdmin())
	grp.Get("/", h.ListUsers)
	grp.Get("/:id", h.GetUser)
	grp.Post("/", h.CreateUser)
	grp.Put("/:id", h.UpdateUser)
	grp.Delete("/:id", h.DeleteUser)
}

func validateUser(email, password, role string, permissions []string) error {
	var details []api.ErrorDetail
	if email == "" {
		details = append(details, api.ErrorDetail{
			Field: "email", Rule: "required", Message: "email must not be empty",
		})
	}
	if len(password) < 8 {
		details = append(details, api.ErrorDetail{
			Field: "password", Rule: "min_length", Message: "password must be at least 8 characters",
		})
	}
	if !knownRoles[role] {
		details = append(details, api.ErrorDetail{
			Field: "role", Rule: "enum", Message: fmt.Sprintf("unknown role %q", role),
		})
	}
	if len(details) > 0 {
		return api.ValidationError(details)
	}
	return validatePermissions(permissions)
}

func validatePermissions(permissions []string) error {
	for _, p := range permissions {
		if !knownPermissions[p] {
			return api.ValidationError([]api.ErrorDetail{{
				Field: "permissions", Rule: "enum",
				Message: fmt.Sprintf("unknown permission %q", p),
			}})
		}
	}
	return nil
}
