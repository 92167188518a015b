package access

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"riskintel-backend/internal/api"
)

// SessionKey is the Fiber locals key under which auth middleware installs
// the current Session.
const SessionKey = "session"

// Recorder receives gate decisions for the audit trail. Implementations
// must not block; the gate calls it inline on the request path.
type Recorder interface {
	RecordDecision(userID, role, path, decision string, requiredRoles []string)
}

// Gate builds route-level authorization middleware. The zero value works;
// a Recorder is optional.
type Gate struct {
	recorder Recorder
}

func NewGate(rec Recorder) *Gate {
	return &Gate{recorder: rec}
}

// DeniedBody is the 403 response payload. It carries everything the client
// needs to render the access-denied view without another round trip: the
// fact of denial, the session's actual role, and the roles that would have
// been sufficient.
type DeniedBody struct {
	Error         *api.AppError `json:"error"`
	Role          string        `json:"role"`
	RequiredRoles []string      `json:"required_roles"`
}

// Require returns middleware that admits the request only when
// Authorize(session, roles, permissions) is Allowed. Missing sessions get
// 401, failed checks get 403 with a DeniedBody.
func (g *Gate) Require(roles, permissions []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFrom(c)
		decision := Authorize(sess, roles, permissions)
		g.record(sess, c.Path(), decision, roles)

		switch decision {
		case Allowed:
			return c.Next()
		case Unauthenticated:
			return api.UnauthorizedError("Authentication required")
		default:
			required := roles
			if required == nil {
				required = []string{}
			}
			return c.Status(fiber.StatusForbidden).JSON(DeniedBody{
				Error: api.ForbiddenError(
					fmt.Sprintf("Access denied for role %q", sess.Role)),
				Role:          sess.Role,
				RequiredRoles: required,
			})
		}
	}
}

// RequireRoles is Require with no permission axis.
func (g *Gate) RequireRoles(roles ...string) fiber.Handler {
	return g.Require(roles, nil)
}

// RequirePermissions is Require with no role axis.
func (g *Gate) RequirePermissions(permissions ...string) fiber.Handler {
	return g.Require(nil, permissions)
}

// RequireAdmin admits only super users.
func (g *Gate) RequireAdmin() fiber.Handler {
	return g.Require([]string{RoleAdmin}, nil)
}

// SessionFrom extracts the Session from a Fiber context. Returns nil when
// the request is unauthenticated.
func SessionFrom(c *fiber.Ctx) *Session {
	sess, _ := c.Locals(SessionKey).(*Session)
	return sess
}

func (g *Gate) record(sess *Session, path string, d Decision, roles []string) {
	if g.recorder == nil || d == Allowed {
		return
	}
	var userID, role string
	if sess != nil {
		userID, role = sess.ID, sess.Role
	}
	g.recorder.RecordDecision(userID, role, path, d.String(), roles)
}
