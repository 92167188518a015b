package access

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"testing"

	"github.com/gofiber/fiber/v2"

	"riskintel-backend/internal/api"
)

// newTestApp builds a Fiber app with a middleware that injects the given
// session (nil for unauthenticated) and a gated route.
func newTestApp(sess *Session, gate *Gate, roles, perms []string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *api.AppError
			if e, ok := err.(*api.AppError); ok {
				appErr = e
			} else {
				appErr = &api.AppError{Code: "INTERNAL_ERROR", Status: 500, Message: err.Error()}
			}
			return c.Status(appErr.Status).JSON(api.ErrorResponse{Error: appErr})
		},
	})
	app.Get("/protected",
		func(c *fiber.Ctx) error {
			if sess != nil {
				c.Locals(SessionKey, sess)
			}
			return c.Next()
		},
		gate.Require(roles, perms),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true})
		},
	)
	return app
}

func get(t *testing.T, app *fiber.App) (*http.Response, []byte) {
	t.Helper()
	req, _ := http.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func TestRequire_Unauthenticated(t *testing.T) {
	app := newTestApp(nil, NewGate(nil), nil, nil)
	resp, body := get(t, app)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401 for missing session, got %d", resp.StatusCode)
	}
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if errResp.Error.Code != "UNAUTHENTICATED" {
		t.Fatalf("expected UNAUTHENTICATED, got %s", errResp.Error.Code)
	}
}

func TestRequire_DeniedBodyCarriesRoles(t *testing.T) {
	sess := &Session{ID: "u1", Role: RoleViewer}
	required := []string{RoleAdmin, RoleComplianceOfficer}
	app := newTestApp(sess, NewGate(nil), required, nil)

	resp, body := get(t, app)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	var denied DeniedBody
	if err := json.Unmarshal(body, &denied); err != nil {
		t.Fatalf("parse denied body: %v", err)
	}
	if denied.Role != RoleViewer {
		t.Fatalf("expected actual role %q in body, got %q", RoleViewer, denied.Role)
	}
	if !reflect.DeepEqual(denied.RequiredRoles, required) {
		t.Fatalf("expected required roles %v, got %v", required, denied.RequiredRoles)
	}
	if denied.Error == nil || denied.Error.Code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN error in body, got %+v", denied.Error)
	}
}

func TestRequire_Allowed(t *testing.T) {
	sess := &Session{ID: "u2", Role: RoleAnalyst, Permissions: []string{PermViewFraud}}
	app := newTestApp(sess, NewGate(nil), []string{RoleAnalyst}, []string{PermViewFraud})

	resp, _ := get(t, app)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRequire_AdminBypassesPermissionGate(t *testing.T) {
	sess := &Session{ID: "u3", Role: RoleAdmin}
	app := newTestApp(sess, NewGate(nil), nil, []string{PermManageAlerts})

	resp, _ := get(t, app)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
}

type captureRecorder struct {
	decisions []string
	roles     []string
	paths     []string
}

func (r *captureRecorder) RecordDecision(userID, role, path, decision string, requiredRoles []string) {
	r.decisions = append(r.decisions, decision)
	r.roles = append(r.roles, role)
	r.paths = append(r.paths, path)
}

func TestRequire_RecordsDeniedDecisions(t *testing.T) {
	rec := &captureRecorder{}
	sess := &Session{ID: "u4", Role: RoleViewer}
	app := newTestApp(sess, NewGate(rec), []string{RoleAdmin}, nil)

	if resp, _ := get(t, app); resp.StatusCode != 403 {
		t.Fatal("expected denial")
	}
	if len(rec.decisions) != 1 || rec.decisions[0] != "denied" {
		t.Fatalf("expected one denied record, got %v", rec.decisions)
	}
	if rec.roles[0] != RoleViewer || rec.paths[0] != "/protected" {
		t.Fatalf("unexpected record contents: roles=%v paths=%v", rec.roles, rec.paths)
	}
}

func TestRequire_DoesNotRecordAllowed(t *testing.T) {
	rec := &captureRecorder{}
	sess := &Session{ID: "u5", Role: RoleAdmin}
	app := newTestApp(sess, NewGate(rec), []string{RoleAdmin}, nil)

	if resp, _ := get(t, app); resp.StatusCode != 200 {
		t.Fatal("expected allowed")
	}
	if len(rec.decisions) != 0 {
		t.Fatalf("expected no records for allowed requests, got %v", rec.decisions)
	}
}
