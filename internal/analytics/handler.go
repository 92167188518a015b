package analytics

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"riskintel-backend/internal/access"
	"riskintel-backend/internal/api"
	"riskintel-backend/internal/store"
)

// Handler serves the dashboard widget data and alert-rule management.
type Handler struct {
	store *store.Store
}

func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// dataSeed picks the generator seed: an explicit ?seed= wins, otherwise
// the data rotates daily.
func dataSeed(c *fiber.Ctx) int64 {
	if seed := c.QueryInt("seed", 0); seed != 0 {
		return int64(seed)
	}
	return time.Now().UTC().Truncate(24 * time.Hour).Unix()
}

// RiskMatrix handles GET /api/analytics/risk-matrix.
func (h *Handler) RiskMatrix(c *fiber.Ctx) error {
	matrix, _, _ := MockData(dataSeed(c))
	return c.JSON(fiber.Map{"data": matrix})
}

// FraudHeatmap handles GET /api/analytics/fraud-heatmap.
func (h *Handler) FraudHeatmap(c *fiber.Ctx) error {
	_, heatmap, _ := MockData(dataSeed(c))
	return c.JSON(fiber.Map{"data": heatmap})
}

// ComplianceGauge handles GET /api/analytics/compliance-gauge.
func (h *Handler) ComplianceGauge(c *fiber.Ctx) error {
	_, _, gauge := MockData(dataSeed(c))
	return c.JSON(fiber.Map{"data": gauge})
}

// Alerts handles GET /api/analytics/alerts: evaluates every stored rule
// against the current snapshot and returns the fired alerts.
func (h *Handler) Alerts(c *fiber.Ctx) error {
	rules, err := LoadRules(c.Context(), h.store)
	if err != nil {
		return err
	}

	matrix, heatmap, gauge := MockData(dataSeed(c))
	alerts := EvaluateRules(rules, SnapshotOf(matrix, heatmap, gauge))
	if alerts == nil {
		alerts = []Alert{}
	}
	return c.JSON(fiber.Map{"data": alerts})
}

// ListRules handles GET /api/analytics/alert-rules.
func (h *Handler) ListRules(c *fiber.Ctx) error {
	rules, err := LoadRules(c.Context(), h.store)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rules})
}

type ruleBody struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Active     *bool  `json:"active"`
}

func (b *ruleBody) validate() error {
	var details []api.ErrorDetail
	if b.Name == "" {
		details = append(details, api.ErrorDetail{
			Field: "name", Rule: "required", Message: "name must not be empty",
		})
	}
	if b.Expression == "" {
		details = append(details, api.ErrorDetail{
			Field: "expression", Rule: "required", Message: "expression must not be empty",
		})
	} else if _, err := CompileRule(b.Expression); err != nil {
		details = append(details, api.ErrorDetail{
			Field: "expression", Rule: "syntax", Message: err.Error(),
		})
	}
	switch Severity(b.Severity) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
	default:
		details = append(details, api.ErrorDetail{
			Field: "severity", Rule: "enum",
			Message: fmt.Sprintf("unknown severity %q", b.Severity),
		})
	}
	if len(details) > 0 {
		return api.ValidationError(details)
	}
	return nil
}

// CreateRule handles POST /api/analytics/alert-rules.
func (h *Handler) CreateRule(c *fiber.Ctx) error {
	var body ruleBody
	if err := c.BodyParser(&body); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}
	if body.Severity == "" {
		body.Severity = string(SeverityMedium)
	}
	if err := body.validate(); err != nil {
		return err
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}

	row, err := store.QueryRow(c.Context(), h.store.Pool,
		`INSERT INTO _alert_rules (name, expression, severity, message, active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, expression, severity, message, active`,
		body.Name, body.Expression, body.Severity, body.Message, active)
	if err != nil {
		return fmt.Errorf("create alert rule: %w", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": row})
}

// UpdateRule handles PUT /api/analytics/alert-rules/:id.
func (h *Handler) UpdateRule(c *fiber.Ctx) error {
	id := c.Params("id")

	var body ruleBody
	if err := c.BodyParser(&body); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}
	if body.Severity == "" {
		body.Severity = string(SeverityMedium)
	}
	if err := body.validate(); err != nil {
		return err
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}

	row, err := store.QueryRow(c.Context(), h.store.Pool,
		`UPDATE _alert_rules
		 SET name = $1, expression = $2, severity = $3, message = $4, active = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING id, name, expression, severity, message, active`,
		body.Name, body.Expression, body.Severity, body.Message, active, id)
	if err != nil {
		return api.NotFoundError("alert rule", id)
	}
	return c.JSON(fiber.Map{"data": row})
}

// DeleteRule handles DELETE /api/analytics/alert-rules/:id.
func (h *Handler) DeleteRule(c *fiber.Ctx) error {
	id := c.Params("id")
	n, err := store.Exec(c.Context(), h.store.Pool,
		"DELETE FROM _alert_rules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete alert rule: %w", err)
	}
	if n == 0 {
		return api.NotFoundError("alert rule", id)
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

// RegisterRoutes wires the analytics routes. Widget endpoints are gated on
// their view permission; rule management requires manage_alerts.
func RegisterRoutes(app *fiber.App, h *Handler, authMW fiber.Handler, gate *access.Gate) {
	grp := app.Group("/api/analytics", authMW)

	grp.Get("/risk-matrix", gate.RequirePermissions(access.PermViewRisk), h.RiskMatrix)
	grp.Get("/fraud-heatmap", gate.RequirePermissions(access.PermViewFraud), h.FraudHeatmap)
	grp.Get("/compliance-gauge", gate.RequirePermissions(access.PermViewCompliance), h.ComplianceGauge)
	grp.Get("/alerts", h.Alerts)

	rules := grp.Group("/alert-rules", gate.RequirePermissions(access.PermManageAlerts))
	rules.Get("/", h.ListRules)
	rules.Post("/", h.CreateRule)
	rules.Put("/:id", h.UpdateRule)
	rules.Delete("/:id", h.DeleteRule)
}
