package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"riskintel-backend/internal/store"
)

// AlertRule is an admin-managed expression over the analytics snapshot.
// The rule fires when the expression evaluates to true.
type AlertRule struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Expression string   `json:"expression"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Active     bool     `json:"active"`

	Compiled any `json:"-"`
}

// Alert is a fired rule, returned to dashboard clients.
type Alert struct {
	RuleID   string    `json:"rule_id"`
	Name     string    `json:"name"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	FiredAt  time.Time `json:"fired_at"`
}

// CompileRule compiles the rule expression to a boolean program. Rules see
// a single `metrics` map with the Snapshot fields.
func CompileRule(expression string) (*vm.Program, error) {
	prog, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile expression: %w", err)
	}
	return prog, nil
}

// EvaluateRule runs one rule against the snapshot. Inactive rules never
// fire. Evaluation errors are reported as a fired alert carrying the error
// so a bad rule is visible on the dashboard instead of silently dead.
func EvaluateRule(rule *AlertRule, snap Snapshot) *Alert {
	if !rule.Active {
		return nil
	}

	prog, ok := rule.Compiled.(*vm.Program)
	if !ok || prog == nil {
		compiled, err := CompileRule(rule.Expression)
		if err != nil {
			return &Alert{
				RuleID:   rule.ID,
				Name:     rule.Name,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("rule %s failed to compile: %v", rule.Name, err),
				FiredAt:  time.Now().UTC(),
			}
		}
		rule.Compiled = compiled
		prog = compiled
	}

	env := map[string]any{
		"metrics": map[string]any{
			"risk_score":       snap.RiskScore,
			"open_risks":       snap.OpenRisks,
			"fraud_alerts_24h": snap.FraudAlerts24h,
			"compliance_score": snap.ComplianceScore,
		},
	}

	result, err := expr.Run(prog, env)
	if err != nil {
		return &Alert{
			RuleID:   rule.ID,
			Name:     rule.Name,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("rule %s evaluation error: %v", rule.Name, err),
			FiredAt:  time.Now().UTC(),
		}
	}

	fired, ok := result.(bool)
	if !ok || !fired {
		return nil
	}

	msg := rule.Message
	if msg == "" {
		msg = fmt.Sprintf("Alert rule %s fired", rule.Name)
	}
	return &Alert{
		RuleID:   rule.ID,
		Name:     rule.Name,
		Severity: rule.Severity,
		Message:  msg,
		FiredAt:  time.Now().UTC(),
	}
}

// EvaluateRules runs every rule and collects the fired alerts.
func EvaluateRules(rules []*AlertRule, snap Snapshot) []Alert {
	var alerts []Alert
	for _, r := range rules {
		if a := EvaluateRule(r, snap); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts
}

// LoadRules reads all alert rules from the store.
func LoadRules(ctx context.Context, s *store.Store) ([]*AlertRule, error) {
	rows, err := store.QueryRows(ctx, s.Pool,
		"SELECT id, name, expression, severity, message, active FROM _alert_rules ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("load alert rules: %w", err)
	}

	rules := make([]*AlertRule, 0, len(rows))
	for _, row := range rows {
		rule := &AlertRule{}
		rule.ID, _ = row["id"].(string)
		rule.Name, _ = row["name"].(string)
		rule.Expression, _ = row["expression"].(string)
		if sev, ok := row["severity"].(string); ok {
			rule.Severity = Severity(sev)
		}
		rule.Message, _ = row["message"].(string)
		rule.Active, _ = row["active"].(bool)
		rules = append(rules, rule)
	}
	return rules, nil
}
