package analytics

import (
	"strings"
	"testing"
)

func TestEvaluateRule_Fires(t *testing.T) {
	rule := &AlertRule{
		ID:         "r1",
		Name:       "high fraud volume",
		Expression: "metrics.fraud_alerts_24h > 100",
		Severity:   SeverityHigh,
		Message:    "Fraud alert volume exceeded threshold",
		Active:     true,
	}

	alert := EvaluateRule(rule, Snapshot{FraudAlerts24h: 150})
	if alert == nil {
		t.Fatal("expected alert to fire")
	}
	if alert.Severity != SeverityHigh {
		t.Fatalf("expected high severity, got %s", alert.Severity)
	}
	if alert.Message != rule.Message {
		t.Fatalf("unexpected message: %s", alert.Message)
	}

	if alert := EvaluateRule(rule, Snapshot{FraudAlerts24h: 50}); alert != nil {
		t.Fatalf("expected no alert below threshold, got %+v", alert)
	}
}

func TestEvaluateRule_InactiveNeverFires(t *testing.T) {
	rule := &AlertRule{
		Name:       "disabled",
		Expression: "true",
		Active:     false,
	}
	if alert := EvaluateRule(rule, Snapshot{}); alert != nil {
		t.Fatalf("expected inactive rule not to fire, got %+v", alert)
	}
}

func TestEvaluateRule_CompileErrorSurfacesAsAlert(t *testing.T) {
	rule := &AlertRule{
		ID:         "r2",
		Name:       "broken",
		Expression: "metrics.risk_score >>",
		Active:     true,
	}
	alert := EvaluateRule(rule, Snapshot{})
	if alert == nil {
		t.Fatal("expected compile failure to surface as an alert")
	}
	if !strings.Contains(alert.Message, "failed to compile") {
		t.Fatalf("unexpected message: %s", alert.Message)
	}
}

func TestEvaluateRule_DefaultMessage(t *testing.T) {
	rule := &AlertRule{
		Name:       "low compliance",
		Expression: "metrics.compliance_score < 50",
		Severity:   SeverityCritical,
		Active:     true,
	}
	alert := EvaluateRule(rule, Snapshot{ComplianceScore: 30})
	if alert == nil {
		t.Fatal("expected alert")
	}
	if !strings.Contains(alert.Message, "low compliance") {
		t.Fatalf("expected rule name in default message, got %s", alert.Message)
	}
}

func TestEvaluateRule_ReusesCompiledProgram(t *testing.T) {
	rule := &AlertRule{
		Name:       "combined",
		Expression: "metrics.risk_score >= 17 && metrics.open_risks > 0",
		Severity:   SeverityMedium,
		Active:     true,
	}

	if alert := EvaluateRule(rule, Snapshot{RiskScore: 20, OpenRisks: 3}); alert == nil {
		t.Fatal("expected alert on first evaluation")
	}
	if rule.Compiled == nil {
		t.Fatal("expected the compiled program to be cached")
	}
	if alert := EvaluateRule(rule, Snapshot{RiskScore: 4, OpenRisks: 3}); alert != nil {
		t.Fatalf("expected no alert on second evaluation, got %+v", alert)
	}
}

func TestEvaluateRules_CollectsFired(t *testing.T) {
	rules := []*AlertRule{
		{Name: "a", Expression: "metrics.risk_score > 10", Severity: SeverityHigh, Active: true},
		{Name: "b", Expression: "metrics.risk_score > 100", Severity: SeverityLow, Active: true},
		{Name: "c", Expression: "metrics.open_risks >= 1", Severity: SeverityLow, Active: true},
	}

	alerts := EvaluateRules(rules, Snapshot{RiskScore: 20, OpenRisks: 1})
	if len(alerts) != 2 {
		t.Fatalf("expected 2 fired alerts, got %d", len(alerts))
	}
	if alerts[0].Name != "a" || alerts[1].Name != "c" {
		t.Fatalf("unexpected alert order: %v", alerts)
	}
}

func TestCompileRule_RejectsNonBoolean(t *testing.T) {
	if _, err := CompileRule("1 + 1"); err == nil {
		t.Fatal("expected error for non-boolean expression")
	}
	if _, err := CompileRule("metrics.risk_score > 5"); err != nil {
		t.Fatalf("expected boolean expression to compile: %v", err)
	}
}
