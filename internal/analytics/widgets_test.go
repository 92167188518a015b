package analytics

import (
	"reflect"
	"testing"
)

func TestScoreSeverity_Boundaries(t *testing.T) {
	cases := map[int]Severity{
		1:  SeverityLow,
		4:  SeverityLow,
		5:  SeverityMedium,
		9:  SeverityMedium,
		10: SeverityHigh,
		16: SeverityHigh,
		17: SeverityCritical,
		25: SeverityCritical,
	}
	for score, want := range cases {
		if got := ScoreSeverity(score); got != want {
			t.Fatalf("score %d: expected %s, got %s", score, want, got)
		}
	}
}

func TestBuildRiskMatrix_FixedGeometry(t *testing.T) {
	m := BuildRiskMatrix(nil)

	if len(m.Cells) != MatrixSize*MatrixSize {
		t.Fatalf("expected %d cells, got %d", MatrixSize*MatrixSize, len(m.Cells))
	}
	if m.TotalRisks != 0 {
		t.Fatalf("expected zero risks without data, got %d", m.TotalRisks)
	}

	// Every cell keeps its score and bucket regardless of data.
	for _, cell := range m.Cells {
		if cell.Score != cell.Likelihood*cell.Impact {
			t.Fatalf("cell (%d,%d) has score %d", cell.Likelihood, cell.Impact, cell.Score)
		}
		if cell.Severity != ScoreSeverity(cell.Score) {
			t.Fatalf("cell (%d,%d) has severity %s", cell.Likelihood, cell.Impact, cell.Severity)
		}
	}

	// Row-major order: first cell is (1,1), last is (5,5).
	first, last := m.Cells[0], m.Cells[len(m.Cells)-1]
	if first.Likelihood != 1 || first.Impact != 1 {
		t.Fatalf("unexpected first cell: %+v", first)
	}
	if last.Likelihood != MatrixSize || last.Impact != MatrixSize {
		t.Fatalf("unexpected last cell: %+v", last)
	}
}

func TestBuildRiskMatrix_CountsAndMaxScore(t *testing.T) {
	m := BuildRiskMatrix(map[[2]int]int{
		{1, 1}: 3,
		{2, 3}: 2,
		{5, 5}: 0, // zero entries must not drive MaxScore
	})

	if m.TotalRisks != 5 {
		t.Fatalf("expected 5 total risks, got %d", m.TotalRisks)
	}
	if m.MaxScore != 6 {
		t.Fatalf("expected max populated score 6, got %d", m.MaxScore)
	}
}

func TestIntensityFor_Boundaries(t *testing.T) {
	cases := map[int]int{
		0:  0,
		1:  1,
		4:  1,
		5:  2,
		14: 2,
		15: 3,
		29: 3,
		30: 4,
		99: 4,
	}
	for count, want := range cases {
		if got := IntensityFor(count); got != want {
			t.Fatalf("count %d: expected intensity %d, got %d", count, want, got)
		}
	}
}

func TestBuildFraudHeatmap(t *testing.T) {
	h := BuildFraudHeatmap(map[[2]int]int{
		{0, 0}:  4,
		{6, 23}: 31,
	})

	if len(h.Cells) != 7*24 {
		t.Fatalf("expected %d cells, got %d", 7*24, len(h.Cells))
	}
	if h.TotalAlerts != 35 {
		t.Fatalf("expected 35 alerts, got %d", h.TotalAlerts)
	}
	if h.Cells[0].Intensity != 1 {
		t.Fatalf("expected intensity 1 for count 4, got %d", h.Cells[0].Intensity)
	}
	if h.Cells[len(h.Cells)-1].Intensity != 4 {
		t.Fatalf("expected intensity 4 for count 31, got %d", h.Cells[len(h.Cells)-1].Intensity)
	}
}

func TestBandFor_Boundaries(t *testing.T) {
	cases := map[int]string{
		0:   "critical",
		49:  "critical",
		50:  "at_risk",
		69:  "at_risk",
		70:  "satisfactory",
		84:  "satisfactory",
		85:  "strong",
		100: "strong",
	}
	for score, want := range cases {
		if got := BandFor(score); got != want {
			t.Fatalf("score %d: expected %s, got %s", score, want, got)
		}
	}
}

func TestBuildComplianceGauge_Clamps(t *testing.T) {
	if g := BuildComplianceGauge(-10); g.Score != 0 || g.Band != "critical" {
		t.Fatalf("expected clamped critical gauge, got %+v", g)
	}
	if g := BuildComplianceGauge(250); g.Score != 100 || g.Band != "strong" {
		t.Fatalf("expected clamped strong gauge, got %+v", g)
	}
}

func TestMockData_Deterministic(t *testing.T) {
	m1, h1, g1 := MockData(42)
	m2, h2, g2 := MockData(42)

	if !reflect.DeepEqual(m1.Cells, m2.Cells) {
		t.Fatal("expected identical matrices for the same seed")
	}
	if !reflect.DeepEqual(h1.Cells, h2.Cells) {
		t.Fatal("expected identical heatmaps for the same seed")
	}
	if g1.Score != g2.Score {
		t.Fatalf("expected identical gauge, got %d vs %d", g1.Score, g2.Score)
	}

	if g1.Score < 40 || g1.Score > 100 {
		t.Fatalf("gauge score out of range: %d", g1.Score)
	}
}

func TestSnapshotOf(t *testing.T) {
	m, h, g := MockData(7)
	snap := SnapshotOf(m, h, g)

	if snap.RiskScore != m.MaxScore {
		t.Fatalf("expected risk score %d, got %d", m.MaxScore, snap.RiskScore)
	}
	if snap.OpenRisks != m.TotalRisks {
		t.Fatalf("expected open risks %d, got %d", m.TotalRisks, snap.OpenRisks)
	}
	if snap.FraudAlerts24h != h.TotalAlerts {
		t.Fatalf("expected fraud alerts %d, got %d", h.TotalAlerts, snap.FraudAlerts24h)
	}
	if snap.ComplianceScore != g.Score {
		t.Fatalf("expected compliance score %d, got %d", g.Score, snap.ComplianceScore)
	}
}
