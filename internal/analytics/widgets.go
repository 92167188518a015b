package analytics

import (
	"math/rand"
	"time"
)

// Severity buckets for risk matrix cells and alerts.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// MatrixSize is the number of likelihood and impact grades (a 5x5 grid).
const MatrixSize = 5

// ScoreSeverity maps a likelihood*impact score (1..25) to its bucket.
func ScoreSeverity(score int) Severity {
	switch {
	case score <= 4:
		return SeverityLow
	case score <= 9:
		return SeverityMedium
	case score <= 16:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// MatrixCell is one cell of the risk matrix. Likelihood and Impact are
// 1-based grades; Count is the number of open risks in the cell.
type MatrixCell struct {
	Likelihood int      `json:"likelihood"`
	Impact     int      `json:"impact"`
	Score      int      `json:"score"`
	Severity   Severity `json:"severity"`
	Count      int      `json:"count"`
}

// RiskMatrix is the full 5x5 grid in row-major order (likelihood ascending,
// then impact).
type RiskMatrix struct {
	Cells       []MatrixCell `json:"cells"`
	TotalRisks  int          `json:"total_risks"`
	MaxScore    int          `json:"max_score"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// BuildRiskMatrix fills the grid from counts keyed by [likelihood][impact]
// (1-based). Cells without an entry get count zero; the geometry and
// bucket of every cell is fixed regardless of data.
func BuildRiskMatrix(counts map[[2]int]int) RiskMatrix {
	m := RiskMatrix{
		Cells:       make([]MatrixCell, 0, MatrixSize*MatrixSize),
		GeneratedAt: time.Now().UTC(),
	}
	for l := 1; l <= MatrixSize; l++ {
		for i := 1; i <= MatrixSize; i++ {
			score := l * i
			count := counts[[2]int{l, i}]
			m.Cells = append(m.Cells, MatrixCell{
				Likelihood: l,
				Impact:     i,
				Score:      score,
				Severity:   ScoreSeverity(score),
				Count:      count,
			})
			m.TotalRisks += count
			if count > 0 && score > m.MaxScore {
				m.MaxScore = score
			}
		}
	}
	return m
}

// HeatCell is one hour slot of the fraud heatmap. Day is 0=Sunday..6,
// Hour is 0..23, Intensity indexes the theme heat scale (0..4).
type HeatCell struct {
	Day       int `json:"day"`
	Hour      int `json:"hour"`
	Count     int `json:"count"`
	Intensity int `json:"intensity"`
}

// FraudHeatmap is the 7x24 grid of alert counts.
type FraudHeatmap struct {
	Cells       []HeatCell `json:"cells"`
	TotalAlerts int        `json:"total_alerts"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// IntensityFor maps an alert count to a heat-scale index.
func IntensityFor(count int) int {
	switch {
	case count == 0:
		return 0
	case count < 5:
		return 1
	case count < 15:
		return 2
	case count < 30:
		return 3
	default:
		return 4
	}
}

// BuildFraudHeatmap fills the grid from counts keyed by [day][hour].
func BuildFraudHeatmap(counts map[[2]int]int) FraudHeatmap {
	h := FraudHeatmap{
		Cells:       make([]HeatCell, 0, 7*24),
		GeneratedAt: time.Now().UTC(),
	}
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			count := counts[[2]int{day, hour}]
			h.Cells = append(h.Cells, HeatCell{
				Day:       day,
				Hour:      hour,
				Count:     count,
				Intensity: IntensityFor(count),
			})
			h.TotalAlerts += count
		}
	}
	return h
}

// ComplianceGauge is the 0..100 compliance posture widget.
type ComplianceGauge struct {
	Score       int       `json:"score"`
	Band        string    `json:"band"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BandFor maps a compliance score to its status band.
func BandFor(score int) string {
	switch {
	case score < 50:
		return "critical"
	case score < 70:
		return "at_risk"
	case score < 85:
		return "satisfactory"
	default:
		return "strong"
	}
}

// BuildComplianceGauge clamps the score into range and assigns its band.
func BuildComplianceGauge(score int) ComplianceGauge {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return ComplianceGauge{
		Score:       score,
		Band:        BandFor(score),
		GeneratedAt: time.Now().UTC(),
	}
}

// Snapshot is the metric set alert rules evaluate against.
type Snapshot struct {
	RiskScore       int `json:"risk_score"`       // highest populated matrix cell score
	OpenRisks       int `json:"open_risks"`       // total risks on the matrix
	FraudAlerts24h  int `json:"fraud_alerts_24h"` // heatmap total
	ComplianceScore int `json:"compliance_score"` // gauge score
}

// MockData generates deterministic widget data for a seed. The same seed
// always yields the same matrix, heatmap, and gauge, which keeps demo
// environments and tests stable.
func MockData(seed int64) (RiskMatrix, FraudHeatmap, ComplianceGauge) {
	rng := rand.New(rand.NewSource(seed))

	riskCounts := make(map[[2]int]int)
	for l := 1; l <= MatrixSize; l++ {
		for i := 1; i <= MatrixSize; i++ {
			// High-score cells are rarer than low-score ones.
			ceiling := 20 - 3*((l*i)/5)
			if ceiling < 2 {
				ceiling = 2
			}
			riskCounts[[2]int{l, i}] = rng.Intn(ceiling)
		}
	}

	heatCounts := make(map[[2]int]int)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			base := 3
			if hour >= 9 && hour <= 18 {
				base = 12 // business hours see more activity
			}
			heatCounts[[2]int{day, hour}] = rng.Intn(base * 3)
		}
	}

	score := 40 + rng.Intn(61)

	return BuildRiskMatrix(riskCounts), BuildFraudHeatmap(heatCounts), BuildComplianceGauge(score)
}

// SnapshotOf reduces widget data to the alert-rule metric set.
func SnapshotOf(m RiskMatrix, h FraudHeatmap, g ComplianceGauge) Snapshot {
	return Snapshot{
		RiskScore:       m.MaxScore,
		OpenRisks:       m.TotalRisks,
		FraudAlerts24h:  h.TotalAlerts,
		ComplianceScore: g.Score,
	}
}
