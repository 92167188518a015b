package theme

// SeverityColors are the fill colors for risk severity buckets.
type SeverityColors struct {
	Low      string `json:"low"`
	Medium   string `json:"medium"`
	High     string `json:"high"`
	Critical string `json:"critical"`
}

// Tokens is the render-ready design token set for one resolved appearance.
// Consumers style against Tokens, never against the raw user mode, so the
// "system" mode is always resolved before use.
type Tokens struct {
	Appearance    Resolved       `json:"appearance"`
	Background    string         `json:"background"`
	Surface       string         `json:"surface"`
	Border        string         `json:"border"`
	TextPrimary   string         `json:"text_primary"`
	TextSecondary string         `json:"text_secondary"`
	Accent        string         `json:"accent"`
	Severity      SeverityColors `json:"severity"`
	HeatScale     [5]string      `json:"heat_scale"`
}

// The two token sets are package-level singletons so Theme() can hand out
// a referentially stable pointer while the resolved mode is unchanged.
var (
	lightTokens = &Tokens{
		Appearance:    ResolvedLight,
		Background:    "#f8fafc",
		Surface:       "#ffffff",
		Border:        "#e2e8f0",
		TextPrimary:   "#0f172a",
		TextSecondary: "#475569",
		Accent:        "#2563eb",
		Severity: SeverityColors{
			Low:      "#16a34a",
			Medium:   "#eab308",
			High:     "#ea580c",
			Critical: "#dc2626",
		},
		HeatScale: [5]string{"#f1f5f9", "#bfdbfe", "#60a5fa", "#2563eb", "#1e3a8a"},
	}

	darkTokens = &Tokens{
		Appearance:    ResolvedDark,
		Background:    "#0f172a",
		Surface:       "#1e293b",
		Border:        "#334155",
		TextPrimary:   "#f1f5f9",
		TextSecondary: "#94a3b8",
		Accent:        "#3b82f6",
		Severity: SeverityColors{
			Low:      "#4ade80",
			Medium:   "#facc15",
			High:     "#fb923c",
			Critical: "#f87171",
		},
		HeatScale: [5]string{"#1e293b", "#1e40af", "#3b82f6", "#93c5fd", "#dbeafe"},
	}
)

// TokensFor returns the token set for a resolved appearance.
func TokensFor(r Resolved) *Tokens {
	if r == ResolvedDark {
		return darkTokens
	}
	return lightTokens
}
