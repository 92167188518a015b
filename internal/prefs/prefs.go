package prefs

import (
	"encoding/json"
	"fmt"

	"riskintel-backend/internal/api"
	"riskintel-backend/internal/theme"
)

// Known dashboard views a user can land on after login.
var knownViews = map[string]bool{
	"overview":   true,
	"risk":       true,
	"fraud":      true,
	"compliance": true,
}

// NotificationPrefs are the per-channel notification switches.
type NotificationPrefs struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	InApp bool `json:"in_app"`
}

// Onboarding tracks the user's progress through the first-run flow.
type Onboarding struct {
	Completed bool `json:"completed"`
	Step      int  `json:"step"`
}

// Preferences is the closed set of per-user options. Every recognized
// option is a named field with a documented default; unknown keys in
// persisted data are dropped on load rather than carried around.
type Preferences struct {
	// Theme is the declared theme intent. Default: system.
	Theme theme.Mode `json:"theme"`
	// Notifications default to email and in-app on, SMS off.
	Notifications NotificationPrefs `json:"notifications"`
	// DefaultView is the dashboard shown after login. Default: overview.
	DefaultView string `json:"default_view"`
	// RefreshIntervalSec is the widget auto-refresh period. Default: 60.
	RefreshIntervalSec int `json:"refresh_interval_sec"`
	// Locale is a BCP 47 tag. Default: en-US.
	Locale string `json:"locale"`
	// Onboarding starts incomplete at step 0.
	Onboarding Onboarding `json:"onboarding"`
}

// Defaults returns the preferences a brand-new user starts with.
func Defaults() Preferences {
	return Preferences{
		Theme: theme.ModeSystem,
		Notifications: NotificationPrefs{
			Email: true,
			SMS:   false,
			InApp: true,
		},
		DefaultView:        "overview",
		RefreshIntervalSec: 60,
		Locale:             "en-US",
		Onboarding:         Onboarding{Completed: false, Step: 0},
	}
}

// Apply merges a partial JSON update into current and validates the
// result. Fields absent from raw keep their current value.
func Apply(current Preferences, raw []byte) (Preferences, error) {
	updated := current
	if err := json.Unmarshal(raw, &updated); err != nil {
		return current, api.NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}
	if err := Validate(updated); err != nil {
		return current, err
	}
	return updated, nil
}

// Validate checks every field against its allowed range.
func Validate(p Preferences) error {
	var details []api.ErrorDetail

	if !theme.ValidMode(p.Theme) {
		details = append(details, api.ErrorDetail{
			Field: "theme", Rule: "enum",
			Message: fmt.Sprintf("theme must be one of light, dark, system; got %q", p.Theme),
		})
	}
	if !knownViews[p.DefaultView] {
		details = append(details, api.ErrorDetail{
			Field: "default_view", Rule: "enum",
			Message: fmt.Sprintf("unknown default view %q", p.DefaultView),
		})
	}
	if p.RefreshIntervalSec < 5 || p.RefreshIntervalSec > 3600 {
		details = append(details, api.ErrorDetail{
			Field: "refresh_interval_sec", Rule: "range",
			Message: "refresh interval must be between 5 and 3600 seconds",
		})
	}
	if p.Locale == "" {
		details = append(details, api.ErrorDetail{
			Field: "locale", Rule: "required",
			Message: "locale must not be empty",
		})
	}
	if p.Onboarding.Step < 0 || p.Onboarding.Step > OnboardingSteps {
		details = append(details, api.ErrorDetail{
			Field: "onboarding.step", Rule: "range",
			Message: fmt.Sprintf("onboarding step must be between 0 and %d", OnboardingSteps),
		})
	}

	if len(details) > 0 {
		return api.ValidationError(details)
	}
	return nil
}

// OnboardingSteps is the number of steps in the first-run flow.
const OnboardingSteps = 4

// Advance moves the onboarding flow one step forward, marking it complete
// at the final step. Advancing a completed flow is a no-op.
func (o Onboarding) Advance() Onboarding {
	if o.Completed {
		return o
	}
	next := o.Step + 1
	if next >= OnboardingSteps {
		return Onboarding{Completed: true, Step: OnboardingSteps}
	}
	return Onboarding{Completed: false, Step: next}
}
