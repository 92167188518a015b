package prefs

import (
	"github.com/gofiber/fiber/v2"

	"riskintel-backend/internal/access"
	"riskintel-backend/internal/api"
	"riskintel-backend/internal/theme"
)

// Handler serves the current user's preferences, onboarding flow, and
// resolved theme.
type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

// Get handles GET /api/me/preferences.
func (h *Handler) Get(c *fiber.Ctx) error {
	sess := access.SessionFrom(c)
	if sess == nil {
		return api.UnauthorizedError("Authentication required")
	}
	p, err := h.repo.Get(c.Context(), sess.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": p})
}

// Update handles PUT /api/me/preferences. The body is a partial document;
// absent fields keep their current value.
func (h *Handler) Update(c *fiber.Ctx) error {
	sess := access.SessionFrom(c)
	if sess == nil {
		return api.UnauthorizedError("Authentication required")
	}

	current, err := h.repo.Get(c.Context(), sess.ID)
	if err != nil {
		return err
	}
	updated, err := Apply(current, c.Body())
	if err != nil {
		return err
	}
	if err := h.repo.Save(c.Context(), sess.ID, updated); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updated})
}

// Reset handles POST /api/me/preferences/reset.
func (h *Handler) Reset(c *fiber.Ctx) error {
	sess := access.SessionFrom(c)
	if sess == nil {
		return api.UnauthorizedError("Authentication required")
	}
	if err := h.repo.Reset(c.Context(), sess.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": Defaults()})
}

// AdvanceOnboarding handles POST /api/me/onboarding/advance.
func (h *Handler) AdvanceOnboarding(c *fiber.Ctx) error {
	return h.mutateOnboarding(c, func(o Onboarding) Onboarding {
		return o.Advance()
	})
}

// CompleteOnboarding handles POST /api/me/onboarding/complete.
func (h *Handler) CompleteOnboarding(c *fiber.Ctx) error {
	return h.mutateOnboarding(c, func(Onboarding) Onboarding {
		return Onboarding{Completed: true, Step: OnboardingSteps}
	})
}

// Theme handles GET /api/me/theme. The user's declared mode is resolved
// against the client-reported platform preference (X-Color-Scheme header);
// "system" with no hint resolves to light.
func (h *Handler) Theme(c *fiber.Ctx) error {
	sess := access.SessionFrom(c)
	if sess == nil {
		return api.UnauthorizedError("Authentication required")
	}
	p, err := h.repo.Get(c.Context(), sess.ID)
	if err != nil {
		return err
	}

	hint := theme.ResolvedLight
	if c.Get("X-Color-Scheme") == string(theme.ResolvedDark) {
		hint = theme.ResolvedDark
	}
	resolved := theme.Resolve(p.Theme, hint)

	return c.JSON(fiber.Map{"data": fiber.Map{
		"mode":     p.Theme,
		"resolved": resolved,
		"tokens":   theme.TokensFor(resolved),
	}})
}

func (h *Handler) mutateOnboarding(c *fiber.Ctx, fn func(Onboarding) Onboarding) error {
	sess := access.SessionFrom(c)
	if sess == nil {
		return api.UnauthorizedError("Authentication required")
	}
	p, err := h.repo.Get(c.Context(), sess.ID)
	if err != nil {
		return err
	}
	p.Onboarding = fn(p.Onboarding)
	if err := h.repo.Save(c.Context(), sess.ID, p); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": p.Onboarding})
}

// RegisterRoutes registers the current-user routes behind auth middleware.
func RegisterRoutes(app *fiber.App, h *Handler, authMW fiber.Handler) {
	me := app.Group("/api/me", authMW)
	me.Get("/preferences", h.Get)
	me.Put("/preferences", h.Update)
	me.Post("/preferences/reset", h.Reset)
	me.Post("/onboarding/advance", h.AdvanceOnboarding)
	me.Post("/onboarding/complete", h.CompleteOnboarding)
	me.Get("/theme", h.Theme)
}
