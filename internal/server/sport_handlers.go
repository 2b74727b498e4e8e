package server

import (
	"buddyup/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetSports handles GET /api/sports
func (s *Server) GetSports(c *fiber.Ctx) error {
	sports, err := s.sportService.ListSports(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"sports": sports})
}

// GetSportBySlug handles GET /api/sports/:slug
func (s *Server) GetSportBySlug(c *fiber.Ctx) error {
	sport, err := s.sportService.GetSportBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(sport)
}

// GetMyPreferences handles GET /api/users/me/sports
func (s *Server) GetMyPreferences(c *fiber.Ctx) error {
	prefs, err := s.sportService.ListPreferences(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"preferences": prefs})
}

// SetMyPreference handles PUT /api/users/me/sports/:sportId
func (s *Server) SetMyPreference(c *fiber.Ctx) error {
	sportID, err := s.parseID(c, "sportId")
	if err != nil {
		return nil
	}

	var req struct {
		SkillLevel      string `json:"skill_level"`
		YearsExperience *int   `json:"years_experience"`
		Public          *bool  `json:"public"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	public := true
	if req.Public != nil {
		public = *req.Public
	}

	pref, err := s.sportService.SetPreference(
		c.Context(), currentUserID(c), sportID, req.SkillLevel, req.YearsExperience, public)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(pref)
}

// RemoveMyPreference handles DELETE /api/users/me/sports/:sportId
func (s *Server) RemoveMyPreference(c *fiber.Ctx) error {
	sportID, err := s.parseID(c, "sportId")
	if err != nil {
		return nil
	}

	if err := s.sportService.RemovePreference(c.Context(), currentUserID(c), sportID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFeatureFlags handles GET /api/feature-flags and returns the flag
// snapshot evaluated for the requesting user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"flags": s.featureFlags.Snapshot(currentUserID(c)),
	})
}
