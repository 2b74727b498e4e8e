package server

import (
	"buddyup/internal/models"
	"buddyup/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		DisplayName    *string  `json:"display_name"`
		Bio            *string  `json:"bio"`
		AvatarURL      *string  `json:"avatar_url"`
		MaxTravelKm    *float64 `json:"max_travel_km"`
		PreferredDays  []string `json:"preferred_days"`
		PreferredTimes []string `json:"preferred_times"`
		Public         *bool    `json:"public"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateProfileInput{
		UserID:      currentUserID(c),
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		MaxTravelKm: req.MaxTravelKm,
		Public:      req.Public,
	}

	if req.PreferredDays != nil {
		days, err := models.ParseWeekdays(req.PreferredDays)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		in.PreferredDays = days
	}
	if req.PreferredTimes != nil {
		times, err := models.ParseTimesOfDay(req.PreferredTimes)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		in.PreferredTimes = times
	}

	user, err := s.userService.UpdateProfile(c.Context(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// SetMyLocation handles PUT /api/users/me/location
func (s *Server) SetMyLocation(c *fiber.Ctx) error {
	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Latitude == nil || req.Longitude == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Latitude and longitude are required"))
	}

	user, err := s.userService.SetLocation(c.Context(), currentUserID(c), *req.Latitude, *req.Longitude)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// ClearMyLocation handles DELETE /api/users/me/location
func (s *Server) ClearMyLocation(c *fiber.Ctx) error {
	user, err := s.userService.ClearLocation(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id and serves the public view.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if !user.Public && user.ID != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", id))
	}

	return c.JSON(user.PublicView())
}
