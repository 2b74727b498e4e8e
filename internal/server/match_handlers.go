package server

import (
	"strings"

	"buddyup/internal/matching"
	"buddyup/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FindCandidates handles GET /api/candidates
//
// Query parameters: sport_id, skill_level, max_distance_km, days, times
// (comma-separated), page, page_size.
func (s *Server) FindCandidates(c *fiber.Ctx) error {
	var spec matching.FilterSpec

	if sportID := c.QueryInt("sport_id", 0); sportID > 0 {
		id := uint(sportID)
		spec.SportID = &id
	}
	if skill := c.Query("skill_level"); skill != "" {
		level, err := models.ParseSkillLevel(skill)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unknown skill level"))
		}
		spec.SkillLevel = &level
	}
	if dist := c.QueryFloat("max_distance_km", 0); dist > 0 {
		spec.MaxDistanceKm = dist
	}
	if days := c.Query("days"); days != "" {
		parsed, err := models.ParseWeekdays(strings.Split(days, ","))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		spec.Days = parsed
	}
	if times := c.Query("times"); times != "" {
		parsed, err := models.ParseTimesOfDay(strings.Split(times, ","))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		spec.Times = parsed
	}

	page, pageSize := parsePageParams(c)
	result, err := s.engine.FindCandidates(c.Context(), currentUserID(c), spec, page, pageSize)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// CreateMatchRequest handles POST /api/matches/requests
func (s *Server) CreateMatchRequest(c *fiber.Ctx) error {
	var req struct {
		RecipientID uint   `json:"recipient_id"`
		SportID     *uint  `json:"sport_id"`
		Message     string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.RecipientID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("recipient_id is required"))
	}

	created, err := s.engine.CreateMatchRequest(
		c.Context(), currentUserID(c), req.RecipientID, req.SportID, req.Message)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetPendingReceived handles GET /api/matches/requests
func (s *Server) GetPendingReceived(c *fiber.Ctx) error {
	requests, err := s.engine.GetPendingReceived(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetPendingSent handles GET /api/matches/requests/sent
func (s *Server) GetPendingSent(c *fiber.Ctx) error {
	requests, err := s.engine.GetPendingSent(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetMatchRequest handles GET /api/matches/requests/:requestId
func (s *Server) GetMatchRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	req, getErr := s.engine.GetMatchRequestForUser(c.Context(), currentUserID(c), requestID)
	if getErr != nil {
		return models.RespondWithAppError(c, getErr)
	}
	return c.JSON(req)
}

// AcceptMatchRequest handles POST /api/matches/requests/:requestId/accept
func (s *Server) AcceptMatchRequest(c *fiber.Ctx) error {
	return s.respond(c, true)
}

// RejectMatchRequest handles POST /api/matches/requests/:requestId/reject
func (s *Server) RejectMatchRequest(c *fiber.Ctx) error {
	return s.respond(c, false)
}

func (s *Server) respond(c *fiber.Ctx, accept bool) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	req, respondErr := s.engine.RespondToMatch(c.Context(), currentUserID(c), requestID, accept)
	if respondErr != nil {
		return models.RespondWithAppError(c, respondErr)
	}
	return c.JSON(req)
}

// CancelMatchRequest handles POST /api/matches/requests/:requestId/cancel
func (s *Server) CancelMatchRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	req, cancelErr := s.engine.CancelMatchRequest(c.Context(), currentUserID(c), requestID)
	if cancelErr != nil {
		return models.RespondWithAppError(c, cancelErr)
	}
	return c.JSON(req)
}

// GetBuddies handles GET /api/matches/buddies
func (s *Server) GetBuddies(c *fiber.Ctx) error {
	buddies, err := s.engine.GetBuddies(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	views := make([]models.PublicProfile, 0, len(buddies))
	for i := range buddies {
		views = append(views, buddies[i].PublicView())
	}
	return c.JSON(fiber.Map{"buddies": views})
}
