package service

import (
	"context"

	"buddyup/internal/models"
	"buddyup/internal/repository"
)

// SportService provides sports catalog and preference business logic.
type SportService struct {
	sportRepo repository.SportRepository
}

// NewSportService returns a new SportService.
func NewSportService(sportRepo repository.SportRepository) *SportService {
	return &SportService{sportRepo: sportRepo}
}

func (s *SportService) ListSports(ctx context.Context) ([]models.Sport, error) {
	return s.sportRepo.ListSports(ctx)
}

func (s *SportService) GetSportBySlug(ctx context.Context, slug string) (*models.Sport, error) {
	return s.sportRepo.GetSportBySlug(ctx, slug)
}

// SetPreference records or updates the user's skill level for a sport.
func (s *SportService) SetPreference(
	ctx context.Context, userID, sportID uint, skill string, yearsExperience *int, public bool,
) (*models.SportPreference, error) {
	level, err := models.ParseSkillLevel(skill)
	if err != nil {
		return nil, models.NewValidationError("Unknown skill level")
	}
	if yearsExperience != nil && *yearsExperience < 0 {
		return nil, models.NewValidationError("Years of experience must not be negative")
	}

	if _, err := s.sportRepo.GetSportByID(ctx, sportID); err != nil {
		return nil, err
	}

	pref := &models.SportPreference{
		UserID:          userID,
		SportID:         sportID,
		SkillLevel:      level,
		YearsExperience: yearsExperience,
		Public:          public,
	}
	if err := s.sportRepo.UpsertPreference(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

func (s *SportService) RemovePreference(ctx context.Context, userID, sportID uint) error {
	return s.sportRepo.DeletePreference(ctx, userID, sportID)
}

func (s *SportService) ListPreferences(ctx context.Context, userID uint) ([]models.SportPreference, error) {
	return s.sportRepo.ListPreferences(ctx, userID)
}
