package repository

import (
	"context"
	"errors"

	"buddyup/internal/cache"
	"buddyup/internal/models"

	"gorm.io/gorm"
)

// SportRepository defines persistence operations for the sports catalog
// and per-user sport preferences.
type SportRepository interface {
	ListSports(ctx context.Context) ([]models.Sport, error)
	GetSportByID(ctx context.Context, id uint) (*models.Sport, error)
	GetSportBySlug(ctx context.Context, slug string) (*models.Sport, error)
	CreateSport(ctx context.Context, sport *models.Sport) error
	UpsertPreference(ctx context.Context, pref *models.SportPreference) error
	DeletePreference(ctx context.Context, userID, sportID uint) error
	ListPreferences(ctx context.Context, userID uint) ([]models.SportPreference, error)
}

type sportRepository struct {
	db *gorm.DB
}

// NewSportRepository returns a new SportRepository implementation.
func NewSportRepository(db *gorm.DB) SportRepository {
	return &sportRepository{db: db}
}

func (r *sportRepository) ListSports(ctx context.Context) ([]models.Sport, error) {
	var sports []models.Sport

	err := cache.Aside(ctx, cache.SportsCatalogKey, &sports, cache.SportsCatalogTTL, func() error {
		if err := r.db.WithContext(ctx).Order("name ASC").Find(&sports).Error; err != nil {
			return models.NewStoreUnavailableError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return sports, nil
}

func (r *sportRepository) GetSportByID(ctx context.Context, id uint) (*models.Sport, error) {
	var sport models.Sport
	if err := r.db.WithContext(ctx).First(&sport, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Sport", id)
		}
		return nil, models.NewStoreUnavailableError(err)
	}
	return &sport, nil
}

func (r *sportRepository) GetSportBySlug(ctx context.Context, slug string) (*models.Sport, error) {
	var sport models.Sport
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&sport).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Sport", slug)
		}
		return nil, models.NewStoreUnavailableError(err)
	}
	return &sport, nil
}

func (r *sportRepository) CreateSport(ctx context.Context, sport *models.Sport) error {
	if err := r.db.WithContext(ctx).Create(sport).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Sport already exists")
		}
		return models.NewStoreUnavailableError(err)
	}
	cache.InvalidateSportsCatalog(ctx)
	return nil
}

// UpsertPreference creates the preference or, when one already exists for
// the (user, sport) pair, updates its mutable fields in place.
func (r *sportRepository) UpsertPreference(ctx context.Context, pref *models.SportPreference) error {
	var existing models.SportPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND sport_id = ?", pref.UserID, pref.SportID).
		First(&existing).Error

	switch {
	case err == nil:
		pref.ID = existing.ID
		pref.CreatedAt = existing.CreatedAt
		if err := r.db.WithContext(ctx).Save(pref).Error; err != nil {
			return models.NewStoreUnavailableError(err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(pref).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewValidationError("Preference already exists for this sport")
			}
			return models.NewStoreUnavailableError(err)
		}
	default:
		return models.NewStoreUnavailableError(err)
	}

	cache.Invalidate(ctx, cache.UserSportsKey(pref.UserID))
	return nil
}

func (r *sportRepository) DeletePreference(ctx context.Context, userID, sportID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND sport_id = ?", userID, sportID).
		Delete(&models.SportPreference{})
	if result.Error != nil {
		return models.NewStoreUnavailableError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("SportPreference", sportID)
	}
	cache.Invalidate(ctx, cache.UserSportsKey(userID))
	return nil
}

func (r *sportRepository) ListPreferences(ctx context.Context, userID uint) ([]models.SportPreference, error) {
	var prefs []models.SportPreference

	err := cache.Aside(ctx, cache.UserSportsKey(userID), &prefs, cache.UserSportsTTL, func() error {
		if err := r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Preload("Sport").
			Find(&prefs).Error; err != nil {
			return models.NewStoreUnavailableError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return prefs, nil
}
