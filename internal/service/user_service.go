package service

import (
	"context"

	"buddyup/internal/geo"
	"buddyup/internal/models"
	"buddyup/internal/repository"
)

// UserService provides profile business logic.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries optional profile changes. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	UserID         uint
	DisplayName    *string
	Bio            *string
	AvatarURL      *string
	MaxTravelKm    *float64
	PreferredDays  []models.Weekday
	PreferredTimes []models.TimeOfDay
	Public         *bool
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByIDWithPreferences(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500
	const maxDisplayNameLen = 60

	if in.DisplayName != nil {
		if len(*in.DisplayName) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 60 characters)")
		}
		user.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}
	if in.MaxTravelKm != nil {
		if *in.MaxTravelKm <= 0 {
			return nil, models.NewValidationError("Max travel distance must be positive")
		}
		user.MaxTravelKm = *in.MaxTravelKm
	}
	if in.PreferredDays != nil {
		user.PreferredDays = in.PreferredDays
	}
	if in.PreferredTimes != nil {
		user.PreferredTimes = in.PreferredTimes
	}
	if in.Public != nil {
		user.Public = *in.Public
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetLocation validates and stores the user's coordinate.
func (s *UserService) SetLocation(ctx context.Context, userID uint, lat, lon float64) (*models.User, error) {
	coord := geo.Coordinate{Lat: lat, Lon: lon}
	if err := coord.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Latitude = &lat
	user.Longitude = &lon
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ClearLocation removes the user's coordinate. Discovery stops working for
// them until a new one is set.
func (s *UserService) ClearLocation(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Latitude = nil
	user.Longitude = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
