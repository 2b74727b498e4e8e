package server

import (
	"context"

	"buddyup/internal/models"
	"buddyup/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByIDWithPreferences(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ListCandidatePool(ctx context.Context, excludeID uint) ([]models.User, error) {
	args := m.Called(ctx, excludeID)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSportRepository struct {
	mock.Mock
}

func (m *MockSportRepository) ListSports(ctx context.Context) ([]models.Sport, error) {
	args := m.Called(ctx)
	if sports, ok := args.Get(0).([]models.Sport); ok {
		return sports, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSportRepository) GetSportByID(ctx context.Context, id uint) (*models.Sport, error) {
	args := m.Called(ctx, id)
	if sport, ok := args.Get(0).(*models.Sport); ok {
		return sport, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSportRepository) GetSportBySlug(ctx context.Context, slug string) (*models.Sport, error) {
	args := m.Called(ctx, slug)
	if sport, ok := args.Get(0).(*models.Sport); ok {
		return sport, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSportRepository) CreateSport(ctx context.Context, sport *models.Sport) error {
	args := m.Called(ctx, sport)
	return args.Error(0)
}

func (m *MockSportRepository) UpsertPreference(ctx context.Context, pref *models.SportPreference) error {
	args := m.Called(ctx, pref)
	return args.Error(0)
}

func (m *MockSportRepository) DeletePreference(ctx context.Context, userID, sportID uint) error {
	args := m.Called(ctx, userID, sportID)
	return args.Error(0)
}

func (m *MockSportRepository) ListPreferences(ctx context.Context, userID uint) ([]models.SportPreference, error) {
	args := m.Called(ctx, userID)
	if prefs, ok := args.Get(0).([]models.SportPreference); ok {
		return prefs, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) CreateIfAbsent(ctx context.Context, req *models.MatchRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockMatchRepository) GetByID(ctx context.Context, id uint) (*models.MatchRequest, error) {
	args := m.Called(ctx, id)
	if req, ok := args.Get(0).(*models.MatchRequest); ok {
		return req, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMatchRepository) CompareAndSetStatus(ctx context.Context, id uint, from, to models.MatchRequestStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockMatchRepository) GetPendingReceived(ctx context.Context, userID uint) ([]models.MatchRequest, error) {
	args := m.Called(ctx, userID)
	if reqs, ok := args.Get(0).([]models.MatchRequest); ok {
		return reqs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMatchRepository) GetPendingSent(ctx context.Context, userID uint) ([]models.MatchRequest, error) {
	args := m.Called(ctx, userID)
	if reqs, ok := args.Get(0).([]models.MatchRequest); ok {
		return reqs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMatchRepository) ListBuddies(ctx context.Context, userID uint) ([]models.User, error) {
	args := m.Called(ctx, userID)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMatchRepository) ListRelatedUserIDs(ctx context.Context, userID uint, sportID *uint) ([]uint, error) {
	args := m.Called(ctx, userID, sportID)
	if ids, ok := args.Get(0).([]uint); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

// newHandlerServer assembles a Server with the service layer wired to the
// given mocks. The notifier publishes into the void (nil Redis client).
func newHandlerServer(userRepo *MockUserRepository, sportRepo *MockSportRepository, matchRepo *MockMatchRepository) *Server {
	s := &Server{
		userRepo:  userRepo,
		sportRepo: sportRepo,
		matchRepo: matchRepo,
	}
	s.userService = service.NewUserService(userRepo)
	s.sportService = service.NewSportService(sportRepo)
	s.engine = service.NewMatchingEngine(userRepo, sportRepo, matchRepo, noopPublisher{})
	return s
}

type noopPublisher struct{}

func (noopPublisher) PublishMatchAccepted(context.Context, models.MatchAccepted) error { return nil }

// withUser simulates AuthRequired by planting the user ID in locals.
func withUser(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}
