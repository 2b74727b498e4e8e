package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"buddyup/internal/matching"
	"buddyup/internal/models"
)

type userRepoStub struct {
	getByIDFn                func(context.Context, uint) (*models.User, error)
	getByIDWithPreferencesFn func(context.Context, uint) (*models.User, error)
	getByEmailFn             func(context.Context, string) (*models.User, error)
	getByUsernameFn          func(context.Context, string) (*models.User, error)
	createFn                 func(context.Context, *models.User) error
	updateFn                 func(context.Context, *models.User) error
	listCandidatePoolFn      func(context.Context, uint) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithPreferences(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDWithPreferencesFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) ListCandidatePool(ctx context.Context, excludeID uint) ([]models.User, error) {
	return s.listCandidatePoolFn(ctx, excludeID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:                func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByIDWithPreferencesFn: func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:             func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:          func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:                 func(context.Context, *models.User) error { return nil },
		updateFn:                 func(context.Context, *models.User) error { return nil },
		listCandidatePoolFn:      func(context.Context, uint) ([]models.User, error) { return nil, nil },
	}
}

type sportRepoStub struct {
	listSportsFn       func(context.Context) ([]models.Sport, error)
	getSportByIDFn     func(context.Context, uint) (*models.Sport, error)
	getSportBySlugFn   func(context.Context, string) (*models.Sport, error)
	createSportFn      func(context.Context, *models.Sport) error
	upsertPreferenceFn func(context.Context, *models.SportPreference) error
	deletePreferenceFn func(context.Context, uint, uint) error
	listPreferencesFn  func(context.Context, uint) ([]models.SportPreference, error)
}

func (s *sportRepoStub) ListSports(ctx context.Context) ([]models.Sport, error) {
	return s.listSportsFn(ctx)
}
func (s *sportRepoStub) GetSportByID(ctx context.Context, id uint) (*models.Sport, error) {
	return s.getSportByIDFn(ctx, id)
}
func (s *sportRepoStub) GetSportBySlug(ctx context.Context, slug string) (*models.Sport, error) {
	return s.getSportBySlugFn(ctx, slug)
}
func (s *sportRepoStub) CreateSport(ctx context.Context, sport *models.Sport) error {
	return s.createSportFn(ctx, sport)
}
func (s *sportRepoStub) UpsertPreference(ctx context.Context, pref *models.SportPreference) error {
	return s.upsertPreferenceFn(ctx, pref)
}
func (s *sportRepoStub) DeletePreference(ctx context.Context, userID, sportID uint) error {
	return s.deletePreferenceFn(ctx, userID, sportID)
}
func (s *sportRepoStub) ListPreferences(ctx context.Context, userID uint) ([]models.SportPreference, error) {
	return s.listPreferencesFn(ctx, userID)
}

func noopSportRepo() *sportRepoStub {
	return &sportRepoStub{
		listSportsFn:       func(context.Context) ([]models.Sport, error) { return nil, nil },
		getSportByIDFn:     func(context.Context, uint) (*models.Sport, error) { return &models.Sport{}, nil },
		getSportBySlugFn:   func(context.Context, string) (*models.Sport, error) { return &models.Sport{}, nil },
		createSportFn:      func(context.Context, *models.Sport) error { return nil },
		upsertPreferenceFn: func(context.Context, *models.SportPreference) error { return nil },
		deletePreferenceFn: func(context.Context, uint, uint) error { return nil },
		listPreferencesFn:  func(context.Context, uint) ([]models.SportPreference, error) { return nil, nil },
	}
}

type matchRepoStub struct {
	createIfAbsentFn      func(context.Context, *models.MatchRequest) error
	getByIDFn             func(context.Context, uint) (*models.MatchRequest, error)
	compareAndSetStatusFn func(context.Context, uint, models.MatchRequestStatus, models.MatchRequestStatus) (bool, error)
	getPendingReceivedFn  func(context.Context, uint) ([]models.MatchRequest, error)
	getPendingSentFn      func(context.Context, uint) ([]models.MatchRequest, error)
	listBuddiesFn         func(context.Context, uint) ([]models.User, error)
	listRelatedUserIDsFn  func(context.Context, uint, *uint) ([]uint, error)
}

func (s *matchRepoStub) CreateIfAbsent(ctx context.Context, req *models.MatchRequest) error {
	return s.createIfAbsentFn(ctx, req)
}
func (s *matchRepoStub) GetByID(ctx context.Context, id uint) (*models.MatchRequest, error) {
	return s.getByIDFn(ctx, id)
}
func (s *matchRepoStub) CompareAndSetStatus(ctx context.Context, id uint, from, to models.MatchRequestStatus) (bool, error) {
	return s.compareAndSetStatusFn(ctx, id, from, to)
}
func (s *matchRepoStub) GetPendingReceived(ctx context.Context, userID uint) ([]models.MatchRequest, error) {
	return s.getPendingReceivedFn(ctx, userID)
}
func (s *matchRepoStub) GetPendingSent(ctx context.Context, userID uint) ([]models.MatchRequest, error) {
	return s.getPendingSentFn(ctx, userID)
}
func (s *matchRepoStub) ListBuddies(ctx context.Context, userID uint) ([]models.User, error) {
	return s.listBuddiesFn(ctx, userID)
}
func (s *matchRepoStub) ListRelatedUserIDs(ctx context.Context, userID uint, sportID *uint) ([]uint, error) {
	return s.listRelatedUserIDsFn(ctx, userID, sportID)
}

func noopMatchRepo() *matchRepoStub {
	return &matchRepoStub{
		createIfAbsentFn: func(context.Context, *models.MatchRequest) error { return nil },
		getByIDFn: func(context.Context, uint) (*models.MatchRequest, error) {
			return &models.MatchRequest{}, nil
		},
		compareAndSetStatusFn: func(context.Context, uint, models.MatchRequestStatus, models.MatchRequestStatus) (bool, error) {
			return true, nil
		},
		getPendingReceivedFn: func(context.Context, uint) ([]models.MatchRequest, error) { return nil, nil },
		getPendingSentFn:     func(context.Context, uint) ([]models.MatchRequest, error) { return nil, nil },
		listBuddiesFn:        func(context.Context, uint) ([]models.User, error) { return nil, nil },
		listRelatedUserIDsFn: func(context.Context, uint, *uint) ([]uint, error) { return nil, nil },
	}
}

type publisherStub struct {
	mu     sync.Mutex
	events []models.MatchAccepted
	err    error
}

func (p *publisherStub) PublishMatchAccepted(_ context.Context, event models.MatchAccepted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *publisherStub) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func assertAppErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
}

func floatPtr(v float64) *float64 { return &v }
func uintPtr(v uint) *uint        { return &v }

func TestMatchingEngineCreateSelfMatch(t *testing.T) {
	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), noopMatchRepo(), &publisherStub{})
	_, err := engine.CreateMatchRequest(context.Background(), 3, 3, nil, "")
	assertAppErrCode(t, err, models.CodeSelfMatchNotAllowed)
}

func TestMatchingEngineCreateDuplicate(t *testing.T) {
	matchRepo := noopMatchRepo()
	matchRepo.createIfAbsentFn = func(context.Context, *models.MatchRequest) error {
		return models.NewDuplicateActiveRequestError()
	}

	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), matchRepo, &publisherStub{})
	_, err := engine.CreateMatchRequest(context.Background(), 1, 2, nil, "hi")
	assertAppErrCode(t, err, models.CodeDuplicateActiveRequest)
}

func TestMatchingEngineCreateUnknownRecipient(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}

	engine := NewMatchingEngine(userRepo, noopSportRepo(), noopMatchRepo(), &publisherStub{})
	_, err := engine.CreateMatchRequest(context.Background(), 1, 99, nil, "")
	assertAppErrCode(t, err, models.CodeNotFound)
}

func TestMatchingEngineRespondNotRecipient(t *testing.T) {
	matchRepo := noopMatchRepo()
	matchRepo.getByIDFn = func(context.Context, uint) (*models.MatchRequest, error) {
		return &models.MatchRequest{
			ID:          5,
			RequesterID: 10,
			RecipientID: 11,
			Status:      models.MatchRequestStatusPending,
		}, nil
	}

	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), matchRepo, &publisherStub{})
	_, err := engine.RespondToMatch(context.Background(), 12, 5, true)
	assertAppErrCode(t, err, models.CodeNotAuthorized)

	// The requester cannot accept their own request either.
	_, err = engine.RespondToMatch(context.Background(), 10, 5, true)
	assertAppErrCode(t, err, models.CodeNotAuthorized)
}

func TestMatchingEngineRespondTerminalStatus(t *testing.T) {
	matchRepo := noopMatchRepo()
	matchRepo.getByIDFn = func(context.Context, uint) (*models.MatchRequest, error) {
		return &models.MatchRequest{
			ID:          5,
			RequesterID: 10,
			RecipientID: 11,
			Status:      models.MatchRequestStatusRejected,
		}, nil
	}

	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), matchRepo, &publisherStub{})
	_, err := engine.RespondToMatch(context.Background(), 11, 5, true)
	assertAppErrCode(t, err, models.CodeInvalidTransition)
}

func TestMatchingEngineRespondAcceptPublishesEvent(t *testing.T) {
	sportID := uintPtr(3)
	matchRepo := noopMatchRepo()
	matchRepo.getByIDFn = func(context.Context, uint) (*models.MatchRequest, error) {
		return &models.MatchRequest{
			ID:          5,
			RequesterID: 10,
			RecipientID: 11,
			SportID:     sportID,
			Status:      models.MatchRequestStatusPending,
		}, nil
	}

	publisher := &publisherStub{}
	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), matchRepo, publisher)

	if _, err := engine.RespondToMatch(context.Background(), 11, 5, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if publisher.count() != 1 {
		t.Fatalf("expected exactly one accepted event, got %d", publisher.count())
	}
	event := publisher.events[0]
	if event.MatchID != 5 || event.RequesterID != 10 || event.RecipientID != 11 {
		t.Fatalf("unexpected event payload: %#v", event)
	}
	if event.SportID == nil || *event.SportID != 3 {
		t.Fatalf("expected sport id 3 in event, got %#v", event.SportID)
	}
}

func TestMatchingEngineRespondRejectPublishesNothing(t *testing.T) {
	matchRepo := noopMatchRepo()
	matchRepo.getByIDFn = func(context.Context, uint) (*models.MatchRequest, error) {
		return &models.MatchRequest{
			ID:          5,
			RequesterID: 10,
			RecipientID: 11,
			Status:      models.MatchRequestStatusPending,
		}, nil
	}

	publisher := &publisherStub{}
	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), matchRepo, publisher)

	if _, err := engine.RespondToMatch(context.Background(), 11, 5, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if publisher.count() != 0 {
		t.Fatalf("reject must not publish events, got %d", publisher.count())
	}
}

func TestMatchingEngineRespondLostRace(t *testing.T) {
	calls := 0
	matchRepo := noopMatchRepo()
	matchRepo.getByIDFn = func(context.Context, uint) (*models.MatchRequest, error) {
		calls++
		status := models.MatchRequestStatusPending
		if calls > 1 {
			status = models.MatchRequestStatusCanceled
		}
		return &models.MatchRequest{
			ID:          5,
			RequesterID: 10,
			RecipientID: 11,
			Status:      status,
		}, nil
	}
	matchRepo.compareAndSetStatusFn = func(context.Context, uint, models.MatchRequestStatus, models.MatchRequestStatus) (bool, error) {
		return false, nil
	}

	publisher := &publisherStub{}
	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), matchRepo, publisher)

	_, err := engine.RespondToMatch(context.Background(), 11, 5, true)
	assertAppErrCode(t, err, models.CodeInvalidTransition)
	if publisher.count() != 0 {
		t.Fatalf("losing the race must not publish events, got %d", publisher.count())
	}
}

// Two concurrent responders race on the same pending request through a
// stub that honors compare-and-set semantics. Exactly one wins and exactly
// one accepted event is published.
func TestMatchingEngineRespondConcurrent(t *testing.T) {
	var mu sync.Mutex
	status := models.MatchRequestStatusPending

	matchRepo := noopMatchRepo()
	matchRepo.getByIDFn = func(context.Context, uint) (*models.MatchRequest, error) {
		mu.Lock()
		defer mu.Unlock()
		return &models.MatchRequest{
			ID:          5,
			RequesterID: 10,
			RecipientID: 11,
			Status:      models.MatchRequestStatusPending,
		}, nil
	}
	matchRepo.compareAndSetStatusFn = func(_ context.Context, _ uint, from, to models.MatchRequestStatus) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		if status != from {
			return false, nil
		}
		status = to
		return true, nil
	}

	publisher := &publisherStub{}
	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), matchRepo, publisher)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.RespondToMatch(context.Background(), 11, 5, true)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one responder to win, got %d", succeeded)
	}
	if publisher.count() != 1 {
		t.Fatalf("expected exactly one accepted event, got %d", publisher.count())
	}
}

func TestMatchingEngineCancelNotRequester(t *testing.T) {
	matchRepo := noopMatchRepo()
	matchRepo.getByIDFn = func(context.Context, uint) (*models.MatchRequest, error) {
		return &models.MatchRequest{
			ID:          5,
			RequesterID: 10,
			RecipientID: 11,
			Status:      models.MatchRequestStatusPending,
		}, nil
	}

	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), matchRepo, &publisherStub{})
	_, err := engine.CancelMatchRequest(context.Background(), 11, 5)
	assertAppErrCode(t, err, models.CodeNotAuthorized)
}

func TestMatchingEngineCancelAccepted(t *testing.T) {
	matchRepo := noopMatchRepo()
	matchRepo.getByIDFn = func(context.Context, uint) (*models.MatchRequest, error) {
		return &models.MatchRequest{
			ID:          5,
			RequesterID: 10,
			RecipientID: 11,
			Status:      models.MatchRequestStatusAccepted,
		}, nil
	}

	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), matchRepo, &publisherStub{})
	_, err := engine.CancelMatchRequest(context.Background(), 10, 5)
	assertAppErrCode(t, err, models.CodeInvalidTransition)
}

func TestMatchingEngineFindCandidatesSkillWithoutSport(t *testing.T) {
	engine := NewMatchingEngine(noopUserRepo(), noopSportRepo(), noopMatchRepo(), &publisherStub{})

	level := models.SkillAdvanced
	_, err := engine.FindCandidates(context.Background(), 1, matching.FilterSpec{SkillLevel: &level}, 1, 20)
	assertAppErrCode(t, err, models.CodeValidation)
}

func TestMatchingEngineFindCandidatesMissingLocation(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1}, nil
	}

	engine := NewMatchingEngine(userRepo, noopSportRepo(), noopMatchRepo(), &publisherStub{})
	_, err := engine.FindCandidates(context.Background(), 1, matching.FilterSpec{}, 1, 20)
	assertAppErrCode(t, err, models.CodeMissingLocation)
}

func TestMatchingEngineFindCandidatesExcludesRelatedUsers(t *testing.T) {
	requester := &models.User{
		ID:        1,
		Latitude:  floatPtr(39.95),
		Longitude: floatPtr(-75.16),
	}
	nearby := func(id uint) models.User {
		return models.User{
			ID:          id,
			Latitude:    floatPtr(39.96),
			Longitude:   floatPtr(-75.17),
			MaxTravelKm: models.DefaultMaxTravelKm,
			Public:      true,
		}
	}

	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(context.Context, uint) (*models.User, error) { return requester, nil }
	userRepo.listCandidatePoolFn = func(context.Context, uint) ([]models.User, error) {
		return []models.User{nearby(2), nearby(3), nearby(4)}, nil
	}

	matchRepo := noopMatchRepo()
	matchRepo.listRelatedUserIDsFn = func(context.Context, uint, *uint) ([]uint, error) {
		return []uint{3}, nil
	}

	engine := NewMatchingEngine(userRepo, noopSportRepo(), matchRepo, &publisherStub{})
	page, err := engine.FindCandidates(context.Background(), 1, matching.FilterSpec{}, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.TotalCount != 2 {
		t.Fatalf("expected 2 candidates, got %d", page.TotalCount)
	}
	for _, c := range page.Items {
		if c.User.ID == 3 {
			t.Fatal("user with an active request must not be surfaced")
		}
	}
}
