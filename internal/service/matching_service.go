// Package service contains the business logic layer of the application.
package service

import (
	"context"
	"log/slog"
	"time"

	"buddyup/internal/matching"
	"buddyup/internal/middleware"
	"buddyup/internal/models"
	"buddyup/internal/notifications"
	"buddyup/internal/observability"
	"buddyup/internal/repository"
)

const maxRequestMessageLen = 500

// MatchingEngine is the facade over candidate discovery and the match
// request lifecycle. Handlers talk to this type only.
type MatchingEngine struct {
	userRepo  repository.UserRepository
	sportRepo repository.SportRepository
	matchRepo repository.MatchRequestRepository
	publisher notifications.EventPublisher
}

// NewMatchingEngine returns a new MatchingEngine.
func NewMatchingEngine(
	userRepo repository.UserRepository,
	sportRepo repository.SportRepository,
	matchRepo repository.MatchRequestRepository,
	publisher notifications.EventPublisher,
) *MatchingEngine {
	return &MatchingEngine{
		userRepo:  userRepo,
		sportRepo: sportRepo,
		matchRepo: matchRepo,
		publisher: publisher,
	}
}

// FindCandidates runs discovery for the requester: load the candidate pool,
// drop everyone connected by an active request, filter, rank, paginate.
func (e *MatchingEngine) FindCandidates(
	ctx context.Context, requesterID uint, spec matching.FilterSpec, page, pageSize int,
) (matching.Page[matching.Candidate], error) {
	var empty matching.Page[matching.Candidate]

	if spec.SkillLevel != nil && spec.SportID == nil {
		return empty, models.NewValidationError("A skill level filter requires a sport filter")
	}
	if spec.SportID != nil {
		if _, err := e.sportRepo.GetSportByID(ctx, *spec.SportID); err != nil {
			return empty, err
		}
	}

	requester, err := e.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return empty, err
	}

	pool, err := e.userRepo.ListCandidatePool(ctx, requesterID)
	if err != nil {
		return empty, err
	}

	relatedIDs, err := e.matchRepo.ListRelatedUserIDs(ctx, requesterID, spec.SportID)
	if err != nil {
		return empty, err
	}
	excluded := make(map[uint]bool, len(relatedIDs))
	for _, id := range relatedIDs {
		excluded[id] = true
	}

	start := time.Now()
	candidates, err := matching.FilterCandidates(requester, spec, buildPool(pool, spec.SportID), excluded)
	if err != nil {
		return empty, err
	}
	ranked := matching.Rank(candidates)
	observability.ObserveSearch(start, len(ranked))

	return matching.Paginate(ranked, page, pageSize), nil
}

// buildPool joins each profile with its preference for the filtered sport.
// Without a sport filter the preference slot stays nil.
func buildPool(users []models.User, sportID *uint) []matching.PoolEntry {
	pool := make([]matching.PoolEntry, 0, len(users))
	for i := range users {
		entry := matching.PoolEntry{User: users[i]}
		if sportID != nil {
			for j := range users[i].SportPreferences {
				if users[i].SportPreferences[j].SportID == *sportID {
					entry.Preference = &users[i].SportPreferences[j]
					break
				}
			}
		}
		pool = append(pool, entry)
	}
	return pool
}

// CreateMatchRequest opens a pending request from requester to recipient.
func (e *MatchingEngine) CreateMatchRequest(
	ctx context.Context, requesterID, recipientID uint, sportID *uint, message string,
) (*models.MatchRequest, error) {
	if requesterID == recipientID {
		return nil, models.NewSelfMatchError()
	}
	if len(message) > maxRequestMessageLen {
		return nil, models.NewValidationError("Message too long (max 500 characters)")
	}

	if _, err := e.userRepo.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}
	if sportID != nil {
		if _, err := e.sportRepo.GetSportByID(ctx, *sportID); err != nil {
			return nil, err
		}
	}

	req := &models.MatchRequest{
		RequesterID: requesterID,
		RecipientID: recipientID,
		SportID:     sportID,
		Status:      models.MatchRequestStatusPending,
		Message:     message,
		RequestedAt: time.Now().UTC(),
	}
	if err := e.matchRepo.CreateIfAbsent(ctx, req); err != nil {
		return nil, err
	}
	observability.MatchRequestTransitions.WithLabelValues("created").Inc()

	return e.matchRepo.GetByID(ctx, req.ID)
}

// RespondToMatch lets the recipient accept or reject a pending request.
// The accepted event is emitted only by the caller whose conditional update
// actually moved the row out of pending, so it fires at most once.
func (e *MatchingEngine) RespondToMatch(
	ctx context.Context, userID, requestID uint, accept bool,
) (*models.MatchRequest, error) {
	req, err := e.matchRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.RecipientID != userID {
		return nil, models.NewNotAuthorizedError("Only the recipient can respond to a match request")
	}
	if req.Status != models.MatchRequestStatusPending {
		return nil, models.NewInvalidTransitionError(req.Status)
	}

	target := models.MatchRequestStatusRejected
	if accept {
		target = models.MatchRequestStatusAccepted
	}

	swapped, err := e.matchRepo.CompareAndSetStatus(ctx, requestID, models.MatchRequestStatusPending, target)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Lost the race against a concurrent respond or cancel.
		current, err := e.matchRepo.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		return nil, models.NewInvalidTransitionError(current.Status)
	}
	observability.MatchRequestTransitions.WithLabelValues(string(target)).Inc()

	if target == models.MatchRequestStatusAccepted {
		event := models.MatchAccepted{
			MatchID:     req.ID,
			RequesterID: req.RequesterID,
			RecipientID: req.RecipientID,
			SportID:     req.SportID,
		}
		if err := e.publisher.PublishMatchAccepted(ctx, event); err != nil {
			// The transition is already durable; losing the event is
			// preferable to emitting it twice on retry.
			middleware.Logger.Error("Failed to publish match accepted event",
				slog.Uint64("match_id", uint64(req.ID)),
				slog.String("error", err.Error()),
			)
		}
	}

	return e.matchRepo.GetByID(ctx, requestID)
}

// CancelMatchRequest lets the requester withdraw a pending request.
func (e *MatchingEngine) CancelMatchRequest(
	ctx context.Context, userID, requestID uint,
) (*models.MatchRequest, error) {
	req, err := e.matchRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.RequesterID != userID {
		return nil, models.NewNotAuthorizedError("Only the requester can cancel a match request")
	}
	if req.Status != models.MatchRequestStatusPending {
		return nil, models.NewInvalidTransitionError(req.Status)
	}

	swapped, err := e.matchRepo.CompareAndSetStatus(ctx, requestID,
		models.MatchRequestStatusPending, models.MatchRequestStatusCanceled)
	if err != nil {
		return nil, err
	}
	if !swapped {
		current, err := e.matchRepo.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		return nil, models.NewInvalidTransitionError(current.Status)
	}
	observability.MatchRequestTransitions.WithLabelValues(string(models.MatchRequestStatusCanceled)).Inc()

	return e.matchRepo.GetByID(ctx, requestID)
}

// GetMatchRequestForUser fetches a request visible to one of its parties.
func (e *MatchingEngine) GetMatchRequestForUser(ctx context.Context, userID, requestID uint) (*models.MatchRequest, error) {
	req, err := e.matchRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != userID && req.RecipientID != userID {
		return nil, models.NewNotAuthorizedError("Only the participants can view a match request")
	}
	return req, nil
}

// GetPendingReceived returns pending requests addressed to the user.
func (e *MatchingEngine) GetPendingReceived(ctx context.Context, userID uint) ([]models.MatchRequest, error) {
	return e.matchRepo.GetPendingReceived(ctx, userID)
}

// GetPendingSent returns pending requests the user has sent.
func (e *MatchingEngine) GetPendingSent(ctx context.Context, userID uint) ([]models.MatchRequest, error) {
	return e.matchRepo.GetPendingSent(ctx, userID)
}

// GetBuddies returns the users the given user has an accepted match with.
func (e *MatchingEngine) GetBuddies(ctx context.Context, userID uint) ([]models.User, error) {
	return e.matchRepo.ListBuddies(ctx, userID)
}
