package repository

import (
	"context"
	"errors"
	"time"

	"buddyup/internal/models"
	"buddyup/internal/observability"

	"gorm.io/gorm"
)

// MatchRequestRepository defines persistence operations for match requests.
type MatchRequestRepository interface {
	// CreateIfAbsent inserts the request unless a pending request already
	// exists for the same (requester, recipient, sport) triple. Returns a
	// DuplicateActiveRequest error when one does.
	CreateIfAbsent(ctx context.Context, req *models.MatchRequest) error
	GetByID(ctx context.Context, id uint) (*models.MatchRequest, error)
	// CompareAndSetStatus transitions the request from one status to another
	// with a conditional update. It reports false when the request was not in
	// the expected status, without error.
	CompareAndSetStatus(ctx context.Context, id uint, from, to models.MatchRequestStatus) (bool, error)
	GetPendingReceived(ctx context.Context, userID uint) ([]models.MatchRequest, error)
	GetPendingSent(ctx context.Context, userID uint) ([]models.MatchRequest, error)
	// ListBuddies returns the users on the other end of accepted requests.
	ListBuddies(ctx context.Context, userID uint) ([]models.User, error)
	// ListRelatedUserIDs returns IDs of users connected to the given user by
	// a pending or accepted request in either direction. With a sport given,
	// only requests for that sport count, plus sport-agnostic ones (those
	// span every sport). With nil, requests for any sport count.
	ListRelatedUserIDs(ctx context.Context, userID uint, sportID *uint) ([]uint, error)
}

type matchRequestRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewMatchRequestRepository returns a new MatchRequestRepository implementation.
func NewMatchRequestRepository(db *gorm.DB) MatchRequestRepository {
	return &matchRequestRepository{
		db:  db,
		log: observability.NewRepoLogger("match_requests"),
	}
}

// sportKey collapses a nil sport to 0 to mirror the COALESCE in the
// pending-scoped unique index.
func sportKey(sportID *uint) uint {
	if sportID == nil {
		return 0
	}
	return *sportID
}

func (r *matchRequestRepository) CreateIfAbsent(ctx context.Context, req *models.MatchRequest) error {
	defer observability.TrackQuery("create_if_absent", "match_requests")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MatchRequest{}).
			Where("requester_id = ? AND recipient_id = ? AND COALESCE(sport_id, 0) = ? AND status = ?",
				req.RequesterID, req.RecipientID, sportKey(req.SportID), models.MatchRequestStatusPending).
			Count(&count).Error; err != nil {
			return models.NewStoreUnavailableError(err)
		}
		if count > 0 {
			return models.NewDuplicateActiveRequestError()
		}

		if err := tx.Create(req).Error; err != nil {
			// The partial unique index backstops the check above under
			// concurrent inserts.
			if isUniqueConstraintError(err) {
				return models.NewDuplicateActiveRequestError()
			}
			r.log.LogError(ctx, err, "create")
			return models.NewStoreUnavailableError(err)
		}
		r.log.LogWrite(ctx, "create", map[string]interface{}{
			"request_id":   req.ID,
			"requester_id": req.RequesterID,
			"recipient_id": req.RecipientID,
		})
		return nil
	})
}

func (r *matchRequestRepository) GetByID(ctx context.Context, id uint) (*models.MatchRequest, error) {
	var req models.MatchRequest
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Recipient").
		Preload("Sport").
		First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("MatchRequest", id)
		}
		return nil, models.NewStoreUnavailableError(err)
	}
	return &req, nil
}

func (r *matchRequestRepository) CompareAndSetStatus(ctx context.Context, id uint, from, to models.MatchRequestStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MatchRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       to,
			"responded_at": time.Now().UTC(),
		})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "compare_and_set_status")
		return false, models.NewStoreUnavailableError(result.Error)
	}
	if result.RowsAffected > 0 {
		r.log.LogWrite(ctx, "compare_and_set_status", map[string]interface{}{
			"request_id": id,
			"from":       string(from),
			"to":         string(to),
		})
	}
	return result.RowsAffected > 0, nil
}

func (r *matchRequestRepository) GetPendingReceived(ctx context.Context, userID uint) ([]models.MatchRequest, error) {
	var requests []models.MatchRequest
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", userID, models.MatchRequestStatusPending).
		Preload("Requester").
		Preload("Sport").
		Order("requested_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return requests, nil
}

func (r *matchRequestRepository) GetPendingSent(ctx context.Context, userID uint) ([]models.MatchRequest, error) {
	var requests []models.MatchRequest
	if err := r.db.WithContext(ctx).
		Where("requester_id = ? AND status = ?", userID, models.MatchRequestStatusPending).
		Preload("Recipient").
		Preload("Sport").
		Order("requested_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return requests, nil
}

func (r *matchRequestRepository) ListBuddies(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN match_requests m ON (users.id = m.requester_id OR users.id = m.recipient_id)").
		Where("m.status = ? AND (m.requester_id = ? OR m.recipient_id = ?) AND users.id != ?",
			models.MatchRequestStatusAccepted, userID, userID, userID).
		Distinct("users.*").
		Find(&users).Error; err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return users, nil
}

func (r *matchRequestRepository) ListRelatedUserIDs(ctx context.Context, userID uint, sportID *uint) ([]uint, error) {
	q := r.db.WithContext(ctx).
		Select("requester_id", "recipient_id").
		Where("(requester_id = ? OR recipient_id = ?) AND status IN ?",
			userID, userID,
			[]models.MatchRequestStatus{models.MatchRequestStatusPending, models.MatchRequestStatusAccepted})
	if sportID != nil {
		q = q.Where("sport_id = ? OR sport_id IS NULL", *sportID)
	}

	var requests []models.MatchRequest
	if err := q.Find(&requests).Error; err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}

	seen := make(map[uint]bool, len(requests))
	ids := make([]uint, 0, len(requests))
	for _, req := range requests {
		other := req.RequesterID
		if other == userID {
			other = req.RecipientID
		}
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	return ids, nil
}
