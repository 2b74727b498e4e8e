package models

import "time"

// MatchRequestStatus represents the status of a buddy match request.
type MatchRequestStatus string

const (
	// MatchRequestStatusPending indicates the recipient has not responded yet.
	MatchRequestStatusPending MatchRequestStatus = "pending"
	// MatchRequestStatusAccepted indicates the recipient accepted the request.
	MatchRequestStatusAccepted MatchRequestStatus = "accepted"
	// MatchRequestStatusRejected indicates the recipient declined the request.
	MatchRequestStatusRejected MatchRequestStatus = "rejected"
	// MatchRequestStatusCanceled indicates the requester withdrew the request.
	MatchRequestStatusCanceled MatchRequestStatus = "canceled"
)

// Terminal reports whether no further transition is permitted from the status.
func (s MatchRequestStatus) Terminal() bool {
	switch s {
	case MatchRequestStatusAccepted, MatchRequestStatusRejected, MatchRequestStatusCanceled:
		return true
	}
	return false
}

// MatchRequest is a directed buddy proposal from one user to another,
// optionally scoped to a sport. Rows are never deleted; rejected and
// canceled requests are retained for history and duplicate control.
// At most one pending row may exist per (requester, recipient, sport) —
// enforced by a pending-scoped unique index, see migrations.
type MatchRequest struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	RequesterID uint               `gorm:"not null;index:idx_match_requester" json:"requester_id"`
	RecipientID uint               `gorm:"not null;index:idx_match_recipient" json:"recipient_id"`
	SportID     *uint              `json:"sport_id,omitempty"`
	Status      MatchRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_match_requests_status" json:"status"`
	Message     string             `gorm:"size:500" json:"message,omitempty"`
	RequestedAt time.Time          `gorm:"not null" json:"requested_at"`
	RespondedAt *time.Time         `json:"responded_at,omitempty"`

	// Relationships
	Requester *User  `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Recipient *User  `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	Sport     *Sport `gorm:"foreignKey:SportID" json:"sport,omitempty"`
}

// TableName specifies the table name for GORM
func (MatchRequest) TableName() string {
	return "match_requests"
}

// MatchAccepted is the domain event emitted exactly once when a request
// transitions to accepted. The messaging collaborator consumes it to open
// a conversation between the two users.
type MatchAccepted struct {
	MatchID     uint  `json:"match_id"`
	RequesterID uint  `json:"requester_id"`
	RecipientID uint  `json:"recipient_id"`
	SportID     *uint `json:"sport_id,omitempty"`
}
