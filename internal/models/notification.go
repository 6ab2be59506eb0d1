package models

import "time"

// Notification is a message emitted to a claim owner as a workflow
// side effect. Only IsRead/ReadAt are ever mutated, and only by the
// owning user marking it read. Clients poll for these; there is no
// push channel.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	ClaimID   *int64     `json:"claim_id,omitempty"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Notification type constants
const (
	NotifyClaimSubmitted    = "claim_submitted"
	NotifyClaimVerified     = "claim_verified"
	NotifyClaimApproved     = "claim_approved"
	NotifyClaimReferredBack = "claim_referred_back"
	NotifyClaimRejected     = "claim_rejected"
	NotifyClaimPaid         = "claim_paid"
	NotifyCommentAdded      = "comment_added"
)
