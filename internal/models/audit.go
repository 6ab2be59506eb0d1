package models

import "time"

// AuditLog is an immutable record of an action taken on a claim.
// Entries are append-only; nothing in the system updates or deletes them.
type AuditLog struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	ClaimID        *int64    `json:"claim_id,omitempty"`
	Action         string    `json:"action"`
	Details        string    `json:"details"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Audit action constants
const (
	ActionClaimCreated     = "claim_created"
	ActionClaimUpdated     = "claim_updated"
	ActionClaimSubmitted   = "claim_submitted"
	ActionClaimVerified    = "claim_verified"
	ActionClaimApproved    = "claim_approved"
	ActionClaimReferredBack = "claim_referred_back"
	ActionClaimRejected    = "claim_rejected"
	ActionClaimPaid        = "claim_paid"
	ActionDocumentUploaded = "document_uploaded"
	ActionDocumentDeleted  = "document_deleted"
	ActionCommentAdded     = "comment_added"
)
