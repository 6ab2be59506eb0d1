// Package policy centralizes every role and ownership check in the
// claim workflow. All functions are pure predicates over the caller
// identity and the claim; they never touch storage.
package policy

import (
	"errors"

	"github.com/easybills/easybills/internal/domain/workflow"
	"github.com/easybills/easybills/internal/models"
)

// ErrAccessDenied is returned when a role or ownership check fails.
// Distinct from a not-found error: the claim exists but the caller may
// not act on it.
var ErrAccessDenied = errors.New("access denied")

// IsOwner returns true if the actor owns the claim.
func IsOwner(actor models.Actor, claim *models.Claim) bool {
	return actor.UserID == claim.UserID
}

// IsAccounts returns true if the actor may act as the accounts team.
// Admins carry every accounts-team permission.
func IsAccounts(actor models.Actor) bool {
	return actor.Role == models.RoleAccounts || actor.Role == models.RoleAdmin
}

// CanView returns true if the actor may read the claim: its owner or
// any accounts-team member.
func CanView(actor models.Actor, claim *models.Claim) bool {
	return IsOwner(actor, claim) || IsAccounts(actor)
}

// CanEdit returns true if the actor may modify claim fields: only the
// owner, and only while the claim is still a draft.
func CanEdit(actor models.Actor, claim *models.Claim) bool {
	return IsOwner(actor, claim) && workflow.Status(claim.Status) == workflow.StatusDraft
}

// CanSubmit returns true if the actor may submit the claim for
// verification: the owner, from Draft or after a referral back.
func CanSubmit(actor models.Actor, claim *models.Claim) bool {
	if !IsOwner(actor, claim) {
		return false
	}
	s := workflow.Status(claim.Status)
	return s == workflow.StatusDraft || s == workflow.StatusReferredBack
}

// CanAttach returns true if the actor may attach a document: the
// owner, while the claim is a draft or referred back for resubmission.
func CanAttach(actor models.Actor, claim *models.Claim) bool {
	if !IsOwner(actor, claim) {
		return false
	}
	s := workflow.Status(claim.Status)
	return s == workflow.StatusDraft || s == workflow.StatusReferredBack
}

// CanDetach returns true if the actor may delete a document: the
// owner, only while the claim is still a draft.
func CanDetach(actor models.Actor, claim *models.Claim) bool {
	return IsOwner(actor, claim) && workflow.Status(claim.Status) == workflow.StatusDraft
}

// CanReview returns true if the actor may verify, approve, refer back
// or reject the claim: accounts team only, while the claim is in the
// review pipeline.
func CanReview(actor models.Actor, claim *models.Claim) bool {
	if !IsAccounts(actor) {
		return false
	}
	switch workflow.Status(claim.Status) {
	case workflow.StatusSubmitted, workflow.StatusPending, workflow.StatusVerified:
		return true
	}
	return false
}

// CanMarkPaid returns true if the actor may record payment: accounts
// team only, on an approved claim.
func CanMarkPaid(actor models.Actor, claim *models.Claim) bool {
	return IsAccounts(actor) && workflow.Status(claim.Status) == workflow.StatusApproved
}

// CanComment returns true if the actor may append a comment: anyone
// with read access, regardless of claim status.
func CanComment(actor models.Actor, claim *models.Claim) bool {
	return CanView(actor, claim)
}
