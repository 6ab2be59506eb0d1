package workflow

import "github.com/easybills/easybills/internal/models"

// Edge describes the effect of firing an event from a given status:
// the resulting status, the party responsible for the next action, and
// the audit/notification vocabulary for the transition. Effects are an
// explicit mapping keyed by event, never derived from status strings.
type Edge struct {
	To          Status
	PendingWith string
	AuditAction string
	NotifyType  string
	NotifyTitle string
}

// transitions is the full workflow table. An (event, from-status) pair
// absent from this table is an invalid transition.
var transitions = map[Event]struct {
	from map[Status]bool
	edge Edge
}{
	EventSubmit: {
		from: map[Status]bool{StatusDraft: true, StatusReferredBack: true},
		edge: Edge{
			To:          StatusSubmitted,
			PendingWith: PendingWithAccounts,
			AuditAction: models.ActionClaimSubmitted,
			NotifyType:  models.NotifyClaimSubmitted,
			NotifyTitle: "Claim Submitted",
		},
	},
	EventVerify: {
		from: map[Status]bool{StatusSubmitted: true, StatusPending: true},
		edge: Edge{
			To:          StatusVerified,
			PendingWith: PendingWithFinance,
			AuditAction: models.ActionClaimVerified,
			NotifyType:  models.NotifyClaimVerified,
			NotifyTitle: "Claim Verified",
		},
	},
	EventApprove: {
		from: map[Status]bool{StatusSubmitted: true, StatusPending: true, StatusVerified: true},
		edge: Edge{
			To:          StatusApproved,
			PendingWith: PendingWithPayment,
			AuditAction: models.ActionClaimApproved,
			NotifyType:  models.NotifyClaimApproved,
			NotifyTitle: "Claim Approved",
		},
	},
	EventReferBack: {
		from: map[Status]bool{StatusSubmitted: true, StatusPending: true, StatusVerified: true},
		edge: Edge{
			To:          StatusReferredBack,
			PendingWith: PendingWithFaculty,
			AuditAction: models.ActionClaimReferredBack,
			NotifyType:  models.NotifyClaimReferredBack,
			NotifyTitle: "Claim Referred Back",
		},
	},
	EventReject: {
		from: map[Status]bool{StatusSubmitted: true, StatusPending: true, StatusVerified: true},
		edge: Edge{
			To:          StatusRejected,
			PendingWith: PendingWithNone,
			AuditAction: models.ActionClaimRejected,
			NotifyType:  models.NotifyClaimRejected,
			NotifyTitle: "Claim Rejected",
		},
	},
	EventMarkPaid: {
		from: map[Status]bool{StatusApproved: true},
		edge: Edge{
			To:          StatusPaid,
			PendingWith: PendingWithNone,
			AuditAction: models.ActionClaimPaid,
			NotifyType:  models.NotifyClaimPaid,
			NotifyTitle: "Claim Paid",
		},
	},
}

// Next resolves the edge for firing the event from the given status.
// Returns ErrInvalidStatus for an unknown status and
// ErrInvalidTransition when the table has no matching edge.
func Next(from Status, event Event) (Edge, error) {
	if !from.IsValid() {
		return Edge{}, ErrInvalidStatus
	}

	t, ok := transitions[event]
	if !ok || !t.from[from] {
		return Edge{}, ErrInvalidTransition
	}

	return t.edge, nil
}

// CanFire returns true if the event is permitted from the given status.
func CanFire(from Status, event Event) bool {
	_, err := Next(from, event)
	return err == nil
}

// PermittedEvents returns all events that can be fired from the given
// status. Terminal statuses return an empty slice.
func PermittedEvents(from Status) []Event {
	events := make([]Event, 0, len(transitions))
	for event, t := range transitions {
		if t.from[from] {
			events = append(events, event)
		}
	}
	return events
}
