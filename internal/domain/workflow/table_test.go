package workflow

import (
	"errors"
	"testing"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusDraft, false},
		{StatusSubmitted, false},
		{StatusPending, false},
		{StatusVerified, false},
		{StatusReferredBack, false},
		{StatusApproved, false},
		{StatusRejected, true},
		{StatusPaid, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"valid status", StatusDraft, true},
		{"valid status paid", StatusPaid, true},
		{"invalid status", Status("INVALID"), false},
		{"empty status", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNext_AllowedEdges(t *testing.T) {
	tests := []struct {
		name        string
		from        Status
		event       Event
		to          Status
		pendingWith string
	}{
		{"submit from draft", StatusDraft, EventSubmit, StatusSubmitted, PendingWithAccounts},
		{"resubmit after referral", StatusReferredBack, EventSubmit, StatusSubmitted, PendingWithAccounts},
		{"verify submitted", StatusSubmitted, EventVerify, StatusVerified, PendingWithFinance},
		{"verify pending", StatusPending, EventVerify, StatusVerified, PendingWithFinance},
		{"approve submitted", StatusSubmitted, EventApprove, StatusApproved, PendingWithPayment},
		{"approve pending", StatusPending, EventApprove, StatusApproved, PendingWithPayment},
		{"approve verified", StatusVerified, EventApprove, StatusApproved, PendingWithPayment},
		{"refer back submitted", StatusSubmitted, EventReferBack, StatusReferredBack, PendingWithFaculty},
		{"refer back verified", StatusVerified, EventReferBack, StatusReferredBack, PendingWithFaculty},
		{"reject submitted", StatusSubmitted, EventReject, StatusRejected, PendingWithNone},
		{"reject verified", StatusVerified, EventReject, StatusRejected, PendingWithNone},
		{"pay approved", StatusApproved, EventMarkPaid, StatusPaid, PendingWithNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edge, err := Next(tt.from, tt.event)
			if err != nil {
				t.Fatalf("Next(%s, %s) returned error: %v", tt.from, tt.event, err)
			}
			if edge.To != tt.to {
				t.Errorf("Next(%s, %s).To = %s, want %s", tt.from, tt.event, edge.To, tt.to)
			}
			if edge.PendingWith != tt.pendingWith {
				t.Errorf("Next(%s, %s).PendingWith = %s, want %s", tt.from, tt.event, edge.PendingWith, tt.pendingWith)
			}
		})
	}
}

func TestNext_RejectedEdges(t *testing.T) {
	tests := []struct {
		name  string
		from  Status
		event Event
	}{
		{"approve from draft", StatusDraft, EventApprove},
		{"verify from draft", StatusDraft, EventVerify},
		{"submit from submitted", StatusSubmitted, EventSubmit},
		{"submit from approved", StatusApproved, EventSubmit},
		{"verify from approved", StatusApproved, EventVerify},
		{"pay from submitted", StatusSubmitted, EventMarkPaid},
		{"pay from verified", StatusVerified, EventMarkPaid},
		{"approve from paid", StatusPaid, EventApprove},
		{"reject from paid", StatusPaid, EventReject},
		{"verify from rejected", StatusRejected, EventVerify},
		{"pay from rejected", StatusRejected, EventMarkPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Next(tt.from, tt.event)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Next(%s, %s) error = %v, want ErrInvalidTransition", tt.from, tt.event, err)
			}
		})
	}
}

func TestNext_InvalidStatus(t *testing.T) {
	_, err := Next(Status("BOGUS"), EventSubmit)
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Next with unknown status error = %v, want ErrInvalidStatus", err)
	}
}

func TestPermittedEvents_TerminalStatusesHaveNone(t *testing.T) {
	for _, s := range []Status{StatusRejected, StatusPaid} {
		if events := PermittedEvents(s); len(events) != 0 {
			t.Errorf("PermittedEvents(%s) = %v, want none", s, events)
		}
	}
}

func TestCanFire(t *testing.T) {
	if !CanFire(StatusDraft, EventSubmit) {
		t.Error("CanFire(Draft, SUBMIT) = false, want true")
	}
	if CanFire(StatusDraft, EventMarkPaid) {
		t.Error("CanFire(Draft, MARK_PAID) = true, want false")
	}
}
