package workflow

// Status represents a claim's position in the reimbursement lifecycle.
type Status string

const (
	StatusDraft        Status = "Draft"
	StatusSubmitted    Status = "Submitted"
	StatusPending      Status = "Pending"
	StatusVerified     Status = "Verified"
	StatusReferredBack Status = "Referred Back"
	StatusApproved     Status = "Approved"
	StatusRejected     Status = "Rejected/Cancelled"
	StatusPaid         Status = "Paid"
)

var validStatuses = map[Status]bool{
	StatusDraft:        true,
	StatusSubmitted:    true,
	StatusPending:      true,
	StatusVerified:     true,
	StatusReferredBack: true,
	StatusApproved:     true,
	StatusRejected:     true,
	StatusPaid:         true,
}

var terminalStatuses = map[Status]bool{
	StatusRejected: true,
	StatusPaid:     true,
}

// IsTerminal returns true if no further transitions are allowed out of
// the status.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a known lifecycle status.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Pending-with labels describing which party must act next. Derived
// from the transition table, never set independently by callers.
const (
	PendingWithNone     = "NA"
	PendingWithAccounts = "Accounts Team"
	PendingWithFinance  = "Finance Team"
	PendingWithFaculty  = "Faculty"
	PendingWithPayment  = "Payment Processing"
)
