package workflow

// Event represents an action that can cause a status transition.
type Event string

const (
	EventSubmit    Event = "SUBMIT"
	EventVerify    Event = "VERIFY"
	EventApprove   Event = "APPROVE"
	EventReferBack Event = "REFER_BACK"
	EventReject    Event = "REJECT"
	EventMarkPaid  Event = "MARK_PAID"
)

// String returns the string representation of the event.
func (e Event) String() string {
	return string(e)
}
