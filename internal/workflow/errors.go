package workflow

import "errors"

var (
	// ErrNoDocuments is returned when a claim is submitted without any
	// attached documents.
	ErrNoDocuments = errors.New("claim has no documents attached")

	// ErrInvalidDocument is returned when an upload violates the
	// file-type allow-list or the size cap.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrClaimNotEditable is returned when an edit, attach or detach is
	// attempted outside the statuses that permit it.
	ErrClaimNotEditable = errors.New("claim is not editable in its current status")

	// ErrValidation is returned when required fields are missing or
	// malformed.
	ErrValidation = errors.New("validation failed")
)
