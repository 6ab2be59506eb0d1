package models

import "time"

// Claim represents a single expense reimbursement request.
type Claim struct {
	ID              int64          `json:"id"`
	ClaimNumber     string         `json:"claim_number"`
	UserID          int64          `json:"user_id"`
	ClaimType       string         `json:"claim_type"`
	LicenseCategory string         `json:"license_category"`
	ExpenseCategory string         `json:"expense_category"`
	Description     string         `json:"description"`
	ClaimedAmount   float64        `json:"claimed_amount"`
	ApprovedAmount  float64        `json:"approved_amount"`
	Status          string         `json:"status"`
	PendingWith     string         `json:"pending_with"`
	VerifiedBy      *int64         `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time     `json:"verified_at,omitempty"`
	ApprovedBy      *int64         `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	PaidAt          *time.Time     `json:"paid_at,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	TravelDetails   *TravelDetails `json:"travel_details,omitempty"`
	Documents       []*Document    `json:"documents,omitempty"`
	Comments        []*Comment     `json:"comments,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TravelDetails carries the itinerary for travel-type claims.
type TravelDetails struct {
	From      string     `json:"from,omitempty"`
	To        string     `json:"to,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Purpose   string     `json:"purpose,omitempty"`
}

// Comment is a remark appended to a claim by its owner or a reviewer.
type Comment struct {
	ID        int64     `json:"id"`
	ClaimID   int64     `json:"claim_id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Claim type constants
const (
	ClaimTypeTravel     = "Travel"
	ClaimTypeNonTravel  = "Non Travel"
	ClaimTypeForex      = "Forex Refund"
	ClaimTypeCellPhone  = "Cell Phone"
	ClaimTypeSalary     = "Salary/Medical Aid"
	ClaimTypeFacilities = "F & M (VMS)"
)

var validClaimTypes = map[string]bool{
	ClaimTypeTravel:     true,
	ClaimTypeNonTravel:  true,
	ClaimTypeForex:      true,
	ClaimTypeCellPhone:  true,
	ClaimTypeSalary:     true,
	ClaimTypeFacilities: true,
}

// IsValidClaimType returns true if the claim type is in the known set.
func IsValidClaimType(t string) bool {
	return validClaimTypes[t]
}
