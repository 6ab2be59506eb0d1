package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/domain/workflow"
	"github.com/easybills/easybills/internal/models"
)

// ClaimRepository handles claim persistence.
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) *ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

// ClaimFilters narrows owner claim listings.
type ClaimFilters struct {
	Status    string
	ClaimType string
	StartDate *time.Time
	EndDate   *time.Time
}

// TransitionFields carries the actor/timestamp fields a transition
// sets. Nil pointers are left untouched; each field is written exactly
// once over a claim's lifetime.
type TransitionFields struct {
	VerifiedBy      *int64
	VerifiedAt      *time.Time
	ApprovedBy      *int64
	ApprovedAt      *time.Time
	ApprovedAmount  *float64
	PaidAt          *time.Time
	RejectionReason *string
}

const claimColumns = `id, claim_number, user_id, claim_type, license_category, expense_category,
	description, claimed_amount, approved_amount, status, pending_with,
	verified_by, verified_at, approved_by, approved_at, paid_at, rejection_reason,
	travel_from, travel_to, travel_start_date, travel_end_date, travel_purpose,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*models.Claim, error) {
	var c models.Claim
	var verifiedBy, approvedBy sql.NullInt64
	var verifiedAt, approvedAt, paidAt sql.NullTime
	var rejectionReason sql.NullString
	var travelFrom, travelTo, travelPurpose sql.NullString
	var travelStart, travelEnd sql.NullTime

	err := row.Scan(
		&c.ID, &c.ClaimNumber, &c.UserID, &c.ClaimType, &c.LicenseCategory, &c.ExpenseCategory,
		&c.Description, &c.ClaimedAmount, &c.ApprovedAmount, &c.Status, &c.PendingWith,
		&verifiedBy, &verifiedAt, &approvedBy, &approvedAt, &paidAt, &rejectionReason,
		&travelFrom, &travelTo, &travelStart, &travelEnd, &travelPurpose,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if verifiedBy.Valid {
		c.VerifiedBy = &verifiedBy.Int64
	}
	if verifiedAt.Valid {
		c.VerifiedAt = &verifiedAt.Time
	}
	if approvedBy.Valid {
		c.ApprovedBy = &approvedBy.Int64
	}
	if approvedAt.Valid {
		c.ApprovedAt = &approvedAt.Time
	}
	if paidAt.Valid {
		c.PaidAt = &paidAt.Time
	}
	if rejectionReason.Valid {
		c.RejectionReason = rejectionReason.String
	}
	if travelFrom.Valid || travelTo.Valid || travelStart.Valid || travelEnd.Valid || travelPurpose.Valid {
		td := &models.TravelDetails{
			From:    travelFrom.String,
			To:      travelTo.String,
			Purpose: travelPurpose.String,
		}
		if travelStart.Valid {
			td.StartDate = &travelStart.Time
		}
		if travelEnd.Valid {
			td.EndDate = &travelEnd.Time
		}
		c.TravelDetails = td
	}

	return &c, nil
}

// nextClaimNumber allocates the next sequential claim number inside
// the creating transaction. The single-row counter update serializes
// concurrent creations so two claims can never share a number.
func (r *ClaimRepository) nextClaimNumber(ctx context.Context, tx *sql.Tx) (string, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		"UPDATE claim_sequence SET value = value + 1 WHERE id = 1 RETURNING value").Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("failed to allocate claim number: %w", err)
	}
	return fmt.Sprintf("%d/%s", seq, time.Now().Format("06")), nil
}

// Create inserts a new claim in Draft status, assigning its claim
// number. Must run inside a transaction so number allocation and the
// insert commit together.
func (r *ClaimRepository) Create(ctx context.Context, tx *sql.Tx, claim *models.Claim) error {
	number, err := r.nextClaimNumber(ctx, tx)
	if err != nil {
		return err
	}
	claim.ClaimNumber = number
	claim.Status = string(workflow.StatusDraft)
	claim.PendingWith = workflow.PendingWithNone

	var travelFrom, travelTo, travelPurpose sql.NullString
	var travelStart, travelEnd sql.NullTime
	if td := claim.TravelDetails; td != nil {
		travelFrom = sql.NullString{String: td.From, Valid: td.From != ""}
		travelTo = sql.NullString{String: td.To, Valid: td.To != ""}
		travelPurpose = sql.NullString{String: td.Purpose, Valid: td.Purpose != ""}
		if td.StartDate != nil {
			travelStart = sql.NullTime{Time: *td.StartDate, Valid: true}
		}
		if td.EndDate != nil {
			travelEnd = sql.NullTime{Time: *td.EndDate, Valid: true}
		}
	}

	query := `
		INSERT INTO claims (
			claim_number, user_id, claim_type, license_category, expense_category,
			description, claimed_amount, status, pending_with,
			travel_from, travel_to, travel_start_date, travel_end_date, travel_purpose
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		claim.ClaimNumber,
		claim.UserID,
		claim.ClaimType,
		claim.LicenseCategory,
		claim.ExpenseCategory,
		claim.Description,
		claim.ClaimedAmount,
		claim.Status,
		claim.PendingWith,
		travelFrom, travelTo, travelStart, travelEnd, travelPurpose,
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	claim.ID = id
	return nil
}

// GetByID retrieves a claim by ID.
func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*models.Claim, error) {
	query := fmt.Sprintf("SELECT %s FROM claims WHERE id = ?", claimColumns)

	claim, err := scanClaim(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get claim by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return claim, nil
}

// ListByOwner retrieves all claims belonging to a user, newest first,
// optionally filtered by status, claim type and creation date range.
func (r *ClaimRepository) ListByOwner(ctx context.Context, userID int64, filters ClaimFilters) ([]*models.Claim, error) {
	var conditions []string
	var args []interface{}

	conditions = append(conditions, "user_id = ?")
	args = append(args, userID)

	if filters.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filters.Status)
	}
	if filters.ClaimType != "" {
		conditions = append(conditions, "claim_type = ?")
		args = append(args, filters.ClaimType)
	}
	if filters.StartDate != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *filters.StartDate)
	}
	if filters.EndDate != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *filters.EndDate)
	}

	query := fmt.Sprintf("SELECT %s FROM claims WHERE %s ORDER BY created_at DESC",
		claimColumns, strings.Join(conditions, " AND "))

	return r.queryClaims(ctx, query, args...)
}

// ListByStatus retrieves claims in any of the given statuses, newest
// first. An empty status set returns every claim (used for exports).
func (r *ClaimRepository) ListByStatus(ctx context.Context, statuses ...workflow.Status) ([]*models.Claim, error) {
	if len(statuses) == 0 {
		query := fmt.Sprintf("SELECT %s FROM claims ORDER BY created_at DESC", claimColumns)
		return r.queryClaims(ctx, query)
	}

	placeholders := make([]string, len(statuses))
	args := make([]interface{}, len(statuses))
	for i, s := range statuses {
		placeholders[i] = "?"
		args[i] = string(s)
	}

	query := fmt.Sprintf("SELECT %s FROM claims WHERE status IN (%s) ORDER BY created_at DESC",
		claimColumns, strings.Join(placeholders, ", "))

	return r.queryClaims(ctx, query, args...)
}

func (r *ClaimRepository) queryClaims(ctx context.Context, query string, args ...interface{}) ([]*models.Claim, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list claims", zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []*models.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}

	return claims, rows.Err()
}

// UpdateDraftFields updates editable claim fields. The status guard in
// the WHERE clause makes the write race-safe: if the claim left Draft
// between the policy check and this update, no row matches and the
// caller sees ErrConflict.
func (r *ClaimRepository) UpdateDraftFields(ctx context.Context, claim *models.Claim) error {
	var travelFrom, travelTo, travelPurpose sql.NullString
	var travelStart, travelEnd sql.NullTime
	if td := claim.TravelDetails; td != nil {
		travelFrom = sql.NullString{String: td.From, Valid: td.From != ""}
		travelTo = sql.NullString{String: td.To, Valid: td.To != ""}
		travelPurpose = sql.NullString{String: td.Purpose, Valid: td.Purpose != ""}
		if td.StartDate != nil {
			travelStart = sql.NullTime{Time: *td.StartDate, Valid: true}
		}
		if td.EndDate != nil {
			travelEnd = sql.NullTime{Time: *td.EndDate, Valid: true}
		}
	}

	query := `
		UPDATE claims SET
			claim_type = ?, license_category = ?, expense_category = ?,
			description = ?, claimed_amount = ?,
			travel_from = ?, travel_to = ?, travel_start_date = ?, travel_end_date = ?, travel_purpose = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		claim.ClaimType, claim.LicenseCategory, claim.ExpenseCategory,
		claim.Description, claim.ClaimedAmount,
		travelFrom, travelTo, travelStart, travelEnd, travelPurpose,
		claim.ID, string(workflow.StatusDraft),
	)
	if err != nil {
		r.logger.Error("Failed to update claim", zap.Int64("id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to update claim: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}

	return nil
}

// ApplyTransition performs the compare-and-set status write for one
// workflow transition. The WHERE clause pins the expected current
// status; zero rows affected means another transition won the race and
// the caller gets ErrConflict with the claim unmodified.
func (r *ClaimRepository) ApplyTransition(ctx context.Context, tx *sql.Tx, id int64, from, to workflow.Status, pendingWith string, fields TransitionFields) error {
	set := []string{"status = ?", "pending_with = ?", "updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{string(to), pendingWith}

	if fields.VerifiedBy != nil {
		set = append(set, "verified_by = ?")
		args = append(args, *fields.VerifiedBy)
	}
	if fields.VerifiedAt != nil {
		set = append(set, "verified_at = ?")
		args = append(args, *fields.VerifiedAt)
	}
	if fields.ApprovedBy != nil {
		set = append(set, "approved_by = ?")
		args = append(args, *fields.ApprovedBy)
	}
	if fields.ApprovedAt != nil {
		set = append(set, "approved_at = ?")
		args = append(args, *fields.ApprovedAt)
	}
	if fields.ApprovedAmount != nil {
		set = append(set, "approved_amount = ?")
		args = append(args, *fields.ApprovedAmount)
	}
	if fields.PaidAt != nil {
		set = append(set, "paid_at = ?")
		args = append(args, *fields.PaidAt)
	}
	if fields.RejectionReason != nil {
		set = append(set, "rejection_reason = ?")
		args = append(args, *fields.RejectionReason)
	}

	args = append(args, id, string(from))

	query := fmt.Sprintf("UPDATE claims SET %s WHERE id = ? AND status = ?", strings.Join(set, ", "))

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.ExecContext(ctx, query, args...)
	} else {
		result, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		r.logger.Error("Failed to apply transition",
			zap.Int64("id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err))
		return fmt.Errorf("failed to apply transition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}

	return nil
}

// AddComment appends a comment to a claim.
func (r *ClaimRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO claim_comments (claim_id, user_id, message) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, comment.ClaimID, comment.UserID, comment.Message)
	if err != nil {
		r.logger.Error("Failed to add comment", zap.Int64("claim_id", comment.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to add comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	comment.ID = id
	return nil
}

// ListComments returns a claim's comments oldest first.
func (r *ClaimRepository) ListComments(ctx context.Context, claimID int64) ([]*models.Comment, error) {
	query := `
		SELECT id, claim_id, user_id, message, created_at
		FROM claim_comments
		WHERE claim_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list comments", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ClaimID, &c.UserID, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}

	return comments, rows.Err()
}
