package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/models"
)

// AuditRepository handles the append-only audit log. Entries are never
// updated or deleted.
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit entry. When tx is non-nil the entry commits
// with the transition that produced it.
func (r *AuditRepository) Create(ctx context.Context, tx *sql.Tx, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			user_id, claim_id, action, details, previous_status, new_status,
			ip_address, user_agent
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var claimID sql.NullInt64
	if entry.ClaimID != nil {
		claimID = sql.NullInt64{Int64: *entry.ClaimID, Valid: true}
	}

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.ExecContext(ctx, query,
			entry.UserID, claimID, entry.Action, entry.Details,
			entry.PreviousStatus, entry.NewStatus, entry.IPAddress, entry.UserAgent)
	} else {
		result, err = r.db.ExecContext(ctx, query,
			entry.UserID, claimID, entry.Action, entry.Details,
			entry.PreviousStatus, entry.NewStatus, entry.IPAddress, entry.UserAgent)
	}
	if err != nil {
		r.logger.Error("Failed to create audit entry",
			zap.String("action", entry.Action),
			zap.Error(err))
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// ListByClaim returns a claim's audit trail, newest first.
func (r *AuditRepository) ListByClaim(ctx context.Context, claimID int64) ([]*models.AuditLog, error) {
	query := `
		SELECT id, user_id, claim_id, action, details, previous_status, new_status,
			ip_address, user_agent, created_at
		FROM audit_logs
		WHERE claim_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list audit entries", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		var cID sql.NullInt64
		var details, prevStatus, newStatus, ip, ua sql.NullString

		err := rows.Scan(&e.ID, &e.UserID, &cID, &e.Action, &details,
			&prevStatus, &newStatus, &ip, &ua, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		if cID.Valid {
			e.ClaimID = &cID.Int64
		}
		e.Details = details.String
		e.PreviousStatus = prevStatus.String
		e.NewStatus = newStatus.String
		e.IPAddress = ip.String
		e.UserAgent = ua.String

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
