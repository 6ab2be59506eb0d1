package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/models"
)

// DocumentRepository handles document metadata persistence. Documents
// are immutable once created; there is no update operation.
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a document record for a claim.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			claim_id, user_id, filename, original_name, file_type,
			file_size, file_url, document_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		doc.ClaimID,
		doc.UserID,
		doc.Filename,
		doc.OriginalName,
		doc.FileType,
		doc.FileSize,
		doc.FileURL,
		doc.DocumentType,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.Int64("claim_id", doc.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	doc.ID = id
	return nil
}

// GetByID retrieves a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := `
		SELECT id, claim_id, user_id, filename, original_name, file_type,
			file_size, file_url, document_type, uploaded_at
		FROM documents
		WHERE id = ?
	`

	var doc models.Document
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.ClaimID, &doc.UserID, &doc.Filename, &doc.OriginalName,
		&doc.FileType, &doc.FileSize, &doc.FileURL, &doc.DocumentType, &doc.UploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// ListByClaim returns a claim's documents in upload order.
func (r *DocumentRepository) ListByClaim(ctx context.Context, claimID int64) ([]*models.Document, error) {
	query := `
		SELECT id, claim_id, user_id, filename, original_name, file_type,
			file_size, file_url, document_type, uploaded_at
		FROM documents
		WHERE claim_id = ?
		ORDER BY uploaded_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID, &doc.ClaimID, &doc.UserID, &doc.Filename, &doc.OriginalName,
			&doc.FileType, &doc.FileSize, &doc.FileURL, &doc.DocumentType, &doc.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// CountByClaim returns the number of documents attached to a claim.
func (r *DocumentRepository) CountByClaim(ctx context.Context, claimID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE claim_id = ?", claimID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count documents", zap.Int64("claim_id", claimID), zap.Error(err))
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Delete removes a document record.
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete document", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
