package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	dw "github.com/easybills/easybills/internal/domain/workflow"
	"github.com/easybills/easybills/internal/models"
	"github.com/easybills/easybills/internal/policy"
	"github.com/easybills/easybills/internal/repository"
)

// ClaimInput carries the caller-editable claim fields.
type ClaimInput struct {
	ClaimType       string
	LicenseCategory string
	ExpenseCategory string
	Description     string
	ClaimedAmount   float64
	TravelDetails   *models.TravelDetails
}

func (in ClaimInput) validate() error {
	var missing []string
	if in.ClaimType == "" {
		missing = append(missing, "claim_type")
	}
	if in.LicenseCategory == "" {
		missing = append(missing, "license_category")
	}
	if in.ExpenseCategory == "" {
		missing = append(missing, "expense_category")
	}
	if in.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if !models.IsValidClaimType(in.ClaimType) {
		return fmt.Errorf("%w: unknown claim type %q", ErrValidation, in.ClaimType)
	}
	if in.ClaimedAmount <= 0 {
		return fmt.Errorf("%w: claimed amount must be positive", ErrValidation)
	}
	return nil
}

// CreateClaim creates a new Draft claim owned by the actor. Claim
// number allocation, the insert and the audit entry commit together.
func (e *Engine) CreateClaim(ctx context.Context, actor models.Actor, in ClaimInput) (*models.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	if actor.Role != models.RoleFaculty {
		return nil, policy.ErrAccessDenied
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	claim := &models.Claim{
		UserID:          actor.UserID,
		ClaimType:       in.ClaimType,
		LicenseCategory: in.LicenseCategory,
		ExpenseCategory: in.ExpenseCategory,
		Description:     in.Description,
		ClaimedAmount:   in.ClaimedAmount,
	}
	if in.ClaimType == models.ClaimTypeTravel {
		claim.TravelDetails = in.TravelDetails
	}

	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := e.claims.Create(ctx, tx, claim); err != nil {
			return err
		}

		entry := &models.AuditLog{
			UserID:    actor.UserID,
			ClaimID:   &claim.ID,
			Action:    models.ActionClaimCreated,
			Details:   fmt.Sprintf("Claim %s created", claim.ClaimNumber),
			NewStatus: claim.Status,
			IPAddress: actor.IP,
			UserAgent: actor.UserAgent,
		}
		return e.audit.Create(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Claim created",
		zap.Int64("claim_id", claim.ID),
		zap.String("claim_number", claim.ClaimNumber),
		zap.Int64("owner_id", actor.UserID))

	return claim, nil
}

// UpdateClaim edits a Draft claim's fields.
func (e *Engine) UpdateClaim(ctx context.Context, actor models.Actor, claimID int64, in ClaimInput) (*models.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	claim, err := e.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !policy.IsOwner(actor, claim) {
		return nil, policy.ErrAccessDenied
	}
	if !policy.CanEdit(actor, claim) {
		return nil, ErrClaimNotEditable
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	claim.ClaimType = in.ClaimType
	claim.LicenseCategory = in.LicenseCategory
	claim.ExpenseCategory = in.ExpenseCategory
	claim.Description = in.Description
	claim.ClaimedAmount = in.ClaimedAmount
	if in.ClaimType == models.ClaimTypeTravel {
		claim.TravelDetails = in.TravelDetails
	} else {
		claim.TravelDetails = nil
	}

	if err := e.claims.UpdateDraftFields(ctx, claim); err != nil {
		return nil, err
	}

	e.recordAction(ctx, actor, &claim.ID, models.ActionClaimUpdated,
		fmt.Sprintf("Claim %s updated", claim.ClaimNumber))

	return e.claims.GetByID(ctx, claimID)
}

// GetClaim returns a claim with its documents and comments, gated by
// the access policy.
func (e *Engine) GetClaim(ctx context.Context, actor models.Actor, claimID int64) (*models.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	claim, err := e.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, claim) {
		return nil, policy.ErrAccessDenied
	}

	if claim.Documents, err = e.documents.ListByClaim(ctx, claimID); err != nil {
		return nil, err
	}
	if claim.Comments, err = e.claims.ListComments(ctx, claimID); err != nil {
		return nil, err
	}

	return claim, nil
}

// ListOwnClaims returns the actor's claims with optional filters.
func (e *Engine) ListOwnClaims(ctx context.Context, actor models.Actor, filters repository.ClaimFilters) ([]*models.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	return e.claims.ListByOwner(ctx, actor.UserID, filters)
}

// ListPendingClaims returns the accounts-team review queue.
func (e *Engine) ListPendingClaims(ctx context.Context, actor models.Actor) ([]*models.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	if !policy.IsAccounts(actor) {
		return nil, policy.ErrAccessDenied
	}

	claims, err := e.claims.ListByStatus(ctx, dw.StatusSubmitted, dw.StatusPending)
	if err != nil {
		return nil, err
	}

	for _, claim := range claims {
		if claim.Documents, err = e.documents.ListByClaim(ctx, claim.ID); err != nil {
			return nil, err
		}
	}

	return claims, nil
}

// ListAllClaims returns every claim for accounts-team reporting.
func (e *Engine) ListAllClaims(ctx context.Context, actor models.Actor) ([]*models.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	if !policy.IsAccounts(actor) {
		return nil, policy.ErrAccessDenied
	}

	return e.claims.ListByStatus(ctx)
}

// GetHistory returns a claim's audit trail, gated by the access
// policy.
func (e *Engine) GetHistory(ctx context.Context, actor models.Actor, claimID int64) ([]*models.AuditLog, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	claim, err := e.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, claim) {
		return nil, policy.ErrAccessDenied
	}

	return e.audit.ListByClaim(ctx, claimID)
}

// DocumentUpload carries stored-file metadata for an attachment.
type DocumentUpload struct {
	Filename     string
	OriginalName string
	FileType     string
	FileSize     int64
	FileURL      string
	DocumentType string
}

// AttachDocument records an uploaded document against a claim. Only
// the owner may attach, only while the claim is Draft or Referred
// Back, and only files on the type allow-list under the size cap.
func (e *Engine) AttachDocument(ctx context.Context, actor models.Actor, claimID int64, upload DocumentUpload) (*models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	claim, err := e.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !policy.IsOwner(actor, claim) {
		return nil, policy.ErrAccessDenied
	}
	if !policy.CanAttach(actor, claim) {
		return nil, ErrClaimNotEditable
	}

	if !models.IsAllowedFileType(upload.FileType) {
		return nil, fmt.Errorf("%w: file type %q not allowed (pdf, jpg, jpeg, png)", ErrInvalidDocument, upload.FileType)
	}
	if upload.FileSize <= 0 || upload.FileSize > e.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file size %d exceeds limit of %d bytes", ErrInvalidDocument, upload.FileSize, e.cfg.MaxUploadBytes)
	}

	docType := upload.DocumentType
	if docType == "" {
		docType = models.DocumentTypeReceipt
	}
	if !models.IsValidDocumentType(docType) {
		return nil, fmt.Errorf("%w: unknown document type %q", ErrInvalidDocument, docType)
	}

	doc := &models.Document{
		ClaimID:      claim.ID,
		UserID:       actor.UserID,
		Filename:     upload.Filename,
		OriginalName: upload.OriginalName,
		FileType:     upload.FileType,
		FileSize:     upload.FileSize,
		FileURL:      upload.FileURL,
		DocumentType: docType,
	}
	if err := e.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	e.recordAction(ctx, actor, &claim.ID, models.ActionDocumentUploaded,
		fmt.Sprintf("Document %s uploaded to claim %s", doc.OriginalName, claim.ClaimNumber))

	return doc, nil
}

// DeleteDocument removes a document from a Draft claim. Returns the
// deleted record so the caller can remove the stored file.
func (e *Engine) DeleteDocument(ctx context.Context, actor models.Actor, claimID, documentID int64) (*models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	claim, err := e.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	doc, err := e.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.ClaimID != claim.ID {
		return nil, repository.ErrNotFound
	}

	if !policy.IsOwner(actor, claim) {
		return nil, policy.ErrAccessDenied
	}
	if !policy.CanDetach(actor, claim) {
		return nil, ErrClaimNotEditable
	}

	if err := e.documents.Delete(ctx, documentID); err != nil {
		return nil, err
	}

	e.recordAction(ctx, actor, &claim.ID, models.ActionDocumentDeleted,
		fmt.Sprintf("Document %s deleted from claim %s", doc.OriginalName, claim.ClaimNumber))

	return doc, nil
}

// AddComment appends a comment to a claim. Comments never change the
// claim's status or pending-with; a comment by someone other than the
// owner notifies the owner.
func (e *Engine) AddComment(ctx context.Context, actor models.Actor, claimID int64, message string) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	if message == "" {
		return nil, fmt.Errorf("%w: comment message is required", ErrValidation)
	}

	claim, err := e.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !policy.CanComment(actor, claim) {
		return nil, policy.ErrAccessDenied
	}

	comment := &models.Comment{
		ClaimID: claim.ID,
		UserID:  actor.UserID,
		Message: message,
	}
	if err := e.claims.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	e.recordAction(ctx, actor, &claim.ID, models.ActionCommentAdded,
		fmt.Sprintf("Comment added to claim %s", claim.ClaimNumber))

	if actor.UserID != claim.UserID {
		e.notifyOwner(claim, models.NotifyCommentAdded, "New Comment on Your Claim",
			fmt.Sprintf("A comment was added to claim %s", claim.ClaimNumber))
	}

	return comment, nil
}

// recordAction appends an audit entry for a non-transition action.
// Failures are logged, not propagated: the mutation already committed
// and the audit sink is best-effort for these actions.
func (e *Engine) recordAction(ctx context.Context, actor models.Actor, claimID *int64, action, details string) {
	entry := &models.AuditLog{
		UserID:    actor.UserID,
		ClaimID:   claimID,
		Action:    action,
		Details:   details,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if err := e.audit.Create(ctx, nil, entry); err != nil {
		e.logger.Error("Failed to record audit entry",
			zap.String("action", action),
			zap.Error(err))
	}
}
