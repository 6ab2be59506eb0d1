// Package workflow implements the claim workflow engine: it validates
// transition legality against the domain transition table, checks the
// access policy, and applies all transition side effects.
package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	dw "github.com/easybills/easybills/internal/domain/workflow"
	"github.com/easybills/easybills/internal/models"
	"github.com/easybills/easybills/internal/policy"
	"github.com/easybills/easybills/internal/repository"
	"github.com/easybills/easybills/pkg/database"
)

// Config holds engine tuning parameters.
type Config struct {
	// OpTimeout bounds each engine operation, storage I/O included.
	OpTimeout time.Duration

	// MaxUploadBytes caps document upload sizes.
	MaxUploadBytes int64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		OpTimeout:      10 * time.Second,
		MaxUploadBytes: 5 << 20,
	}
}

// Engine orchestrates the claim workflow. All status changes go
// through it; nothing else writes claim status.
type Engine struct {
	db            *database.DB
	claims        *repository.ClaimRepository
	documents     *repository.DocumentRepository
	audit         *repository.AuditRepository
	notifications *repository.NotificationRepository
	cfg           Config
	logger        *zap.Logger
}

// NewEngine creates a new workflow engine
func NewEngine(
	db *database.DB,
	claims *repository.ClaimRepository,
	documents *repository.DocumentRepository,
	audit *repository.AuditRepository,
	notifications *repository.NotificationRepository,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultConfig().OpTimeout
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}

	return &Engine{
		db:            db,
		claims:        claims,
		documents:     documents,
		audit:         audit,
		notifications: notifications,
		cfg:           cfg,
		logger:        logger,
	}
}

// transitionRequest describes one event firing: who may fire it, any
// pre-mutation validation, the fields it sets, and the wording of its
// audit and notification entries.
type transitionRequest struct {
	event   dw.Event
	allowed func(models.Actor, *models.Claim) bool
	guard   func(ctx context.Context, claim *models.Claim) error
	fields  func(claim *models.Claim) repository.TransitionFields
	details func(claim *models.Claim) string
	phrase  string // past tense, for the owner notification message
}

// MaxUploadBytes reports the configured document size cap.
func (e *Engine) MaxUploadBytes() int64 {
	return e.cfg.MaxUploadBytes
}

// fire executes one transition: load, resolve the edge, authorize,
// then commit the status write and audit entry atomically. A lost
// compare-and-set race is retried once by re-reading current state; if
// the edge is invalid after the re-read the caller sees
// ErrInvalidTransition. The owner notification is emitted after
// commit, best effort.
func (e *Engine) fire(ctx context.Context, actor models.Actor, claimID int64, req transitionRequest) (*models.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.OpTimeout)
	defer cancel()

	const maxAttempts = 2
	for attempt := 1; ; attempt++ {
		claim, err := e.claims.GetByID(ctx, claimID)
		if err != nil {
			return nil, err
		}

		// Resolve transition legality before the actor check so firing
		// from a terminal or wrong status always reads as an invalid
		// transition, whoever asks.
		from := dw.Status(claim.Status)
		edge, err := dw.Next(from, req.event)
		if err != nil {
			return nil, err
		}

		if !req.allowed(actor, claim) {
			return nil, policy.ErrAccessDenied
		}

		if req.guard != nil {
			if err := req.guard(ctx, claim); err != nil {
				return nil, err
			}
		}

		fields := req.fields(claim)

		err = e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := e.claims.ApplyTransition(ctx, tx, claim.ID, from, edge.To, edge.PendingWith, fields); err != nil {
				return err
			}

			entry := &models.AuditLog{
				UserID:         actor.UserID,
				ClaimID:        &claim.ID,
				Action:         edge.AuditAction,
				Details:        req.details(claim),
				PreviousStatus: string(from),
				NewStatus:      string(edge.To),
				IPAddress:      actor.IP,
				UserAgent:      actor.UserAgent,
			}
			return e.audit.Create(ctx, tx, entry)
		})
		if errors.Is(err, repository.ErrConflict) && attempt < maxAttempts {
			e.logger.Warn("Transition lost status race, retrying",
				zap.Int64("claim_id", claimID),
				zap.String("event", req.event.String()))
			continue
		}
		if err != nil {
			return nil, err
		}

		e.notifyOwner(claim, edge.NotifyType, edge.NotifyTitle,
			fmt.Sprintf("Your claim %s has been %s", claim.ClaimNumber, req.phrase))

		e.logger.Info("Claim transitioned",
			zap.Int64("claim_id", claim.ID),
			zap.String("claim_number", claim.ClaimNumber),
			zap.String("event", req.event.String()),
			zap.String("from", string(from)),
			zap.String("to", string(edge.To)),
			zap.Int64("actor_id", actor.UserID))

		return e.claims.GetByID(ctx, claimID)
	}
}

// notifyOwner inserts an owner notification. Failures are logged, not
// propagated: the committed workflow state is the source of truth and
// notifications are best-effort observability.
func (e *Engine) notifyOwner(claim *models.Claim, notifyType, title, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.OpTimeout)
	defer cancel()

	n := &models.Notification{
		UserID:  claim.UserID,
		ClaimID: &claim.ID,
		Type:    notifyType,
		Title:   title,
		Message: message,
	}
	if err := e.notifications.Create(ctx, n); err != nil {
		e.logger.Error("Failed to emit notification",
			zap.Int64("claim_id", claim.ID),
			zap.String("type", notifyType),
			zap.Error(err))
	}
}

// Submit moves a Draft or Referred Back claim to Submitted. The claim
// must have at least one attached document.
func (e *Engine) Submit(ctx context.Context, actor models.Actor, claimID int64) (*models.Claim, error) {
	return e.fire(ctx, actor, claimID, transitionRequest{
		event:   dw.EventSubmit,
		allowed: policy.CanSubmit,
		guard: func(ctx context.Context, claim *models.Claim) error {
			count, err := e.documents.CountByClaim(ctx, claim.ID)
			if err != nil {
				return err
			}
			if count == 0 {
				return ErrNoDocuments
			}
			return nil
		},
		fields: func(*models.Claim) repository.TransitionFields {
			return repository.TransitionFields{}
		},
		details: func(claim *models.Claim) string {
			return fmt.Sprintf("Claim %s submitted for verification", claim.ClaimNumber)
		},
		phrase: "submitted successfully",
	})
}

// Verify marks a submitted claim verified by the accounts team.
func (e *Engine) Verify(ctx context.Context, actor models.Actor, claimID int64) (*models.Claim, error) {
	return e.fire(ctx, actor, claimID, transitionRequest{
		event:   dw.EventVerify,
		allowed: policy.CanReview,
		fields: func(*models.Claim) repository.TransitionFields {
			now := time.Now()
			return repository.TransitionFields{
				VerifiedBy: &actor.UserID,
				VerifiedAt: &now,
			}
		},
		details: func(claim *models.Claim) string {
			return fmt.Sprintf("Claim %s verified by accounts team", claim.ClaimNumber)
		},
		phrase: "verified",
	})
}

// Approve approves a claim. A nil amount approves the claimed amount
// exactly; no partial approval is inferred.
func (e *Engine) Approve(ctx context.Context, actor models.Actor, claimID int64, amount *float64) (*models.Claim, error) {
	return e.fire(ctx, actor, claimID, transitionRequest{
		event:   dw.EventApprove,
		allowed: policy.CanReview,
		guard: func(_ context.Context, claim *models.Claim) error {
			if amount != nil && *amount < 0 {
				return fmt.Errorf("%w: approved amount must not be negative", ErrValidation)
			}
			return nil
		},
		fields: func(claim *models.Claim) repository.TransitionFields {
			now := time.Now()
			approved := claim.ClaimedAmount
			if amount != nil {
				approved = *amount
			}
			return repository.TransitionFields{
				ApprovedBy:     &actor.UserID,
				ApprovedAt:     &now,
				ApprovedAmount: &approved,
			}
		},
		details: func(claim *models.Claim) string {
			return fmt.Sprintf("Claim %s approved by accounts team", claim.ClaimNumber)
		},
		phrase: "approved",
	})
}

// ReferBack returns a claim to its owner for correction, recording the
// reason.
func (e *Engine) ReferBack(ctx context.Context, actor models.Actor, claimID int64, reason string) (*models.Claim, error) {
	return e.fire(ctx, actor, claimID, transitionRequest{
		event:   dw.EventReferBack,
		allowed: policy.CanReview,
		guard: func(context.Context, *models.Claim) error {
			if strings.TrimSpace(reason) == "" {
				return fmt.Errorf("%w: a reason is required to refer a claim back", ErrValidation)
			}
			return nil
		},
		fields: func(*models.Claim) repository.TransitionFields {
			return repository.TransitionFields{RejectionReason: &reason}
		},
		details: func(claim *models.Claim) string {
			return fmt.Sprintf("Claim %s referred back by accounts team: %s", claim.ClaimNumber, reason)
		},
		phrase: "referred back",
	})
}

// Reject terminally rejects a claim, recording the reason.
func (e *Engine) Reject(ctx context.Context, actor models.Actor, claimID int64, reason string) (*models.Claim, error) {
	return e.fire(ctx, actor, claimID, transitionRequest{
		event:   dw.EventReject,
		allowed: policy.CanReview,
		guard: func(context.Context, *models.Claim) error {
			if strings.TrimSpace(reason) == "" {
				return fmt.Errorf("%w: a reason is required to reject a claim", ErrValidation)
			}
			return nil
		},
		fields: func(*models.Claim) repository.TransitionFields {
			return repository.TransitionFields{RejectionReason: &reason}
		},
		details: func(claim *models.Claim) string {
			return fmt.Sprintf("Claim %s rejected by accounts team: %s", claim.ClaimNumber, reason)
		},
		phrase: "rejected",
	})
}

// MarkPaid records payment of an approved claim.
func (e *Engine) MarkPaid(ctx context.Context, actor models.Actor, claimID int64) (*models.Claim, error) {
	return e.fire(ctx, actor, claimID, transitionRequest{
		event:   dw.EventMarkPaid,
		allowed: policy.CanMarkPaid,
		fields: func(*models.Claim) repository.TransitionFields {
			now := time.Now()
			return repository.TransitionFields{PaidAt: &now}
		},
		details: func(claim *models.Claim) string {
			return fmt.Sprintf("Claim %s marked as paid", claim.ClaimNumber)
		},
		phrase: "paid",
	})
}

// ReviewRequest is the accounts-team review payload: the target status
// drives which event fires.
type ReviewRequest struct {
	Status          string
	ApprovedAmount  *float64
	RejectionReason string
}

// Review maps a review payload onto the corresponding transition.
func (e *Engine) Review(ctx context.Context, actor models.Actor, claimID int64, req ReviewRequest) (*models.Claim, error) {
	switch dw.Status(req.Status) {
	case dw.StatusVerified:
		return e.Verify(ctx, actor, claimID)
	case dw.StatusApproved:
		return e.Approve(ctx, actor, claimID, req.ApprovedAmount)
	case dw.StatusReferredBack:
		return e.ReferBack(ctx, actor, claimID, req.RejectionReason)
	case dw.StatusRejected:
		return e.Reject(ctx, actor, claimID, req.RejectionReason)
	default:
		return nil, fmt.Errorf("%w: unsupported review status %q", ErrValidation, req.Status)
	}
}
