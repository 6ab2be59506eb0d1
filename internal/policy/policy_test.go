package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/easybills/easybills/internal/domain/workflow"
	"github.com/easybills/easybills/internal/models"
)

var (
	owner    = models.Actor{UserID: 1, Role: models.RoleFaculty}
	stranger = models.Actor{UserID: 2, Role: models.RoleFaculty}
	accounts = models.Actor{UserID: 3, Role: models.RoleAccounts}
)

func claimWith(status workflow.Status) *models.Claim {
	return &models.Claim{ID: 10, UserID: 1, Status: string(status)}
}

func TestCanView(t *testing.T) {
	claim := claimWith(workflow.StatusSubmitted)

	assert.True(t, CanView(owner, claim))
	assert.True(t, CanView(accounts, claim))
	assert.False(t, CanView(stranger, claim))
}

func TestCanEdit(t *testing.T) {
	assert.True(t, CanEdit(owner, claimWith(workflow.StatusDraft)))
	assert.False(t, CanEdit(owner, claimWith(workflow.StatusSubmitted)))
	assert.False(t, CanEdit(stranger, claimWith(workflow.StatusDraft)))
	assert.False(t, CanEdit(accounts, claimWith(workflow.StatusDraft)))
}

func TestCanSubmit(t *testing.T) {
	assert.True(t, CanSubmit(owner, claimWith(workflow.StatusDraft)))
	assert.True(t, CanSubmit(owner, claimWith(workflow.StatusReferredBack)))
	assert.False(t, CanSubmit(owner, claimWith(workflow.StatusSubmitted)))
	assert.False(t, CanSubmit(owner, claimWith(workflow.StatusPaid)))
	assert.False(t, CanSubmit(stranger, claimWith(workflow.StatusDraft)))
	assert.False(t, CanSubmit(accounts, claimWith(workflow.StatusDraft)))
}

func TestCanAttachAndDetach(t *testing.T) {
	assert.True(t, CanAttach(owner, claimWith(workflow.StatusDraft)))
	assert.True(t, CanAttach(owner, claimWith(workflow.StatusReferredBack)))
	assert.False(t, CanAttach(owner, claimWith(workflow.StatusSubmitted)))
	assert.False(t, CanAttach(stranger, claimWith(workflow.StatusDraft)))

	assert.True(t, CanDetach(owner, claimWith(workflow.StatusDraft)))
	assert.False(t, CanDetach(owner, claimWith(workflow.StatusReferredBack)))
	assert.False(t, CanDetach(stranger, claimWith(workflow.StatusDraft)))
}

func TestCanReview(t *testing.T) {
	for _, s := range []workflow.Status{workflow.StatusSubmitted, workflow.StatusPending, workflow.StatusVerified} {
		assert.True(t, CanReview(accounts, claimWith(s)), "accounts should review %s", s)
		assert.False(t, CanReview(owner, claimWith(s)), "owner must not review %s", s)
	}

	assert.False(t, CanReview(accounts, claimWith(workflow.StatusDraft)))
	assert.False(t, CanReview(accounts, claimWith(workflow.StatusPaid)))
	assert.False(t, CanReview(accounts, claimWith(workflow.StatusRejected)))
}

func TestCanMarkPaid(t *testing.T) {
	assert.True(t, CanMarkPaid(accounts, claimWith(workflow.StatusApproved)))
	assert.False(t, CanMarkPaid(accounts, claimWith(workflow.StatusVerified)))
	assert.False(t, CanMarkPaid(owner, claimWith(workflow.StatusApproved)))
}

func TestCanComment(t *testing.T) {
	claim := claimWith(workflow.StatusPaid)

	assert.True(t, CanComment(owner, claim))
	assert.True(t, CanComment(accounts, claim))
	assert.False(t, CanComment(stranger, claim))
}
