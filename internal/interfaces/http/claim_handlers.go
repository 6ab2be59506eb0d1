package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/auth"
	"github.com/easybills/easybills/internal/models"
	"github.com/easybills/easybills/internal/repository"
	"github.com/easybills/easybills/internal/workflow"
)

// ClaimRequest is the payload for creating or editing a claim.
type ClaimRequest struct {
	ClaimType       string                `json:"claim_type"`
	LicenseCategory string                `json:"license_category"`
	ExpenseCategory string                `json:"expense_category"`
	Description     string                `json:"description"`
	ClaimedAmount   float64               `json:"claimed_amount"`
	TravelDetails   *models.TravelDetails `json:"travel_details,omitempty"`
}

func (r ClaimRequest) toInput() workflow.ClaimInput {
	return workflow.ClaimInput{
		ClaimType:       r.ClaimType,
		LicenseCategory: r.LicenseCategory,
		ExpenseCategory: r.ExpenseCategory,
		Description:     r.Description,
		ClaimedAmount:   r.ClaimedAmount,
		TravelDetails:   r.TravelDetails,
	}
}

// CreateClaim handles POST /api/claims
func (h *Handlers) CreateClaim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid request body"})
		return
	}

	claim, err := h.engine.CreateClaim(c.Request.Context(), auth.ActorFrom(c), req.toInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, "Claim created successfully", claim)
}

// UpdateClaim handles PUT /api/claims/:id
func (h *Handlers) UpdateClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid request body"})
		return
	}

	claim, err := h.engine.UpdateClaim(c.Request.Context(), auth.ActorFrom(c), id, req.toInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "Claim updated successfully", claim)
}

// GetClaim handles GET /api/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	claim, err := h.engine.GetClaim(c.Request.Context(), auth.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "", claim)
}

// ListClaims handles GET /api/claims. Filters are optional query
// parameters; dates use the 2006-01-02 form.
func (h *Handlers) ListClaims(c *gin.Context) {
	filters := repository.ClaimFilters{
		Status:    c.Query("status"),
		ClaimType: c.Query("claim_type"),
	}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid start_date, expected YYYY-MM-DD"})
			return
		}
		filters.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid end_date, expected YYYY-MM-DD"})
			return
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filters.EndDate = &end
	}

	claims, err := h.engine.ListOwnClaims(c.Request.Context(), auth.ActorFrom(c), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "", claims)
}

// SubmitClaim handles POST /api/claims/:id/submit
func (h *Handlers) SubmitClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	claim, err := h.engine.Submit(c.Request.Context(), auth.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "Claim submitted successfully", claim)
}

// ReviewRequest is the payload for the accounts review endpoint.
type ReviewRequest struct {
	Status          string   `json:"status"`
	ApprovedAmount  *float64 `json:"approved_amount,omitempty"`
	RejectionReason string   `json:"rejection_reason,omitempty"`
}

// ReviewClaim handles PUT /api/claims/:id/verify. The target status in
// the body selects the transition: Verified, Approved, Referred Back
// or Rejected.
func (h *Handlers) ReviewClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid request body"})
		return
	}

	claim, err := h.engine.Review(c.Request.Context(), auth.ActorFrom(c), id, workflow.ReviewRequest{
		Status:          req.Status,
		ApprovedAmount:  req.ApprovedAmount,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "Claim reviewed successfully", claim)
}

// PayClaim handles POST /api/claims/:id/pay
func (h *Handlers) PayClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	claim, err := h.engine.MarkPaid(c.Request.Context(), auth.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "Claim marked as paid", claim)
}

// PendingClaims handles GET /api/claims/accounts/pending
func (h *Handlers) PendingClaims(c *gin.Context) {
	claims, err := h.engine.ListPendingClaims(c.Request.Context(), auth.ActorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "", claims)
}

// GetHistory handles GET /api/claims/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.engine.GetHistory(c.Request.Context(), auth.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "", entries)
}

// UploadDocument handles POST /api/claims/:id/documents. Expects a
// multipart form with a "document" file part and an optional
// "document_type" field.
func (h *Handlers) UploadDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor := auth.ActorFrom(c)

	// Bound the request body before parsing the multipart form; the
	// engine enforces the per-file cap again on the decoded payload.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.engine.MaxUploadBytes()+64<<10)

	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Missing document file"})
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	if !models.IsAllowedFileType(ext) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Only pdf, jpg, jpeg and png files are allowed"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename, err := h.uploads.Save(content, ext)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	doc, err := h.engine.AttachDocument(c.Request.Context(), actor, id, workflow.DocumentUpload{
		Filename:     filename,
		OriginalName: fileHeader.Filename,
		FileType:     ext,
		FileSize:     int64(len(content)),
		FileURL:      "/uploads/" + filename,
		DocumentType: c.PostForm("document_type"),
	})
	if err != nil {
		if rmErr := h.uploads.Remove(filename); rmErr != nil {
			h.logger.Warn("Failed to remove orphaned upload",
				zap.String("filename", filename), zap.Error(rmErr))
		}
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, "Document uploaded successfully", doc)
}

// DeleteDocument handles DELETE /api/claims/:id/documents/:docId
func (h *Handlers) DeleteDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}

	doc, err := h.engine.DeleteDocument(c.Request.Context(), auth.ActorFrom(c), id, docID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.uploads.Remove(doc.Filename); err != nil {
		h.logger.Warn("Failed to remove document file",
			zap.String("filename", doc.Filename), zap.Error(err))
	}

	respondOK(c, http.StatusOK, "Document deleted successfully", nil)
}

// CommentRequest is the payload for adding a claim comment.
type CommentRequest struct {
	Message string `json:"message"`
}

// AddComment handles POST /api/claims/:id/comments
func (h *Handlers) AddComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid request body"})
		return
	}

	comment, err := h.engine.AddComment(c.Request.Context(), auth.ActorFrom(c), id, req.Message)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, "Comment added successfully", comment)
}

// ExportClaims handles GET /api/claims/accounts/export and streams an
// XLSX report of every claim.
func (h *Handlers) ExportClaims(c *gin.Context) {
	ctx := c.Request.Context()

	claims, err := h.engine.ListAllClaims(ctx, auth.ActorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ownerIDs := make([]int64, 0, len(claims))
	seen := make(map[int64]bool)
	for _, claim := range claims {
		if !seen[claim.UserID] {
			seen[claim.UserID] = true
			ownerIDs = append(ownerIDs, claim.UserID)
		}
	}

	names, err := h.users.GetNamesByIDs(ctx, ownerIDs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.WriteClaims(&buf, claims, names); err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("claims_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
