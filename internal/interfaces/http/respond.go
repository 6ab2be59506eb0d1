package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/auth"
	dw "github.com/easybills/easybills/internal/domain/workflow"
	"github.com/easybills/easybills/internal/policy"
	"github.com/easybills/easybills/internal/repository"
	"github.com/easybills/easybills/internal/workflow"
)

// Response is the standard JSON envelope.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondError maps domain errors onto HTTP statuses. Validation and
// access failures are terminal; a lost concurrency race is flagged
// retryable so clients know re-reading may let them proceed.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Message: "Resource not found"})
	case errors.Is(err, policy.ErrAccessDenied):
		c.JSON(http.StatusForbidden, Response{Success: false, Message: "Access denied"})
	case errors.Is(err, dw.ErrInvalidTransition), errors.Is(err, dw.ErrInvalidStatus):
		c.JSON(http.StatusConflict, Response{Success: false, Message: "Transition not allowed from the claim's current status"})
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Message: "The claim was modified concurrently, please retry", Retryable: true})
	case errors.Is(err, workflow.ErrNoDocuments):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Please upload at least one document before submitting"})
	case errors.Is(err, workflow.ErrInvalidDocument):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})
	case errors.Is(err, workflow.ErrClaimNotEditable):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Only draft claims can be edited"})
	case errors.Is(err, workflow.ErrValidation):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Invalid credentials"})
	case errors.Is(err, auth.ErrEmailNotAllowed):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Please use a valid institution email address"})
	case errors.Is(err, auth.ErrUserExists):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "User already exists"})
	case errors.Is(err, auth.ErrMissingFields):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})
	default:
		logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "Internal server error"})
	}
}
