package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/auth"
	"github.com/easybills/easybills/internal/report"
	"github.com/easybills/easybills/internal/repository"
	"github.com/easybills/easybills/internal/storage"
	"github.com/easybills/easybills/internal/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine        *workflow.Engine
	authService   *auth.Service
	notifications *repository.NotificationRepository
	users         *repository.UserRepository
	uploads       *storage.UploadStore
	reports       *report.ExcelWriter
	logger        *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	engine *workflow.Engine,
	authService *auth.Service,
	notifications *repository.NotificationRepository,
	users *repository.UserRepository,
	uploads *storage.UploadStore,
	reports *report.ExcelWriter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		engine:        engine,
		authService:   authService,
		notifications: notifications,
		users:         users,
		uploads:       uploads,
		reports:       reports,
		logger:        logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// pathID parses a numeric path parameter. A false return means a 400
// response has already been written.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}
