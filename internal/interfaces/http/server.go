// Package http provides the HTTP adapter over the claim workflow. It
// is a thin layer that translates requests into engine calls and maps
// domain errors onto status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/auth"
	"github.com/easybills/easybills/internal/models"
	"github.com/easybills/easybills/internal/repository"
	"github.com/easybills/easybills/internal/report"
	"github.com/easybills/easybills/internal/storage"
	"github.com/easybills/easybills/internal/workflow"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	UploadDir    string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         5000,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	tokens     *auth.TokenManager
	logger     *zap.Logger
}

// NewServer creates a new HTTP server wired to the claim engine.
func NewServer(
	config ServerConfig,
	engine *workflow.Engine,
	authService *auth.Service,
	tokens *auth.TokenManager,
	notifications *repository.NotificationRepository,
	users *repository.UserRepository,
	uploads *storage.UploadStore,
	reports *report.ExcelWriter,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(engine, authService, notifications, users, uploads, reports, logger),
		tokens:   tokens,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)

	if s.config.UploadDir != "" {
		s.router.Static("/uploads", s.config.UploadDir)
	}

	api := s.router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
	}

	claims := api.Group("/claims", auth.RequireAuth(s.tokens))
	{
		claims.POST("", auth.RequireRole(models.RoleFaculty), h.CreateClaim)
		claims.GET("", h.ListClaims)

		claims.GET("/accounts/pending", auth.RequireRole(models.RoleAccounts, models.RoleAdmin), h.PendingClaims)
		claims.GET("/accounts/export", auth.RequireRole(models.RoleAccounts, models.RoleAdmin), h.ExportClaims)

		claims.GET("/:id", h.GetClaim)
		claims.PUT("/:id", h.UpdateClaim)
		claims.POST("/:id/submit", h.SubmitClaim)
		claims.POST("/:id/documents", h.UploadDocument)
		claims.DELETE("/:id/documents/:docId", h.DeleteDocument)
		claims.POST("/:id/comments", h.AddComment)
		claims.GET("/:id/history", h.GetHistory)

		claims.PUT("/:id/verify", auth.RequireRole(models.RoleAccounts, models.RoleAdmin), h.ReviewClaim)
		claims.POST("/:id/pay", auth.RequireRole(models.RoleAccounts, models.RoleAdmin), h.PayClaim)
	}

	notifications := api.Group("/notifications", auth.RequireAuth(s.tokens))
	{
		notifications.GET("", h.ListNotifications)
		notifications.PUT("/:id/read", h.MarkNotificationRead)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
