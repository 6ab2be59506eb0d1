package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/auth"
	"github.com/easybills/easybills/internal/config"
	httpserver "github.com/easybills/easybills/internal/interfaces/http"
	"github.com/easybills/easybills/internal/report"
	"github.com/easybills/easybills/internal/repository"
	"github.com/easybills/easybills/internal/storage"
	"github.com/easybills/easybills/internal/workflow"
	"github.com/easybills/easybills/migrations"
	"github.com/easybills/easybills/pkg/database"
	"github.com/easybills/easybills/pkg/utils"
)

func main() {
	// Pick up a local .env in development; silently absent in prod.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense claim tracker",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(ctx, migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	uploads, err := storage.NewUploadStore(cfg.Uploads.Dir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize upload store", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.DB, logger)
	claimRepo := repository.NewClaimRepository(db.DB, logger)
	documentRepo := repository.NewDocumentRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)

	// Workflow engine
	engineCfg := workflow.DefaultConfig()
	if cfg.Engine.OpTimeout > 0 {
		engineCfg.OpTimeout = cfg.Engine.OpTimeout
	}
	if cfg.Uploads.MaxSizeBytes > 0 {
		engineCfg.MaxUploadBytes = cfg.Uploads.MaxSizeBytes
	}
	engine := workflow.NewEngine(db, claimRepo, documentRepo, auditRepo, notificationRepo, engineCfg, logger)

	// Authentication
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(userRepo, tokens, cfg.Auth.AllowedEmailDomains, logger)

	reports := report.NewExcelWriter(logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		UploadDir:    cfg.Uploads.Dir,
	}, engine, authService, tokens, notificationRepo, userRepo, uploads, reports, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
