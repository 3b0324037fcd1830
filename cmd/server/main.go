package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"userhub/docs"
	"userhub/internal/auth"
	"userhub/internal/cache"
	"userhub/internal/config"
	"userhub/internal/db"
	"userhub/internal/email"
	"userhub/internal/handler"
	"userhub/internal/logging"
	"userhub/internal/model"
	"userhub/internal/repository"
	"userhub/internal/router"
	"userhub/internal/service"
	"userhub/internal/storage"
)

// @title UserHub API
// @version 1.0
// @description User-account and authentication backend: JWT auth with refresh rotation, password reset, role and group scoped authorization, user and group management.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Optional .env overlay for local development.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, "userhub")

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		for _, table := range []interface{}{&model.User{}, &model.Group{}} {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				logger.Warn("drop table failed (may not exist)", "err", err)
			}
		}
	}

	if err := gormDB.AutoMigrate(&model.Group{}, &model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	ctx := context.Background()

	avatarStore, err := storage.NewS3AvatarStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("avatar store init: %v", err)
	}
	if err := avatarStore.EnsureBucket(ctx); err != nil {
		// Avatar uploads will fail until the bucket exists; everything else works.
		logger.Warn("avatar bucket unavailable", "bucket", cfg.AvatarBucket)
	}

	mailSender, err := email.NewSESSender(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("email sender init: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	groupRepo := repository.NewGroupRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.ResetTokenTTL)
	blacklist := auth.NewBlacklist(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, blacklist, mailSender, cfg.PublicBaseURL, logger)
	userService := service.NewUserService(userRepo, avatarStore, cacheClient, logger)
	groupService := service.NewGroupService(groupRepo, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, userRepo)
	groupHandler := handler.NewGroupHandler(groupService)

	// Register routes
	router.Register(e, cfg, authService, authHandler, userHandler, groupHandler)

	addr := ":" + cfg.ServerPort
	logger.Info("starting server", "addr", addr)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
