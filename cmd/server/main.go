package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quizdash/quiz-service/internal/cache"
	"github.com/quizdash/quiz-service/internal/config"
	"github.com/quizdash/quiz-service/internal/handlers"
	"github.com/quizdash/quiz-service/internal/middleware"
	"github.com/quizdash/quiz-service/internal/repositories/postgres"
	"github.com/quizdash/quiz-service/internal/services"
	"github.com/quizdash/quiz-service/internal/utils"
	"github.com/quizdash/quiz-service/internal/validator"
	"github.com/quizdash/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewDefaultLogger().Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewDefaultLogger()
	if cfg.IsDevelopment() {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher()
	if err != nil {
		logger.Error("event publisher init failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	v := validator.New()
	redisCache := cache.NewRedisCache(redisClient, logger)

	sessionSvc := services.NewSessionService(repo, v, redisCache, publisher, logger)
	setSvc := services.NewSetService(repo, v, publisher, logger)
	leaderboardSvc := services.NewLeaderboardService(repo, redisCache, logger)
	activitySvc := services.NewActivityService(repo, logger)
	exportSvc := services.NewExportService(leaderboardSvc, logger)

	casdoorClient := middleware.NewCasdoorClient(cfg.Casdoor)

	quizHandler := handlers.NewQuizHandler(sessionSvc, leaderboardSvc, logger)
	adminHandler := handlers.NewAdminHandler(setSvc, activitySvc, exportSvc, logger)
	manager := handlers.NewHandlerManager(quizHandler, adminHandler, casdoorClient, repo.Users(), logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	manager.SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
