package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prepstack/exam-service/internal/cache"
	"github.com/prepstack/exam-service/internal/config"
	"github.com/prepstack/exam-service/internal/handlers"
	"github.com/prepstack/exam-service/internal/models"
	"github.com/prepstack/exam-service/internal/repositories/postgres"
	"github.com/prepstack/exam-service/internal/services"
	"github.com/prepstack/exam-service/internal/utils"
	"github.com/prepstack/exam-service/internal/validator"
	"github.com/prepstack/exam-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "development" {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Test{},
		&models.Result{},
	); err != nil {
		logger.Error("Failed to migrate database schema", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	cacheService := cache.NewRedisCache(redisClient, slogLogger)

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	v := validator.New()
	clock := services.NewRealClock()

	ttlSeconds, err := strconv.Atoi(cfg.LeaderboardTTL)
	if err != nil || ttlSeconds <= 0 {
		ttlSeconds = 30
	}
	leaderboardTTL := time.Duration(ttlSeconds) * time.Second

	testService := services.NewTestService(repo, cacheService, publisher, clock, logger, v)
	resultService := services.NewResultService(repo, cacheService, publisher, clock, logger, v, leaderboardTTL)
	questionService := services.NewQuestionService(repo, logger, v)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(testService, resultService, questionService, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("Starting exam service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
