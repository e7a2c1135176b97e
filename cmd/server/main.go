package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/examprep-service/internal/config"
	"github.com/prepdeck/examprep-service/internal/events"
	"github.com/prepdeck/examprep-service/internal/handlers"
	"github.com/prepdeck/examprep-service/internal/handoff"
	"github.com/prepdeck/examprep-service/internal/identity"
	"github.com/prepdeck/examprep-service/internal/repositories/postgres"
	"github.com/prepdeck/examprep-service/internal/services"
	"github.com/prepdeck/examprep-service/internal/utils"
	"github.com/prepdeck/examprep-service/internal/validator"
	"github.com/prepdeck/examprep-service/pkg"
)

// resultHandoffTTL bounds how long a submitted result stays claimable
// before the client must fall back to history.
const resultHandoffTTL = 30 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to redis")
		os.Exit(1)
	}
	defer redisClient.Close()

	var publisher events.EventPublisher
	if cfg.EventsEnabled {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.EventTopic,
			Logger:       slog.Default(),
		})
		if err != nil {
			logger.LogError(err, "Failed to create Kafka publisher")
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Warn("Event publishing disabled, dropping attempt events")
		publisher = events.NoopEventPublisher{}
	}

	repo := postgres.NewRepository(db)
	resultStore := handoff.NewRedisStore(redisClient, resultHandoffTTL)
	serviceManager := services.NewServiceManager(repo, publisher, resultStore, logger)
	gateway := identity.NewCasdoorGateway(cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, gateway, validator.New(), logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.LogError(err, "Forced shutdown")
	}
	logger.Info("Server stopped")
}
