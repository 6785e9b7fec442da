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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/middleware"
	"messaging-service/internal/notify"
	"messaging-service/internal/observability"
	"messaging-service/internal/presence"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

const serviceName = "messaging-service"

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer shutdownTracing(ctx)

	database, err := db.Connect(cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	var registry presence.Registry
	if cfg.RedisURL != "" {
		redisRegistry, err := presence.NewRedisRegistry(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisRegistry.Close()
		registry = redisRegistry
		logger.Info().Msg("presence registry backed by redis")
	} else {
		registry = presence.NewMemoryRegistry()
	}

	if cfg.AMQPURL != "" {
		eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn().Err(err).Msg("event publishing disabled")
		} else {
			defer eventPublisher.Close()
			observability.SetPublisher(eventPublisher)
		}
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	defer auditPublisher.Close()
	audit := telemetry.NewAuditEmitter(auditPublisher, "audit.messaging", serviceName, cfg.Env, logger)

	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	statusRepo := repositories.NewStatusRepo(database)
	userRepo := repositories.NewUserRepo(database)

	hub := ws.NewHub()
	dispatcher := ws.NewDispatcher(hub, registry, roomRepo, messageRepo, statusRepo, userRepo, logger)
	wsHandler := ws.NewHandler(hub, dispatcher, logger)

	roomHandler := handlers.NewRoomHandler(roomRepo, messageRepo, statusRepo, audit)
	notificationHandler := handlers.NewNotificationHandler(userRepo, notify.NewLogGateway(logger), audit)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	identity := middleware.Identity()

	router.POST("/rooms", identity, roomHandler.CreateRoom)
	router.GET("/rooms", identity, roomHandler.ListRooms)
	router.GET("/rooms/:room_id", identity, roomHandler.GetRoom)
	router.GET("/rooms/:room_id/messages", identity, roomHandler.ListMessages)
	router.POST("/rooms/:room_id/messages", identity, roomHandler.PostMessage)
	router.PATCH("/rooms/:room_id/seen", identity, roomHandler.MarkSeen)

	router.POST("/admin/tokens", identity, notificationHandler.RecordToken)
	router.GET("/admin/tokens", identity, notificationHandler.ListTokens)
	router.POST("/admin/notifications", identity, notificationHandler.SendBulk)

	router.GET("/ws", wsHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting messaging service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server stopped")
}
