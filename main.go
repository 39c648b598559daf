package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"vibechat-service/internal/auth"
	"vibechat-service/internal/cache"
	"vibechat-service/internal/config"
	"vibechat-service/internal/db"
	"vibechat-service/internal/grpcserver"
	"vibechat-service/internal/handlers"
	"vibechat-service/internal/logging"
	"vibechat-service/internal/media"
	"vibechat-service/internal/middleware"
	"vibechat-service/internal/observability"
	"vibechat-service/internal/rabbitmq"
	"vibechat-service/internal/realtime"
	"vibechat-service/internal/repositories"
	"vibechat-service/internal/services"
	"vibechat-service/internal/session"
	"vibechat-service/internal/telemetry"
	"vibechat-service/internal/workers"
	"vibechat-service/internal/ws"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(cfg.ServiceName, cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.ServiceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init tracing")
	}

	database, err := db.Connect(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	var profileCache cache.ProfileCache = cache.NoopProfileCache{}
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, profile cache disabled")
		} else {
			defer client.Close()
			profileCache = cache.NewRedisProfileCache(client, cfg.ProfileCacheTTL, logger)
		}
	}

	bucket, err := media.NewS3Bucket(ctx, media.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		PublicURL: cfg.MediaPublicURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init media bucket")
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	defer publisher.Close()
	logger.Info().
		Str("mode", rabbitmq.PublisherMode(publisher)).
		Str("reason", rabbitmq.PublisherNoopReason(publisher)).
		Msg("event publisher ready")
	audit := telemetry.NewAuditEmitter(publisher, cfg.ServiceName, cfg.Environment, logger)

	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	profileService := services.NewProfileService(repositories.NewProfileRepo(database), profileCache, logger)
	statusService := services.NewStatusService(repositories.NewStatusRepo(database), logger)
	vibeService := services.NewVibeService(repositories.NewVibeRepo(database), bucket, cfg.VibeTTL, logger)

	broker := realtime.NewBroker()
	feed := realtime.NewPGFeed(cfg.DatabaseDSN, messageRepo, broker, logger.With().Str("component", "pg_feed").Logger())

	hub := ws.NewHub(publisher, logger)
	sessions := session.NewManager(session.Services{
		Chats:       services.NewChatService(chatRepo, messageRepo, logger),
		Messages:    services.NewMessageService(messageRepo, chatRepo, logger),
		Profiles:    profileService,
		Connections: services.NewConnectionService(repositories.NewConnectionRepo(database), chatRepo, logger),
		Blocks:      services.NewBlockService(repositories.NewBlockRepo(database), logger),
		Statuses:    statusService,
		Vibes:       vibeService,
		Calls:       services.NewCallService(repositories.NewCallRepo(database), logger),
		Feed:        broker,
	}, cfg.MessagePageSize, hub, logger)

	authn := auth.NewAuthenticator(repositories.NewAuthRepo(database), auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL), logger)
	offSessions := authn.OnSessionChange(sessions.HandleSessionEvent)
	defer offSessions()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		otelgin.Middleware(cfg.ServiceName),
		observability.HTTPMetricsMiddleware(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sessions.Count()})
	})
	handlers.NewAuthHandler(authn, audit).Register(router)
	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)
	router.GET("/ws", ws.NewHandler(hub, authn, sessions, logger).Handle)

	api := router.Group("/", middleware.AuthMiddleware(authn, sessions))
	handlers.NewProfileHandler(profileService).Register(api)
	handlers.NewChatHandler(audit).Register(api)
	handlers.NewConnectionHandler(audit).Register(api)
	handlers.NewStoryHandler(audit).Register(api)
	handlers.NewCallHandler().Register(api)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpcserver.New(logger)
	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.GRPCAddr()).Msg("failed to listen for grpc")
	}

	purger := workers.NewPurgeWorker(workers.PurgeConfig{
		Interval: cfg.VibePurgeInterval,
		Vibes:    vibeService,
		Statuses: statusService,
		Sweepers: map[string]workers.Sweeper{
			"sessions":    sessions.Sweep,
			"revocations": authn.PruneRevoked,
		},
		Log: logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return feed.Run(gctx) })
	g.Go(func() error {
		purger.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return grpcServer.Serve(grpcListener) })
	grpcServer.SetServing(true)

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		grpcServer.SetServing(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("http shutdown")
		}
		grpcServer.Shutdown(shutdownCtx)
		sessions.Close()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
