package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/routes"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/chat"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/claims"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/inbox"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/notifications"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/posts"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/users"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/config"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/metrics"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/migrate"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/realtime"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/redis"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/storage/gcs"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	var gcsClient *gcs.Client
	if cfg.Storage.BucketName != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.Storage, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "storage bucket not configured, evidence uploads disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	chatMetrics := metrics.NewChatMetrics(registry)

	hub := realtime.NewHub(chatMetrics)
	bridge, err := realtime.NewBridge(redisClient, hub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create realtime bridge", err)
		os.Exit(1)
	}

	bridgeCtx, stopBridge := context.WithCancel(context.Background())
	go func() {
		if err := bridge.Run(bridgeCtx); err != nil && bridgeCtx.Err() == nil {
			logg.Error(bridgeCtx, "realtime bridge stopped unexpectedly", err)
		}
	}()

	userRepo := users.NewRepository(dbClient.DB())
	postRepo := posts.NewRepository(dbClient.DB())
	claimRepo := claims.NewRepository(dbClient.DB())
	messageRepo := chat.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	dispatcher, err := notifications.NewDispatcher(notificationRepo, logg, chatMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	var evidenceStore posts.EvidenceStore
	if gcsClient != nil {
		evidenceStore = gcsClient
	}
	postService, err := posts.NewService(postRepo, dbClient, evidenceStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create post service", err)
		os.Exit(1)
	}

	var uploader claims.Uploader
	if g := claims.NewGCSUploader(gcsClient); g != nil {
		uploader = g
	}
	claimService, err := claims.NewService(claimRepo, postRepo, dbClient, uploader, dispatcher)
	if err != nil {
		logg.Error(context.Background(), "failed to create claim service", err)
		os.Exit(1)
	}

	accessPolicy, err := chat.NewAccessPolicy(claimRepo, cfg.Chat)
	if err != nil {
		logg.Error(context.Background(), "failed to create access policy", err)
		os.Exit(1)
	}

	var limiter chat.RateLimiter
	if l := chat.NewRedisRateLimiter(redisClient, cfg.RateLimit); l != nil {
		limiter = l
	}
	chatService, err := chat.NewService(messageRepo, postRepo, accessPolicy, dispatcher, bridge, limiter, userRepo, chatMetrics, logg, cfg.Chat)
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	inboxService, err := inbox.NewService(messageRepo, postRepo, claimRepo, userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inbox service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Storage:       gcsClient,
			Hub:           hub,
			Posts:         postService,
			Claims:        claimService,
			Chat:          chatService,
			Inbox:         inboxService,
			Notifications: notificationService,
			Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		err := server.Shutdown(shutdownCtx)

		stopBridge()
		err = multierr.Append(err, redisClient.Close())
		err = multierr.Append(err, dbClient.Close())
		if err != nil {
			logg.Error(ctx, "shutdown finished with errors", err)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}
