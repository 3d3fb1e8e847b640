package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/aichat"
	"github.com/foundersportal/portal/backend/go-services/internal/config"
	"github.com/foundersportal/portal/backend/go-services/internal/database"
	"github.com/foundersportal/portal/backend/go-services/internal/notifications"
	"github.com/foundersportal/portal/backend/go-services/internal/oidc"
	"github.com/foundersportal/portal/backend/go-services/internal/sessions"
	"github.com/foundersportal/portal/backend/go-services/internal/storage"
	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/foundersportal/portal/backend/go-services/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error, LOG_FORMAT: json|console
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: env=%s mongo=%v redis=%v minio=%v ai=%s smtp=%v",
		cfg.Server.Environment, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Storage.Endpoint != "", cfg.AI.Provider, cfg.Mail.Host != "")
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := &deps{cfg: cfg}

	if cfg.Redis.Host != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rc.Ping(ctx).Err(); err != nil {
			// sessions, blacklist and limiter fall back to memory; /ready reports redis down
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
			d.redis = rc
			sessions.SetBlacklistClient(rc)
		}
		defer rc.Close()
	}

	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			logger.Fatalf("could not connect to MongoDB: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		d.mongo = client
		d.db = client.Database(cfg.MongoDB.Database)
		if err := database.EnsureIndexes(ctx, d.db); err != nil {
			logger.Fatalf("failed to ensure indexes: %v", err)
		}
		logger.Infof("connected to MongoDB database %s", cfg.MongoDB.Database)
	} else {
		logger.Warn("MONGODB_URI not set, using in-memory repositories")
	}

	if cfg.Storage.Endpoint != "" {
		m, err := storage.NewMinIOStorage(ctx, cfg.Storage)
		if err != nil {
			logger.Fatalf("failed to initialize MinIO storage: %v", err)
		}
		d.minio = m
		d.store = m
		logger.Infof("using MinIO bucket %s at %s", cfg.Storage.Bucket, cfg.Storage.Endpoint)
	} else {
		logger.Warn("MINIO_ENDPOINT not set, resource files are kept in memory")
		d.store = storage.NewMemoryStore()
	}

	d.mailer = notifications.NewMailer(cfg.Mail)

	provider, err := aichat.NewProvider(ctx, cfg.AI)
	if err != nil {
		logger.Fatalf("failed to initialize AI provider: %v", err)
	}
	d.provider = provider

	switch {
	case cfg.Google.InsecureTokens:
		logger.Warn("GOOGLE_INSECURE_TOKENS=true: Google ID token signatures are NOT verified")
		d.google = oidc.NewInsecureVerifier(cfg.Google.AdminClientID)
	case cfg.Google.AdminClientID != "":
		ver, err := oidc.NewVerifier(ctx, cfg.Google.Issuer, cfg.Google.AdminClientID)
		if err != nil {
			logger.Warnf("failed to initialize Google verifier: %v", err)
		} else {
			d.google = ver
		}
	default:
		logger.Warn("ADMIN_GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := newRouter(d)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		logger.Infof("starting portal API on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("forced shutdown: %v", err)
	}
	logger.Info("server exited")
}
