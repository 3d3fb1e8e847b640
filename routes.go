package main

import (
	"context"
	"net/http"
	"time"

	"github.com/foundersportal/portal/backend/go-services/handlers"
	"github.com/foundersportal/portal/backend/go-services/internal/admins"
	"github.com/foundersportal/portal/backend/go-services/internal/aichat"
	"github.com/foundersportal/portal/backend/go-services/internal/config"
	"github.com/foundersportal/portal/backend/go-services/internal/database"
	"github.com/foundersportal/portal/backend/go-services/internal/directory"
	dirhandler "github.com/foundersportal/portal/backend/go-services/internal/directory/handler"
	dirservice "github.com/foundersportal/portal/backend/go-services/internal/directory/service"
	"github.com/foundersportal/portal/backend/go-services/internal/models"
	"github.com/foundersportal/portal/backend/go-services/internal/notifications"
	"github.com/foundersportal/portal/backend/go-services/internal/resources"
	"github.com/foundersportal/portal/backend/go-services/internal/sessions"
	"github.com/foundersportal/portal/backend/go-services/internal/storage"
	"github.com/foundersportal/portal/backend/go-services/internal/tokens"
	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/foundersportal/portal/backend/go-services/pkg/metrics"
	"github.com/foundersportal/portal/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// deps are the connected backends. Nil clients mean the in-memory fallback is used.
type deps struct {
	cfg      *config.Config
	redis    *redis.Client
	mongo    *mongo.Client
	db       *mongo.Database
	minio    *storage.MinIOStorage
	store    storage.Store
	mailer   notifications.Mailer
	provider aichat.Provider
	google   middleware.Verifier
}

func newDirectoryService[T directory.Record](d *deps, kind directory.Kind[T]) *dirservice.Service[T] {
	if d.db != nil {
		return dirservice.NewMongoService(kind, d.db)
	}
	return dirservice.NewMemoryService(kind)
}

func newRouter(d *deps) *gin.Engine {
	cfg := d.cfg
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogger(), metrics.Middleware(), middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	// repositories: Mongo when connected, memory otherwise
	var (
		adminRepo    admins.Repository = admins.NewMemoryRepository()
		sessionRepo  sessions.Repository
		resourceRepo resources.Repository = resources.NewMemoryRepository()
		meetingRepo  aichat.MeetingRepository = aichat.NewMemoryMeetingRepository()
		notifSvc     *notifications.Service
	)
	if d.db != nil {
		adminRepo = admins.NewMongoRepository(d.db.Collection(database.Admins))
		resourceRepo = resources.NewMongoRepository(d.db.Collection(database.ResourceCategories))
		meetingRepo = aichat.NewMongoMeetingRepository(d.db.Collection(database.Meetings))
		notifSvc = notifications.NewService(
			notifications.NewMongoTemplateRepository(d.db.Collection(database.Templates)),
			notifications.NewMongoSubscriberRepository(d.db.Collection(database.Subscribers)),
			notifications.NewMongoNotificationRepository(d.db.Collection(database.Notifications)),
			d.mailer, cfg.Mail.Concurrency)
	} else {
		notifSvc = notifications.NewMemoryService(d.mailer, cfg.Mail.Concurrency)
	}
	switch {
	case d.redis != nil:
		sessionRepo = sessions.NewRedisRepository(d.redis, "session:")
	case d.db != nil:
		sessionRepo = sessions.NewMongoRepository(context.Background(), d.db.Collection(database.Sessions))
	default:
		sessionRepo = sessions.NewMemoryRepository()
	}

	issuer := tokens.NewIssuer(cfg.JWT)
	adminSvc := admins.NewService(adminRepo, cfg.Bootstrap.AdminEmails)
	requireAuth := middleware.AuthMiddleware(issuer)

	var loginCounter middleware.WindowCounter
	if cfg.RateLimit.UseRedis && d.redis != nil {
		loginCounter = middleware.NewRedisWindowCounter(d.redis)
	}
	loginLimiter := middleware.LoginLimiter(loginCounter, cfg.RateLimit.LoginMax, cfg.RateLimit.LoginWindow)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readyHandler(d))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	api := r.Group("/api")
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && d.redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			api.Use(middleware.RedisRateLimitMiddleware(d.redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			api.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	guarded := []gin.HandlerFunc{requireAuth, middleware.RequireRole(models.RoleAdmin), middleware.CSRFMiddleware()}
	admin := api.Group("/admin", guarded...)
	templates := api.Group("/templates", guarded...)

	auth := handlers.NewAuthHandler(cfg, adminSvc, sessions.NewService(sessionRepo), issuer, d.google, loginLimiter)
	auth.Register(api, requireAuth)
	auth.RegisterAdminManagement(admin)

	dirhandler.RegisterRoutes(api, admin, newDirectoryService(d, directory.Incubators))
	dirhandler.RegisterRoutes(api, admin, newDirectoryService(d, directory.SeedInvestors))
	dirhandler.RegisterRoutes(api, admin, newDirectoryService(d, directory.AngelInvestors))
	resources.RegisterRoutes(api, admin, resources.NewService(resourceRepo, d.store))
	notifications.RegisterRoutes(api, templates, admin, notifSvc)
	aichat.NewHandler(d.provider, meetingRepo, cfg.AI.Timeout).RegisterRoutes(api, admin)

	return r
}

// readyHandler answers 200 only when every configured dependency responds.
func readyHandler(d *deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ready := true
		status := map[string]string{}
		check := func(name string, configured bool, ping func(context.Context) error) {
			if !configured {
				status[name] = "disabled"
				return
			}
			if ping == nil {
				status[name] = "down"
				ready = false
				return
			}
			if err := ping(ctx); err != nil {
				logger.Warnf("readiness: %s: %v", name, err)
				status[name] = "down"
				ready = false
				return
			}
			status[name] = "up"
		}

		var mongoPing, redisPing, minioPing func(context.Context) error
		if d.mongo != nil {
			mongoPing = func(ctx context.Context) error { return d.mongo.Ping(ctx, nil) }
		}
		if d.redis != nil {
			redisPing = func(ctx context.Context) error { return d.redis.Ping(ctx).Err() }
		}
		if d.minio != nil {
			minioPing = d.minio.Ping
		}
		check("mongodb", d.cfg.MongoDB.URI != "", mongoPing)
		check("redis", d.cfg.Redis.Host != "", redisPing)
		check("storage", d.cfg.Storage.Endpoint != "", minioPing)
		status["google"] = "disabled"
		if d.google != nil {
			status["google"] = "up"
		}

		body := gin.H{"status": "ready", "deps": status, "uptime": time.Since(startTime).Round(time.Second).String()}
		if !ready {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}
