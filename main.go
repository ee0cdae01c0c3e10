package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harbourstay/harbourstay/backend/cms-api/handlers"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/config"
	contenthandler "github.com/harbourstay/harbourstay/backend/cms-api/internal/content/handler"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content/repository"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content/service"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/sessions"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/storage"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/tokens"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/logger"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/metrics"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

// app carries the wired services the router needs.
type app struct {
	cfg      *config.Config
	tokens   *tokens.Service
	content  *service.Service
	uploader storage.Uploader
	redis    *redis.Client
	registry *prometheus.Registry
}

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	for _, w := range cfg.Warnings() {
		logger.Warnf("config: %s", w)
	}
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}

	// Redis is optional: content backend, logout denylist, shared rate limiter.
	if addr := cfg.Redis.Addr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = client.Close()
		} else {
			logger.Infof("connected to Redis at %s", addr)
			a.redis = client
			defer client.Close()
		}
	}

	var tokenOpts []tokens.Option
	if cfg.Auth.RevokeOnLogout {
		if a.redis != nil {
			tokenOpts = append(tokenOpts, tokens.WithDenylist(sessions.NewRedisDenylist(a.redis, "")))
			logger.Infof("logout revokes credentials via Redis denylist")
		} else {
			logger.Warnf("CMS_AUTH_REVOKE_ON_LOGOUT is set but Redis is unavailable; tokens stay valid until expiry")
		}
	}
	a.tokens = tokens.NewService(cfg.Auth, tokenOpts...)

	backend, closeBackend, err := repository.Open(ctx, cfg, a.redis)
	if err != nil {
		logger.Fatalf("content backend: %v", err)
	}
	defer closeBackend()
	a.content = service.New(backend)
	logger.Infof("content backend: %s", backend.Name())

	switch cfg.Upload.Backend {
	case "minio":
		u, err := storage.NewMinIOUploader(cfg.MinIO)
		if err != nil {
			logger.Fatalf("upload backend: %v", err)
		}
		a.uploader = u
	default:
		if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
			logger.Fatalf("upload directory %s: %v", cfg.Upload.Dir, err)
		}
		a.uploader = storage.NewLocalUploader(cfg.Upload.Dir, "/uploads")
	}

	metrics.RegisterCollectors(a.registry)
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := newRouter(a)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting cms-api on %s (env=%s)", addr, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

func newRouter(a *app) *gin.Engine {
	cfg := a.cfg
	r := gin.New()
	r.Use(corsMiddleware(cfg.Server.CORSOrigin))
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// ready once the content backend answers
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		deps := map[string]bool{"content": true}
		if err := a.content.Ping(ctx); err != nil {
			logger.Warnf("readiness: content backend %s: %v", a.content.Backend(), err)
			deps["content"] = false
		}
		if cfg.RateLimit.UseRedis || cfg.Content.Backend == "redis" {
			deps["redis"] = a.redis != nil
		}
		status := http.StatusOK
		for _, ok := range deps {
			if !ok {
				status = http.StatusServiceUnavailable
			}
		}
		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "backend": a.content.Backend(), "uptime": time.Since(startTime).String()})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	handlers.RegisterSwagger(r)

	if _, ok := a.uploader.(*storage.LocalUploader); ok {
		r.Static("/uploads", cfg.Upload.Dir)
	}

	// one limiter shared by /api/login and /login so the prefixes do not double the budget
	var loginGuard gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && a.redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			loginGuard = middleware.RedisRateLimitMiddleware(a.redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			loginGuard = middleware.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware()
		}
	}

	requireAuth := middleware.RequireOperator(a.tokens, cfg.Auth.CookieName)
	authH := handlers.NewAuthHandler(a.tokens, handlers.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Server.IsProduction()})
	uploadH := handlers.NewUploadHandler(a.uploader, cfg.Upload.MaxBytes)

	for _, g := range []*gin.RouterGroup{r.Group("/api"), r.Group("/")} {
		authH.Register(g, loginGuard)
		contenthandler.RegisterContentRoutes(g, a.content, requireAuth)
		uploadH.Register(g, requireAuth)
	}
	return r
}

// corsMiddleware allows the configured site origins (comma separated).
// Credentials are only allowed for concrete origins since browsers reject
// them alongside "*".
func corsMiddleware(origins string) gin.HandlerFunc {
	cc := cors.DefaultConfig()
	cc.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cc.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", "Authorization"}
	var list []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			list = append(list, o)
		}
	}
	if len(list) == 0 || slices.Contains(list, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = list
		cc.AllowCredentials = true
	}
	return cors.New(cc)
}
