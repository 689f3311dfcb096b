package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/handler"
	"warbler/internal/logging"
	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/redis"
	"warbler/internal/repository"
	"warbler/internal/service"
	"warbler/internal/session"
	appmw "warbler/internal/transport/http/middleware"
	"warbler/internal/web"
)

// Dependencies are the storage and infrastructure pieces the HTTP layer is built on.
type Dependencies struct {
	Users    repository.UserRepository
	Follows  repository.FollowRepository
	Messages repository.MessageRepository
	Likes    repository.LikeRepository
	Tx       repository.Transactor

	TimelineCache cache.TimelineCache   // nil disables timeline caching
	Images        handler.ImageUploader // nil disables profile image uploads

	Sessions     *session.Manager
	Metrics      *metrics.Metrics
	AuthLimiter  *appmw.RateLimiter
	TrustProxy   bool
	HealthChecks map[string]handler.Pinger
}

// NewHandler wires services and handlers on top of deps and returns the router.
func NewHandler(deps Dependencies) (chi.Router, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	// 1. Services
	timelineService := service.NewTimelineService(deps.TimelineCache, deps.Messages, deps.Follows, deps.Likes, deps.Metrics)
	userService := service.NewUserService(deps.Users, deps.Follows, deps.Messages, deps.Likes, deps.Tx, timelineService)
	followService := service.NewFollowService(deps.Follows, deps.Users, timelineService)
	messageService := service.NewMessageService(deps.Messages, deps.Likes, deps.Tx, timelineService)
	likeService := service.NewLikeService(deps.Likes, deps.Messages, deps.Tx)

	// 2. Handlers
	pages := handler.NewPages(renderer)

	return NewRouter(RouterConfig{
		Pages:          pages,
		AuthHandler:    handler.NewAuthHandler(pages, userService, deps.Sessions, deps.Metrics),
		HomeHandler:    handler.NewHomeHandler(pages, timelineService, userService),
		UserHandler:    handler.NewUserHandler(pages, userService, deps.Sessions, deps.Images),
		FollowHandler:  handler.NewFollowHandler(pages, followService, deps.Metrics),
		MessageHandler: handler.NewMessageHandler(pages, messageService, likeService, deps.Metrics),
		HealthHandler:  handler.NewHealthHandler(deps.HealthChecks),
		Sessions:       deps.Sessions,
		Users:          userService,
		Metrics:        deps.Metrics,
		AuthLimiter:    deps.AuthLimiter,
		TrustProxy:     deps.TrustProxy,
	}), nil
}

// Run serves the application until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := logging.WithComponent("server")

	// 1. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	deps := Dependencies{
		Users:        repository.NewUserRepository(db),
		Follows:      repository.NewFollowRepository(db),
		Messages:     repository.NewMessageRepository(db),
		Likes:        repository.NewLikeRepository(db),
		Tx:           repository.NewTransactor(db),
		Sessions:     session.NewManager(cfg.SecretKey, cfg.SessionMaxAge, cfg.SessionSecure),
		Metrics:      metrics.NewMetrics(),
		AuthLimiter:  appmw.NewRateLimiter(cfg.LoginRatePerMinute),
		TrustProxy:   cfg.TrustProxy,
		HealthChecks: map[string]handler.Pinger{"database": db},
	}

	// 2. Optional Redis timeline cache
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		if err := redisClient.PingContext(ctx); err != nil {
			logger.Warn("redis unavailable, timelines will be read from the database", zap.Error(err))
		}
		deps.TimelineCache = cache.NewTimelineCache(redisClient.Client)
		deps.HealthChecks["redis"] = redisClient
	} else {
		logger.Info("REDIS_URL not set, timeline cache disabled")
	}

	// 3. Optional profile image storage
	mediaService, err := service.NewMediaService(ctx, cfg)
	switch {
	case err == nil:
		deps.Images = mediaService
	case errors.Is(err, model.ErrStorageUnavailable):
		logger.Info("R2 storage not configured, profile image uploads disabled")
	default:
		return err
	}

	router, err := NewHandler(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
