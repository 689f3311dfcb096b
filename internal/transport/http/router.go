package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"warbler/internal/handler"
	"warbler/internal/metrics"
	"warbler/internal/session"
	appmw "warbler/internal/transport/http/middleware"
	"warbler/internal/web"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	Pages          *handler.Pages
	AuthHandler    *handler.AuthHandler
	HomeHandler    *handler.HomeHandler
	UserHandler    *handler.UserHandler
	FollowHandler  *handler.FollowHandler
	MessageHandler *handler.MessageHandler
	HealthHandler  *handler.HealthHandler

	Sessions    *session.Manager
	Users       appmw.UserLoader
	Metrics     *metrics.Metrics
	AuthLimiter *appmw.RateLimiter // nil disables rate limiting on login/signup
	TrustProxy  bool               // take the client address from proxy headers
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(appmw.RequestLogger)
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.InstrumentHandler)
	}

	r.Get("/health", cfg.HealthHandler.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}
	r.Handle("/static/*", web.Static())

	r.Group(func(r chi.Router) {
		r.Use(appmw.LoadSession(cfg.Sessions, cfg.Users))

		r.NotFound(cfg.Pages.NotFound)

		// Public pages
		r.Get("/", cfg.HomeHandler.Home)
		r.Get("/signup", cfg.AuthHandler.SignupForm)
		r.Get("/login", cfg.AuthHandler.LoginForm)
		r.Get("/logout", cfg.AuthHandler.Logout)

		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Limit)
			}
			r.Post("/signup", cfg.AuthHandler.Signup)
			r.Post("/login", cfg.AuthHandler.Login)
		})

		r.Get("/users", cfg.UserHandler.Index)
		r.Get("/users/{id}", cfg.UserHandler.Show)
		r.Get("/messages/{id}", cfg.MessageHandler.Show)

		// Logged-in pages
		r.Group(func(r chi.Router) {
			r.Use(appmw.RequireLogin)

			r.Get("/users/{id}/following", cfg.UserHandler.Following)
			r.Get("/users/{id}/followers", cfg.UserHandler.Followers)
			r.Get("/users/{id}/likes", cfg.UserHandler.Likes)
			r.Post("/users/follow/{id}", cfg.FollowHandler.Follow)
			r.Post("/users/stop-following/{id}", cfg.FollowHandler.StopFollowing)
			r.Get("/users/profile", cfg.UserHandler.EditForm)
			r.Post("/users/profile", cfg.UserHandler.Edit)
			r.Post("/users/delete", cfg.UserHandler.Delete)

			r.Get("/messages/new", cfg.MessageHandler.NewForm)
			r.Post("/messages/new", cfg.MessageHandler.Create)
			r.Post("/messages/{id}/delete", cfg.MessageHandler.Delete)
			r.Post("/messages/{id}/like", cfg.MessageHandler.Like)
		})
	})

	return r
}
