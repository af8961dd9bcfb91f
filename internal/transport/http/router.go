package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"forum_backend/internal/handler"
	"forum_backend/internal/httputil"
	authmw "forum_backend/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	DiscussionHandler *handler.DiscussionHandler
	Activity          func(http.Handler) http.Handler
	JWTSecret         string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
	})

	// Public user endpoints with optional authentication; authenticated
	// visitors still feed the presence tracker here
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))
		r.Use(cfg.Activity)

		r.Get("/users/online", cfg.UserHandler.Online)
		r.Get("/users/{id}", cfg.UserHandler.GetProfile)
		r.Get("/users/{id}/discussions", cfg.DiscussionHandler.GetUserDiscussions)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))
		r.Use(cfg.Activity)

		r.Get("/me", cfg.AuthHandler.Me)
		r.Patch("/me", cfg.UserHandler.UpdateMe)
		r.Put("/me/avatar", cfg.UserHandler.UploadAvatar)
	})

	return r
}
