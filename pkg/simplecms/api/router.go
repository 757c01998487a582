// Package api exposes the simplecms service over REST using chi.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// RouterConfig tunes the assembled router.
type RouterConfig struct {
	// JWTSecret enables token verification on mutating routes when
	// non-empty. The /auth/token endpoint is only mounted when enabled.
	JWTSecret string
	// RequestTimeout bounds each request; zero means 60s.
	RequestTimeout time.Duration
}

// NewRouter assembles the full HTTP surface over the service.
func NewRouter(service simplecms.Service, cfg RouterConfig) chi.Router {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]string{"status": "ok"})
	})

	var auth *AuthHandler
	if cfg.JWTSecret != "" {
		auth = NewAuthHandler(cfg.JWTSecret)
		r.Mount("/auth", auth.Routes())
	}

	users := NewUserHandler(service)

	r.Group(func(g chi.Router) {
		if auth != nil {
			g.Use(auth.Middleware()...)
		}
		g.Mount("/categories", NewCategoryHandler(service).Routes())
		g.Mount("/contents", NewContentHandler(service).Routes())
		g.Mount("/content_models", NewContentModelHandler(service).Routes())
		g.Mount("/tags", NewTagHandler(service).Routes())
		g.Mount("/users", users.Routes())
		g.Mount("/roles", users.RoleRoutes())
		g.Mount("/medias", NewMediaHandler(service).Routes())
	})

	return r
}
