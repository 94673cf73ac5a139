package api

import (
	"net/http"
	"time"

	"blog_api/internal/api/handler"
	"blog_api/internal/api/middleware"
	"blog_api/internal/common"
	"blog_api/internal/platform/logging"
	"blog_api/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Authenticator is what the login endpoint and the gate need.
type Authenticator interface {
	handler.LoginService
	middleware.BearerResolver
}

type Deps struct {
	APIName      string
	AuthService  Authenticator
	UserService  handler.UserService
	PostService  handler.PostService
	HealthChecks map[string]handler.Pinger
	Metrics      *metrics.AuthMetrics
	Logger       logging.Logger
	// AccessLog toggles chi's request logger.
	AccessLog bool
}

func NewRouter(d Deps) http.Handler {
	responder := common.NewResponder(d.APIName)
	gate := middleware.Authenticator(d.AuthService, responder, d.Logger, d.Metrics)

	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	if d.AccessLog {
		r.Use(chiMiddleware.Logger)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responder.Error(w, http.StatusNotFound, "The requested URL was not found on the server.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responder.Error(w, http.StatusMethodNotAllowed, "The method is not allowed for the requested URL.")
	})

	index := handler.NewIndexHandler(responder)
	r.Get("/", index.Root)
	r.Method(http.MethodGet, "/health", handler.NewHealthHandler(d.HealthChecks, responder, d.Logger))
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/", index.V1)

		handler.NewAuthHandler(d.AuthService, responder).RegisterRoutes(v1)
		v1.Route("/users", handler.NewUserHandler(d.UserService, responder, gate).RegisterRoutes)
		v1.Route("/posts", handler.NewPostHandler(d.PostService, responder, gate).RegisterRoutes)
	})

	return r
}
