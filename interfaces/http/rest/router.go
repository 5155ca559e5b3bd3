// Package rest wires the HTTP surface: routing, middleware and handlers.
package rest

import (
	"net/http"

	"ideaboard/application/services"
	"ideaboard/interfaces/http/rest/handlers"
	"ideaboard/interfaces/http/rest/middleware"
	"ideaboard/pkg/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	ideas       *services.IdeaService
	users       *services.UserService
	comments    *services.CommentService
	validator   *auth.JWTValidator
	ipLimiter   auth.RateLimiter
	userLimiter auth.RateLimiter
	enableCORS  bool
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	ideas *services.IdeaService,
	users *services.UserService,
	comments *services.CommentService,
	validator *auth.JWTValidator,
	ipLimiter auth.RateLimiter,
	userLimiter auth.RateLimiter,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		ideas:       ideas,
		users:       users,
		comments:    comments,
		validator:   validator,
		ipLimiter:   ipLimiter,
		userLimiter: userLimiter,
		enableCORS:  enableCORS,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	ideaHandler := handlers.NewIdeaHandler(rt.ideas, rt.logger)
	userHandler := handlers.NewUserHandler(rt.users, rt.logger)
	commentHandler := handlers.NewCommentHandler(rt.comments, rt.logger)

	authenticate := middleware.Authenticate(rt.validator, rt.ipLimiter, rt.userLimiter, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", userHandler.Register)
		r.Post("/auth/login", userHandler.Login)

		r.Get("/ideas", ideaHandler.List)
		r.Get("/ideas/newest", ideaHandler.ListNewest)
		r.Get("/ideas/{ideaID}", ideaHandler.Get)

		r.Get("/users", userHandler.List)

		r.Get("/comments/idea/{ideaID}", commentHandler.ListByIdea)
		r.Get("/comments/user/{userID}", commentHandler.ListByUser)
		r.Get("/comments/{commentID}", commentHandler.Get)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/ideas", ideaHandler.Create)
			r.Put("/ideas/{ideaID}", ideaHandler.Update)
			r.Delete("/ideas/{ideaID}", ideaHandler.Delete)

			r.Post("/ideas/{ideaID}/upvote", ideaHandler.Upvote)
			r.Post("/ideas/{ideaID}/downvote", ideaHandler.Downvote)

			r.Post("/ideas/{ideaID}/bookmark", ideaHandler.Bookmark)
			r.Delete("/ideas/{ideaID}/bookmark", ideaHandler.Unbookmark)

			r.Post("/comments/idea/{ideaID}", commentHandler.Create)
			r.Delete("/comments/{commentID}", commentHandler.Delete)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
