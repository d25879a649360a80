package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ipede/oauth-proxy-service/internal/domain"
	"github.com/ipede/oauth-proxy-service/internal/interfaces/http/handlers"
	"github.com/ipede/oauth-proxy-service/internal/interfaces/http/middleware/auth"
	"github.com/ipede/oauth-proxy-service/internal/interfaces/http/middleware/ratelimit"
	"go.uber.org/zap"
)

// Router mounts the proxy provider's OAuth endpoints
type Router struct {
	router *chi.Mux
}

// NewRouter creates the HTTP surface over the proxy provider
func NewRouter(provider domain.OAuthProvider, logger *zap.Logger) *Router {
	oauthHandler := handlers.New(provider, logger)
	authMiddleware := auth.NewMiddleware(provider, logger)

	router := createRouter()

	rateLimiter := ratelimit.NewRateLimiter(100, 200, 3*time.Minute)
	router.Use(rateLimiter.Middleware)

	// Health check endpoints
	router.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Alive"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})
	})

	router.Route("/oauth", func(r chi.Router) {
		// Public flow endpoints
		r.Post("/register", oauthHandler.RegisterClientHandler)
		r.Get("/authorize", oauthHandler.AuthorizeHandler)
		r.Get("/callback", oauthHandler.CallbackHandler)
		r.Post("/token", oauthHandler.TokenHandler)
		r.Post("/revoke", oauthHandler.RevokeHandler)

		// Bearer-protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticator)
			r.Get("/tokeninfo", oauthHandler.TokenInfoHandler)
			r.Get("/clients/{id}", oauthHandler.GetClientHandler)
		})
	})

	return &Router{router: router}
}

func createRouter() *chi.Mux {
	router := chi.NewRouter()

	// Add middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Timeout(60 * time.Second))

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
