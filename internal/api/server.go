// Package api provides the HTTP surface of the flag service: the flag and
// unflag links, the JSON API and the event stream.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/listenup-flags/internal/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	services    *Services
	router      *chi.Mux
	api         huma.API
	links       *LinkController
	sseHandler  *sse.Handler
	linkLimiter *RateLimiter
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		services: services,
		router:   router,
		links:    NewLinkController(services.Flags, services.Routes, logger),
		logger:   logger,
	}
	if services.Events != nil {
		s.sseHandler = sse.NewHandler(services.Events, logger)
	}
	if opts.LinkRateLimit > 0 {
		s.linkLimiter = NewRateLimiter(opts.LinkRateLimit, time.Minute, opts.LinkRateLimit)
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("ListenUp Flags API", "1.0.0")
	humaConfig.Info.Description = "Flag and unflag content entities, manage flag definitions and run flag workflow actions."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.linkLimiter != nil {
		s.linkLimiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if len(opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Location"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.router.Use(actorMiddleware(s.services.Tokens, opts.SecureCookies, s.logger))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Links rendered next to content. Plain redirects, not JSON.
	s.router.Group(func(r chi.Router) {
		if s.linkLimiter != nil {
			r.Use(RateLimitMiddleware(s.linkLimiter, s.logger))
		}
		s.links.Routes(r)
	})

	if s.sseHandler != nil {
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}

	s.registerHealthRoutes()
	s.registerFlagRoutes()
	s.registerFlaggingRoutes()
	s.registerEntityRoutes()
	s.registerActionRoutes()
}
