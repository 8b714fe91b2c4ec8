// Package api STGY short-link REST API
//
// @title           STGY Board API
// @version         1.0.0
// @description     Encodes, decodes and shares strategy board codes.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ssargent/stgyboard/pkg/cache"
	"github.com/ssargent/stgyboard/pkg/stgy"
	"github.com/swaggo/swag"
)

const shutdownTimeout = 10 * time.Second

// Server holds the API server state
type Server struct {
	store   BoardStore
	codec   BoardCodec
	cache   cache.TokenCache
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// ServerOption configures optional server collaborators
type ServerOption func(*Server)

// WithCache puts a token cache in front of share link lookups
func WithCache(c cache.TokenCache) ServerOption {
	return func(s *Server) {
		s.cache = c
	}
}

// WithLogger sets the server logger
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new API server
func NewServer(store BoardStore, codec BoardCodec, config ServerConfig, metrics *Metrics, opts ...ServerOption) *Server {
	s := &Server{
		store:   store,
		codec:   codec,
		config:  config,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	m := s.metrics
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(maxBodyMiddleware(s.config.MaxBodyBytes))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))

	// Share links are public
	r.Get("/s/{id}", m.InstrumentHandler("GET", "/s/{id}", s.handleShare))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(m.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Codec
		r.Post("/encode", m.InstrumentHandler("POST", "/api/v1/encode", s.handleEncode))
		r.Post("/decode", m.InstrumentHandler("POST", "/api/v1/decode", s.handleDecode))
		r.Post("/inspect", m.InstrumentHandler("POST", "/api/v1/inspect", s.handleInspect))

		// Boards
		r.Post("/boards", m.InstrumentHandler("POST", "/api/v1/boards", s.handleCreateBoard))
		r.Get("/boards", m.InstrumentHandler("GET", "/api/v1/boards", s.handleListBoards))
		r.Get("/boards/{id}", m.InstrumentHandler("GET", "/api/v1/boards/{id}", s.handleGetBoard))
		r.Put("/boards/{id}", m.InstrumentHandler("PUT", "/api/v1/boards/{id}", s.handleUpdateBoard))
		r.Delete("/boards/{id}", m.InstrumentHandler("DELETE", "/api/v1/boards/{id}", s.handleDeleteBoard))
	})

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", s.handleSwagger)

	return r
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/swagger/", "/swagger/index.html":
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerUI))
	case "/swagger/swagger.json":
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		if err != nil {
			s.logger.Error("failed to generate swagger doc", "error", err)
			http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ContentTypeJSON)
		_, _ = w.Write([]byte(doc))
	default:
		http.NotFound(w, r)
	}
}

const swaggerUI = `<!DOCTYPE html>
<html>
<head>
	 <title>STGY Board API Documentation</title>
	 <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	 <div id="swagger-ui"></div>
	 <script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	 <script>
	   window.onload = function() {
	     SwaggerUIBundle({
	       url: '/swagger/swagger.json',
	       dom_id: '#swagger-ui',
	       presets: [
	         SwaggerUIBundle.presets.apis,
	         SwaggerUIBundle.presets.standalone
	       ]
	     });
	   };
	 </script>
</body>
</html>`

// StartServer starts the HTTP server with all routes configured and blocks
// until ctx is cancelled or the listener fails.
func StartServer(ctx context.Context, store BoardStore, tokenCache cache.TokenCache, config ServerConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	SwaggerInfo.Host = net.JoinHostPort("localhost", strconv.Itoa(config.Port))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	opts := []ServerOption{WithLogger(logger)}
	if tokenCache != nil {
		opts = append(opts, WithCache(tokenCache))
	}
	server := NewServer(store, stgy.NewCodec(stgy.WithLogger(logger)), config, NewMetrics(registry), opts...)

	addr := net.JoinHostPort(config.Bind, strconv.Itoa(config.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting STGY board API server", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down STGY board API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
