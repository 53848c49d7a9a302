// Package api serves the csvmap record service over HTTP.
//
// All routes below /api/v1 require the X-API-Key header. /metrics is left
// unprotected for scraping.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the HTTP routes for server
func NewRouter(server *Server) http.Handler {
	metrics := server.metrics

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(server.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Get("/schemas", metrics.InstrumentHandler("GET", "/api/v1/schemas", server.handleListSchemas))
		r.Route("/schemas/{name}", func(r chi.Router) {
			r.Post("/serialize", metrics.InstrumentHandler("POST", "/api/v1/schemas/{name}/serialize", server.handleSerialize))
			r.Post("/deserialize", metrics.InstrumentHandler("POST", "/api/v1/schemas/{name}/deserialize", server.handleDeserialize))

			r.Post("/records", metrics.InstrumentHandler("POST", "/api/v1/schemas/{name}/records", server.handleAppendRecords))
			r.Get("/records", metrics.InstrumentHandler("GET", "/api/v1/schemas/{name}/records", server.handleExportRecords))
			r.Get("/records/{id}", metrics.InstrumentHandler("GET", "/api/v1/schemas/{name}/records/{id}", server.handleGetRecord))
			r.Delete("/records/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/schemas/{name}/records/{id}", server.handleDeleteRecord))
		})
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully
func StartServer(ctx context.Context, service *RecordService, config ServerConfig) error {
	if config.APIKey == "" {
		return errors.New("an API key is required")
	}

	server := NewServer(service, config)
	addr := net.JoinHostPort(config.Bind, strconv.Itoa(config.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go server.startMetricsUpdater(ctx)

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("starting csvmap REST API server", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	server.logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
