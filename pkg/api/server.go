// Package api exposes an embedding table's full operation surface over a
// JSON REST API: find, insert, remove, clear, stats, and dump export/import.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/mimir/pkg/codec"
	"github.com/ssargent/mimir/pkg/table"
)

// Routes builds the router for the server: an unprotected /metrics endpoint
// for scraping, and API-key protected table operations under /api/v1.
func (s *Server[K, V]) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.apiKeyAuth())

		r.Get("/health", serverMetrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Post("/table/find", serverMetrics.InstrumentHandler("POST", "/api/v1/table/find", s.handleFind))
		r.Post("/table/insert", serverMetrics.InstrumentHandler("POST", "/api/v1/table/insert", s.handleInsert))
		r.Post("/table/remove", serverMetrics.InstrumentHandler("POST", "/api/v1/table/remove", s.handleRemove))
		r.Post("/table/clear", serverMetrics.InstrumentHandler("POST", "/api/v1/table/clear", s.handleClear))

		r.Post("/table/export", serverMetrics.InstrumentHandler("POST", "/api/v1/table/export", s.handleExport))
		r.Post("/table/import", serverMetrics.InstrumentHandler("POST", "/api/v1/table/import", s.handleImport))

		r.Get("/table/stats", serverMetrics.InstrumentHandler("GET", "/api/v1/table/stats", s.handleStats))
	})

	return r
}

// StartServer runs the API server until the listener fails
func StartServer[K table.Key, V codec.Element](tbl *table.Table[K, V], config ServerConfig) error {
	server := NewServer(tbl, config, nil)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	server.logger.Info("starting API server",
		"addr", addr,
		"namespace", tbl.Namespace(),
		"row_width", tbl.RowWidth())

	return http.ListenAndServe(addr, server.Routes())
}
