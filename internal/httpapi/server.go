// Package httpapi exposes the catalog transformation pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/nucleus/catalog-api/internal/catalog"
	"github.com/nucleus/catalog-api/internal/export"
	"github.com/nucleus/catalog-api/internal/source"
	"github.com/nucleus/catalog-api/internal/store"
)

// Options configures the HTTP server's behavior.
type Options struct {
	// ExposeErrorDetails includes error details in 500 responses. Must be
	// false in production-equivalent environments.
	ExposeErrorDetails bool
}

// Server routes catalog requests to the service layer. All dependencies
// are injected so tests can construct isolated instances.
type Server struct {
	store    store.Store
	catalogs *catalog.Service
	exporter *export.Exporter
	opts     Options
}

// New creates an HTTP server. exporter may be nil when no object storage
// is configured; the download endpoint then only serves JSON.
func New(st store.Store, catalogs *catalog.Service, exporter *export.Exporter, opts Options) *Server {
	return &Server{store: st, catalogs: catalogs, exporter: exporter, opts: opts}
}

// Routes builds the request mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /data-sources/{id}/transform", s.handleTransform)
	mux.HandleFunc("GET /data-sources/{id}/download", s.handleDownload)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// errorBody is the error response shape. Details carries diagnostic
// information outside production.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	body := errorBody{Error: message}
	if err != nil {
		log.Printf("request failed: %s: %v", message, err)
		if s.opts.ExposeErrorDetails {
			body.Details = err.Error()
		}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// loadDataSource resolves the path's data source or writes a 404.
func (s *Server) loadDataSource(ctx context.Context, w http.ResponseWriter, id string) (*source.DataSource, bool) {
	found, err := s.store.GetDataSource(ctx, id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to load data source", err)
		return nil, false
	}
	if found == nil {
		s.writeError(w, http.StatusNotFound, "Data source not found", nil)
		return nil, false
	}
	return found, true
}
