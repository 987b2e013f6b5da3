package httpapi

import (
	"net/http"

	"github.com/nucleus/catalog-api/internal/catalog"
	"github.com/nucleus/catalog-api/internal/export"
)

// downloadResponse is returned for artifact-producing formats.
type downloadResponse struct {
	Artifact *export.Result `json:"artifact"`
}

// handleDownload serves GET /data-sources/{id}/download. The default
// format streams the full record set as JSON; parquet and jsonl write an
// artifact to the object store and return its location.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ds, ok := s.loadDataSource(ctx, w, r.PathValue("id"))
	if !ok {
		return
	}

	// Bulk download always needs the full materialized set.
	req := catalog.PageRequest{Page: 1, PageSize: catalog.DefaultPageSize, SkipPagination: true}
	cat, _, err := s.catalogs.ResolveCatalog(ctx, ds, req)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to transform data source", err)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		writeJSON(w, http.StatusOK, cat)

	case export.FormatParquet, export.FormatJSONL:
		if s.exporter == nil {
			s.writeError(w, http.StatusServiceUnavailable, "Export storage is not configured", nil)
			return
		}
		result, err := s.exporter.Export(ctx, cat, format)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "Failed to export catalog", err)
			return
		}
		writeJSON(w, http.StatusOK, downloadResponse{Artifact: result})

	default:
		s.writeError(w, http.StatusBadRequest, "Unsupported download format", nil)
	}
}
