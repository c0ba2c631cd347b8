package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"luciadash/internal/logging"
	"luciadash/internal/lucia"
)

// parsePage reads page/pageSize query parameters with the dashboard's
// defaults. Out-of-range values fall back rather than erroring.
func parsePage(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = 20

	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= 100 {
			pageSize = ps
		}
	}
	return page, pageSize
}

// writePaged sends a paged backend result in the standard envelope.
func writePaged[T any](w http.ResponseWriter, itemsKey string, paged *lucia.Paged[T]) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		itemsKey:     paged.Items,
		"page":       paged.Page,
		"totalPages": paged.TotalPages,
		"totalCount": paged.TotalCount,
	})
}

// handleTraces handles GET /api/traces with status/page filters.
func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page, pageSize := parsePage(r)
	traces, err := s.lucia.ListTraces(r.Context(), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writePaged(w, "traces", traces)
}

// routeTrace dispatches /api/traces/{id} and /api/traces/{id}/label.
func (s *Server) routeTrace(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/traces/")
	path = strings.TrimSuffix(path, "/")

	switch {
	case strings.HasSuffix(path, "/label"):
		s.handleTraceLabel(w, r, strings.TrimSuffix(path, "/label"))
	case path == "":
		writeError(w, http.StatusBadRequest, "Trace id is required")
	default:
		s.handleTraceByID(w, r, path)
	}
}

func (s *Server) handleTraceByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		trace, err := s.lucia.GetTrace(r.Context(), id)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"trace":   trace,
		})

	case http.MethodDelete:
		if !requireConfirm(w, r) {
			return
		}
		if err := s.lucia.DeleteTrace(r.Context(), id); err != nil {
			writeBackendError(w, err)
			return
		}
		s.notifier.Notify(LevelInfo, "Trace deleted")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTraceLabel handles PUT /api/traces/{id}/label: attach a quality
// label and reviewer notes for the eval export pipeline.
func (s *Server) handleTraceLabel(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Label string `json:"label"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "Label is required")
		return
	}

	if err := s.lucia.LabelTrace(r.Context(), id, req.Label, req.Notes); err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handleExports handles GET (list) and POST (create) on /api/exports.
func (s *Server) handleExports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jobs, err := s.lucia.ListExports(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"exports": jobs,
		})

	case http.MethodPost:
		var filter lucia.ExportFilter
		if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		job, err := s.lucia.CreateExport(r.Context(), filter)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		s.notifier.Notify(LevelInfo, "Export started")
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"success": true,
			"export":  job,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// routeExport dispatches /api/exports/{id}/download.
func (s *Server) routeExport(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/exports/")
	path = strings.TrimSuffix(path, "/")

	if !strings.HasSuffix(path, "/download") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	s.handleExportDownload(w, r, strings.TrimSuffix(path, "/download"))
}

// handleExportDownload streams a finished export archive through to the
// browser without buffering it.
func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, err := s.lucia.DownloadExport(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	disposition := resp.Header.Get("Content-Disposition")
	if disposition == "" {
		disposition = "attachment; filename=\"export-" + id + ".jsonl\""
	}
	w.Header().Set("Content-Disposition", disposition)

	if _, err := io.Copy(w, resp.Body); err != nil {
		logging.Errorf("Export download interrupted: %v", err)
	}
}
