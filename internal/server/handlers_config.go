package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"luciadash/internal/lucia"
)

// handleConfigSections handles GET /api/config/sections: the schema the
// settings page builds its forms from.
func (s *Server) handleConfigSections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sections, err := s.lucia.GetConfigSections(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"sections": sections,
	})
}

// routeConfigSection dispatches /api/config/sections/{name}.
func (s *Server) routeConfigSection(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/config/sections/")
	name = strings.TrimSuffix(name, "/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "Section name is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleConfigSectionGet(w, r, name)
	case http.MethodPut:
		s.handleConfigSectionPut(w, r, name)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleConfigSectionGet returns one section's schema together with its
// current values. Sensitive values stay masked unless cleartext=true is
// passed through.
func (s *Server) handleConfigSectionGet(w http.ResponseWriter, r *http.Request, name string) {
	sections, err := s.lucia.GetConfigSections(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}

	var section *lucia.ConfigSection
	for i := range sections {
		if sections[i].Name == name {
			section = &sections[i]
			break
		}
	}
	if section == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown config section %q", name))
		return
	}

	cleartext := r.URL.Query().Get("cleartext") == "true"
	values, err := s.lucia.GetConfigValues(r.Context(), name, cleartext)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"section": section,
		"values":  values,
	})
}

// handleConfigSectionPut saves edited values. The diff is recomputed
// here against a freshly loaded masked view, so an untouched masked
// secret is never echoed back to the backend no matter what the browser
// submitted.
func (s *Server) handleConfigSectionPut(w http.ResponseWriter, r *http.Request, name string) {
	var req struct {
		Values map[string]string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Values == nil {
		writeError(w, http.StatusBadRequest, "Values are required")
		return
	}

	current, err := s.lucia.GetConfigValues(r.Context(), name, false)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	changes := lucia.DiffValues(current, req.Values)
	if len(changes) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"updated": 0,
		})
		return
	}

	if err := s.lucia.UpdateConfigValues(r.Context(), name, changes); err != nil {
		writeBackendError(w, err)
		return
	}

	s.notifier.Notify(LevelSuccess, fmt.Sprintf("Configuration %q saved", name))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": len(changes),
	})
}
