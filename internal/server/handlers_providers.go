package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"luciadash/internal/lucia"
)

// handleProviders handles GET (list) and POST (create) on
// /api/providers.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		providers, err := s.lucia.ListModelProviders(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"providers": providers,
		})

	case http.MethodPost:
		var provider lucia.ModelProvider
		if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(provider.Name) == "" {
			writeError(w, http.StatusBadRequest, "Provider name is required")
			return
		}
		created, err := s.lucia.CreateModelProvider(r.Context(), &provider)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		s.notifier.Notify(LevelSuccess, fmt.Sprintf("Provider %q added", created.Name))
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success":  true,
			"provider": created,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// routeProvider dispatches /api/providers/{id} and its actions.
func (s *Server) routeProvider(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/providers/")
	path = strings.TrimSuffix(path, "/")

	switch {
	case strings.HasSuffix(path, "/test"):
		s.handleProviderTest(w, r, strings.TrimSuffix(path, "/test"))
	case strings.HasSuffix(path, "/connect/start"):
		s.handleProviderConnectStart(w, r, strings.TrimSuffix(path, "/connect/start"))
	case strings.HasSuffix(path, "/connect/status"):
		s.handleProviderConnectStatus(w, r, strings.TrimSuffix(path, "/connect/status"))
	case path == "":
		writeError(w, http.StatusBadRequest, "Provider id is required")
	default:
		s.handleProviderByID(w, r, path)
	}
}

func (s *Server) handleProviderByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		provider, err := s.lucia.GetModelProvider(r.Context(), id)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"provider": provider,
		})

	case http.MethodPut:
		var provider lucia.ModelProvider
		if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		updated, err := s.lucia.UpdateModelProvider(r.Context(), id, &provider)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"provider": updated,
		})

	case http.MethodDelete:
		if !requireConfirm(w, r) {
			return
		}
		if err := s.lucia.DeleteModelProvider(r.Context(), id); err != nil {
			writeBackendError(w, err)
			return
		}
		s.notifier.Notify(LevelInfo, "Provider deleted")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleProviderTest handles POST /api/providers/{id}/test. The result
// rides in the envelope even when the probe itself failed; a failed
// test is a successful request.
func (s *Server) handleProviderTest(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.lucia.TestModelProvider(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// handleProviderConnectStart handles POST
// /api/providers/{id}/connect/start: begins the device-authorization
// flow for CLI-session providers.
func (s *Server) handleProviderConnectStart(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.lucia.StartProviderConnect(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"session": session,
	})
}

// handleProviderConnectStatus handles GET
// /api/providers/{id}/connect/status?sessionId=...
func (s *Server) handleProviderConnectStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	status, err := s.lucia.GetProviderConnectStatus(r.Context(), id, sessionID)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	if status.State == lucia.ConnectAuthorized {
		s.notifier.Notify(LevelSuccess, "Provider connected")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  status,
	})
}
