package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"luciadash/internal/database"
	"luciadash/internal/logging"
	"luciadash/internal/lucia"
)

// maxImportSize bounds YAML agent definition uploads.
const maxImportSize = 1 << 20

// handleAgents handles GET (list) and POST (create) on /api/agents.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		agents, err := s.lucia.ListAgents(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"agents":  agents,
		})

	case http.MethodPost:
		var agent lucia.Agent
		if err := json.NewDecoder(r.Body).Decode(&agent); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(agent.Name) == "" {
			writeError(w, http.StatusBadRequest, "Agent name is required")
			return
		}
		created, err := s.lucia.CreateAgent(r.Context(), &agent)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		s.notifier.Notify(LevelSuccess, fmt.Sprintf("Agent %q created", created.Name))
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"agent":   created,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAgentRegister handles POST /api/agents/register: point the
// backend at a remote A2A agent by URL.
func (s *Server) handleAgentRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "Agent URL is required")
		return
	}

	agent, err := s.lucia.RegisterAgent(r.Context(), req.URL)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	s.notifier.Notify(LevelSuccess, fmt.Sprintf("Agent %q registered", agent.Name))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"agent":   agent,
	})
}

// handleAgentImport handles POST /api/agents/import: a YAML agent
// definition in the request body becomes a new backend agent.
func (s *Server) handleAgentImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	agent, err := lucia.UnmarshalAgentYAML(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid agent definition: "+err.Error())
		return
	}
	// Imports always create; a stale id in the file must not overwrite
	// an existing agent.
	agent.ID = ""

	created, err := s.lucia.CreateAgent(r.Context(), agent)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	s.notifier.Notify(LevelSuccess, fmt.Sprintf("Agent %q imported", created.Name))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"agent":   created,
	})
}

// routeAgent dispatches /api/agents/{id} and its sub-resources.
func (s *Server) routeAgent(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/agents/")
	path = strings.TrimSuffix(path, "/")

	switch {
	case strings.HasSuffix(path, "/chat"):
		s.handleAgentChat(w, r, strings.TrimSuffix(path, "/chat"))
	case strings.HasSuffix(path, "/export"):
		s.handleAgentExport(w, r, strings.TrimSuffix(path, "/export"))
	case path == "":
		writeError(w, http.StatusBadRequest, "Agent id is required")
	default:
		s.handleAgentByID(w, r, path)
	}
}

func (s *Server) handleAgentByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		agent, err := s.lucia.GetAgent(r.Context(), id)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"agent":   agent,
		})

	case http.MethodPut:
		var agent lucia.Agent
		if err := json.NewDecoder(r.Body).Decode(&agent); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		updated, err := s.lucia.UpdateAgent(r.Context(), id, &agent)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"agent":   updated,
		})

	case http.MethodDelete:
		if !requireConfirm(w, r) {
			return
		}
		if err := s.lucia.DeleteAgent(r.Context(), id); err != nil {
			writeBackendError(w, err)
			return
		}
		s.notifier.Notify(LevelInfo, "Agent deleted")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAgentChat handles POST /api/agents/{id}/chat: the test console.
// Messages are proxied to the agent over A2A; the conversation context
// id is pinned per operator and agent in sqlite so a page reload
// continues the same conversation.
func (s *Server) handleAgentChat(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	op := getOperatorFromContext(r.Context())
	if op == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Message string `json:"message"`
		Reset   bool   `json:"reset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	agent, err := s.lucia.GetAgent(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if agent.URL == "" {
		writeError(w, http.StatusUnprocessableEntity, "Agent has no A2A endpoint")
		return
	}

	if req.Reset {
		if err := database.ClearChatContext(op.ID, id); err != nil {
			logging.Errorf("Failed to clear chat context: %v", err)
		}
	}

	contextID := ""
	if !req.Reset {
		contextID, err = database.GetChatContext(op.ID, id)
		if err != nil {
			logging.Errorf("Failed to load chat context: %v", err)
			contextID = ""
		}
	}

	reply, err := s.lucia.SendAgentMessage(r.Context(), agent.URL, req.Message, contextID)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	if reply.ContextID != "" && reply.ContextID != contextID {
		if err := database.SaveChatContext(op.ID, id, reply.ContextID); err != nil {
			logging.Errorf("Failed to save chat context: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"reply":   reply,
	})
}

// handleAgentExport handles GET /api/agents/{id}/export: the agent
// definition as a downloadable YAML file.
func (s *Server) handleAgentExport(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	agent, err := s.lucia.GetAgent(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	data, err := lucia.MarshalAgentYAML(agent)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to serialize agent")
		return
	}

	filename := strings.ReplaceAll(strings.ToLower(agent.Name), " ", "-")
	if filename == "" {
		filename = id
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".yaml"))
	if _, err := w.Write(data); err != nil {
		logging.Errorf("Failed to write agent export: %v", err)
	}
}
