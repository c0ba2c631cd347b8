package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"luciadash/internal/logging"
	"luciadash/internal/lucia"
)

// mcpToolsCacheKey is the single aggregation entry in the tools cache.
const mcpToolsCacheKey = "tools"

// discoverTimeout bounds each per-server discovery call so one hung
// stdio server can't stall the whole aggregation.
const discoverTimeout = 5 * time.Second

// AggregatedTool is one tool in the agent editor's picker, tagged with
// the server it came from.
type AggregatedTool struct {
	ServerID    string `json:"serverId"`
	ServerName  string `json:"serverName"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// handleMCPServers handles GET (list) and POST (create) on
// /api/mcp/servers.
func (s *Server) handleMCPServers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		servers, err := s.lucia.ListMCPServers(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"servers": servers,
		})

	case http.MethodPost:
		var server lucia.MCPServer
		if err := json.NewDecoder(r.Body).Decode(&server); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(server.Name) == "" {
			writeError(w, http.StatusBadRequest, "Server name is required")
			return
		}
		created, err := s.lucia.CreateMCPServer(r.Context(), &server)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		s.mcpTools.Delete(mcpToolsCacheKey)
		s.notifier.Notify(LevelSuccess, fmt.Sprintf("Tool server %q added", created.Name))
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"server":  created,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleMCPStatuses handles GET /api/mcp/servers/statuses.
func (s *Server) handleMCPStatuses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	statuses, err := s.lucia.GetMCPStatuses(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"statuses": statuses,
	})
}

// routeMCPServer dispatches /api/mcp/servers/{id} and its actions.
func (s *Server) routeMCPServer(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/mcp/servers/")
	path = strings.TrimSuffix(path, "/")

	switch {
	case strings.HasSuffix(path, "/connect"):
		s.handleMCPServerAction(w, r, strings.TrimSuffix(path, "/connect"), s.lucia.ConnectMCPServer)
	case strings.HasSuffix(path, "/disconnect"):
		s.handleMCPServerAction(w, r, strings.TrimSuffix(path, "/disconnect"), s.lucia.DisconnectMCPServer)
	case strings.HasSuffix(path, "/discover-tools"):
		s.handleMCPDiscoverTools(w, r, strings.TrimSuffix(path, "/discover-tools"))
	case path == "":
		writeError(w, http.StatusBadRequest, "Server id is required")
	default:
		s.handleMCPServerByID(w, r, path)
	}
}

func (s *Server) handleMCPServerAction(w http.ResponseWriter, r *http.Request, id string, action func(context.Context, string) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := action(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleMCPDiscoverTools(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tools, err := s.lucia.DiscoverTools(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	s.mcpTools.Delete(mcpToolsCacheKey)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tools":   tools,
	})
}

func (s *Server) handleMCPServerByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		server, err := s.lucia.GetMCPServer(r.Context(), id)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"server":  server,
		})

	case http.MethodPut:
		var server lucia.MCPServer
		if err := json.NewDecoder(r.Body).Decode(&server); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		updated, err := s.lucia.UpdateMCPServer(r.Context(), id, &server)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		s.mcpTools.Delete(mcpToolsCacheKey)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"server":  updated,
		})

	case http.MethodDelete:
		if !requireConfirm(w, r) {
			return
		}
		if err := s.lucia.DeleteMCPServer(r.Context(), id); err != nil {
			writeBackendError(w, err)
			return
		}
		s.mcpTools.Delete(mcpToolsCacheKey)
		s.notifier.Notify(LevelInfo, "Tool server deleted")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleMCPTools handles GET /api/mcp/tools: every tool across all
// enabled servers, for the agent editor picker. Discovery is best
// effort; a server that fails just contributes nothing.
func (s *Server) handleMCPTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tools, ok := s.mcpTools.Get(mcpToolsCacheKey)
	if !ok {
		var err error
		tools, err = s.aggregateTools(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		s.mcpTools.Set(mcpToolsCacheKey, tools)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tools":   tools,
	})
}

// aggregateTools collects tool listings from every enabled server.
// Only the server list itself is a hard dependency.
func (s *Server) aggregateTools(ctx context.Context) ([]AggregatedTool, error) {
	servers, err := s.lucia.ListMCPServers(ctx)
	if err != nil {
		return nil, err
	}

	tools := []AggregatedTool{}
	for _, server := range servers {
		if !server.Enabled {
			continue
		}

		discoverCtx, cancel := context.WithTimeout(ctx, discoverTimeout)
		discovered, err := s.lucia.DiscoverTools(discoverCtx, server.ID)
		cancel()
		if err != nil {
			logging.Debug("Tool discovery failed for %s: %v", server.Name, err)
			continue
		}

		for _, tool := range discovered {
			tools = append(tools, AggregatedTool{
				ServerID:    server.ID,
				ServerName:  server.Name,
				Name:        tool.Name,
				Description: tool.Description,
			})
		}
	}

	return tools, nil
}
