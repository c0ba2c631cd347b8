package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"luciadash/internal/lucia"
)

// mcpBackend fakes the backend's tool server endpoints. Discovery for
// the server named in failID answers 500.
type mcpBackend struct {
	mu       sync.Mutex
	servers  []lucia.MCPServer
	tools    map[string][]lucia.Tool
	failID   string
	listHits int
}

func (b *mcpBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/mcp/servers":
		b.mu.Lock()
		b.listHits++
		b.mu.Unlock()
		json.NewEncoder(w).Encode(b.servers)

	case r.Method == http.MethodPost:
		for id, tools := range b.tools {
			if r.URL.Path == "/mcp/servers/"+id+"/discoverTools" {
				if id == b.failID {
					http.Error(w, "server exploded", http.StatusInternalServerError)
					return
				}
				json.NewEncoder(w).Encode(tools)
				return
			}
		}
		http.NotFound(w, r)

	default:
		http.NotFound(w, r)
	}
}

func TestMCPToolsAggregationIsBestEffort(t *testing.T) {
	backend := &mcpBackend{
		servers: []lucia.MCPServer{
			{ID: "home", Name: "Home Control", Transport: "stdio", Enabled: true},
			{ID: "flaky", Name: "Flaky", Transport: "sse", Enabled: true},
			{ID: "dormant", Name: "Dormant", Transport: "stdio", Enabled: false},
		},
		tools: map[string][]lucia.Tool{
			"home":    {{Name: "lights_on", Description: "Turn lights on"}, {Name: "lights_off"}},
			"flaky":   {{Name: "never_seen"}},
			"dormant": {{Name: "also_never_seen"}},
		},
		failID: "flaky",
	}
	ts := httptest.NewServer(backend)
	defer ts.Close()

	s := newTestServer(t, ts.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/mcp/tools", nil)
	w := httptest.NewRecorder()
	s.handleMCPTools(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite failing server, got %d: %s", w.Code, w.Body.String())
	}

	envelope := decodeEnvelope(t, w)
	tools := envelope["tools"].([]interface{})
	if len(tools) != 2 {
		t.Fatalf("expected tools from the healthy server only, got %d", len(tools))
	}
	for _, raw := range tools {
		tool := raw.(map[string]interface{})
		if tool["serverId"] != "home" {
			t.Errorf("unexpected tool source %v", tool)
		}
		if tool["serverName"] != "Home Control" {
			t.Errorf("expected server name tag, got %v", tool)
		}
	}
}

func TestMCPToolsServedFromCache(t *testing.T) {
	backend := &mcpBackend{
		servers: []lucia.MCPServer{
			{ID: "home", Name: "Home Control", Transport: "stdio", Enabled: true},
		},
		tools: map[string][]lucia.Tool{
			"home": {{Name: "lights_on"}},
		},
	}
	ts := httptest.NewServer(backend)
	defer ts.Close()

	s := newTestServer(t, ts.URL)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/mcp/tools", nil)
		w := httptest.NewRecorder()
		s.handleMCPTools(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	if backend.listHits != 1 {
		t.Errorf("expected aggregation to run once, server list fetched %d times", backend.listHits)
	}
}

func TestMCPToolsAggregationFailsWithoutServerList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"database locked"}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	s := newTestServer(t, ts.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/mcp/tools", nil)
	w := httptest.NewRecorder()
	s.handleMCPTools(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected the server list failure to surface, got %d", w.Code)
	}
}

func TestMCPServerDeleteInvalidatesToolCache(t *testing.T) {
	deleted := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && r.URL.Path == "/mcp/servers/home" {
			deleted = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	s := newTestServer(t, ts.URL)
	s.mcpTools.Set(mcpToolsCacheKey, []AggregatedTool{{ServerID: "home", Name: "lights_on"}})

	req := httptest.NewRequest(http.MethodDelete, "/api/mcp/servers/home?confirm=true", nil)
	w := httptest.NewRecorder()
	s.routeMCPServer(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !deleted {
		t.Errorf("expected backend delete")
	}
	if _, ok := s.mcpTools.Get(mcpToolsCacheKey); ok {
		t.Errorf("expected tool cache invalidation after delete")
	}
}
