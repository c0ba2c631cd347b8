package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"luciadash/internal/database"
	"luciadash/internal/lucia"
)

// chatBackend fakes the backend's agent store and A2A proxy. It records
// the contextId of every proxied message so tests can assert the
// conversation is continued or reset.
type chatBackend struct {
	mu             sync.Mutex
	agent          lucia.Agent
	replyContextID string
	seenContextIDs []string
	deletes        int
	created        []lucia.Agent
}

func (b *chatBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/agents/"+b.agent.ID:
		json.NewEncoder(w).Encode(b.agent)

	case r.Method == http.MethodDelete && r.URL.Path == "/agents/"+b.agent.ID:
		b.mu.Lock()
		b.deletes++
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodPost && r.URL.Path == "/agents":
		var agent lucia.Agent
		json.NewDecoder(r.Body).Decode(&agent)
		b.mu.Lock()
		b.created = append(b.created, agent)
		b.mu.Unlock()
		agent.ID = "created-1"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(agent)

	case r.Method == http.MethodPost && r.URL.Path == "/agents/proxy":
		var req lucia.A2ARequest
		json.NewDecoder(r.Body).Decode(&req)

		params, _ := json.Marshal(req.Params)
		var parsed struct {
			Message lucia.A2AMessage `json:"message"`
		}
		json.Unmarshal(params, &parsed)

		b.mu.Lock()
		b.seenContextIDs = append(b.seenContextIDs, parsed.Message.ContextID)
		b.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"contextId": b.replyContextID,
				"status": map[string]interface{}{
					"state": "completed",
					"message": lucia.A2AMessage{
						Kind:      "message",
						MessageID: "m-1",
						ContextID: b.replyContextID,
						Role:      "agent",
						Parts:     []lucia.A2APart{{Kind: "text", Text: "It is sunny"}},
					},
				},
			},
		})

	default:
		http.NotFound(w, r)
	}
}

func (b *chatBackend) contexts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.seenContextIDs))
	copy(out, b.seenContextIDs)
	return out
}

func chatRequest(t *testing.T, s *Server, op *database.Operator, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/agents/weather-1/chat", bytes.NewReader(payload))
	req = req.WithContext(setOperatorContext(req.Context(), op))
	w := httptest.NewRecorder()
	s.routeAgent(w, req)
	return w
}

func TestAgentChatPinsConversationContext(t *testing.T) {
	initTestDB(t)

	backend := &chatBackend{replyContextID: "ctx-1"}
	ts := httptest.NewServer(backend)
	defer ts.Close()
	backend.agent = lucia.Agent{ID: "weather-1", Name: "Weather", URL: ts.URL + "/a2a"}

	s := newTestServer(t, ts.URL)
	op, err := s.createOperator("admin", "correct horse", "", true)
	if err != nil {
		t.Fatal(err)
	}

	// First message opens a fresh conversation.
	w := chatRequest(t, s, op, map[string]interface{}{"message": "weather?"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	envelope := decodeEnvelope(t, w)
	reply := envelope["reply"].(map[string]interface{})
	if reply["text"] != "It is sunny" {
		t.Errorf("expected reply text, got %v", reply["text"])
	}
	if reply["contextId"] != "ctx-1" {
		t.Errorf("expected contextId ctx-1, got %v", reply["contextId"])
	}

	// The context id the agent minted is now pinned in sqlite.
	saved, err := database.GetChatContext(op.ID, "weather-1")
	if err != nil {
		t.Fatal(err)
	}
	if saved != "ctx-1" {
		t.Errorf("expected saved context ctx-1, got %q", saved)
	}

	// The second message continues the pinned conversation.
	w = chatRequest(t, s, op, map[string]interface{}{"message": "and tomorrow?"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	contexts := backend.contexts()
	if len(contexts) != 2 {
		t.Fatalf("expected 2 proxied messages, got %d", len(contexts))
	}
	if contexts[0] != "" {
		t.Errorf("first message should start without a context, got %q", contexts[0])
	}
	if contexts[1] != "ctx-1" {
		t.Errorf("second message should continue ctx-1, got %q", contexts[1])
	}
}

func TestAgentChatReset(t *testing.T) {
	initTestDB(t)

	backend := &chatBackend{replyContextID: "ctx-2"}
	ts := httptest.NewServer(backend)
	defer ts.Close()
	backend.agent = lucia.Agent{ID: "weather-1", Name: "Weather", URL: ts.URL + "/a2a"}

	s := newTestServer(t, ts.URL)
	op, err := s.createOperator("admin", "correct horse", "", true)
	if err != nil {
		t.Fatal(err)
	}
	if err := database.SaveChatContext(op.ID, "weather-1", "stale-ctx"); err != nil {
		t.Fatal(err)
	}

	w := chatRequest(t, s, op, map[string]interface{}{"message": "start over", "reset": true})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	contexts := backend.contexts()
	if len(contexts) != 1 || contexts[0] != "" {
		t.Errorf("reset should drop the stale context, backend saw %v", contexts)
	}

	// The new conversation's context replaces the cleared one.
	saved, err := database.GetChatContext(op.ID, "weather-1")
	if err != nil {
		t.Fatal(err)
	}
	if saved != "ctx-2" {
		t.Errorf("expected new context ctx-2, got %q", saved)
	}
}

func TestAgentChatRequiresMessage(t *testing.T) {
	initTestDB(t)
	s := newTestServer(t, "")
	op, err := s.createOperator("admin", "correct horse", "", true)
	if err != nil {
		t.Fatal(err)
	}

	w := chatRequest(t, s, op, map[string]interface{}{"message": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAgentChatRejectsAgentWithoutEndpoint(t *testing.T) {
	initTestDB(t)

	backend := &chatBackend{}
	ts := httptest.NewServer(backend)
	defer ts.Close()
	backend.agent = lucia.Agent{ID: "weather-1", Name: "Weather"} // no URL

	s := newTestServer(t, ts.URL)
	op, err := s.createOperator("admin", "correct horse", "", true)
	if err != nil {
		t.Fatal(err)
	}

	w := chatRequest(t, s, op, map[string]interface{}{"message": "hello"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for agent without endpoint, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAgentDeleteRequiresConfirmation(t *testing.T) {
	backend := &chatBackend{}
	ts := httptest.NewServer(backend)
	defer ts.Close()
	backend.agent = lucia.Agent{ID: "weather-1", Name: "Weather"}

	s := newTestServer(t, ts.URL)

	req := httptest.NewRequest(http.MethodDelete, "/api/agents/weather-1", nil)
	w := httptest.NewRecorder()
	s.routeAgent(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirm, got %d", w.Code)
	}
	if backend.deletes != 0 {
		t.Errorf("backend delete must not run without confirmation")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/agents/weather-1?confirm=true", nil)
	w = httptest.NewRecorder()
	s.routeAgent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with confirm, got %d: %s", w.Code, w.Body.String())
	}
	if backend.deletes != 1 {
		t.Errorf("expected 1 backend delete, got %d", backend.deletes)
	}
}

func TestAgentExport(t *testing.T) {
	backend := &chatBackend{}
	ts := httptest.NewServer(backend)
	defer ts.Close()
	backend.agent = lucia.Agent{
		ID:           "weather-1",
		Name:         "Weather Agent",
		Model:        "gpt-oss",
		SystemPrompt: "You report the weather.",
	}

	s := newTestServer(t, ts.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/agents/weather-1/export", nil)
	w := httptest.NewRecorder()
	s.routeAgent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "application/x-yaml" {
		t.Errorf("expected yaml content type, got %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "weather-agent.yaml") {
		t.Errorf("expected filename from agent name, got %q", got)
	}

	body := w.Body.String()
	if !strings.Contains(body, "name: Weather Agent") {
		t.Errorf("expected agent name in YAML, got %q", body)
	}
	if !strings.Contains(body, "system_prompt: You report the weather.") {
		t.Errorf("expected system prompt in YAML, got %q", body)
	}
}

func TestAgentImportDropsStaleID(t *testing.T) {
	backend := &chatBackend{}
	ts := httptest.NewServer(backend)
	defer ts.Close()

	s := newTestServer(t, ts.URL)

	yaml := "id: stale-id\nname: Imported Agent\nmodel: gpt-oss\n"
	req := httptest.NewRequest(http.MethodPost, "/api/agents/import", strings.NewReader(yaml))
	w := httptest.NewRecorder()
	s.handleAgentImport(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	if len(backend.created) != 1 {
		t.Fatalf("expected 1 created agent, got %d", len(backend.created))
	}
	if backend.created[0].ID != "" {
		t.Errorf("import must not carry the file's id, backend saw %q", backend.created[0].ID)
	}
	if backend.created[0].Name != "Imported Agent" {
		t.Errorf("expected imported name, got %q", backend.created[0].Name)
	}
}
