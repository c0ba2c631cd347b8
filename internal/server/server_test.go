package server

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/sessions"

	"luciadash/internal/activity"
	"luciadash/internal/cache"
	"luciadash/internal/config"
	"luciadash/internal/database"
	"luciadash/internal/lucia"
	"luciadash/internal/system"
)

// initTestDB points the shared database at a fresh temp file.
func initTestDB(t *testing.T) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := database.Initialize(dbPath); err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})
}

// newTestServer builds a server the way handler tests need it: real
// session store, real caches, hub with no stream behind it. backendURL
// may be empty for handlers that never touch the backend.
func newTestServer(t *testing.T, backendURL string) *Server {
	t.Helper()

	s := &Server{
		config: &config.Config{
			BackendURL: backendURL,
			ListenAddr: ":0",
		},
		sessionStore: sessions.NewCookieStore([]byte("test-session-key")),
		sse:          NewSSEManager(),
		summaries:    cache.New[*lucia.Summary](time.Minute),
		agentStats:   cache.New[[]lucia.AgentStat](time.Minute),
		mcpTools:     cache.New[[]AggregatedTool](time.Minute),
		series:       system.NewSeries(time.Hour),
	}
	s.sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if backendURL != "" {
		s.lucia = lucia.New(backendURL, "")
	}
	s.notifier = NewNotifier(s.sse, 0)
	s.hub = activity.NewHub(s.sse)

	return s
}
