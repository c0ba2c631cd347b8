// Package server is the dashboard's HTTP surface: operator sessions,
// the JSON API consumed by the browser UI, and the SSE fan-out of live
// activity state.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"luciadash/internal/activity"
	"luciadash/internal/cache"
	"luciadash/internal/config"
	"luciadash/internal/logging"
	"luciadash/internal/lucia"
	"luciadash/internal/poller"
	"luciadash/internal/system"
)

const (
	sessionName = "luciadash-session"

	summaryTTL  = time.Minute
	mcpToolsTTL = 5 * time.Minute

	// seriesWindow bounds the in-memory vitals series; older history is
	// served from the sqlite vitals log.
	seriesWindow = time.Hour

	meshRetryInterval = 15 * time.Second
)

// Server is the dashboard HTTP server.
type Server struct {
	config       *config.Config
	sessionStore *sessions.CookieStore

	lucia  *lucia.Client
	stream *lucia.Stream
	hub    *activity.Hub

	sse      *SSEManager
	notifier *Notifier

	summaries  *cache.Cache[*lucia.Summary]
	agentStats *cache.Cache[[]lucia.AgentStat]
	mcpTools   *cache.Cache[[]AggregatedTool]

	series *system.Series
	poller *poller.Poller

	cancel context.CancelFunc
}

// New creates a server wired to the configured Lucia backend. The
// database must already be initialized.
func New(cfg *config.Config) (*Server, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		// Random per-process key; sessions won't survive a restart.
		secret = uuid.NewString()
		logging.Warning("SESSION_SECRET not set, using a random session key")
	}

	s := &Server{
		config:       cfg,
		sessionStore: sessions.NewCookieStore([]byte(secret)),
		lucia:        lucia.New(cfg.BackendURL, cfg.APIKey),
		sse:          NewSSEManager(),
		summaries:    cache.New[*lucia.Summary](summaryTTL),
		agentStats:   cache.New[[]lucia.AgentStat](summaryTTL),
		mcpTools:     cache.New[[]AggregatedTool](mcpToolsTTL),
		series:       system.NewSeries(seriesWindow),
	}

	s.sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	}

	s.notifier = NewNotifier(s.sse, 0)
	s.hub = activity.NewHub(s.sse)
	s.stream = lucia.NewStream(s.lucia)
	s.poller = poller.New(s.lucia, s.series, s.summaries, s.agentStats, s.sse)

	return s, nil
}

// Start connects the live event feed, starts the background poller and
// serves HTTP on the configured address. Blocks until the listener
// fails.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.stream.Start(ctx)
	go s.hub.Run(ctx, s.stream.Events(), s.stream.States())
	go s.loadBaseTopology(ctx)

	if err := s.poller.Start(); err != nil {
		return err
	}

	addr := s.config.ListenAddr
	if addr == "" {
		addr = ":8099"
	}

	logging.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, requestLogger(s.routes()))
}

// Shutdown stops the poller and the upstream event feed.
func (s *Server) Shutdown() {
	if s.poller != nil {
		s.poller.Stop()
	}
	if s.stream != nil {
		s.stream.Close()
	}
	if s.notifier != nil {
		s.notifier.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// routes builds the full API mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Every API handler sits behind the setup and auth checks except
	// the bootstrap endpoints themselves.
	api := func(h http.HandlerFunc) http.HandlerFunc {
		return s.SetupRequiredMiddleware(s.AuthRequiredMiddleware(h))
	}

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/setup", s.handleSetup)
	mux.HandleFunc("/api/login", s.SetupRequiredMiddleware(s.handleLogin))
	mux.HandleFunc("/api/logout", s.handleLogout)
	mux.HandleFunc("/api/me", api(s.handleMe))

	mux.HandleFunc("/api/activity/summary", api(s.handleActivitySummary))
	mux.HandleFunc("/api/activity/mesh", api(s.handleActivityMesh))
	mux.HandleFunc("/api/activity/agent-stats", api(s.handleAgentStats))
	mux.HandleFunc("/api/activity/connection", api(s.handleActivityConnection))
	mux.HandleFunc("/api/activity/reconnect", api(s.handleActivityReconnect))
	mux.HandleFunc("/api/activity/events", api(s.handleActivityEvents))

	mux.HandleFunc("/api/agents", api(s.handleAgents))
	mux.HandleFunc("/api/agents/register", api(s.handleAgentRegister))
	mux.HandleFunc("/api/agents/import", api(s.handleAgentImport))
	mux.HandleFunc("/api/agents/", api(s.routeAgent))

	mux.HandleFunc("/api/mcp/servers", api(s.handleMCPServers))
	mux.HandleFunc("/api/mcp/servers/statuses", api(s.handleMCPStatuses))
	mux.HandleFunc("/api/mcp/servers/", api(s.routeMCPServer))
	mux.HandleFunc("/api/mcp/tools", api(s.handleMCPTools))

	mux.HandleFunc("/api/providers", api(s.handleProviders))
	mux.HandleFunc("/api/providers/", api(s.routeProvider))

	mux.HandleFunc("/api/config/sections", api(s.handleConfigSections))
	mux.HandleFunc("/api/config/sections/", api(s.routeConfigSection))

	mux.HandleFunc("/api/traces", api(s.handleTraces))
	mux.HandleFunc("/api/traces/", api(s.routeTrace))
	mux.HandleFunc("/api/exports", api(s.handleExports))
	mux.HandleFunc("/api/exports/", api(s.routeExport))

	mux.HandleFunc("/api/tasks", api(s.handleTasks))
	mux.HandleFunc("/api/tasks/", api(s.routeTask))

	mux.HandleFunc("/api/presence", api(s.handlePresence))
	mux.HandleFunc("/api/presence/sensors", api(s.handlePresenceSensors))
	mux.HandleFunc("/api/presence/sensors/", api(s.routePresenceSensor))

	mux.HandleFunc("/api/alarms", api(s.handleAlarms))
	mux.HandleFunc("/api/alarms/", api(s.routeAlarm))

	mux.HandleFunc("/api/lists", api(s.handleLists))
	mux.HandleFunc("/api/lists/", api(s.routeList))

	mux.HandleFunc("/api/cache/prompt", api(s.handlePromptCache))
	mux.HandleFunc("/api/cache/prompt/entries/", api(s.handlePromptCacheEntry))

	mux.HandleFunc("/api/system/vitals", api(s.handleSystemVitals))
	mux.HandleFunc("/api/system/vitals/chart", api(s.handleVitalsChart))
	mux.HandleFunc("/api/version", api(s.handleVersion))

	return mux
}

// loadBaseTopology fetches the static agent mesh from the backend and
// installs it as the reducer's base layer, retrying until it succeeds.
func (s *Server) loadBaseTopology(ctx context.Context) {
	for {
		reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		topo, err := s.lucia.GetMesh(reqCtx)
		cancel()

		if err == nil {
			s.hub.SetBaseTopology(topo)
			logging.Printf("Loaded agent mesh: %d nodes, %d edges", len(topo.Nodes), len(topo.Edges))
			return
		}

		logging.Warning("Failed to load agent mesh, retrying: %v", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(meshRetryInterval):
		}
	}
}
