package server

import (
	"fmt"
	"net/http"
	"time"

	"luciadash/internal/activity"
	"luciadash/internal/charts"
	"luciadash/internal/logging"
	"luciadash/internal/poller"
)

// handleActivitySummary handles GET /api/activity/summary. Served from
// the poller's cache when fresh; falls through to the backend so the
// first page load after startup isn't empty.
func (s *Server) handleActivitySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, ok := s.summaries.Get(poller.CacheKeySummary)
	if !ok {
		var err error
		summary, err = s.lucia.GetActivitySummary(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		s.summaries.Set(poller.CacheKeySummary, summary)
	}

	counts := make([]float64, len(summary.RequestsPerMinute))
	for i, p := range summary.RequestsPerMinute {
		counts[i] = float64(p.Count)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"summary":   summary,
		"sparkline": charts.SparklineSVG(counts, 150, 40),
	})
}

// handleAgentStats handles GET /api/activity/agent-stats.
func (s *Server) handleAgentStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, ok := s.agentStats.Get(poller.CacheKeyAgentStats)
	if !ok {
		var err error
		stats, err = s.lucia.GetAgentStats(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		s.agentStats.Set(poller.CacheKeyAgentStats, stats)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"agents":  stats,
	})
}

// handleActivityMesh handles GET /api/activity/mesh: the reduced live
// view, static mesh plus the ephemeral tool overlay and node states.
// ?refresh=true re-fetches the static layer from the backend first.
func (s *Server) handleActivityMesh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Query().Get("refresh") == "true" {
		topo, err := s.lucia.GetMesh(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		s.hub.SetBaseTopology(topo)
	}

	snap := s.hub.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"nodeStates": snap.NodeStates,
		"topology":   snap.Topology,
		"connection": s.hub.ConnState(),
	})
}

// handleActivityConnection handles GET /api/activity/connection.
func (s *Server) handleActivityConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   s.hub.ConnState(),
	})
}

// handleActivityReconnect handles POST /api/activity/reconnect: the
// manual retry behind the disconnected indicator. A no-op unless the
// feed has actually given up.
func (s *Server) handleActivityReconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.stream == nil {
		writeError(w, http.StatusServiceUnavailable, "Event stream not running")
		return
	}

	if !s.stream.Reconnect() {
		writeError(w, http.StatusConflict, "Reconnect only applies when the feed is disconnected")
		return
	}

	if s.notifier != nil {
		s.notifier.Notify(LevelInfo, "Reconnecting to the event feed")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handleActivityEvents handles GET /api/activity/events: the SSE feed
// browsers subscribe to. Pushes activity, connection, summary and
// notification frames; heartbeats keep proxies from closing the
// connection.
func (s *Server) handleActivityEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := NewSSEClient()
	s.sse.Register(client)
	defer s.sse.Unregister(client)
	logging.Debug("SSE client connected from %s", r.RemoteAddr)

	// New clients get the current state up front so the page renders
	// without waiting for the next change.
	s.writeInitialFrames(w, flusher)

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	notify := r.Context().Done()
	for {
		select {
		case message := <-client.Messages:
			fmt.Fprint(w, message)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprintf(w, "event: heartbeat\ndata: ping\n\n")
			flusher.Flush()

		case <-notify:
			logging.Debug("SSE client disconnected")
			return

		case <-client.Close:
			return
		}
	}
}

func (s *Server) writeInitialFrames(w http.ResponseWriter, flusher http.Flusher) {
	frames := []struct {
		event   string
		payload interface{}
	}{
		{"connection", activity.ConnectionUpdate{State: s.hub.ConnState()}},
		{"activity", activity.ActivityUpdate{Snapshot: s.hub.Snapshot()}},
		{"history", s.hub.History()},
	}

	for _, f := range frames {
		frame, err := FormatSSE(f.event, f.payload)
		if err != nil {
			logging.Errorf("Failed to marshal initial SSE frame: %v", err)
			continue
		}
		fmt.Fprint(w, frame)
	}
	flusher.Flush()
}
