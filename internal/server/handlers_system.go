package server

import (
	"net/http"
	"time"

	"luciadash/internal/charts"
	"luciadash/internal/database"
	"luciadash/internal/system"
	"luciadash/internal/version"
)

const (
	defaultVitalsWindow = time.Hour
	defaultChartWindow  = 6 * time.Hour
	maxChartWindow      = 24 * time.Hour
)

var vitalMetricTitles = map[string]string{
	"cpu":    "CPU Usage",
	"memory": "Memory Usage",
	"disk":   "Disk Usage",
}

// parseWindow reads a ?window= duration with a default and a cap.
func parseWindow(r *http.Request, def, max time.Duration) time.Duration {
	v := r.URL.Query().Get("window")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	if d > max {
		return max
	}
	return d
}

func toTimePoints(points []system.Point) []charts.TimePoint {
	out := make([]charts.TimePoint, len(points))
	for i, p := range points {
		out[i] = charts.TimePoint{Time: p.Time, Value: p.Value}
	}
	return out
}

// handleSystemVitals handles GET /api/system/vitals: the latest sample
// plus the rolling in-memory series with ready-to-embed sparklines.
func (s *Server) handleSystemVitals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	window := parseWindow(r, defaultVitalsWindow, seriesWindow)
	snap := s.series.Snapshot(window)

	now := time.Now()
	start := now.Add(-window)
	opts := charts.VitalsSparklineOptions()

	resp := map[string]interface{}{
		"success": true,
		"series":  snap,
		"charts": map[string]string{
			"cpu":    charts.TimeAwareSparklineSVG(toTimePoints(snap.CPU), start, now, opts),
			"memory": charts.TimeAwareSparklineSVG(toTimePoints(snap.Memory), start, now, opts),
			"disk":   charts.TimeAwareSparklineSVG(toTimePoints(snap.Disk), start, now, opts),
		},
	}

	if current, sampledAt, ok := s.series.Latest(); ok {
		resp["current"] = current
		resp["sampledAt"] = sampledAt
	}
	if info, err := system.GetHostInfo(); err == nil {
		resp["host"] = info
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleVitalsChart handles GET /api/system/vitals/chart: a detailed
// axis-labelled chart of one metric rendered from the sqlite vitals
// log, which reaches further back than the in-memory series.
func (s *Server) handleVitalsChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "cpu"
	}
	title, ok := vitalMetricTitles[metric]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown metric: "+metric)
		return
	}

	window := parseWindow(r, defaultChartWindow, maxChartWindow)
	since := time.Now().Add(-window)

	vitals, err := database.GetVitalsSince(since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load vitals history")
		return
	}

	points := make([]charts.TimePoint, len(vitals))
	for i, v := range vitals {
		var value float64
		switch metric {
		case "cpu":
			value = v.CPUPercent
		case "memory":
			value = v.MemoryPercent
		case "disk":
			value = v.DiskUsagePercent
		}
		points[i] = charts.TimePoint{Time: v.Timestamp, Value: value}
	}

	svg := charts.DetailChartSVG(charts.DetailChartData{
		Points:    points,
		Title:     title,
		Unit:      "%",
		StartTime: since,
		EndTime:   time.Now(),
	}, 800, 300)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"metric":  metric,
		"samples": len(points),
		"svg":     svg,
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"version":  version.Get(),
		"buildAge": version.Age(),
	})
}

// handleHealthz is the unauthenticated liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
