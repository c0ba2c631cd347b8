package lucia

import (
	"context"
	"time"

	"luciadash/internal/activity"
)

// Summary is the backend's aggregate activity view for the dashboard
// overview cards.
type Summary struct {
	TotalRequests     int     `json:"totalRequests"`
	ActiveAgents      int     `json:"activeAgents"`
	AvgResponseMs     float64 `json:"avgResponseMs"`
	CacheHitRate      float64 `json:"cacheHitRate"`
	RequestsPerMinute []Point `json:"requestsPerMinute"`
}

// Point is one sample of a per-minute series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

// AgentStat is the backend's per-agent usage rollup.
type AgentStat struct {
	AgentName       string    `json:"agentName"`
	RequestsHandled int       `json:"requestsHandled"`
	AvgLatencyMs    float64   `json:"avgLatencyMs"`
	ErrorCount      int       `json:"errorCount"`
	LastActive      time.Time `json:"lastActive"`
}

// GetActivitySummary fetches the aggregate activity counters.
func (c *Client) GetActivitySummary(ctx context.Context) (*Summary, error) {
	var out Summary
	if err := c.get(ctx, "/activity/summary", nil, &out); err != nil {
		return nil, err
	}
	if out.RequestsPerMinute == nil {
		out.RequestsPerMinute = []Point{}
	}
	return &out, nil
}

// GetMesh fetches the static agent topology: the orchestrator, the
// registered agents and their wiring. Tool nodes are not part of it;
// they are derived client-side from the event feed.
func (c *Client) GetMesh(ctx context.Context) (activity.Topology, error) {
	var out activity.Topology
	if err := c.get(ctx, "/activity/mesh", nil, &out); err != nil {
		return activity.Topology{}, err
	}
	return out, nil
}

// GetAgentStats fetches per-agent usage rollups.
func (c *Client) GetAgentStats(ctx context.Context) ([]AgentStat, error) {
	var out []AgentStat
	if err := c.get(ctx, "/activity/agent-stats", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []AgentStat{}
	}
	return out, nil
}
