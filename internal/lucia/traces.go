package lucia

import (
	"context"
	"net/http"
	"time"
)

// TraceSummary is one row of the trace list.
type TraceSummary struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"requestId,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
	DurationMs   int64     `json:"durationMs"`
	Status       string    `json:"status"`
	AgentName    string    `json:"agentName,omitempty"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"inputTokens,omitempty"`
	OutputTokens int       `json:"outputTokens,omitempty"`
	Label        string    `json:"label,omitempty"`
}

// Trace is the full request trace with its steps.
type Trace struct {
	TraceSummary
	Notes string      `json:"notes,omitempty"`
	Steps []TraceStep `json:"steps,omitempty"`
}

// TraceStep is one span within a trace.
type TraceStep struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
	Status     string    `json:"status,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// ListTraces fetches one page of traces, optionally filtered by status
// ("ok" or "error").
func (c *Client) ListTraces(ctx context.Context, status string, page, pageSize int) (*Paged[TraceSummary], error) {
	q := pageQuery(page, pageSize)
	if status != "" {
		q.Set("status", status)
	}
	return getPaged[TraceSummary](ctx, c, "/traces", q)
}

// GetTrace fetches a full trace.
func (c *Client) GetTrace(ctx context.Context, id string) (*Trace, error) {
	var out Trace
	if err := c.get(ctx, "/traces/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTrace removes a trace.
func (c *Client) DeleteTrace(ctx context.Context, id string) error {
	return c.delete(ctx, "/traces/"+id)
}

type labelRequest struct {
	Label string `json:"label"`
	Notes string `json:"notes,omitempty"`
}

// LabelTrace attaches an evaluation label and optional notes to a
// trace. An empty label clears it.
func (c *Client) LabelTrace(ctx context.Context, id, label, notes string) error {
	return c.put(ctx, "/traces/"+id+"/label", labelRequest{Label: label, Notes: notes}, nil)
}

// ExportFilter narrows which traces an export contains.
type ExportFilter struct {
	Status string     `json:"status,omitempty"`
	Label  string     `json:"label,omitempty"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
}

// ExportJob is a server-side trace export.
type ExportJob struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	TraceCount int       `json:"traceCount,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// CreateExport starts a trace export job.
func (c *Client) CreateExport(ctx context.Context, filter ExportFilter) (*ExportJob, error) {
	var out ExportJob
	if err := c.post(ctx, "/exports", filter, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListExports fetches all export jobs, newest first.
func (c *Client) ListExports(ctx context.Context) ([]ExportJob, error) {
	var out []ExportJob
	if err := c.get(ctx, "/exports", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []ExportJob{}
	}
	return out, nil
}

// DownloadExport streams a finished export. The caller owns the
// response body.
func (c *Client) DownloadExport(ctx context.Context, id string) (*http.Response, error) {
	return c.doRaw(ctx, http.MethodGet, "/exports/"+id+"/download", nil)
}
