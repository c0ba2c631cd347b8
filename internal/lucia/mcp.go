package lucia

import (
	"context"
	"encoding/json"
	"time"
)

// MCPServer is a tool server definition managed by the backend. Stdio
// servers are spawned as subprocesses; sse and http servers are reached
// over the network.
type MCPServer struct {
	ID        string            `json:"id,omitempty"`
	Name      string            `json:"name"`
	Transport string            `json:"transport"`
	Command   string            `json:"command,omitempty"`
	Args      []string          `json:"args,omitempty"`
	URL       string            `json:"url,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	Enabled   bool              `json:"enabled"`
	CreatedAt time.Time         `json:"createdAt,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt,omitempty"`
}

// MCP server connection states as reported by the backend.
const (
	MCPStatusConnected    = "connected"
	MCPStatusConnecting   = "connecting"
	MCPStatusDisconnected = "disconnected"
	MCPStatusError        = "error"
)

// MCPStatus is the live connection state of one tool server.
type MCPStatus struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	ToolCount int    `json:"toolCount"`
}

// Tool describes one tool exposed by an MCP server.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ListMCPServers fetches all tool server definitions.
func (c *Client) ListMCPServers(ctx context.Context) ([]MCPServer, error) {
	var out []MCPServer
	if err := c.get(ctx, "/mcp/servers", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []MCPServer{}
	}
	return out, nil
}

// GetMCPServer fetches a single tool server definition.
func (c *Client) GetMCPServer(ctx context.Context, id string) (*MCPServer, error) {
	var out MCPServer
	if err := c.get(ctx, "/mcp/servers/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMCPServer creates a tool server definition.
func (c *Client) CreateMCPServer(ctx context.Context, server *MCPServer) (*MCPServer, error) {
	var out MCPServer
	if err := c.post(ctx, "/mcp/servers", server, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMCPServer replaces a tool server definition.
func (c *Client) UpdateMCPServer(ctx context.Context, id string, server *MCPServer) (*MCPServer, error) {
	var out MCPServer
	if err := c.put(ctx, "/mcp/servers/"+id, server, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMCPServer removes a tool server definition.
func (c *Client) DeleteMCPServer(ctx context.Context, id string) error {
	return c.delete(ctx, "/mcp/servers/"+id)
}

// ConnectMCPServer asks the backend to establish the server connection.
func (c *Client) ConnectMCPServer(ctx context.Context, id string) error {
	return c.post(ctx, "/mcp/servers/"+id+"/connect", nil, nil)
}

// DisconnectMCPServer asks the backend to tear the connection down.
func (c *Client) DisconnectMCPServer(ctx context.Context, id string) error {
	return c.post(ctx, "/mcp/servers/"+id+"/disconnect", nil, nil)
}

// DiscoverTools lists the tools a connected server exposes.
func (c *Client) DiscoverTools(ctx context.Context, id string) ([]Tool, error) {
	var out []Tool
	if err := c.post(ctx, "/mcp/servers/"+id+"/discoverTools", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Tool{}
	}
	return out, nil
}

// GetMCPStatuses fetches the live connection state of every server in
// one round trip, keyed by server id.
func (c *Client) GetMCPStatuses(ctx context.Context) (map[string]MCPStatus, error) {
	out := make(map[string]MCPStatus)
	if err := c.get(ctx, "/mcp/servers/statuses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
