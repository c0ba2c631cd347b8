package lucia

import (
	"context"
	"time"
)

// ModelProvider is a backend LLM provider configuration. The apiKey
// field is write-only: the backend masks it on reads.
type ModelProvider struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	BaseURL   string    `json:"baseUrl,omitempty"`
	APIKey    string    `json:"apiKey,omitempty"`
	Model     string    `json:"model,omitempty"`
	IsDefault bool      `json:"isDefault,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Provider types understood by the backend.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderClaudeCLI = "claude-cli"
)

// ProviderTestResult is the outcome of a connectivity test.
type ProviderTestResult struct {
	OK        bool    `json:"ok"`
	LatencyMs float64 `json:"latencyMs"`
	Message   string  `json:"message,omitempty"`
}

// ConnectSession is the backend's device-authorization handle for
// CLI-session providers. The operator opens the verification URI and
// enters the user code; the dashboard polls the status until the
// backend reports authorized.
type ConnectSession struct {
	SessionID       string `json:"sessionId"`
	UserCode        string `json:"userCode"`
	VerificationURI string `json:"verificationUri"`
}

// Connect flow states.
const (
	ConnectPending    = "pending"
	ConnectAuthorized = "authorized"
	ConnectFailed     = "failed"
)

// ConnectStatus is the current state of a connect flow.
type ConnectStatus struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// ListModelProviders fetches all provider configurations.
func (c *Client) ListModelProviders(ctx context.Context) ([]ModelProvider, error) {
	var out []ModelProvider
	if err := c.get(ctx, "/model-providers", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []ModelProvider{}
	}
	return out, nil
}

// GetModelProvider fetches a single provider configuration.
func (c *Client) GetModelProvider(ctx context.Context, id string) (*ModelProvider, error) {
	var out ModelProvider
	if err := c.get(ctx, "/model-providers/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateModelProvider creates a provider configuration.
func (c *Client) CreateModelProvider(ctx context.Context, provider *ModelProvider) (*ModelProvider, error) {
	var out ModelProvider
	if err := c.post(ctx, "/model-providers", provider, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateModelProvider replaces a provider configuration.
func (c *Client) UpdateModelProvider(ctx context.Context, id string, provider *ModelProvider) (*ModelProvider, error) {
	var out ModelProvider
	if err := c.put(ctx, "/model-providers/"+id, provider, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteModelProvider removes a provider configuration.
func (c *Client) DeleteModelProvider(ctx context.Context, id string) error {
	return c.delete(ctx, "/model-providers/"+id)
}

// TestModelProvider runs a connectivity test against the provider.
func (c *Client) TestModelProvider(ctx context.Context, id string) (*ProviderTestResult, error) {
	var out ProviderTestResult
	if err := c.post(ctx, "/model-providers/"+id+"/test", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartProviderConnect begins the device-authorization flow for a
// CLI-session provider.
func (c *Client) StartProviderConnect(ctx context.Context, id string) (*ConnectSession, error) {
	var out ConnectSession
	if err := c.post(ctx, "/model-providers/"+id+"/connect/start", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProviderConnectStatus polls the device-authorization flow.
func (c *Client) GetProviderConnectStatus(ctx context.Context, id, sessionID string) (*ConnectStatus, error) {
	q := pageQuery(0, 0)
	q.Set("sessionId", sessionID)
	var out ConnectStatus
	if err := c.get(ctx, "/model-providers/"+id+"/connect/status", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
