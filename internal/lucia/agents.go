package lucia

import (
	"context"
	"time"
)

// Agent is a backend agent definition. Local agents run inside the
// backend against a model provider; remote agents are reached over A2A
// at their URL.
type Agent struct {
	ID           string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string    `json:"name" yaml:"name"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	URL          string    `json:"url,omitempty" yaml:"url,omitempty"`
	Model        string    `json:"model,omitempty" yaml:"model,omitempty"`
	ProviderID   string    `json:"providerId,omitempty" yaml:"provider,omitempty"`
	SystemPrompt string    `json:"systemPrompt,omitempty" yaml:"system_prompt,omitempty"`
	Tools        []string  `json:"tools,omitempty" yaml:"tools,omitempty"`
	IsRemote     bool      `json:"isRemote,omitempty" yaml:"remote,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty" yaml:"-"`
}

// ListAgents fetches all agent definitions.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var out []Agent
	if err := c.get(ctx, "/agents", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Agent{}
	}
	return out, nil
}

// GetAgent fetches a single agent definition.
func (c *Client) GetAgent(ctx context.Context, id string) (*Agent, error) {
	var out Agent
	if err := c.get(ctx, "/agents/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAgent creates a new agent and returns the stored definition.
func (c *Client) CreateAgent(ctx context.Context, agent *Agent) (*Agent, error) {
	var out Agent
	if err := c.post(ctx, "/agents", agent, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAgent replaces an agent definition.
func (c *Client) UpdateAgent(ctx context.Context, id string, agent *Agent) (*Agent, error) {
	var out Agent
	if err := c.put(ctx, "/agents/"+id, agent, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAgent removes an agent definition.
func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	return c.delete(ctx, "/agents/"+id)
}

type registerAgentRequest struct {
	URL string `json:"url"`
}

// RegisterAgent asks the backend to fetch a remote agent's card and add
// it to the mesh.
func (c *Client) RegisterAgent(ctx context.Context, url string) (*Agent, error) {
	var out Agent
	if err := c.post(ctx, "/agents/register", registerAgentRequest{URL: url}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
