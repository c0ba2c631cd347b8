package lucia

import (
	"context"
	"time"
)

// PresenceState is who is currently home according to which sensor.
type PresenceState struct {
	Person string    `json:"person"`
	State  string    `json:"state"`
	Since  time.Time `json:"since"`
	Sensor string    `json:"sensor,omitempty"`
}

// PresenceSensor is a configured presence source.
type PresenceSensor struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	DeviceID   string    `json:"deviceId,omitempty"`
	PersonName string    `json:"personName"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// GetPresence fetches the current presence of every known person.
func (c *Client) GetPresence(ctx context.Context) ([]PresenceState, error) {
	var out []PresenceState
	if err := c.get(ctx, "/presence", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []PresenceState{}
	}
	return out, nil
}

// ListPresenceSensors fetches all presence sensor definitions.
func (c *Client) ListPresenceSensors(ctx context.Context) ([]PresenceSensor, error) {
	var out []PresenceSensor
	if err := c.get(ctx, "/presence/sensors", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []PresenceSensor{}
	}
	return out, nil
}

// CreatePresenceSensor adds a presence sensor.
func (c *Client) CreatePresenceSensor(ctx context.Context, sensor *PresenceSensor) (*PresenceSensor, error) {
	var out PresenceSensor
	if err := c.post(ctx, "/presence/sensors", sensor, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePresenceSensor replaces a presence sensor definition.
func (c *Client) UpdatePresenceSensor(ctx context.Context, id string, sensor *PresenceSensor) (*PresenceSensor, error) {
	var out PresenceSensor
	if err := c.put(ctx, "/presence/sensors/"+id, sensor, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePresenceSensor removes a presence sensor.
func (c *Client) DeletePresenceSensor(ctx context.Context, id string) error {
	return c.delete(ctx, "/presence/sensors/"+id)
}
