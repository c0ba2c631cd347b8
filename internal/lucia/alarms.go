package lucia

import (
	"context"
	"time"
)

// Alarm is a scheduled wake-up or reminder handled by the assistant.
// Time is a local "HH:MM"; Days lists lowercase weekday names, empty
// meaning every day.
type Alarm struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Time        string     `json:"time"`
	Days        []string   `json:"days,omitempty"`
	Sound       string     `json:"sound,omitempty"`
	AgentPrompt string     `json:"agentPrompt,omitempty"`
	Enabled     bool       `json:"enabled"`
	NextRing    *time.Time `json:"nextRing,omitempty"`
}

// ListAlarms fetches all alarms.
func (c *Client) ListAlarms(ctx context.Context) ([]Alarm, error) {
	var out []Alarm
	if err := c.get(ctx, "/alarms", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Alarm{}
	}
	return out, nil
}

// CreateAlarm adds an alarm.
func (c *Client) CreateAlarm(ctx context.Context, alarm *Alarm) (*Alarm, error) {
	var out Alarm
	if err := c.post(ctx, "/alarms", alarm, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAlarm replaces an alarm definition.
func (c *Client) UpdateAlarm(ctx context.Context, id string, alarm *Alarm) (*Alarm, error) {
	var out Alarm
	if err := c.put(ctx, "/alarms/"+id, alarm, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAlarm removes an alarm.
func (c *Client) DeleteAlarm(ctx context.Context, id string) error {
	return c.delete(ctx, "/alarms/"+id)
}

// EnableAlarm turns an alarm on.
func (c *Client) EnableAlarm(ctx context.Context, id string) error {
	return c.post(ctx, "/alarms/"+id+"/enable", nil, nil)
}

// DisableAlarm turns an alarm off without deleting it.
func (c *Client) DisableAlarm(ctx context.Context, id string) error {
	return c.post(ctx, "/alarms/"+id+"/disable", nil, nil)
}
