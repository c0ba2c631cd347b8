// Package activity maintains the live view of what the assistant mesh
// is doing right now: a bounded event history, per-node status labels
// and an ephemeral tool topology, all derived from the backend's event
// feed.
package activity

import "time"

// EventType identifies a live activity event. Unknown values are kept
// as-is so newer backends can add types without breaking the dashboard.
type EventType string

const (
	EventRequestStart    EventType = "requestStart"
	EventRouting         EventType = "routing"
	EventAgentStart      EventType = "agentStart"
	EventToolCall        EventType = "toolCall"
	EventToolResult      EventType = "toolResult"
	EventAgentComplete   EventType = "agentComplete"
	EventRequestComplete EventType = "requestComplete"
	EventError           EventType = "error"
)

// LiveEvent is one entry of the backend's activity feed. Only Type and
// Timestamp are always present; the rest depends on the event type.
type LiveEvent struct {
	Type         EventType `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	AgentName    string    `json:"agentName,omitempty"`
	ToolName     string    `json:"toolName,omitempty"`
	State        string    `json:"state,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// Node status labels shown in the mesh view.
const (
	StateIdle       = "Idle"
	StateProcessing = "Processing Prompt..."
	StateRouting    = "Calling Tools..."
	StateWorking    = "Processing..."
	StateGenerating = "Generating Response..."
	StateError      = "Error"
)

// NodeState is the displayed status of a single mesh node.
type NodeState struct {
	State  string `json:"state"`
	Active bool   `json:"active"`
}

// ConnState describes the health of the upstream event feed.
type ConnState string

const (
	ConnConnected    ConnState = "connected"
	ConnReconnecting ConnState = "reconnecting"
	ConnDisconnected ConnState = "disconnected"
)
