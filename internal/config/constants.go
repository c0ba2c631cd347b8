package config

// Port configuration constants
const (
	// DefaultPort is the default port for the dashboard server
	DefaultPort = ":8090"

	// TestPort is the port used for E2E tests to avoid conflicts
	TestPort = ":8091"
)

// Background polling defaults, in seconds
const (
	DefaultSummaryPollSeconds = 30
	DefaultVitalsPollSeconds  = 30
)
