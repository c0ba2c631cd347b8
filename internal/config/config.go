package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration settings for the dashboard server
type Config struct {
	// BackendURL is the base URL of the Lucia backend API
	BackendURL string `toml:"backend_url"`

	// APIKey authenticates the dashboard against the backend
	APIKey string `toml:"api_key"`

	// DatabasePath is the path to the local SQLite database file
	DatabasePath string `toml:"database_path"`

	// ListenAddr is the address and port for the web server
	ListenAddr string `toml:"listen_addr"`

	// LogDir is where file logs are written in dev mode
	LogDir string `toml:"log_dir"`

	// DevMode enables file logging and verbose output
	DevMode bool `toml:"dev_mode"`

	// SessionSecret signs the operator session cookies. Generated at
	// startup when empty, which invalidates sessions across restarts.
	SessionSecret string `toml:"session_secret"`

	// SummaryPollSeconds is how often the background poller refreshes
	// activity summary data from the backend
	SummaryPollSeconds int `toml:"summary_poll_seconds"`

	// VitalsPollSeconds is how often host vitals are sampled
	VitalsPollSeconds int `toml:"vitals_poll_seconds"`
}

// defaultConfig returns the default configuration
func defaultConfig() *Config {
	return &Config{
		BackendURL:         "http://localhost:8099",
		DatabasePath:       "luciadash.db",
		ListenAddr:         DefaultPort,
		LogDir:             "logs",
		SummaryPollSeconds: DefaultSummaryPollSeconds,
		VitalsPollSeconds:  DefaultVitalsPollSeconds,
	}
}

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	// Start with default configuration
	config := defaultConfig()

	// Try to load from the config file if it exists
	configPath := os.Getenv("LUCIADASH_CONFIG_PATH")
	if configPath == "" {
		configPath = "luciadash.toml"
	}
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	// Override with environment variables if set
	if backendURL := os.Getenv("LUCIA_BACKEND_URL"); backendURL != "" {
		config.BackendURL = backendURL
	}

	if apiKey := os.Getenv("LUCIA_API_KEY"); apiKey != "" {
		config.APIKey = apiKey
	}

	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		config.DatabasePath = dbPath
	}

	if listenAddr := os.Getenv("LISTEN_ADDR"); listenAddr != "" {
		config.ListenAddr = listenAddr
	}

	if logDir := os.Getenv("LUCIADASH_LOG_DIR"); logDir != "" {
		config.LogDir = logDir
	}

	if dev := os.Getenv("LUCIADASH_DEV"); dev != "" {
		config.DevMode = dev == "1" || strings.EqualFold(dev, "true")
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		config.SessionSecret = secret
	}

	if poll := os.Getenv("SUMMARY_POLL_SECONDS"); poll != "" {
		n, err := strconv.Atoi(poll)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid SUMMARY_POLL_SECONDS: %q", poll)
		}
		config.SummaryPollSeconds = n
	}

	// The backend URL must be a valid absolute URL; everything else
	// derives from it (REST requests, the websocket event feed).
	parsed, err := url.Parse(config.BackendURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend_url: %q", config.BackendURL)
	}
	config.BackendURL = strings.TrimRight(config.BackendURL, "/")

	return config, nil
}

// String returns a string representation of the configuration.
// The API key and session secret are never printed.
func (c *Config) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("BackendURL: %s", c.BackendURL))
	parts = append(parts, fmt.Sprintf("APIKey: %s", presence(c.APIKey)))
	parts = append(parts, fmt.Sprintf("DatabasePath: %s", c.DatabasePath))
	parts = append(parts, fmt.Sprintf("ListenAddr: %s", c.ListenAddr))
	parts = append(parts, fmt.Sprintf("DevMode: %t", c.DevMode))
	return strings.Join(parts, ", ")
}

func presence(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	return "(set)"
}
