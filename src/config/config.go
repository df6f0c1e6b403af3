package config

import (
	"fmt"
	"os"
	"strconv"

	"stocks-dashboard/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from a YAML file, then applies
// environment variable overrides and defaults.
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyEnvOverrides()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TWELVE_DATA_API_KEY"); v != "" {
		c.Upstream.APIKey = v
	}
	if v := os.Getenv("HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DB_TYPE"); v != "" {
		c.Storage.DBType = v
	}
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "https://api.twelvedata.com"
	}
	if c.Upstream.WSURL == "" {
		c.Upstream.WSURL = "wss://ws.twelvedata.com/v1/quotes/price"
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "file"
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = "data/watchlist.json"
	}
	if c.Refresh.Cron == "" {
		// Every minute, weekdays. The refresher itself checks session state.
		c.Refresh.Cron = "0 * * * * 1-5"
	}
	if c.Chart.StepMinutes == 0 {
		c.Chart.StepMinutes = 1
	}
	if c.Chart.SessionOpen == "" {
		c.Chart.SessionOpen = "09:30"
	}
	if c.Chart.SessionClose == "" {
		c.Chart.SessionClose = "16:00"
	}
	if c.Chart.Timezone == "" {
		c.Chart.Timezone = "America/New_York"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}

	switch c.Storage.DBType {
	case "file", "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage path cannot be empty for %s", c.Storage.DBType)
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.DBType)
	}

	if c.Chart.StepMinutes <= 0 {
		return fmt.Errorf("chart step must be greater than 0")
	}
	openMinutes, err := parseClock(c.Chart.SessionOpen)
	if err != nil {
		return fmt.Errorf("invalid session_open: %w", err)
	}
	closeMinutes, err := parseClock(c.Chart.SessionClose)
	if err != nil {
		return fmt.Errorf("invalid session_close: %w", err)
	}
	if closeMinutes <= openMinutes {
		// An inverted or empty window would produce a chart with no slots.
		return fmt.Errorf("session_close %q must be after session_open %q", c.Chart.SessionClose, c.Chart.SessionOpen)
	}

	// The API key is deliberately not validated here: endpoints that need it
	// surface a ConfigurationError instead, so the server can still start.
	return nil
}

// -----------------------------------------------------------------------------

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("out of range clock value %q", s)
	}
	return h*60 + m, nil
}

// SessionOpenMinutes returns the configured session open as minutes
// after midnight.
func (c *Config) SessionOpenMinutes() int {
	m, _ := parseClock(c.Chart.SessionOpen)
	return m
}

// SessionCloseMinutes returns the configured session close as minutes
// after midnight.
func (c *Config) SessionCloseMinutes() int {
	m, _ := parseClock(c.Chart.SessionClose)
	return m
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
