package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Upstream MUpstreamConfig `yaml:"upstream"`
	Network  MNetworkConfig  `yaml:"network"`
	Storage  MStorageConfig  `yaml:"storage"`
	Refresh  MRefreshConfig  `yaml:"refresh"`
	Chart    MChartSettings  `yaml:"chart"`
}

// MUpstreamConfig holds the market data provider endpoints and credential.
type MUpstreamConfig struct {
	BaseURL string `yaml:"base_url"`
	WSURL   string `yaml:"ws_url"`
	APIKey  string `yaml:"api_key"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	UserAgent      string `yaml:"user_agent"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // "file", "sqlite" or "postgres"
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

// MRefreshConfig controls the periodic watchlist quote broadcast.
type MRefreshConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// MChartSettings defines the fixed session window and axis cadence.
type MChartSettings struct {
	StepMinutes  int    `yaml:"step_minutes"`
	SessionOpen  string `yaml:"session_open"`  // "09:30"
	SessionClose string `yaml:"session_close"` // "16:00"
	Timezone     string `yaml:"timezone"`      // venue calendar zone
}
