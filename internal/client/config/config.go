package config

import "time"

// Config holds runtime settings for the tripcat CLI.
//
// Fields:
//   - ServerEndpointURL: base URL of the Vacation Service HTTP API.
//   - RequestTimeout: per-request timeout for service calls.
//   - DatabasePath: path of the local SQLite file holding session metadata.
type Config struct {
	ServerEndpointURL string
	RequestTimeout    time.Duration
	DatabasePath      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointURL = "http://localhost:5000"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "tripcat.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
