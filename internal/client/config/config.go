// Package config handles configuration for the healthmon client,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the healthmon client.
//
// Fields:
//   - ServerURL: base URL of the sync endpoint.
//   - DatabasePath: path of the local SQLite database.
//   - BatchSize: upper bound on vectors submitted per sync pass.
//   - SyncTimeout: cancellation bound on one network submission.
//   - SampleInterval: period of the sensor acquisition loop.
//   - MaxSyncAttempts: server rejections before a vector is flagged failed.
//   - Retention: how long synced vectors are kept before purge removes them.
type Config struct {
	ServerURL       string
	DatabasePath    string
	BatchSize       int
	SyncTimeout     time.Duration
	SampleInterval  time.Duration
	MaxSyncAttempts int
	Retention       time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.DatabasePath = "health.db"
	c.BatchSize = 100
	c.SyncTimeout = 10 * time.Second
	c.SampleInterval = 2 * time.Second
	c.MaxSyncAttempts = 5
	c.Retention = 30 * 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from a JSON file when one is named with -c/-config. Command-line
// overrides are registered by the CLI as cobra flags bound to the fields,
// so they take precedence over both.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	return cfg
}
