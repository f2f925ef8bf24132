package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mkuznecovs/healthmon/internal/flagx"
	"github.com/mkuznecovs/healthmon/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify intervals either as strings like
// "3s" or as integer nanoseconds. After parsing, values are copied into
// the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerURL       string         `json:"server_url"`
	DatabasePath    string         `json:"database_path"`
	BatchSize       int            `json:"batch_size"`
	SyncTimeout     timex.Duration `json:"sync_timeout"`
	SampleInterval  timex.Duration `json:"sample_interval"`
	MaxSyncAttempts int            `json:"max_sync_attempts"`
	Retention       timex.Duration `json:"retention"`
}

// parseJson overlays cfg with values loaded from the JSON file named by
// the -c/-config flags; absent fields keep their current values. It
// panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.BatchSize > 0 {
		cfg.BatchSize = jc.BatchSize
	}
	if jc.SyncTimeout.Duration > 0 {
		cfg.SyncTimeout = time.Duration(jc.SyncTimeout.Duration)
	}
	if jc.SampleInterval.Duration > 0 {
		cfg.SampleInterval = time.Duration(jc.SampleInterval.Duration)
	}
	if jc.MaxSyncAttempts > 0 {
		cfg.MaxSyncAttempts = jc.MaxSyncAttempts
	}
	if jc.Retention.Duration > 0 {
		cfg.Retention = time.Duration(jc.Retention.Duration)
	}
}
