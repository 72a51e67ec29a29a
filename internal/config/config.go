package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	State  StateConfig  `yaml:"state"`
	Export ExportConfig `yaml:"export"`
	Sync   SyncConfig   `yaml:"sync"`
}

type ServerConfig struct {
	URL string `yaml:"url"`
}

type StateConfig struct {
	// Dir holds the session database.
	Dir string `yaml:"dir"`
}

type ExportConfig struct {
	// Dir is the device export directory with per-day reading files.
	Dir string `yaml:"dir"`
}

type SyncConfig struct {
	BackfillDays  int     `yaml:"backfill_days"`
	PacingMS      int     `yaml:"pacing_ms"`
	GraceSeconds  int     `yaml:"grace_seconds"`
	MinSteps      int     `yaml:"min_steps"`
	MinSleepHours float64 `yaml:"min_sleep_hours"`
}

// Pacing returns the inter-day delay as a duration.
func (s SyncConfig) Pacing() time.Duration {
	return time.Duration(s.PacingMS) * time.Millisecond
}

// Grace returns the post-backfill ingestion grace period as a duration.
func (s SyncConfig) Grace() time.Duration {
	return time.Duration(s.GraceSeconds) * time.Second
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix HEALTHSYNC_ and underscore-separated
// paths:
//
//	HEALTHSYNC_SERVER_URL, HEALTHSYNC_STATE_DIR, HEALTHSYNC_EXPORT_DIR,
//	HEALTHSYNC_BACKFILL_DAYS, HEALTHSYNC_PACING_MS,
//	HEALTHSYNC_GRACE_SECONDS
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// ApplyEnvOverrides replaces fields set in the environment.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEALTHSYNC_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("HEALTHSYNC_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
	if v := os.Getenv("HEALTHSYNC_EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("HEALTHSYNC_BACKFILL_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Sync.BackfillDays = days
		}
	}
	if v := os.Getenv("HEALTHSYNC_PACING_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Sync.PacingMS = ms
		}
	}
	if v := os.Getenv("HEALTHSYNC_GRACE_SECONDS"); v != "" {
		if s, err := strconv.Atoi(v); err == nil {
			cfg.Sync.GraceSeconds = s
		}
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.Export.Dir == "" {
		return fmt.Errorf("export.dir is required")
	}
	if c.Sync.BackfillDays < 0 {
		return fmt.Errorf("sync.backfill_days must not be negative")
	}
	if c.Sync.PacingMS < 0 {
		return fmt.Errorf("sync.pacing_ms must not be negative")
	}
	if c.Sync.GraceSeconds < 0 {
		return fmt.Errorf("sync.grace_seconds must not be negative")
	}
	return nil
}
