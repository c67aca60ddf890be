// Package config provides configuration management for the crowdstat CLI.
//
// Configuration is layered with koanf: built-in defaults, then
// crowdstat.yaml, then CROWDSTAT_* environment variables, then flags.
// The shared TargetConfig and Thresholds types live in pkg/core and are
// re-exported here via type aliases.
package config

import "github.com/leapstack-labs/crowdstat/pkg/core"

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// Thresholds is an alias for the shared derived-object cut-offs.
type Thresholds = core.Thresholds

// Config holds all CLI configuration options.
type Config struct {
	Target       *TargetConfig        `koanf:"target" validate:"required"`
	Table        string               `koanf:"table" validate:"required,sqlident"`
	StatePath    string               `koanf:"state_path" validate:"required"`
	Environment  string               `koanf:"environment" validate:"required"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output" validate:"oneof=auto text markdown json csv yaml"`
	TopLimit     int                  `koanf:"top_limit" validate:"gte=1"`
	Thresholds   Thresholds           `koanf:"thresholds"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific overrides.
type EnvConfig struct {
	Table  string        `koanf:"table"`
	Target *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	ConfigFileName        = "crowdstat.yaml"
	ConfigFileNameAlt     = "crowdstat.yml"
	DefaultDatabase       = "crowdstat.duckdb"
	DefaultSQLiteDatabase = "crowdstat.sqlite"
	DefaultStateFile      = ".crowdstat/state.db"
	DefaultEnv            = "dev"
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultTopLimit       = 10
)
