package core

// TargetConfig holds warehouse connection settings as read from configuration.
type TargetConfig struct {
	Type string `koanf:"type" validate:"required,oneof=duckdb postgres sqlite"`

	// File-based databases (DuckDB, SQLite)
	Database string `koanf:"database"` // file path or database name

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"gte=0,lte=65535"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Adapter specific parameters, decoded by each adapter
	Params map[string]any `koanf:"params"`
}

// AdapterConfig converts the target into connection settings.
func (t *TargetConfig) AdapterConfig() AdapterConfig {
	return AdapterConfig{
		Type:     t.Type,
		Path:     t.Database,
		Database: t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// Thresholds are the fixed cut-offs used by derived objects.
type Thresholds struct {
	AnomalyGoal      float64 `koanf:"anomaly_goal" validate:"gt=0"`
	AnomalyPledged   float64 `koanf:"anomaly_pledged" validate:"gt=0"`
	HighValuePledged float64 `koanf:"high_value_pledged" validate:"gt=0"`
	LowSuccessRate   float64 `koanf:"low_success_rate" validate:"gt=0,lte=100"`
}

// DefaultThresholds returns the canonical cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AnomalyGoal:      1_000_000,
		AnomalyPledged:   2_000_000,
		HighValuePledged: 50_000,
		LowSuccessRate:   50,
	}
}
