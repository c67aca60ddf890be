package config

import "github.com/leapstack-labs/crowdstat/pkg/core"

// defaults returns the lowest configuration layer as flat koanf keys.
func defaults() map[string]any {
	th := core.DefaultThresholds()
	return map[string]any{
		"target.type":                   "duckdb",
		"table":                         core.DefaultTable,
		"state_path":                    DefaultStateFile,
		"environment":                   DefaultEnv,
		"verbose":                       false,
		"output":                        DefaultOutput,
		"top_limit":                     DefaultTopLimit,
		"thresholds.anomaly_goal":       th.AnomalyGoal,
		"thresholds.anomaly_pledged":    th.AnomalyPledged,
		"thresholds.high_value_pledged": th.HighValuePledged,
		"thresholds.low_success_rate":   th.LowSuccessRate,
	}
}

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	switch dbType {
	case "postgres":
		return core.PostgresDialect.DefaultSchema
	case "sqlite":
		return core.SQLiteDialect.DefaultSchema
	default:
		return core.DuckDBDialect.DefaultSchema
	}
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}

	if t.Database == "" {
		switch t.Type {
		case "duckdb":
			t.Database = DefaultDatabase
		case "sqlite":
			t.Database = DefaultSQLiteDatabase
		}
	}

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	if t.Type == "postgres" {
		if t.Port == 0 {
			t.Port = 5432
		}
		if t.Host == "" {
			t.Host = "localhost"
		}
	}
}
