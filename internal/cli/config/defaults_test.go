package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchemaForType(t *testing.T) {
	tests := []struct {
		dbType   string
		expected string
	}{
		{"duckdb", "main"},
		{"postgres", "public"},
		{"sqlite", "main"},
		{"", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultSchemaForType(tt.dbType))
		})
	}
}

func TestApplyTargetDefaults(t *testing.T) {
	tests := []struct {
		name   string
		target TargetConfig
		want   TargetConfig
	}{
		{
			name:   "duckdb",
			target: TargetConfig{Type: "duckdb"},
			want:   TargetConfig{Type: "duckdb", Database: DefaultDatabase, Schema: "main"},
		},
		{
			name:   "sqlite",
			target: TargetConfig{Type: "sqlite"},
			want:   TargetConfig{Type: "sqlite", Database: DefaultSQLiteDatabase, Schema: "main"},
		},
		{
			name:   "postgres",
			target: TargetConfig{Type: "postgres", Database: "analytics"},
			want:   TargetConfig{Type: "postgres", Database: "analytics", Schema: "public", Host: "localhost", Port: 5432},
		},
		{
			name:   "preserves explicit values",
			target: TargetConfig{Type: "duckdb", Database: "x.duckdb", Schema: "custom"},
			want:   TargetConfig{Type: "duckdb", Database: "x.duckdb", Schema: "custom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.target
			ApplyTargetDefaults(&target)
			assert.Equal(t, tt.want, target)
		})
	}

	ApplyTargetDefaults(nil)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CROWDSTAT_TEST_ONE", "value_one")
	t.Setenv("CROWDSTAT_TEST_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${CROWDSTAT_TEST_ONE}", "value_one"},
		{"multiple variables", "${CROWDSTAT_TEST_ONE}/${CROWDSTAT_TEST_TWO}", "value_one/value_two"},
		{"unset variable stays as-is", "${CROWDSTAT_UNSET}", "${CROWDSTAT_UNSET}"},
		{"no variables", "plain string", "plain string"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestValidateTarget(t *testing.T) {
	require.Error(t, ValidateTarget(nil))
	require.NoError(t, ValidateTarget(&TargetConfig{Type: "sqlite"}))

	err := ValidateTarget(&TargetConfig{Type: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duckdb postgres sqlite")
}
