package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("database", "", "")
	fs.String("type", "", "")
	fs.String("state", "", "")
	fs.String("table", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.StringP("environment", "e", "", "")
	fs.Int("top-limit", 0, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.Equal(t, "main", cfg.Target.Schema)
	assert.Equal(t, DefaultDatabase, filepath.Base(cfg.Target.Database))
	assert.True(t, filepath.IsAbs(cfg.StatePath))
	assert.Equal(t, "projects", cfg.Table)
	assert.Equal(t, DefaultEnv, cfg.Environment)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultTopLimit, cfg.TopLimit)
	assert.InDelta(t, 1_000_000, cfg.Thresholds.AnomalyGoal, 0)
	assert.InDelta(t, 2_000_000, cfg.Thresholds.AnomalyPledged, 0)
	assert.InDelta(t, 50, cfg.Thresholds.LowSuccessRate, 0)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, `
table: kickstarter
top_limit: 5
output: json
thresholds:
  anomaly_goal: 500
target:
  type: sqlite
  database: data/ks.sqlite
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.Equal(t, "kickstarter", cfg.Table)
		assert.Equal(t, 5, cfg.TopLimit)
		assert.Equal(t, "json", cfg.OutputFormat)
		assert.InDelta(t, 500, cfg.Thresholds.AnomalyGoal, 0)
		assert.InDelta(t, 2_000_000, cfg.Thresholds.AnomalyPledged, 0, "unset keys keep defaults")
		assert.Equal(t, "sqlite", cfg.Target.Type)
		assert.Equal(t, filepath.Join(cfg.ProjectRoot, "data", "ks.sqlite"), cfg.Target.Database)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("CROWDSTAT_TOP_LIMIT", "7")
		t.Setenv("CROWDSTAT_TARGET__TYPE", "duckdb")

		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.TopLimit)
		assert.Equal(t, "duckdb", cfg.Target.Type)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("CROWDSTAT_TABLE", "from_env")

		flags := testFlags()
		require.NoError(t, flags.Parse([]string{"--table", "from_flag", "-o", "csv", "--database", ":memory:"}))

		cfg, err := LoadConfig("", flags)
		require.NoError(t, err)
		assert.Equal(t, "from_flag", cfg.Table)
		assert.Equal(t, "csv", cfg.OutputFormat)
		assert.Equal(t, ":memory:", cfg.Target.Database)
	})
}

func TestLoadConfig_UpwardSearch(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "table: upstairs\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	chdir(t, nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "upstairs", cfg.Table)
	assert.NotEmpty(t, GetConfigFileUsed())
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultStateFile), cfg.StatePath)
}

func TestLoadConfig_Environments(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, `
target:
  type: postgres
  database: crowd
  user: ${CROWDSTAT_TEST_USER}
  password: ${CROWDSTAT_TEST_PASSWORD}
environments:
  prod:
    table: projects_clean
    target:
      host: db.internal
      port: 6543
`)
	t.Setenv("CROWDSTAT_TEST_USER", "analyst")
	t.Setenv("CROWDSTAT_TEST_PASSWORD", "s3cret")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"-e", "prod"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "projects_clean", cfg.Table)
	assert.Equal(t, "postgres", cfg.Target.Type)
	assert.Equal(t, "crowd", cfg.Target.Database)
	assert.Equal(t, "db.internal", cfg.Target.Host)
	assert.Equal(t, 6543, cfg.Target.Port)
	assert.Equal(t, "public", cfg.Target.Schema)
	assert.Equal(t, "analyst", cfg.Target.User)
	assert.Equal(t, "s3cret", cfg.Target.Password)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{name: "unknown target type", content: "target:\n  type: oracle\n", errSubstr: "target.type must be one of"},
		{name: "bad table", content: "table: \"projects; DROP\"\n", errSubstr: "not a valid table name"},
		{name: "bad output", content: "output: html\n", errSubstr: "output must be one of"},
		{name: "zero top limit", content: "top_limit: 0\n", errSubstr: "top_limit must be greater than or equal to 1"},
		{name: "negative threshold", content: "thresholds:\n  anomaly_goal: -1\n", errSubstr: "thresholds.anomaly_goal must be greater than 0"},
		{name: "postgres without database", content: "target:\n  type: postgres\n", errSubstr: "target.database is required"},
		{name: "broken yaml", content: "target: [", errSubstr: "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			chdir(t, dir)
			writeConfig(t, dir, tt.content)

			_, err := LoadConfig("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, t.TempDir())
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table: custom\n"), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Table)
	assert.Equal(t, path, GetConfigFileUsed())

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestMergeTargetConfig(t *testing.T) {
	base := &TargetConfig{Type: "postgres", Host: "a", Options: map[string]string{"sslmode": "disable"}}
	override := &TargetConfig{Host: "b", Options: map[string]string{"application_name": "crowdstat"}}

	merged := MergeTargetConfig(base, override)
	assert.Equal(t, "postgres", merged.Type)
	assert.Equal(t, "b", merged.Host)
	assert.Equal(t, map[string]string{"sslmode": "disable", "application_name": "crowdstat"}, merged.Options)
	assert.Equal(t, "a", base.Host, "base is not mutated")

	assert.Same(t, base, MergeTargetConfig(base, nil))
	assert.Same(t, override, MergeTargetConfig(nil, override))
}
