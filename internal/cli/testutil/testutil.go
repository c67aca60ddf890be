// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/crowdstat/internal/cli/output"

	// duckdb driver for seeding test warehouses.
	_ "github.com/marcboeker/go-duckdb"
)

// ProjectsDDL creates the base table used by the CLI tests.
const ProjectsDDL = `CREATE TABLE projects (
    id BIGINT,
    name VARCHAR,
    category VARCHAR,
    main_category VARCHAR,
    country VARCHAR,
    currency VARCHAR,
    goal DOUBLE,
    pledged DOUBLE,
    backers INTEGER,
    state VARCHAR
)`

// ProjectsSeed inserts six projects. Rows 4 and 5 are removed by cleaning,
// row 2 has a lowercase currency and row 6 is a goal anomaly.
const ProjectsSeed = `INSERT INTO projects VALUES
    (1, 'x',   'Tabletop', 'A', 'US', 'USD', 1000,    100, 10, 'successful'),
    (2, 'y',   'Tabletop', 'A', 'US', 'usd', 1000,     50,  5, 'failed'),
    (3, 'z',   'Music',    'B', 'GB', 'GBP', 1000,     10,  1, 'successful'),
    (4, NULL,  'Music',    'B', 'US', 'USD', 1000,      5,  1, 'failed'),
    (5, 'w',   'Film',     'C', 'US', 'USD',    0,      0,  0, 'failed'),
    (6, 'big', 'Film',     'C', 'US', 'USD', 2000000,   5,  1, 'failed')`

// SetupTestProject creates a temporary project with a seeded DuckDB
// warehouse and a crowdstat.yaml pointing at it. It returns the project dir.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	db, err := sql.Open("duckdb", filepath.Join(tmpDir, "warehouse.duckdb"))
	if err != nil {
		t.Fatalf("failed to open warehouse: %v", err)
	}
	for _, stmt := range []string{ProjectsDDL, ProjectsSeed} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			t.Fatalf("failed to seed warehouse: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close warehouse: %v", err)
	}

	cfg := `target:
  type: duckdb
  database: warehouse.duckdb
table: projects
state_path: .crowdstat/state.db
environment: test
`
	if err := os.WriteFile(filepath.Join(tmpDir, "crowdstat.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatalf("failed to create crowdstat.yaml: %v", err)
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
