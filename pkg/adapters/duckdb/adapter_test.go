package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, cfg core.AdapterConfig) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), cfg))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "test.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := tt.setupPath(t)
			connect(t, core.AdapterConfig{Path: dbPath})

			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_ConnectWithSettings(t *testing.T) {
	adp := connect(t, core.AdapterConfig{
		Path: ":memory:",
		Params: map[string]any{
			"settings": map[string]any{"threads": "2"},
		},
	})

	rows, err := adp.Query(context.Background(), "SELECT CAST(current_setting('threads') AS VARCHAR)")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var threads string
	require.NoError(t, rows.Scan(&threads))
	assert.Equal(t, "2", threads)
}

func TestAdapter_ConnectRejectsBadSetting(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), core.AdapterConfig{
		Params: map[string]any{
			"settings": map[string]any{"threads; DROP TABLE x": "1"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid setting name")
	assert.False(t, adp.IsConnected())
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	_, err := adp.Exec(ctx, "SELECT 1")
	assert.ErrorIs(t, err, core.ErrNotConnected)

	_, err = adp.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, core.ErrNotConnected)

	_, err = adp.GetTableMetadata(ctx, "projects")
	assert.ErrorIs(t, err, core.ErrNotConnected)
}

func TestAdapter_TableMetadata(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, core.AdapterConfig{Path: ":memory:"})

	_, err := adp.Exec(ctx, `
		CREATE TABLE projects (
			id BIGINT,
			name VARCHAR,
			goal DOUBLE
		)
	`)
	require.NoError(t, err)
	n, err := adp.Exec(ctx, `INSERT INTO projects VALUES (1, 'a', 10), (2, 'b', 20)`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	meta, err := adp.GetTableMetadata(ctx, "projects")
	require.NoError(t, err)
	assert.Equal(t, "main", meta.Schema)
	assert.Equal(t, int64(2), meta.RowCount)
	require.Len(t, meta.Columns, 3)
	assert.Equal(t, "id", meta.Columns[0].Name)
	assert.Equal(t, 1, meta.Columns[0].Position)

	exists, err := adp.TableExists(ctx, "projects")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = adp.GetTableMetadata(ctx, "missing")
	require.Error(t, err)
	assert.True(t, core.IsMissingObject(err))

	exists, err = adp.TableExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAdapter_ExecTxIsAtomic(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, core.AdapterConfig{Path: ":memory:"})

	_, err := adp.Exec(ctx, `CREATE TABLE t (v INTEGER)`)
	require.NoError(t, err)

	_, err = adp.ExecTx(ctx,
		`INSERT INTO t VALUES (1)`,
		`INSERT INTO missing_table VALUES (2)`,
	)
	require.Error(t, err)

	rows, err := adp.Query(ctx, `SELECT COUNT(*) FROM t`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	var count int64
	require.NoError(t, rows.Scan(&count))
	assert.Equal(t, int64(0), count, "failed transaction must not leave rows behind")
}

func TestAdapter_Dialect(t *testing.T) {
	assert.Equal(t, "duckdb", New(nil).Dialect().Name)
}
