package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(mode Mode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		tty  bool
		want Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{ModeCSV, false, ModeCSV},
		{ModeText, false, ModeText},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode, tt.tty)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestTable(t *testing.T) {
	columns := []string{"main_category", "success_rate"}
	rows := [][]any{{"Games", 66.67}, {"Art", nil}}

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText, false)
		r.Table(columns, rows)
		s := out.String()
		assert.Contains(t, s, "MAIN_CATEGORY")
		assert.Contains(t, s, "66.67")
		assert.Contains(t, s, "NULL")
		assert.Contains(t, s, "(2 rows)")
	})

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown, false)
		r.Table(columns, rows)
		assert.Contains(t, out.String(), "| Games | 66.67 |")
	})

	t.Run("csv", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeCSV, false)
		r.Table(columns, rows)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "main_category,success_rate", strings.ToLower(lines[0]))
		assert.Equal(t, "Games,66.67", lines[1])
	})

	t.Run("empty", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown, false)
		r.Table(columns, nil)
		assert.Contains(t, out.String(), "(0 rows)")
	})
}

func TestStructured(t *testing.T) {
	v := map[string]any{"total_projects": 3}

	t.Run("json", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeJSON, false)
		ok, err := r.Structured(v)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"total_projects": 3}`, out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeYAML, false)
		ok, err := r.Structured(v)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "total_projects: 3\n", out.String())
	})

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown, false)
		ok, err := r.Structured(v)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, out.String())
	})
}

func TestMessages(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeMarkdown, false)

	r.Header(2, "Report")
	r.KeyValue("Rows", "3")
	r.Success("views built")
	r.Warning("snapshot stale")
	r.Error("boom")

	s := out.String()
	assert.Contains(t, s, "## Report")
	assert.Contains(t, s, "- **Rows:** 3")
	assert.Contains(t, s, "✓ views built")
	assert.Contains(t, s, "! snapshot stale")
	assert.NotContains(t, s, "boom")
	assert.Contains(t, errOut.String(), "✗ boom")
	assert.NotContains(t, s, "\x1b[")
}

func TestMessages_CSVSuppressesDecoration(t *testing.T) {
	r, out, _ := newTestRenderer(ModeCSV, false)
	r.Header(1, "Report")
	r.Success("done")
	r.Muted("note")
	assert.Empty(t, out.String())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{[]byte("abc"), "abc"},
		{float64(1500), "1500"},
		{66.67, "66.67"},
		{int64(7), "7"},
		{"US", "US"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
	assert.Equal(t, "66.67%", FormatPercent(66.666))
	assert.Equal(t, "1500.00", FormatAmount(1500))
}
