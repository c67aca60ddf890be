package adapter

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres"},
	}

	msg := err.Error()

	assert.Contains(t, msg, `"fake_db"`)
	assert.Contains(t, msg, "available: duckdb, postgres")
	assert.Contains(t, msg, "crowdstat.yaml")
	assert.Contains(t, msg, "--type")
}

func TestRegister(t *testing.T) {
	Register(Warehouse{
		Type:        "test_warehouse",
		Description: "test only",
		Factory:     func(_ *slog.Logger) Adapter { return nil },
	})

	w, ok := Lookup("test_warehouse")
	require.True(t, ok)
	assert.Equal(t, "test only", w.Description)
	assert.Contains(t, ListAdapters(), "test_warehouse")

	types := ListAdapters()
	for i := 1; i < len(types); i++ {
		assert.Less(t, types[i-1], types[i], "types are sorted")
	}
}

func TestRegister_Invalid(t *testing.T) {
	factory := func(_ *slog.Logger) Adapter { return nil }
	Register(Warehouse{Type: "test_twice", Factory: factory})

	tests := []struct {
		name string
		w    Warehouse
	}{
		{name: "duplicate type", w: Warehouse{Type: "test_twice", Factory: factory}},
		{name: "empty type", w: Warehouse{Factory: factory}},
		{name: "nil factory", w: Warehouse{Type: "test_nil"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { Register(tt.w) })
		})
	}
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(Config{Type: ""}, nil)
	require.Error(t, err)
	assert.Equal(t, "adapter type not specified", err.Error())
}

func TestNewAdapter_UnknownType(t *testing.T) {
	_, err := NewAdapter(Config{Type: "oracle"}, nil)
	require.Error(t, err)

	var unknown *UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Type)
}
