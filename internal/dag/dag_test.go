package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workflow mirrors the stage dependencies of a full analysis run.
func workflow(t *testing.T) *Graph {
	t.Helper()
	g := New()
	require.NoError(t, g.Add("schema"))
	require.NoError(t, g.Add("inspect", "schema"))
	require.NoError(t, g.Add("clean", "inspect"))
	require.NoError(t, g.Add("aggregate", "clean"))
	require.NoError(t, g.Add("views", "clean"))
	require.NoError(t, g.Add("snapshots", "clean"))
	require.NoError(t, g.Add("analytics", "aggregate"))
	return g
}

func TestGraph_Add(t *testing.T) {
	g := New()
	require.NoError(t, g.Add("a"))
	require.NoError(t, g.Add("b", "a"))

	tests := []struct {
		name string
		id   string
		deps []string
	}{
		{"duplicate", "a", nil},
		{"self dependency", "c", []string{"c"}},
		{"unknown dependency", "c", []string{"missing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, g.Add(tt.id, tt.deps...))
		})
	}

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"a"}, g.Dependencies("b"))
	assert.Equal(t, []string{"b"}, g.Dependents("a"))
}

func TestGraph_Sort(t *testing.T) {
	g := workflow(t)
	assert.Equal(t,
		[]string{"schema", "inspect", "clean", "aggregate", "views", "snapshots", "analytics"},
		g.Sort())
}

func TestGraph_Sort_ReadyOrder(t *testing.T) {
	g := New()
	require.NoError(t, g.Add("a"))
	require.NoError(t, g.Add("b"))
	require.NoError(t, g.Add("c", "b"))
	require.NoError(t, g.Add("d", "a"))

	// The earliest added ready stage always comes next.
	assert.Equal(t, []string{"a", "b", "c", "d"}, g.Sort())
}

func TestGraph_Upstream(t *testing.T) {
	g := workflow(t)

	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{"root", []string{"schema"}, []string{"schema"}},
		{"views", []string{"views"}, []string{"schema", "inspect", "clean", "views"}},
		{"analytics pulls aggregate", []string{"analytics"}, []string{"schema", "inspect", "clean", "aggregate", "analytics"}},
		{"union", []string{"snapshots", "views"}, []string{"schema", "inspect", "clean", "views", "snapshots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Upstream(tt.ids...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := g.Upstream("deploy")
	assert.Error(t, err)
}

func TestGraph_Downstream(t *testing.T) {
	g := workflow(t)
	assert.Equal(t, []string{"aggregate", "analytics"}, g.Downstream("aggregate"))
	assert.Equal(t, []string{"clean", "aggregate", "views", "snapshots", "analytics"}, g.Downstream("clean"))
}
