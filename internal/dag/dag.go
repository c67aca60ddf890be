// Package dag orders workflow stages by their declared dependencies.
package dag

import (
	"fmt"
	"slices"
)

// Graph is a dependency graph of named stages. Stages keep the order in
// which they were added, and that order breaks ties when sorting.
type Graph struct {
	order   []string
	deps    map[string][]string // stage -> stages it needs
	depends map[string][]string // stage -> stages that need it
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		deps:    make(map[string][]string),
		depends: make(map[string][]string),
	}
}

// Add registers a stage and the stages it depends on. Dependencies must be
// added first, so a graph built only through Add never has a cycle.
func (g *Graph) Add(id string, deps ...string) error {
	if g.Has(id) {
		return fmt.Errorf("stage %q already added", id)
	}
	for _, d := range deps {
		if d == id {
			return fmt.Errorf("stage %q depends on itself", id)
		}
		if !g.Has(d) {
			return fmt.Errorf("stage %q depends on unknown stage %q", id, d)
		}
	}

	g.order = append(g.order, id)
	g.deps[id] = slices.Clone(deps)
	for _, d := range deps {
		g.depends[d] = append(g.depends[d], id)
	}
	return nil
}

// Has reports whether id was added.
func (g *Graph) Has(id string) bool {
	_, ok := g.deps[id]
	return ok
}

// Len returns the number of stages.
func (g *Graph) Len() int {
	return len(g.order)
}

// Dependencies returns the direct dependencies of id.
func (g *Graph) Dependencies(id string) []string {
	return g.deps[id]
}

// Dependents returns the stages that directly depend on id.
func (g *Graph) Dependents(id string) []string {
	return g.depends[id]
}

// Sort returns every stage with dependencies before dependents. Among
// stages that are ready at the same time, the earlier added one comes first.
func (g *Graph) Sort() []string {
	indegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		indegree[id] = len(g.deps[id])
	}

	result := make([]string, 0, len(g.order))
	done := make(map[string]bool, len(g.order))
	for len(result) < len(g.order) {
		for _, id := range g.order {
			if done[id] || indegree[id] > 0 {
				continue
			}
			done[id] = true
			result = append(result, id)
			for _, child := range g.depends[id] {
				indegree[child]--
			}
			break
		}
	}
	return result
}

// Upstream returns ids plus everything they transitively depend on, in
// sorted order. Unknown ids are an error.
func (g *Graph) Upstream(ids ...string) ([]string, error) {
	keep := make(map[string]bool)
	var visit func(id string)
	visit = func(id string) {
		if keep[id] {
			return
		}
		keep[id] = true
		for _, d := range g.deps[id] {
			visit(d)
		}
	}

	for _, id := range ids {
		if !g.Has(id) {
			return nil, fmt.Errorf("unknown stage %q", id)
		}
		visit(id)
	}

	var result []string
	for _, id := range g.Sort() {
		if keep[id] {
			result = append(result, id)
		}
	}
	return result, nil
}

// Downstream returns id plus every stage that transitively depends on it.
func (g *Graph) Downstream(id string) []string {
	keep := map[string]bool{}
	var visit func(string)
	visit = func(s string) {
		if keep[s] {
			return
		}
		keep[s] = true
		for _, c := range g.depends[s] {
			visit(c)
		}
	}
	visit(id)

	var result []string
	for _, s := range g.Sort() {
		if keep[s] {
			result = append(result, s)
		}
	}
	return result
}
