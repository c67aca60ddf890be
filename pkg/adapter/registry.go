package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// Factory builds an unconnected warehouse adapter.
type Factory func(*slog.Logger) Adapter

// Warehouse describes a registered warehouse type.
type Warehouse struct {
	Type        string
	Description string
	Factory     Factory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Warehouse)
)

// Register adds a warehouse type. Adapter packages call it from init();
// registering the same type twice panics.
func Register(w Warehouse) {
	if w.Type == "" || w.Factory == nil {
		panic("adapter: Register requires a type and a factory")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[w.Type]; dup {
		panic(fmt.Sprintf("adapter: warehouse %q registered twice", w.Type))
	}
	registry[w.Type] = w
}

// Lookup returns the registration of a warehouse type.
func Lookup(typ string) (Warehouse, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	w, ok := registry[typ]
	return w, ok
}

// NewAdapter creates an adapter for cfg.Type. A nil logger discards.
func NewAdapter(cfg core.AdapterConfig, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}

	w, ok := Lookup(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{
			Type:      cfg.Type,
			Available: ListAdapters(),
		}
	}
	return w.Factory(logger), nil
}

// Warehouses returns every registration sorted by type.
func Warehouses() []Warehouse {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Warehouse, 0, len(registry))
	for _, w := range registry {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// ListAdapters returns the registered warehouse types, sorted.
func ListAdapters() []string {
	ws := Warehouses()
	names := make([]string, len(ws))
	for i, w := range ws {
		names[i] = w.Type
	}
	return names
}

// UnknownAdapterError is returned for a warehouse type nobody registered.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown warehouse type %q (available: %s); set target.type in crowdstat.yaml, CROWDSTAT_TARGET__TYPE or --type",
		e.Type, strings.Join(e.Available, ", "))
}
