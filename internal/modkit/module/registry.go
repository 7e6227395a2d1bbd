package module

import (
	"slices"
	"sync"
)

// registry holds the port sets modules published while the API was assembled
var registry = struct {
	sync.RWMutex
	ports map[string]any
}{ports: map[string]any{}}

// Register publishes ports under name; a later call for the same name replaces it
func Register(name string, ports any) {
	if name == "" {
		panic("module: Register with an empty name")
	}
	registry.Lock()
	defer registry.Unlock()
	registry.ports[name] = ports
}

// Lookup returns the ports registered under name when they are a T
func Lookup[T any](name string) (T, bool) {
	registry.RLock()
	v, ok := registry.ports[name]
	registry.RUnlock()
	out, ok2 := v.(T)
	return out, ok && ok2
}

// Names lists registered modules in order
func Names() []string {
	registry.RLock()
	defer registry.RUnlock()
	out := make([]string, 0, len(registry.ports))
	for n := range registry.ports {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Reset forgets every registration; tests only
func Reset() {
	registry.Lock()
	defer registry.Unlock()
	registry.ports = map[string]any{}
}
