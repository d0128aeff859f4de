package schema

import (
	"fmt"
	"reflect"
	"sync"
)

var globalRegistry = &Registry{
	bySource: make(map[string]*Info),
	byType:   make(map[reflect.Type]*Info),
}

// Registry maintains a mapping between Go struct types and schema metadata.
// It is used to look up field information during casting and projection.
type Registry struct {
	mu       sync.RWMutex
	bySource map[string]*Info
	byType   map[reflect.Type]*Info
}

// Register adds a Go struct type to the global registry as a schema.
// The type T must embed schema.Base.
func Register[T any]() error {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	info, err := ExtractInfo(t)
	if err != nil {
		return fmt.Errorf("registering %s: %w", t.Name(), err)
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if existing, ok := globalRegistry.bySource[info.Source]; ok {
		if existing.GoType != t {
			return fmt.Errorf("source %q already registered to %s", info.Source, existing.GoType.Name())
		}
	}

	globalRegistry.bySource[info.Source] = info
	globalRegistry.byType[t] = info
	return nil
}

// MustRegister is a helper that calls Register and panics if an error occurs.
// It is intended for use during application initialization.
func MustRegister[T any]() {
	if err := Register[T](); err != nil {
		panic(err)
	}
}

// Lookup retrieves schema Info for a given source name.
func Lookup(source string) (*Info, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	info, ok := globalRegistry.bySource[source]
	return info, ok
}

// LookupType retrieves schema Info for a given Go reflect.Type.
func LookupType(t reflect.Type) (*Info, bool) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	info, ok := globalRegistry.byType[t]
	return info, ok
}

// LookupValue retrieves schema Info for the dynamic type of v.
func LookupValue(v any) (*Info, bool) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, false
	}
	return LookupType(t)
}

// InfoFor retrieves schema Info for a type, extracting and registering it on
// first use. This lets nested schema types participate in casting without an
// explicit Register call.
func InfoFor(t reflect.Type) (*Info, error) {
	if info, ok := LookupType(t); ok {
		return info, nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	info, err := ExtractInfo(t)
	if err != nil {
		return nil, err
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	if existing, ok := globalRegistry.byType[t]; ok {
		return existing, nil
	}
	if existing, ok := globalRegistry.bySource[info.Source]; ok && existing.GoType != t {
		return nil, fmt.Errorf("source %q already registered to %s", info.Source, existing.GoType.Name())
	}
	globalRegistry.bySource[info.Source] = info
	globalRegistry.byType[t] = info
	return info, nil
}

// RegisteredSchemas returns a slice containing Info for all registered schemas.
func RegisteredSchemas() []*Info {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	result := make([]*Info, 0, len(globalRegistry.byType))
	for _, info := range globalRegistry.byType {
		result = append(result, info)
	}
	return result
}

// ClearRegistry resets the global registry, removing all registered schemas.
// This is primarily used for testing purposes.
func ClearRegistry() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.bySource = make(map[string]*Info)
	globalRegistry.byType = make(map[reflect.Type]*Info)
}
