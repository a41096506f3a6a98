package store

import (
	"fmt"
	"sync"
)

// Engine is the narrow waist between the boundary layer and an embedded
// key-value engine. Implementations must order keys lexicographically by
// byte value and report absent keys with ErrNotFound.
type Engine interface {
	// Get returns an owned copy of the value for key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Set writes key/value unconditionally.
	Set(key, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error

	// NewCursor returns a cursor positioned before the first key.
	NewCursor() (Cursor, error)

	// Flush persists in-memory writes to durable storage.
	Flush() error

	// Checkpoint writes an openable point-in-time copy of the database
	// into dir. dir must not exist.
	Checkpoint(dir string) error

	Close() error
}

// Cursor iterates engine keys in ascending byte order. Key returns a view
// into cursor-internal memory, valid only until the next positioning call
// or Close.
type Cursor interface {
	SeekGE(key []byte) bool
	Next() bool
	Valid() bool
	Key() []byte
	Error() error
	Close() error
}

// EngineOptions carries the open-time knobs every backend understands.
type EngineOptions struct {
	CreateIfMissing bool
	ReadOnly        bool

	// SyncWrites makes every Put/Delete wait for durable storage.
	SyncWrites bool

	// CacheBytes sizes the engine's block cache. Zero keeps the
	// engine default.
	CacheBytes int64
}

// Factory opens an engine instance rooted at path.
type Factory func(path string, opts EngineOptions) (Engine, error)

var (
	mu      sync.RWMutex
	engines = make(map[string]Factory)
)

// Register registers an engine factory under name. Backends call this
// from init; the last registration for a name wins.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	engines[name] = factory
}

// OpenEngine opens the named engine at path.
func OpenEngine(name, path string, opts EngineOptions) (Engine, error) {
	mu.RLock()
	factory, ok := engines[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown engine: %s", name)
	}
	return factory(path, opts)
}

// Engines returns the registered engine names.
func Engines() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	return names
}
