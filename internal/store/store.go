// Package store exposes an embedded key-value engine through a flat,
// stable surface: open/close a handle, point CRUD, prefix-bounded
// iteration. Engine backends register themselves by name; the default
// binary wires pebble and goleveldb.
//
// The store adds no locking of its own. A handle may be shared across
// goroutines to the extent the underlying engine allows concurrent
// reads and writes; concurrent Open/Close of the same handle is a
// caller error.
package store

import (
	"errors"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultEngine is used when Options.Engine is left empty.
const DefaultEngine = "pebble"

// Options configures Open and OpenReadOnly.
type Options struct {
	// Engine selects the registered backend. Empty means DefaultEngine.
	Engine string

	// CreateIfMissing creates the database on Open when absent.
	// Ignored by OpenReadOnly.
	CreateIfMissing bool

	// SyncWrites makes every mutation wait for durable storage.
	SyncWrites bool

	// CacheEntries enables a read-through LRU over Get when positive.
	CacheEntries int

	// CacheBytes sizes the engine's internal block cache.
	CacheBytes int64
}

// Store owns one open engine instance. Created by Open or OpenReadOnly,
// destroyed by Close.
type Store struct {
	engine     Engine
	engineName string
	path       string
	readOnly   bool
	closed     atomic.Bool

	// Optional read cache; nil when disabled. Keys are stringified
	// so they hash; values are owned copies.
	cache *lru.Cache[string, []byte]
}

// Open opens (or creates) the database at path.
func Open(path string, opts Options) (*Store, error) {
	return open(path, opts, false)
}

// OpenReadOnly opens the database at path in the engine's native
// read-only mode. It never creates the database, and mutations against
// the returned store fail with the engine's own error.
func OpenReadOnly(path string, opts Options) (*Store, error) {
	return open(path, opts, true)
}

func open(path string, opts Options, readOnly bool) (*Store, error) {
	const op = "store.Open"

	if path == "" {
		return nil, invalidf(op, "path is empty")
	}

	name := opts.Engine
	if name == "" {
		name = DefaultEngine
	}

	eopts := EngineOptions{
		CreateIfMissing: opts.CreateIfMissing && !readOnly,
		ReadOnly:        readOnly,
		SyncWrites:      opts.SyncWrites,
		CacheBytes:      opts.CacheBytes,
	}

	engine, err := OpenEngine(name, path, eopts)
	if err != nil {
		return nil, ioWrap(op, err)
	}

	s := &Store{
		engine:     engine,
		engineName: name,
		path:       path,
		readOnly:   readOnly,
	}

	if opts.CacheEntries > 0 {
		cache, err := lru.New[string, []byte](opts.CacheEntries)
		if err != nil {
			engine.Close()
			return nil, invalidf(op, "cache size %d: %v", opts.CacheEntries, err)
		}
		s.cache = cache
	}

	return s, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// EngineName returns the registered name of the backing engine.
func (s *Store) EngineName() string { return s.engineName }

// ReadOnly reports whether the store was opened read-only.
func (s *Store) ReadOnly() bool { return s.readOnly }

// Close releases the engine instance. Close is idempotent; operations
// after Close return ErrClosed.
func (s *Store) Close() error {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	return s.engine.Close()
}

func (s *Store) check(op string) error {
	if s == nil {
		return invalidf(op, "nil store")
	}
	if s.closed.Load() {
		return &Error{Kind: KindInvalidArgument, Op: op, Err: ErrClosed}
	}
	return nil
}

// Put writes key/value unconditionally.
func (s *Store) Put(key, value []byte) error {
	const op = "store.Put"

	if err := s.check(op); err != nil {
		return err
	}
	if err := s.engine.Set(key, value); err != nil {
		return ioWrap(op, err)
	}
	if s.cache != nil {
		s.cache.Add(string(key), append([]byte(nil), value...))
	}
	return nil
}

// Get returns the value stored under key. An absent key is a first-class
// outcome, (nil, false, nil), not an error. The returned buffer is an
// owned copy; zero-length values come back with length zero.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	const op = "store.Get"

	if err := s.check(op); err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(string(key)); ok {
			return append([]byte(nil), cached...), true, nil
		}
	}

	value, err := s.engine.Get(key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ioWrap(op, err)
	}

	if s.cache != nil {
		s.cache.Add(string(key), append([]byte(nil), value...))
	}
	return value, true, nil
}

// Delete removes key. Deleting an absent key succeeds.
func (s *Store) Delete(key []byte) error {
	const op = "store.Delete"

	if err := s.check(op); err != nil {
		return err
	}
	if err := s.engine.Delete(key); err != nil {
		return ioWrap(op, err)
	}
	if s.cache != nil {
		s.cache.Remove(string(key))
	}
	return nil
}

// Flush persists in-memory writes to durable storage.
func (s *Store) Flush() error {
	const op = "store.Flush"

	if err := s.check(op); err != nil {
		return err
	}
	if err := s.engine.Flush(); err != nil {
		return ioWrap(op, err)
	}
	return nil
}

// Checkpoint writes a point-in-time copy of the database into dir.
func (s *Store) Checkpoint(dir string) error {
	const op = "store.Checkpoint"

	if err := s.check(op); err != nil {
		return err
	}
	if dir == "" {
		return invalidf(op, "dir is empty")
	}
	if err := s.engine.Checkpoint(dir); err != nil {
		return ioWrap(op, err)
	}
	return nil
}
