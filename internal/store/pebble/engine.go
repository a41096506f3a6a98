// Package pebble backs the store with cockroachdb/pebble, the default
// engine. Compression is disabled on every level: this boundary targets
// raw throughput, leaving compression policy to a higher layer.
package pebble

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/flatkv/flatkv/internal/store"
)

const engineName = "pebble"

func init() {
	store.Register(engineName, openEngine)
}

type engine struct {
	db *pebble.DB
	wo *pebble.WriteOptions
}

func openEngine(path string, opts store.EngineOptions) (store.Engine, error) {
	popts := &pebble.Options{
		ReadOnly:         opts.ReadOnly,
		ErrorIfNotExists: !opts.CreateIfMissing || opts.ReadOnly,
		Levels:           make([]pebble.LevelOptions, 7),
	}
	for i := range popts.Levels {
		popts.Levels[i].Compression = pebble.NoCompression
	}

	if opts.CacheBytes > 0 {
		cache := pebble.NewCache(opts.CacheBytes)
		defer cache.Unref()
		popts.Cache = cache
	}

	db, err := pebble.Open(path, popts)
	if err != nil {
		return nil, err
	}

	wo := pebble.NoSync
	if opts.SyncWrites {
		wo = pebble.Sync
	}

	return &engine{db: db, wo: wo}, nil
}

func (e *engine) Get(key []byte) ([]byte, error) {
	value, closer, err := e.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	// The returned slice is only valid until closer.Close.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (e *engine) Set(key, value []byte) error {
	return e.db.Set(key, value, e.wo)
}

func (e *engine) Delete(key []byte) error {
	return e.db.Delete(key, e.wo)
}

func (e *engine) Flush() error {
	return e.db.Flush()
}

func (e *engine) Checkpoint(dir string) error {
	return e.db.Checkpoint(dir, pebble.WithFlushedWAL())
}

func (e *engine) Close() error {
	return e.db.Close()
}

type cursor struct {
	iter *pebble.Iterator
}

func (e *engine) NewCursor() (store.Cursor, error) {
	iter, err := e.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	return &cursor{iter: iter}, nil
}

func (c *cursor) SeekGE(key []byte) bool { return c.iter.SeekGE(key) }
func (c *cursor) Next() bool             { return c.iter.Next() }
func (c *cursor) Valid() bool            { return c.iter.Valid() }
func (c *cursor) Key() []byte            { return c.iter.Key() }
func (c *cursor) Error() error           { return c.iter.Error() }
func (c *cursor) Close() error           { return c.iter.Close() }
