// Package leveldb backs the store with syndtr/goleveldb, for callers
// that want a pure-Go engine with a smaller footprint than pebble.
package leveldb

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/flatkv/flatkv/internal/store"
)

const engineName = "leveldb"

// checkpointBatchSize bounds the write batches used when copying a
// snapshot into a checkpoint directory.
const checkpointBatchSize = 1000

func init() {
	store.Register(engineName, openEngine)
}

type engine struct {
	db *leveldb.DB
	wo *opt.WriteOptions
}

func openEngine(path string, opts store.EngineOptions) (store.Engine, error) {
	lopts := &opt.Options{
		ErrorIfMissing: !opts.CreateIfMissing || opts.ReadOnly,
		ReadOnly:       opts.ReadOnly,
		Compression:    opt.NoCompression,
	}
	if opts.CacheBytes > 0 {
		lopts.BlockCacheCapacity = int(opts.CacheBytes)
	}

	db, err := leveldb.OpenFile(path, lopts)
	if err != nil {
		return nil, err
	}

	return &engine{
		db: db,
		wo: &opt.WriteOptions{Sync: opts.SyncWrites},
	}, nil
}

func (e *engine) Get(key []byte) ([]byte, error) {
	value, err := e.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (e *engine) Set(key, value []byte) error {
	return e.db.Put(key, value, e.wo)
}

func (e *engine) Delete(key []byte) error {
	return e.db.Delete(key, e.wo)
}

// Flush compacts the whole key range, which writes the memtable out as
// a side effect; goleveldb has no narrower flush primitive.
func (e *engine) Flush() error {
	return e.db.CompactRange(util.Range{})
}

// Checkpoint copies a consistent snapshot of the database into a fresh
// leveldb directory at dir. goleveldb has no native checkpoint, so the
// copy is a snapshot scan committed in bounded batches.
func (e *engine) Checkpoint(dir string) error {
	snap, err := e.db.GetSnapshot()
	if err != nil {
		return err
	}
	defer snap.Release()

	dst, err := leveldb.OpenFile(dir, &opt.Options{
		ErrorIfExist: true,
		Compression:  opt.NoCompression,
	})
	if err != nil {
		return err
	}

	iter := snap.NewIterator(nil, nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Put(iter.Key(), iter.Value())
		if batch.Len() >= checkpointBatchSize {
			if err := dst.Write(batch, nil); err != nil {
				dst.Close()
				return err
			}
			batch.Reset()
		}
	}
	if err := iter.Error(); err != nil {
		dst.Close()
		return fmt.Errorf("checkpoint scan: %w", err)
	}
	if batch.Len() > 0 {
		if err := dst.Write(batch, nil); err != nil {
			dst.Close()
			return err
		}
	}

	return dst.Close()
}

func (e *engine) Close() error {
	return e.db.Close()
}

type cursor struct {
	iter iterator.Iterator
}

func (e *engine) NewCursor() (store.Cursor, error) {
	return &cursor{iter: e.db.NewIterator(nil, nil)}, nil
}

func (c *cursor) SeekGE(key []byte) bool { return c.iter.Seek(key) }
func (c *cursor) Next() bool             { return c.iter.Next() }
func (c *cursor) Valid() bool            { return c.iter.Valid() }
func (c *cursor) Key() []byte            { return c.iter.Key() }
func (c *cursor) Error() error           { return c.iter.Error() }

func (c *cursor) Close() error {
	c.iter.Release()
	return nil
}
