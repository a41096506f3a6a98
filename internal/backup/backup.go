// Package backup creates and restores full-database backups. A backup
// directory holds a SQLite manifest plus one engine checkpoint per
// backup, keyed by a monotonically increasing id.
//
// The directory is single-slot: every Create discards whatever backups
// the directory already holds before taking the new one. Ids keep
// increasing across those cycles, so "latest by id" stays equivalent to
// "most recent in time".
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flatkv/flatkv/internal/store"
)

func invalidf(op, format string, args ...interface{}) error {
	return &store.Error{Kind: store.KindInvalidArgument, Op: op, Err: fmt.Errorf(format, args...)}
}

func ioWrap(op string, err error) error {
	return &store.Error{Kind: store.KindIO, Op: op, Err: err}
}

// slotDir returns the checkpoint directory for a backup id.
func slotDir(backupDir string, id int64) string {
	return filepath.Join(backupDir, fmt.Sprintf("%06d", id))
}

// Create takes a full backup of s into backupDir, creating the
// directory if needed. flushFirst flushes in-memory writes to durable
// storage before the checkpoint is captured, trading a brief latency
// for not losing the most recent writes.
func Create(s *store.Store, backupDir string, flushFirst bool) error {
	const op = "backup.Create"

	if s == nil {
		return invalidf(op, "nil store")
	}
	if backupDir == "" {
		return invalidf(op, "backup dir is empty")
	}

	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return ioWrap(op, err)
	}

	m, err := openManifest(backupDir, false)
	if err != nil {
		return ioWrap(op, err)
	}
	defer m.close()

	// Destroy-old-data policy: drop every backup already stored here.
	old, err := m.ids()
	if err != nil {
		return ioWrap(op, err)
	}
	for _, id := range old {
		if err := os.RemoveAll(slotDir(backupDir, id)); err != nil {
			return ioWrap(op, err)
		}
		if err := m.remove(id); err != nil {
			return ioWrap(op, err)
		}
	}

	if flushFirst {
		if err := s.Flush(); err != nil {
			return err
		}
	}

	id, err := m.insert(Info{
		Engine:     s.EngineName(),
		SourcePath: s.Path(),
		Flushed:    flushFirst,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return ioWrap(op, err)
	}

	dir := slotDir(backupDir, id)
	if err := s.Checkpoint(dir); err != nil {
		// Don't leave a manifest row pointing at a missing or
		// half-written checkpoint.
		os.RemoveAll(dir)
		m.remove(id)
		return err
	}

	return nil
}

// Latest returns the manifest entry of the most recent backup in
// backupDir, or ErrNoBackups.
func Latest(backupDir string) (Info, error) {
	const op = "backup.Latest"

	if backupDir == "" {
		return Info{}, invalidf(op, "backup dir is empty")
	}

	m, err := openManifest(backupDir, true)
	if err != nil {
		if errors.Is(err, store.ErrNoBackups) {
			return Info{}, &store.Error{Kind: store.KindNotFound, Op: op, Err: err}
		}
		return Info{}, ioWrap(op, err)
	}
	defer m.close()

	info, err := m.latest()
	if err != nil {
		if errors.Is(err, store.ErrNoBackups) {
			return Info{}, &store.Error{Kind: store.KindNotFound, Op: op, Err: err}
		}
		return Info{}, ioWrap(op, err)
	}
	return info, nil
}
