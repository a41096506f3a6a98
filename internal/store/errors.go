package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by engines when a key doesn't exist.
	// Store.Get translates it into the (value, found, err) outcome.
	ErrNotFound = errors.New("key not found")

	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrNoBackups is returned when a backup directory holds no backups.
	ErrNoBackups = errors.New("no backups found")
)

// Kind classifies a failure for callers that need a flat error model,
// such as the C shim's errno mapping.
type Kind uint8

const (
	// KindIO covers any underlying engine failure: open, read, write,
	// cursor, backup or restore errors. Never retried by this layer.
	KindIO Kind = iota

	// KindInvalidArgument covers malformed input: empty path, nil or
	// closed handle, invalid slice. Detected before touching the engine.
	KindInvalidArgument

	// KindNotFound covers the absent-key and empty-backup-store outcomes.
	KindNotFound
)

// Error wraps an engine or validation failure with its classification
// and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Sentinel errors map to their natural kinds;
// anything unrecognized is treated as an engine failure.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoBackups) {
		return KindNotFound
	}
	if errors.Is(err, ErrClosed) {
		return KindInvalidArgument
	}
	return KindIO
}

func invalidf(op, format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Err: fmt.Errorf(format, args...)}
}

func ioWrap(op string, err error) error {
	return &Error{Kind: KindIO, Op: op, Err: err}
}
