package store

import "bytes"

// PrefixIterator walks the keys sharing a caller-supplied prefix, in
// ascending byte order. It owns one engine cursor plus a copy of the
// prefix, so the caller's buffer may be reused after creation.
//
// Prefix bounding is a seek-then-scan with early stop: the engine
// orders keys lexicographically, so the first key outside the prefix
// ends the iteration. An empty prefix matches everything.
//
// A PrefixIterator is a single-caller state machine; concurrent
// Advance calls have undefined results.
type PrefixIterator struct {
	cursor  Cursor
	prefix  []byte
	started bool
	done    bool
	err     error
}

// NewPrefixIterator returns an iterator over the keys beginning with
// prefix. The iterator must be closed, and becomes invalid once the
// store is closed.
func (s *Store) NewPrefixIterator(prefix []byte) (*PrefixIterator, error) {
	const op = "store.NewPrefixIterator"

	if err := s.check(op); err != nil {
		return nil, err
	}

	cursor, err := s.engine.NewCursor()
	if err != nil {
		return nil, ioWrap(op, err)
	}

	return &PrefixIterator{
		cursor: cursor,
		prefix: append([]byte(nil), prefix...),
	}, nil
}

// Advance steps to the next key in range and returns it. more is false
// once iteration is over; exhaustion is not an error, and calling
// Advance again after it keeps returning (nil, false, nil) without
// touching the cursor. A cursor failure is returned as an IO error and
// is terminal the same way.
//
// The returned key is a view into cursor-internal memory, valid only
// until the next Advance or Close. Callers that retain it must copy.
func (it *PrefixIterator) Advance() (key []byte, more bool, err error) {
	const op = "store.PrefixIterator.Advance"

	if it == nil {
		return nil, false, invalidf(op, "nil iterator")
	}
	if it.err != nil {
		return nil, false, it.err
	}
	if it.done {
		return nil, false, nil
	}

	if !it.started {
		it.cursor.SeekGE(it.prefix)
		it.started = true
	} else {
		it.cursor.Next()
	}

	if cerr := it.cursor.Error(); cerr != nil {
		it.err = ioWrap(op, cerr)
		return nil, false, it.err
	}

	if !it.cursor.Valid() {
		it.done = true
		return nil, false, nil
	}

	k := it.cursor.Key()
	if !bytes.HasPrefix(k, it.prefix) {
		// Out of range. Keys are ordered, so nothing beyond this
		// point can match; the cursor stays where it is.
		return nil, false, nil
	}

	return k, true, nil
}

// Close releases the cursor. Safe to call on a nil iterator.
func (it *PrefixIterator) Close() error {
	if it == nil || it.cursor == nil {
		return nil
	}
	cursor := it.cursor
	it.cursor = nil
	it.done = true
	return cursor.Close()
}
