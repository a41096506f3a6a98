// Package dump streams a database out to, and back in from, a flat
// file of msgpack records, optionally lz4-compressed. Export walks a
// prefix iterator and reads each key back through Get, the same access
// pattern embedding applications use against the boundary.
package dump

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4"
	"github.com/ugorji/go/codec"

	"github.com/flatkv/flatkv/internal/store"
)

// Record is one exported key/value pair.
type Record struct {
	Key   []byte `codec:"k"`
	Value []byte `codec:"v"`
}

// Options configures Export.
type Options struct {
	// Prefix restricts the export to keys sharing this prefix.
	// Empty exports everything.
	Prefix []byte

	// Compress wraps the output stream in an lz4 frame. Import
	// detects compression on its own.
	Compress bool
}

var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

var msgpackHandle codec.MsgpackHandle

// Export writes every key/value pair under opts.Prefix to w and
// returns the number of records written.
func Export(s *store.Store, w io.Writer, opts Options) (int, error) {
	var (
		out io.Writer = w
		lzw *lz4.Writer
	)
	if opts.Compress {
		lzw = lz4.NewWriter(w)
		out = lzw
	}

	it, err := s.NewPrefixIterator(opts.Prefix)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	enc := codec.NewEncoder(out, &msgpackHandle)

	count := 0
	for {
		key, more, err := it.Advance()
		if err != nil {
			return count, err
		}
		if !more {
			break
		}

		value, found, err := s.Get(key)
		if err != nil {
			return count, err
		}
		if !found {
			// Deleted between the cursor step and the read.
			continue
		}

		if err := enc.Encode(Record{Key: key, Value: value}); err != nil {
			return count, fmt.Errorf("encode record: %w", err)
		}
		count++
	}

	if lzw != nil {
		if err := lzw.Close(); err != nil {
			return count, fmt.Errorf("close lz4 stream: %w", err)
		}
	}
	return count, nil
}

// Import reads records from r and puts each into s, returning the
// number imported. Compressed streams are recognized by the lz4 frame
// magic.
func Import(s *store.Store, r io.Reader) (int, error) {
	br := bufio.NewReader(r)

	var in io.Reader = br
	if magic, err := br.Peek(len(lz4Magic)); err == nil && bytes.Equal(magic, lz4Magic) {
		in = lz4.NewReader(br)
	}

	dec := codec.NewDecoder(in, &msgpackHandle)

	count := 0
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("decode record %d: %w", count, err)
		}

		if err := s.Put(rec.Key, rec.Value); err != nil {
			return count, err
		}
		count++
	}
}
