package dump_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flatkv/flatkv/internal/dump"
	"github.com/flatkv/flatkv/internal/store"
	_ "github.com/flatkv/flatkv/internal/store/pebble"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "db"), store.Options{
		Engine:          "pebble",
		CreateIfMissing: true,
		SyncWrites:      true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store) map[string][]byte {
	t.Helper()

	pairs := map[string][]byte{
		"cfg/a":   []byte("alpha"),
		"cfg/b":   {0x00, 0xff, 0x10},
		"cfg/c":   {},
		"other/x": []byte("outside"),
	}
	for k, v := range pairs {
		require.NoError(t, s.Put([]byte(k), v))
	}
	return pairs
}

func verify(t *testing.T, s *store.Store, pairs map[string][]byte) {
	t.Helper()

	for k, v := range pairs {
		got, found, err := s.Get([]byte(k))
		require.NoError(t, err)
		require.True(t, found, "key %q missing", k)
		if len(v) == 0 {
			require.Len(t, got, 0)
		} else {
			require.Equal(t, v, got)
		}
	}
}

func TestExportImportRoundtrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "lz4"
		}
		t.Run(name, func(t *testing.T) {
			src := openTestStore(t)
			pairs := seed(t, src)

			var buf bytes.Buffer
			count, err := dump.Export(src, &buf, dump.Options{Compress: compress})
			require.NoError(t, err)
			require.Equal(t, len(pairs), count)

			dst := openTestStore(t)
			imported, err := dump.Import(dst, &buf)
			require.NoError(t, err)
			require.Equal(t, len(pairs), imported)

			verify(t, dst, pairs)
		})
	}
}

func TestExportPrefixFilter(t *testing.T) {
	src := openTestStore(t)
	seed(t, src)

	var buf bytes.Buffer
	count, err := dump.Export(src, &buf, dump.Options{Prefix: []byte("cfg/")})
	require.NoError(t, err)
	require.Equal(t, 3, count)

	dst := openTestStore(t)
	_, err = dump.Import(dst, &buf)
	require.NoError(t, err)

	_, found, err := dst.Get([]byte("other/x"))
	require.NoError(t, err)
	require.False(t, found)

	got, found, err := dst.Get([]byte("cfg/a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("alpha"), got)
}

func TestImportEmptyStream(t *testing.T) {
	dst := openTestStore(t)

	count, err := dump.Import(dst, bytes.NewReader(nil))
	require.NoError(t, err)
	require.Zero(t, count)
}
