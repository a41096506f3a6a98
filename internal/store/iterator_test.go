package store_test

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flatkv/flatkv/internal/store"
)

// collectKeys drains the iterator, copying each borrowed key out.
func collectKeys(t *testing.T, it *store.PrefixIterator) [][]byte {
	t.Helper()

	var keys [][]byte
	for {
		key, more, err := it.Advance()
		require.NoError(t, err)
		if !more {
			return keys
		}
		keys = append(keys, append([]byte(nil), key...))
	}
}

func TestPrefixIteratorBounds(t *testing.T) {
	for _, engine := range engineNames {
		t.Run(engine, func(t *testing.T) {
			s := openTestStore(t, engine)

			matching := [][]byte{
				[]byte("app/a"),
				[]byte("app/b"),
				[]byte("app/b/child"),
				[]byte("app/z"),
			}
			for _, key := range matching {
				require.NoError(t, s.Put(key, []byte("x")))
			}
			// Neighbors on both sides of the prefix range.
			require.NoError(t, s.Put([]byte("aop"), []byte("x")))
			require.NoError(t, s.Put([]byte("apz"), []byte("x")))
			require.NoError(t, s.Put([]byte("zzz"), []byte("x")))

			it, err := s.NewPrefixIterator([]byte("app/"))
			require.NoError(t, err)
			defer it.Close()

			keys := collectKeys(t, it)
			require.Equal(t, matching, keys)
			require.True(t, sort.SliceIsSorted(keys, func(i, j int) bool {
				return string(keys[i]) < string(keys[j])
			}))

			// Exhaustion is stable: advancing again keeps reporting
			// no more entries, without error.
			for i := 0; i < 3; i++ {
				key, more, err := it.Advance()
				require.NoError(t, err)
				require.False(t, more)
				require.Nil(t, key)
			}
		})
	}
}

func TestPrefixIteratorEmptyPrefixScansAll(t *testing.T) {
	for _, engine := range engineNames {
		t.Run(engine, func(t *testing.T) {
			s := openTestStore(t, engine)

			count := 10
			for i := 0; i < count; i++ {
				require.NoError(t, s.Put([]byte(fmt.Sprintf("key-%02d", i)), []byte("v")))
			}

			it, err := s.NewPrefixIterator(nil)
			require.NoError(t, err)
			defer it.Close()

			require.Len(t, collectKeys(t, it), count)
		})
	}
}

func TestPrefixIteratorEmptyDatabase(t *testing.T) {
	s := openTestStore(t, "pebble")

	it, err := s.NewPrefixIterator([]byte("anything"))
	require.NoError(t, err)
	defer it.Close()

	key, more, err := it.Advance()
	require.NoError(t, err)
	require.False(t, more)
	require.Nil(t, key)
}

func TestPrefixIteratorPrefixIsAKey(t *testing.T) {
	s := openTestStore(t, "pebble")

	require.NoError(t, s.Put([]byte("app/"), []byte("exact")))
	require.NoError(t, s.Put([]byte("app/x"), []byte("child")))
	require.NoError(t, s.Put([]byte("apq"), []byte("out")))

	it, err := s.NewPrefixIterator([]byte("app/"))
	require.NoError(t, err)
	defer it.Close()

	keys := collectKeys(t, it)
	require.Equal(t, [][]byte{[]byte("app/"), []byte("app/x")}, keys)
}

func TestPrefixIteratorPrefixOwned(t *testing.T) {
	s := openTestStore(t, "pebble")

	require.NoError(t, s.Put([]byte("pre/one"), []byte("v")))
	require.NoError(t, s.Put([]byte("qqq"), []byte("v")))

	// The iterator copies the prefix; clobbering the caller's buffer
	// after creation must not change the bound.
	prefix := []byte("pre/")
	it, err := s.NewPrefixIterator(prefix)
	require.NoError(t, err)
	defer it.Close()
	copy(prefix, "qqqq")

	keys := collectKeys(t, it)
	require.Equal(t, [][]byte{[]byte("pre/one")}, keys)
}

func TestPrefixIteratorAdvanceAfterClose(t *testing.T) {
	s := openTestStore(t, "pebble")
	require.NoError(t, s.Put([]byte("k"), []byte("v")))

	it, err := s.NewPrefixIterator(nil)
	require.NoError(t, err)
	require.NoError(t, it.Close())
	require.NoError(t, it.Close()) // idempotent

	key, more, err := it.Advance()
	require.NoError(t, err)
	require.False(t, more)
	require.Nil(t, key)
}
