package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"runtime/cgo"
	"unsafe"

	"github.com/flatkv/flatkv/internal/backup"
	"github.com/flatkv/flatkv/internal/store"

	// Engine backends register themselves on import.
	_ "github.com/flatkv/flatkv/internal/store/leveldb"
	_ "github.com/flatkv/flatkv/internal/store/pebble"
)

// iterator pairs the prefix iterator with the C-heap copy of its
// current key. The copy is valid until the next advance or destroy,
// the same borrowed-view contract the store iterator has.
type iterator struct {
	it  *store.PrefixIterator
	key unsafe.Pointer
}

// clearError resets the caller's diagnostic slot at entry of every
// fallible call.
func clearError(errOut **C.char) {
	if errOut != nil {
		*errOut = nil
	}
}

// fail fills the diagnostic slot with a malloc'd copy of the error text
// and sets errno from the error's classification. Returns -1.
func fail(errOut **C.char, err error) C.int {
	if errOut != nil {
		*errOut = C.CString(err.Error())
	}
	switch store.KindOf(err) {
	case store.KindInvalidArgument:
		setErrno(errInval)
	case store.KindNotFound:
		setErrno(errNoEnt)
	default:
		setErrno(errIO)
	}
	return -1
}

func failInvalid(errOut **C.char, msg string) C.int {
	return fail(errOut, &store.Error{
		Kind: store.KindInvalidArgument,
		Op:   "libflatkv",
		Err:  errors.New(msg),
	})
}

// validSlice is the slice-validity predicate applied to every
// (pointer, length) argument: a null pointer is allowed only with
// length zero.
func validSlice(p *C.char, n C.size_t) bool {
	return n == 0 || p != nil
}

// goBytes copies a (pointer, length) argument into Go memory. Inputs
// are borrowed; nothing retains the caller's buffer past the call.
func goBytes(p *C.char, n C.size_t) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(n))
}

// shimOptions is the fixed store configuration behind the flat
// surface. Writes are non-sync; callers that need durability flush or
// back up explicitly.
func shimOptions(createIfMissing bool) store.Options {
	return store.Options{CreateIfMissing: createIfMissing}
}

func openCommon(path *C.char, createIfMissing C.int, readOnly bool, errOut **C.char) C.uintptr_t {
	clearError(errOut)

	if path == nil {
		failInvalid(errOut, "path is null")
		return 0
	}

	opts := shimOptions(createIfMissing != 0)

	var (
		s   *store.Store
		err error
	)
	if readOnly {
		s, err = store.OpenReadOnly(C.GoString(path), opts)
	} else {
		s, err = store.Open(C.GoString(path), opts)
	}
	if err != nil {
		fail(errOut, err)
		return 0
	}

	return C.uintptr_t(cgo.NewHandle(s))
}

//export kv_open
func kv_open(path *C.char, createIfMissing C.int, errOut **C.char) C.uintptr_t {
	return openCommon(path, createIfMissing, false, errOut)
}

//export kv_open_read_only
func kv_open_read_only(path *C.char, errOut **C.char) C.uintptr_t {
	return openCommon(path, 0, true, errOut)
}

//export kv_close
func kv_close(handle C.uintptr_t) {
	if handle == 0 {
		return
	}
	h := cgo.Handle(handle)
	h.Value().(*store.Store).Close()
	h.Delete()
}

//export kv_put
func kv_put(handle C.uintptr_t, key *C.char, keyLen C.size_t, value *C.char, valueLen C.size_t, errOut **C.char) C.int {
	clearError(errOut)

	if handle == 0 || !validSlice(key, keyLen) || !validSlice(value, valueLen) {
		return failInvalid(errOut, "kv_put: invalid argument")
	}

	s := cgo.Handle(handle).Value().(*store.Store)
	if err := s.Put(goBytes(key, keyLen), goBytes(value, valueLen)); err != nil {
		return fail(errOut, err)
	}
	return 0
}

//export kv_get
func kv_get(handle C.uintptr_t, key *C.char, keyLen C.size_t, value **C.char, valueLen *C.size_t, errOut **C.char) C.int {
	clearError(errOut)

	if handle == 0 || !validSlice(key, keyLen) || value == nil || valueLen == nil {
		return failInvalid(errOut, "kv_get: invalid argument")
	}

	*value = nil
	*valueLen = 0

	s := cgo.Handle(handle).Value().(*store.Store)
	result, found, err := s.Get(goBytes(key, keyLen))
	if err != nil {
		return fail(errOut, err)
	}
	if !found {
		return 1
	}

	// Ownership of the buffer transfers to the caller; zero-length
	// values stay a null pointer with length zero.
	if len(result) > 0 {
		*value = (*C.char)(C.CBytes(result))
		*valueLen = C.size_t(len(result))
	}
	return 0
}

//export kv_delete
func kv_delete(handle C.uintptr_t, key *C.char, keyLen C.size_t, errOut **C.char) C.int {
	clearError(errOut)

	if handle == 0 || !validSlice(key, keyLen) {
		return failInvalid(errOut, "kv_delete: invalid argument")
	}

	s := cgo.Handle(handle).Value().(*store.Store)
	if err := s.Delete(goBytes(key, keyLen)); err != nil {
		return fail(errOut, err)
	}
	return 0
}

// kv_free releases any buffer this layer allocated for the caller.

//export kv_free
func kv_free(p unsafe.Pointer) {
	C.free(p)
}

//export kv_create_prefix_iterator
func kv_create_prefix_iterator(handle C.uintptr_t, prefix *C.char, prefixLen C.size_t, errOut **C.char) C.uintptr_t {
	clearError(errOut)

	if handle == 0 || !validSlice(prefix, prefixLen) {
		failInvalid(errOut, "kv_create_prefix_iterator: invalid argument")
		return 0
	}

	s := cgo.Handle(handle).Value().(*store.Store)
	it, err := s.NewPrefixIterator(goBytes(prefix, prefixLen))
	if err != nil {
		fail(errOut, err)
		return 0
	}

	return C.uintptr_t(cgo.NewHandle(&iterator{it: it}))
}

//export kv_advance_prefix_iterator
func kv_advance_prefix_iterator(handle C.uintptr_t, keyData **C.char, keyLen *C.size_t, errOut **C.char) C.int {
	clearError(errOut)

	if handle == 0 || keyData == nil || keyLen == nil {
		return failInvalid(errOut, "kv_advance_prefix_iterator: invalid argument")
	}

	*keyData = nil
	*keyLen = 0

	wrapper := cgo.Handle(handle).Value().(*iterator)
	key, more, err := wrapper.it.Advance()

	// The previous key buffer dies on every advance, success or not.
	if wrapper.key != nil {
		C.free(wrapper.key)
		wrapper.key = nil
	}

	if err != nil {
		return fail(errOut, err)
	}
	if !more {
		return 1
	}

	if len(key) > 0 {
		wrapper.key = C.CBytes(key)
		*keyData = (*C.char)(wrapper.key)
		*keyLen = C.size_t(len(key))
	}
	return 0
}

//export kv_destroy_prefix_iterator
func kv_destroy_prefix_iterator(handle C.uintptr_t) {
	if handle == 0 {
		return
	}
	h := cgo.Handle(handle)
	wrapper := h.Value().(*iterator)
	if wrapper.key != nil {
		C.free(wrapper.key)
		wrapper.key = nil
	}
	wrapper.it.Close()
	h.Delete()
}

//export kv_backup
func kv_backup(handle C.uintptr_t, backupDir *C.char, flushFirst C.int, errOut **C.char) C.int {
	clearError(errOut)

	if handle == 0 || backupDir == nil {
		return failInvalid(errOut, "kv_backup: invalid argument")
	}

	s := cgo.Handle(handle).Value().(*store.Store)
	if err := backup.Create(s, C.GoString(backupDir), flushFirst != 0); err != nil {
		return fail(errOut, err)
	}
	return 0
}

//export kv_restore_latest_backup
func kv_restore_latest_backup(backupDir, dbPath *C.char, errOut **C.char) C.int {
	clearError(errOut)

	if backupDir == nil || dbPath == nil {
		return failInvalid(errOut, "kv_restore_latest_backup: null argument")
	}

	if err := backup.RestoreLatest(C.GoString(backupDir), C.GoString(dbPath)); err != nil {
		return fail(errOut, err)
	}
	return 0
}
