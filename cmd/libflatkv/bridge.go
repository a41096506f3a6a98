package main

/*
#include <errno.h>
#include <stdint.h>
#include <stdlib.h>

static int flatkv_read_errno(void) { return errno; }
*/
import "C"

import (
	"runtime"
	"unsafe"
)

// Go-typed wrappers over the exported calls. Test files cannot use
// cgo, so the tests exercise the flat surface through these.

// outcome is one flat call decoded back into Go types: the return
// code, the errno left behind, and the diagnostic text (empty when the
// callee cleared the slot and reported nothing).
type outcome struct {
	rc    int
	errno int
	msg   string
}

const staleDiagnostic = "stale diagnostic"

// call runs one flat call with errno pinned to a single OS thread and
// the diagnostic slot pre-filled with a stale pointer, so the decoded
// outcome also shows whether the callee cleared the slot on entry.
func call(fn func(errOut **C.char) C.int) outcome {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	stale := C.CString(staleDiagnostic)
	defer C.free(unsafe.Pointer(stale))

	errOut := stale
	setErrno(0)
	rc := fn(&errOut)

	out := outcome{rc: int(rc), errno: int(C.flatkv_read_errno())}
	switch {
	case errOut == stale:
		out.msg = staleDiagnostic
	case errOut != nil:
		out.msg = C.GoString(errOut)
		C.free(unsafe.Pointer(errOut))
	}
	return out
}

func cBytes(b []byte) (*C.char, C.size_t) {
	if len(b) == 0 {
		return nil, 0
	}
	return (*C.char)(C.CBytes(b)), C.size_t(len(b))
}

func freeC(p *C.char) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}

func bridgeOpen(path string, createIfMissing bool) (uintptr, outcome) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	create := C.int(0)
	if createIfMissing {
		create = 1
	}

	var h C.uintptr_t
	out := call(func(errOut **C.char) C.int {
		h = kv_open(cpath, create, errOut)
		return 0
	})
	return uintptr(h), out
}

func bridgeOpenReadOnly(path string) (uintptr, outcome) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var h C.uintptr_t
	out := call(func(errOut **C.char) C.int {
		h = kv_open_read_only(cpath, errOut)
		return 0
	})
	return uintptr(h), out
}

func bridgeOpenNullPath() (uintptr, outcome) {
	var h C.uintptr_t
	out := call(func(errOut **C.char) C.int {
		h = kv_open(nil, 1, errOut)
		return 0
	})
	return uintptr(h), out
}

func bridgeClose(h uintptr) {
	kv_close(C.uintptr_t(h))
}

func bridgePut(h uintptr, key, value []byte) outcome {
	ck, ckLen := cBytes(key)
	defer freeC(ck)
	cv, cvLen := cBytes(value)
	defer freeC(cv)

	return call(func(errOut **C.char) C.int {
		return kv_put(C.uintptr_t(h), ck, ckLen, cv, cvLen, errOut)
	})
}

func bridgePutNullKey(h uintptr, keyLen int) outcome {
	return call(func(errOut **C.char) C.int {
		return kv_put(C.uintptr_t(h), nil, C.size_t(keyLen), nil, 0, errOut)
	})
}

func bridgePutNullValue(h uintptr, key []byte, valueLen int) outcome {
	ck, ckLen := cBytes(key)
	defer freeC(ck)

	return call(func(errOut **C.char) C.int {
		return kv_put(C.uintptr_t(h), ck, ckLen, nil, C.size_t(valueLen), errOut)
	})
}

// bridgeGet returns the fetched value and whether the output buffer
// came back null. The transferred buffer is released through kv_free,
// the same primitive external callers use.
func bridgeGet(h uintptr, key []byte) ([]byte, bool, outcome) {
	ck, ckLen := cBytes(key)
	defer freeC(ck)

	var (
		value    *C.char
		valueLen C.size_t
	)
	out := call(func(errOut **C.char) C.int {
		return kv_get(C.uintptr_t(h), ck, ckLen, &value, &valueLen, errOut)
	})
	if value == nil {
		return nil, true, out
	}
	got := C.GoBytes(unsafe.Pointer(value), C.int(valueLen))
	kv_free(unsafe.Pointer(value))
	return got, false, out
}

func bridgeGetNullKey(h uintptr, keyLen int) outcome {
	var (
		value    *C.char
		valueLen C.size_t
	)
	return call(func(errOut **C.char) C.int {
		return kv_get(C.uintptr_t(h), nil, C.size_t(keyLen), &value, &valueLen, errOut)
	})
}

func bridgeDelete(h uintptr, key []byte) outcome {
	ck, ckLen := cBytes(key)
	defer freeC(ck)

	return call(func(errOut **C.char) C.int {
		return kv_delete(C.uintptr_t(h), ck, ckLen, errOut)
	})
}

func bridgeIterCreate(h uintptr, prefix []byte) (uintptr, outcome) {
	cp, cpLen := cBytes(prefix)
	defer freeC(cp)

	var it C.uintptr_t
	out := call(func(errOut **C.char) C.int {
		it = kv_create_prefix_iterator(C.uintptr_t(h), cp, cpLen, errOut)
		return 0
	})
	return uintptr(it), out
}

func bridgeIterCreateNullPrefix(h uintptr, prefixLen int) (uintptr, outcome) {
	var it C.uintptr_t
	out := call(func(errOut **C.char) C.int {
		it = kv_create_prefix_iterator(C.uintptr_t(h), nil, C.size_t(prefixLen), errOut)
		return 0
	})
	return uintptr(it), out
}

// bridgeIterAdvance copies the borrowed key out; the C buffer stays
// owned by the iterator.
func bridgeIterAdvance(it uintptr) ([]byte, outcome) {
	var (
		keyData *C.char
		keyLen  C.size_t
	)
	out := call(func(errOut **C.char) C.int {
		return kv_advance_prefix_iterator(C.uintptr_t(it), &keyData, &keyLen, errOut)
	})
	if keyData == nil {
		return nil, out
	}
	return C.GoBytes(unsafe.Pointer(keyData), C.int(keyLen)), out
}

func bridgeIterDestroy(it uintptr) {
	kv_destroy_prefix_iterator(C.uintptr_t(it))
}

func bridgeBackup(h uintptr, dir string, flushFirst bool) outcome {
	cdir := C.CString(dir)
	defer C.free(unsafe.Pointer(cdir))

	flush := C.int(0)
	if flushFirst {
		flush = 1
	}

	return call(func(errOut **C.char) C.int {
		return kv_backup(C.uintptr_t(h), cdir, flush, errOut)
	})
}

func bridgeRestoreLatest(backupDir, dbPath string) outcome {
	cb := C.CString(backupDir)
	defer C.free(unsafe.Pointer(cb))
	cd := C.CString(dbPath)
	defer C.free(unsafe.Pointer(cd))

	return call(func(errOut **C.char) C.int {
		return kv_restore_latest_backup(cb, cd, errOut)
	})
}
