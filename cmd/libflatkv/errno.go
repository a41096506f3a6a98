package main

/*
#include <errno.h>

static void flatkv_set_errno(int code) { errno = code; }
*/
import "C"

const (
	errInval = int(C.EINVAL)
	errIO    = int(C.EIO)
	errNoEnt = int(C.ENOENT)
)

// setErrno publishes the error classification through the process
// errno, the side channel the original shim callers read. Lives in its
// own file: cgo forbids C definitions in files with exported functions.
func setErrno(code int) {
	C.flatkv_set_errno(C.int(code))
}
