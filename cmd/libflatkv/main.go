// libflatkv is the C-compatible boundary over the store, built as a
// shared library:
//
//	go build -buildmode=c-shared -o libflatkv.so ./cmd/libflatkv
//
// Callers in other languages drive the store through a flat function
// surface of primitive types only: handles are opaque integers, keys
// and values travel as (pointer, length) pairs, and every fallible call
// reports through an optional char** diagnostic slot plus errno
// (EINVAL, EIO, ENOENT) and a small integer return: 0 success, 1
// not-found or exhausted, -1 failure.
//
// Every buffer this layer hands to the caller - diagnostic strings and
// kv_get results - is malloc'd on the C heap and must be released with
// kv_free, never with the caller's own allocator.
package main

func main() {}
