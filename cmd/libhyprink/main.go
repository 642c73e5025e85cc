// Command libhyprink builds hyprink as a C shared library:
//
//	go build -buildmode=c-shared -o libhyprink.so ./cmd/libhyprink
//
// hyprink.h declares the exported functions. Strings passed in are
// NUL-terminated and copied before use; the only string handed back is the
// last error, written into a caller-owned buffer.
package main

/*
#include <stdint.h>
#include <stddef.h>
*/
import "C"

import (
	"unsafe"

	"fortio.org/safecast"

	"github.com/crimson-sun/hyprink/internal/boundary"
	"github.com/crimson-sun/hyprink/internal/errors"
	"github.com/crimson-sun/hyprink/internal/handle"
)

func main() {}

func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

func status(s errors.Status) C.int { return C.int(s) }

func level(l C.int) int32 {
	v, err := safecast.Conv[int32](int64(l))
	if err != nil {
		return -1
	}
	return v
}

//export hyprink_create
func hyprink_create(configPath *C.char) C.uint64_t {
	return C.uint64_t(boundary.Default.Create(goString(configPath)))
}

//export hyprink_release
func hyprink_release(h C.uint64_t) {
	boundary.Default.Release(handle.Handle(h))
}

//export hyprink_set_app_name
func hyprink_set_app_name(h C.uint64_t, name *C.char) {
	boundary.Default.SetAppName(handle.Handle(h), goString(name))
}

//export hyprink_log
func hyprink_log(h C.uint64_t, lvl C.int, source, msg *C.char) {
	boundary.Default.Log(handle.Handle(h), level(lvl), goString(source), goString(msg))
}

//export hyprink_log_preset
func hyprink_log_preset(h C.uint64_t, name, override *C.char) C.int {
	return status(boundary.Default.LogPreset(handle.Handle(h), goString(name), goString(override)))
}

//export hyprink_define_preset
func hyprink_define_preset(h C.uint64_t, name *C.char, lvl C.int, source, msg *C.char) C.int {
	return status(boundary.Default.DefinePreset(handle.Handle(h), goString(name), level(lvl), goString(source), goString(msg)))
}

//export hyprink_load_presets
func hyprink_load_presets(h C.uint64_t, path *C.char) C.int {
	return status(boundary.Default.LoadPresets(handle.Handle(h), goString(path)))
}

//export hyprink_pack
func hyprink_pack(h C.uint64_t, source, output *C.char) C.int {
	return status(boundary.Default.Pack(handle.Handle(h), goString(source), goString(output)))
}

//export hyprink_unpack
func hyprink_unpack(h C.uint64_t, pkg, target *C.char) C.int {
	return status(boundary.Default.Unpack(handle.Handle(h), goString(pkg), goString(target)))
}

//export hyprink_verify
func hyprink_verify(h C.uint64_t, pkg *C.char) C.int {
	return status(boundary.Default.Verify(handle.Handle(h), goString(pkg)))
}

//export hyprink_get_error
func hyprink_get_error(h C.uint64_t, buf *C.char, capacity C.size_t) C.size_t {
	var dst []byte
	if buf != nil && capacity > 0 {
		n, err := safecast.Conv[int](uint64(capacity))
		if err != nil {
			n = int(^uint(0) >> 1)
		}
		dst = unsafe.Slice((*byte)(unsafe.Pointer(buf)), n)
	}
	n := boundary.Default.GetError(handle.Handle(h), dst)
	out, err := safecast.Conv[uint64](n)
	if err != nil {
		return 0
	}
	return C.size_t(out)
}

//export hyprink_last_error_kind
func hyprink_last_error_kind(h C.uint64_t) C.int {
	return status(boundary.Default.LastErrorKind(handle.Handle(h)))
}
