// Package errors defines the failure kinds shared by every hyprink component,
// the typed Error value carried through internal code, and the helpers that
// flatten an error into the integer status returned across the library
// boundary.
//
// Internal packages return plain Go errors. Only the boundary layer turns
// them into a Status plus a stored message:
//
//	err := errors.E(errors.KindSourceNotFound, "pack", src, nil)
//	status := errors.StatusOf(err) // StatusSourceNotFound
//
// Classification walks the wrap chain, so an *Error wrapped with fmt.Errorf
// keeps its kind.
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Kind classifies a failure. The numeric value of a Kind is the status code
// reported at the boundary.
type Kind int32

const (
	// KindNone marks success. It is never attached to an Error.
	KindNone Kind = iota
	// KindInvalidHandle is reported when a handle does not name a live Context.
	KindInvalidHandle
	// KindUnknownPreset is reported when a preset name is not registered.
	KindUnknownPreset
	// KindSourceNotFound is reported when the packing source does not exist.
	KindSourceNotFound
	// KindSourceNotDirectory is reported when the packing source is not a directory.
	KindSourceNotDirectory
	// KindIO covers read, write and permission failures during packing.
	KindIO
	// KindBufferTooSmall is a length signal from error retrieval, never a status.
	KindBufferTooSmall
	// KindInvalidPackage is reported when a package fails verification.
	KindInvalidPackage
	// KindInvalidArgument is reported for malformed caller input.
	KindInvalidArgument
	// KindInternal is reported when the boundary recovers from a panic.
	KindInternal
)

var kindNames = map[Kind]string{
	KindNone:               "none",
	KindInvalidHandle:      "invalid_handle",
	KindUnknownPreset:      "unknown_preset",
	KindSourceNotFound:     "source_not_found",
	KindSourceNotDirectory: "source_not_directory",
	KindIO:                 "io_error",
	KindBufferTooSmall:     "buffer_too_small",
	KindInvalidPackage:     "invalid_package",
	KindInvalidArgument:    "invalid_argument",
	KindInternal:           "internal",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// describe is the phrase used inside error messages.
func (k Kind) describe() string {
	switch k {
	case KindInvalidHandle:
		return "invalid handle"
	case KindUnknownPreset:
		return "unknown preset"
	case KindSourceNotFound:
		return "source not found"
	case KindSourceNotDirectory:
		return "source is not a directory"
	case KindIO:
		return "i/o error"
	case KindBufferTooSmall:
		return "buffer too small"
	case KindInvalidPackage:
		return "invalid package"
	case KindInvalidArgument:
		return "invalid argument"
	case KindInternal:
		return "internal error"
	default:
		return "error"
	}
}

// Status is the integer result of a failable boundary operation.
// Zero is success; any other value is the Kind of the failure.
type Status int32

// Status codes, one per failure kind.
const (
	StatusOK                 = Status(KindNone)
	StatusInvalidHandle      = Status(KindInvalidHandle)
	StatusUnknownPreset      = Status(KindUnknownPreset)
	StatusSourceNotFound     = Status(KindSourceNotFound)
	StatusSourceNotDirectory = Status(KindSourceNotDirectory)
	StatusIOError            = Status(KindIO)
	StatusInvalidPackage     = Status(KindInvalidPackage)
	StatusInvalidArgument    = Status(KindInvalidArgument)
	StatusInternal           = Status(KindInternal)
)

// Kind returns the failure kind encoded by the status.
func (s Status) Kind() Kind { return Kind(s) }

// OK reports whether the status is success.
func (s Status) OK() bool { return s == StatusOK }

// Sentinel errors used as causes inside *Error values.
var (
	// ErrBadMagic indicates the file does not start with the package magic.
	ErrBadMagic = New("bad magic")
	// ErrUnsupportedVersion indicates a package version this build cannot read.
	ErrUnsupportedVersion = New("unsupported package version")
	// ErrCorruptHeader indicates the package header cannot be decoded.
	ErrCorruptHeader = New("corrupt header")
	// ErrCorruptEntry indicates an entry record cannot be decoded.
	ErrCorruptEntry = New("corrupt entry")
	// ErrChecksumMismatch indicates a digest does not match the stored value.
	ErrChecksumMismatch = New("checksum mismatch")
	// ErrCountMismatch indicates entry count or total size disagree with the header.
	ErrCountMismatch = New("header does not match contents")
	// ErrTrailingData indicates bytes after the package trailer.
	ErrTrailingData = New("trailing data after checksum")
	// ErrUnsafePath indicates an entry path that is absolute or escapes the target.
	ErrUnsafePath = New("unsafe entry path")
	// ErrUnorderedEntries reports entries that are duplicated or not in
	// lexical path order.
	ErrUnorderedEntries = New("entries out of order")
	// ErrChangedDuringPack indicates a source file changed between walk and write.
	ErrChangedDuringPack = New("file changed during packing")
	// ErrEmptyName indicates a required name was empty.
	ErrEmptyName = New("empty name")
	// ErrClosed indicates a call on a Context after Close.
	ErrClosed = New("context closed")
)

// Error is the typed failure carried through hyprink internals.
//
// Example:
//
//	err := errors.E(errors.KindIO, "pack", "/src/secret", os.ErrPermission)
//	fmt.Println(err) // pack: i/o error "/src/secret": permission denied
type Error struct {
	Kind Kind
	Op   string // operation, e.g. "pack", "preset"
	Path string // offending path or name, quoted in the message
	Err  error  // underlying cause, may be nil
}

// E constructs an *Error.
func E(kind Kind, op, path string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: cause}
}

// Error returns the formatted message.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.describe())
	if e.Path != "" {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(e.Path))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind, so callers can test
// errors.Is(err, &errors.Error{Kind: errors.KindIO}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// KindOf returns the kind of the first *Error in err's chain.
// A nil error is KindNone; an error without an *Error in its chain is
// KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf flattens err into a boundary status code.
func StatusOf(err error) Status {
	return Status(KindOf(err))
}
