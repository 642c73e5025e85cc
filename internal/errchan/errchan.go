// Package errchan holds the last-error slot of a Context and the bounded copy
// used to hand its message across the library boundary.
//
// A Slot is not synchronized on its own; the owning Context guards it with
// the same lock that serializes its other mutable state.
package errchan

import "github.com/crimson-sun/hyprink/internal/errors"

// Slot stores the most recent failure. The zero value is an empty slot.
type Slot struct {
	kind    errors.Kind
	message string
	set     bool
}

// Set overwrites the slot with a new failure.
func (s *Slot) Set(kind errors.Kind, message string) {
	s.kind = kind
	s.message = message
	s.set = true
}

// SetErr records err using its classified kind. A nil err is ignored.
func (s *Slot) SetErr(err error) {
	if err == nil {
		return
	}
	s.Set(errors.KindOf(err), err.Error())
}

// Snapshot returns the stored kind and message. ok is false when no failure
// has been recorded.
func (s *Slot) Snapshot() (kind errors.Kind, message string, ok bool) {
	return s.kind, s.message, s.set
}

// CopyTo copies the stored message into dst. See Copy.
func (s *Slot) CopyTo(dst []byte) int {
	return Copy(dst, s.message)
}

// Copy writes msg into dst as a NUL-terminated byte string, truncated to
// len(dst)-1 bytes when necessary. It returns len(msg): when the result is
// less than len(dst) the whole message was written, otherwise the message
// was truncated and the result is the capacity the caller would need minus
// the terminator. A zero-length dst is left untouched.
func Copy(dst []byte, msg string) int {
	if len(dst) == 0 {
		return len(msg)
	}
	n := copy(dst[:len(dst)-1], msg)
	dst[n] = 0
	return len(msg)
}

// Truncated reports whether a Copy result for a buffer of the given capacity
// lost bytes.
func Truncated(result, capacity int) bool {
	return result >= capacity
}
