package errchan

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/hyprink/internal/errors"
)

func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func TestEmptySlot(t *testing.T) {
	var s Slot
	_, _, ok := s.Snapshot()
	assert.False(t, ok)

	buf := []byte{'x', 'x', 'x'}
	n := s.CopyTo(buf)
	assert.Equal(t, 0, n)
	assert.Equal(t, "", cstr(buf))
}

func TestSetOverwrites(t *testing.T) {
	var s Slot
	s.Set(errors.KindUnknownPreset, `preset: unknown preset "a"`)
	s.Set(errors.KindIO, "pack: i/o error")

	kind, msg, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, errors.KindIO, kind)
	assert.Equal(t, "pack: i/o error", msg)
}

func TestSetErrClassifies(t *testing.T) {
	var s Slot
	s.SetErr(nil)
	_, _, ok := s.Snapshot()
	require.False(t, ok, "nil error must not touch the slot")

	s.SetErr(errors.E(errors.KindSourceNotFound, "pack", "/nope", nil))
	kind, msg, _ := s.Snapshot()
	assert.Equal(t, errors.KindSourceNotFound, kind)
	assert.Contains(t, msg, "/nope")
}

func TestCopyFits(t *testing.T) {
	buf := make([]byte, 16)
	n := Copy(buf, "hello")
	assert.Equal(t, 5, n)
	assert.False(t, Truncated(n, len(buf)))
	assert.Equal(t, "hello", cstr(buf))
}

func TestCopyExactBoundary(t *testing.T) {
	// "hello" needs 6 bytes with the terminator.
	buf := make([]byte, 5)
	n := Copy(buf, "hello")
	assert.Equal(t, 5, n)
	assert.True(t, Truncated(n, len(buf)))
	assert.Equal(t, "hell", cstr(buf))
	assert.Equal(t, byte(0), buf[4])
}

func TestCopyTruncatesWithoutOverflow(t *testing.T) {
	backing := make([]byte, 8)
	for i := range backing {
		backing[i] = 0xAA
	}
	buf := backing[:4]
	n := Copy(buf, "a fairly long message")

	assert.Equal(t, len("a fairly long message"), n)
	assert.Equal(t, "a f", cstr(buf))
	for i := 4; i < len(backing); i++ {
		assert.Equal(t, byte(0xAA), backing[i], "byte %d beyond capacity was written", i)
	}
}

func TestCopyZeroCapacity(t *testing.T) {
	n := Copy(nil, "abc")
	assert.Equal(t, 3, n)
	assert.True(t, Truncated(n, 0))
}

func TestCopyCapacityOne(t *testing.T) {
	buf := []byte{'z'}
	n := Copy(buf, "abc")
	assert.Equal(t, 3, n)
	assert.Equal(t, byte(0), buf[0])
}
