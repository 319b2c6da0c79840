// Package wire implements the low-level byte cursors shared by every codec
// in the engine: a Writer over a caller-supplied buffer and a Reader over an
// immutable packet. Neither type allocates; both are built to be reused
// across many messages.
package wire

import (
	"encoding/binary"

	berrors "github.com/corvidlabs/beacon/internal/errors"
)

// Writer is an append-only cursor over a mutable byte slice. It never grows
// the slice and never panics: once the buffer is exhausted it silently
// enters an overflow state and all further writes become no-ops.
type Writer struct {
	buf        []byte
	pos        int
	overflowed bool
}

// NewWriter wraps buf for writing. The caller owns buf's lifetime.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Position returns the number of bytes written so far (equivalently, the
// next write offset), even while overflowed.
func (w *Writer) Position() int {
	return w.pos
}

// Overflowed reports whether a write has been dropped because the buffer
// ran out of room.
func (w *Writer) Overflowed() bool {
	return w.overflowed
}

// Bytes returns the portion of the underlying buffer written so far.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.pos]
}

// fits reports whether n more bytes can be written without exceeding buf,
// marking the writer overflowed if not.
func (w *Writer) fits(n int) bool {
	if w.overflowed || w.pos+n > len(w.buf) {
		w.overflowed = true
		return false
	}
	return true
}

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) {
	if !w.fits(1) {
		return
	}
	w.buf[w.pos] = v
	w.pos++
}

// WriteU16BE appends a big-endian uint16.
func (w *Writer) WriteU16BE(v uint16) {
	if !w.fits(2) {
		return
	}
	binary.BigEndian.PutUint16(w.buf[w.pos:w.pos+2], v)
	w.pos += 2
}

// WriteU32BE appends a big-endian uint32.
func (w *Writer) WriteU32BE(v uint32) {
	if !w.fits(4) {
		return
	}
	binary.BigEndian.PutUint32(w.buf[w.pos:w.pos+4], v)
	w.pos += 4
}

// WriteBytes appends b verbatim.
func (w *Writer) WriteBytes(b []byte) {
	if !w.fits(len(b)) {
		return
	}
	copy(w.buf[w.pos:], b)
	w.pos += len(b)
}

// SetU16BEAt back-patches a big-endian uint16 already within the written
// region, used to fill in rdlength and section counts after the fact. It is
// a no-op if off lies outside what has actually been written.
func (w *Writer) SetU16BEAt(off int, v uint16) {
	if off < 0 || off+2 > w.pos {
		return
	}
	binary.BigEndian.PutUint16(w.buf[off:off+2], v)
}

// TruncateTo rewinds the writer to an earlier offset and clears any
// overflow state, discarding everything written since. Used by higher-level
// codecs to drop a record that didn't fully fit while keeping everything
// written before it (RFC 1035 §4.1.1's truncation-at-a-record-boundary
// behavior), rather than abandoning the whole message.
func (w *Writer) TruncateTo(off int) {
	if off < 0 || off > w.pos {
		return
	}
	w.pos = off
	w.overflowed = false
}

// Finish reports BufferFull if any write along the way overflowed; the
// caller must abandon the in-progress message in that case rather than send
// a silently truncated one.
func (w *Writer) Finish() error {
	if w.overflowed {
		return berrors.ErrBufferFull
	}
	return nil
}
