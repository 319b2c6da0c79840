package wire

import (
	"encoding/binary"

	berrors "github.com/corvidlabs/beacon/internal/errors"
)

// MaxPointerHops bounds the number of compression-pointer dereferences a
// single label decode may follow before it is treated as a loop. RFC 1035
// §4.1.4 pointers always point strictly backwards, so a well-formed packet
// never needs anywhere near this many hops; it exists purely to bound
// hostile or corrupted input.
const MaxPointerHops = 16

// Reader is a positioned cursor over an immutable byte slice. It decodes
// primitive wire values; label decompression lives in package label because
// it must seek back into the original packet rather than this cursor's
// current position.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for reading from the start.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Buf returns the full underlying packet (needed by label decompression to
// dereference pointers against the original message, not a subslice of it).
func (r *Reader) Buf() []byte {
	return r.buf
}

// Position returns the current read offset.
func (r *Reader) Position() int {
	return r.pos
}

// Seek moves the cursor to an absolute offset. It does not validate the
// offset; callers performing pointer dereference must bounds-check first.
func (r *Reader) Seek(off int) {
	r.pos = off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, berrors.ErrTruncated
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadU16BE reads a big-endian uint16.
func (r *Reader) ReadU16BE() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, berrors.ErrTruncated
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

// ReadU32BE reads a big-endian uint32.
func (r *Reader) ReadU32BE() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, berrors.ErrTruncated
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, berrors.ErrTruncated
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// PeekU8At reads a byte at an absolute offset without moving the cursor.
func (r *Reader) PeekU8At(off int) (uint8, error) {
	if off < 0 || off >= len(r.buf) {
		return 0, berrors.ErrTruncated
	}
	return r.buf[off], nil
}
