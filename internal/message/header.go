// Package message implements the 12-byte DNS header plus the four message
// sections (questions, answers, authorities, additionals) per RFC 1035
// §4.1, built entirely on internal/wire, internal/label, and
// internal/record. Parsing and serializing never allocate beyond the
// slices the caller already owns (the section slices themselves, sized to
// the caller's configured bounds).
package message

import (
	"github.com/corvidlabs/beacon/internal/protocol"
	"github.com/corvidlabs/beacon/internal/wire"
)

// Header flag bits per RFC 1035 §4.1.1 / RFC 6762 §18. Aliased from
// internal/protocol so the bit positions live in exactly one place.
const (
	FlagQR = protocol.FlagQR
	FlagAA = protocol.FlagAA
	FlagTC = protocol.FlagTC
	FlagRD = protocol.FlagRD
)

// Header is the fixed 12-byte message header.
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

func (h Header) IsQuery() bool    { return h.Flags&FlagQR == 0 }
func (h Header) IsResponse() bool { return h.Flags&FlagQR != 0 }
func (h Header) RCode() uint16    { return h.Flags & 0x000F }

func writeHeaderPlaceholder(w *wire.Writer, h Header) (countsOff int) {
	w.WriteU16BE(h.ID)
	w.WriteU16BE(h.Flags)
	countsOff = w.Position()
	w.WriteU16BE(0)
	w.WriteU16BE(0)
	w.WriteU16BE(0)
	w.WriteU16BE(0)
	return countsOff
}

func backpatchCounts(w *wire.Writer, countsOff int, qd, an, ns, ar int) {
	w.SetU16BEAt(countsOff, uint16(qd))
	w.SetU16BEAt(countsOff+2, uint16(an))
	w.SetU16BEAt(countsOff+4, uint16(ns))
	w.SetU16BEAt(countsOff+6, uint16(ar))
}

func parseHeader(r *wire.Reader) (Header, error) {
	var h Header
	var err error
	if h.ID, err = r.ReadU16BE(); err != nil {
		return Header{}, err
	}
	if h.Flags, err = r.ReadU16BE(); err != nil {
		return Header{}, err
	}
	if h.QDCount, err = r.ReadU16BE(); err != nil {
		return Header{}, err
	}
	if h.ANCount, err = r.ReadU16BE(); err != nil {
		return Header{}, err
	}
	if h.NSCount, err = r.ReadU16BE(); err != nil {
		return Header{}, err
	}
	if h.ARCount, err = r.ReadU16BE(); err != nil {
		return Header{}, err
	}
	return h, nil
}
