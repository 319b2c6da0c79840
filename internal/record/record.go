// Package record implements the four resource record kinds the engine
// speaks — PTR, SRV, TXT, A — per RFC 1035 §3.3/§3.4, RFC 2782, and
// RFC 6763 §6. Each kind knows how to write its own rdata and parse it back;
// the shared header (name, type, class, TTL, rdlength) is handled once by
// Serialize and Parse.
package record

import (
	berrors "github.com/corvidlabs/beacon/internal/errors"
	"github.com/corvidlabs/beacon/internal/label"
	"github.com/corvidlabs/beacon/internal/protocol"
	"github.com/corvidlabs/beacon/internal/wire"
)

// Kind is a record's DNS type number; the engine only ever builds or parses
// the four defined below (plus protocol.RecordTypeANY, which only ever
// appears on the question side, never as an answer).
type Kind = protocol.RecordType

const (
	KindA   = protocol.RecordTypeA
	KindPTR = protocol.RecordTypePTR
	KindTXT = protocol.RecordTypeTXT
	KindSRV = protocol.RecordTypeSRV
	KindANY = protocol.RecordTypeANY
)

// Class is always IN on the wire; the type exists so callers don't sprinkle
// magic uint16(1) literals.
type Class = protocol.DNSClass

const ClassIN = protocol.ClassIN

// Header carries the fields common to every record. CacheFlush is decoded
// off the wire (top bit of the class field, RFC 6762 §10.2) but the engine
// never sets it on emit: it runs as a shared-record-only responder and does
// not implement cache-flush semantics beyond this passthrough.
type Header struct {
	Name       label.Label
	Class      Class
	TTL        uint32
	CacheFlush bool
}

func (h Header) equal(o Header) bool {
	return h.Name.Equal(o.Name) && h.Class == o.Class && h.CacheFlush == o.CacheFlush
}

// Record is implemented by PTR, SRV, TXT, and A. TTL is intentionally
// excluded from Equal: the dedup rules in §4.5 key on (name, type, class,
// rdata), not TTL.
type Record interface {
	Kind() Kind
	Head() Header
	Equal(Record) bool
	writeRData(w *wire.Writer, c *label.Compressor)
}

func writeHeader(w *wire.Writer, c *label.Compressor, h Header, kind Kind) (rdlenOff int) {
	// Encode's only failure mode is the writer running out of room, which
	// w already tracks as Overflowed; Serialize's final w.Finish() reports
	// it, so the error here is ignored rather than threaded through.
	_ = c.Encode(w, h.Name)
	w.WriteU16BE(uint16(kind))
	class := uint16(h.Class)
	if h.CacheFlush {
		class |= 0x8000
	}
	w.WriteU16BE(class)
	w.WriteU32BE(h.TTL)
	rdlenOff = w.Position()
	w.WriteU16BE(0) // placeholder, back-patched by Serialize
	return rdlenOff
}

// Serialize writes rec's full wire form (header + rdata) to w, compressing
// names against c, and back-patches the rdlength once rdata is known.
func Serialize(w *wire.Writer, c *label.Compressor, rec Record) error {
	rdlenOff := writeHeader(w, c, rec.Head(), rec.Kind())
	rdataStart := w.Position()
	rec.writeRData(w, c)
	rdlen := w.Position() - rdataStart
	w.SetU16BEAt(rdlenOff, uint16(rdlen))
	return w.Finish()
}

// Parse reads one resource record (name, type, class, TTL, rdlength, rdata)
// starting at r's current position. maxSegments and maxEntries bound the
// name and TXT-entry-count decoding respectively.
func Parse(r *wire.Reader, maxSegments, maxEntries int) (Record, error) {
	name, err := label.Decode(r, maxSegments)
	if err != nil {
		return nil, err
	}
	rawType, err := r.ReadU16BE()
	if err != nil {
		return nil, err
	}
	rawClass, err := r.ReadU16BE()
	if err != nil {
		return nil, err
	}
	ttl, err := r.ReadU32BE()
	if err != nil {
		return nil, err
	}
	rdlen, err := r.ReadU16BE()
	if err != nil {
		return nil, err
	}
	rdataEnd := r.Position() + int(rdlen)

	head := Header{
		Name:       name,
		Class:      Class(rawClass &^ 0x8000),
		TTL:        ttl,
		CacheFlush: rawClass&0x8000 != 0,
	}

	var rec Record
	switch Kind(rawType) {
	case KindPTR:
		rec, err = parsePTRRData(r, head, maxSegments)
	case KindSRV:
		rec, err = parseSRVRData(r, head, maxSegments)
	case KindTXT:
		rec, err = parseTXTRData(r, head, rdataEnd, maxEntries)
	case KindA:
		rec, err = parseARData(r, head)
	default:
		return nil, berrors.ErrInvalidEnum
	}
	if err != nil {
		return nil, err
	}

	// Records are length-delimited by rdlength, not by what their rdata
	// parser consumed (e.g. a compressed SRV target may dereference bytes
	// that lie entirely before rdataStart). Resync to the declared boundary
	// so a malformed or unexpectedly-short rdata can't desynchronize the
	// rest of the message.
	if rdataEnd > len(r.Buf()) {
		return nil, berrors.ErrTruncated
	}
	r.Seek(rdataEnd)
	return rec, nil
}
