package record

import (
	berrors "github.com/corvidlabs/beacon/internal/errors"
	"github.com/corvidlabs/beacon/internal/label"
	"github.com/corvidlabs/beacon/internal/wire"
)

// TXT carries service metadata as a sequence of length-prefixed byte
// strings, per RFC 6763 §6. An empty Entries set serializes as a single
// zero-length string (the mandatory 0x00 byte required by §6.1).
type TXT struct {
	Hdr     Header
	Entries [][]byte
}

func (r *TXT) Kind() Kind   { return KindTXT }
func (r *TXT) Head() Header { return r.Hdr }

func (r *TXT) Equal(o Record) bool {
	other, ok := o.(*TXT)
	if !ok || !r.Hdr.equal(other.Hdr) || len(r.Entries) != len(other.Entries) {
		return false
	}
	for i := range r.Entries {
		if string(r.Entries[i]) != string(other.Entries[i]) {
			return false
		}
	}
	return true
}

func (r *TXT) writeRData(w *wire.Writer, c *label.Compressor) {
	if len(r.Entries) == 0 {
		w.WriteU8(0)
		return
	}
	for _, e := range r.Entries {
		w.WriteU8(uint8(len(e)))
		w.WriteBytes(e)
	}
}

func parseTXTRData(r *wire.Reader, h Header, rdataEnd, maxEntries int) (Record, error) {
	var entries [][]byte
	for r.Position() < rdataEnd {
		n, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}
		b, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		entries = append(entries, append([]byte(nil), b...))
		if len(entries) > maxEntries {
			return nil, berrors.ErrTooMany
		}
	}
	return &TXT{Hdr: h, Entries: entries}, nil
}
