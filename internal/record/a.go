package record

import (
	berrors "github.com/corvidlabs/beacon/internal/errors"
	"github.com/corvidlabs/beacon/internal/label"
	"github.com/corvidlabs/beacon/internal/wire"
)

// A maps a host name to an IPv4 address, per RFC 1035 §3.4.1. The engine has
// no AAAA counterpart (IPv4-only is an explicit Non-goal of the core data
// model).
type A struct {
	Hdr  Header
	Addr [4]byte
}

func (r *A) Kind() Kind   { return KindA }
func (r *A) Head() Header { return r.Hdr }

func (r *A) Equal(o Record) bool {
	other, ok := o.(*A)
	return ok && r.Hdr.equal(other.Hdr) && r.Addr == other.Addr
}

func (r *A) writeRData(w *wire.Writer, c *label.Compressor) {
	w.WriteBytes(r.Addr[:])
}

func parseARData(r *wire.Reader, h Header) (Record, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	if len(b) != 4 {
		return nil, berrors.ErrTruncated
	}
	var addr [4]byte
	copy(addr[:], b)
	return &A{Hdr: h, Addr: addr}, nil
}
