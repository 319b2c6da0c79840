package record

import (
	"github.com/corvidlabs/beacon/internal/label"
	"github.com/corvidlabs/beacon/internal/wire"
)

// PTR maps a service type (or the DNS-SD meta-query name) to a service
// instance name, per RFC 6763 §4.1.
type PTR struct {
	Hdr    Header
	Target label.Label
}

func (r *PTR) Kind() Kind   { return KindPTR }
func (r *PTR) Head() Header { return r.Hdr }

func (r *PTR) Equal(o Record) bool {
	other, ok := o.(*PTR)
	return ok && r.Hdr.equal(other.Hdr) && r.Target.Equal(other.Target)
}

func (r *PTR) writeRData(w *wire.Writer, c *label.Compressor) {
	_ = c.Encode(w, r.Target)
}

func parsePTRRData(r *wire.Reader, h Header, maxSegments int) (Record, error) {
	target, err := label.Decode(r, maxSegments)
	if err != nil {
		return nil, err
	}
	return &PTR{Hdr: h, Target: target}, nil
}
