package record

import (
	"github.com/corvidlabs/beacon/internal/label"
	"github.com/corvidlabs/beacon/internal/wire"
)

// SRV maps a service instance to a host and port, per RFC 2782. Priority and
// weight are carried but unused by the engine (it never advertises more than
// one instance of itself at a given name, so load-balancing semantics never
// come into play); both are always encoded as 0.
type SRV struct {
	Hdr      Header
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   label.Label
}

func (r *SRV) Kind() Kind   { return KindSRV }
func (r *SRV) Head() Header { return r.Hdr }

func (r *SRV) Equal(o Record) bool {
	other, ok := o.(*SRV)
	return ok && r.Hdr.equal(other.Hdr) &&
		r.Priority == other.Priority && r.Weight == other.Weight &&
		r.Port == other.Port && r.Target.Equal(other.Target)
}

func (r *SRV) writeRData(w *wire.Writer, c *label.Compressor) {
	w.WriteU16BE(r.Priority)
	w.WriteU16BE(r.Weight)
	w.WriteU16BE(r.Port)
	// RFC 6762 §18.14 permits compressing the SRV target; we take it, per
	// the Open Question resolution recorded in DESIGN.md.
	_ = c.Encode(w, r.Target)
}

func parseSRVRData(r *wire.Reader, h Header, maxSegments int) (Record, error) {
	priority, err := r.ReadU16BE()
	if err != nil {
		return nil, err
	}
	weight, err := r.ReadU16BE()
	if err != nil {
		return nil, err
	}
	port, err := r.ReadU16BE()
	if err != nil {
		return nil, err
	}
	target, err := label.Decode(r, maxSegments)
	if err != nil {
		return nil, err
	}
	return &SRV{Hdr: h, Priority: priority, Weight: weight, Port: port, Target: target}, nil
}
