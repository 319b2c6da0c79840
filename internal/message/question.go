package message

import (
	"github.com/corvidlabs/beacon/internal/label"
	"github.com/corvidlabs/beacon/internal/record"
	"github.com/corvidlabs/beacon/internal/wire"
)

// Question is one entry of the question section. QU marks that the asker
// requested a unicast reply (RFC 6762 §18.12); the engine decodes it but
// always responds by multicast regardless, per the explicit Non-goal.
type Question struct {
	Name  label.Label
	Type  record.Kind
	Class record.Class
	QU    bool
}

// Equal compares the (name, type, class) tuple used for question-side
// dedup; QU is not part of identity.
func (q Question) Equal(o Question) bool {
	return q.Name.Equal(o.Name) && q.Type == o.Type && q.Class == o.Class
}

func writeQuestion(w *wire.Writer, c *label.Compressor, q Question) {
	_ = c.Encode(w, q.Name)
	w.WriteU16BE(uint16(q.Type))
	class := uint16(q.Class)
	if q.QU {
		class |= 0x8000
	}
	w.WriteU16BE(class)
}

func parseQuestion(r *wire.Reader, maxSegments int) (Question, error) {
	name, err := label.Decode(r, maxSegments)
	if err != nil {
		return Question{}, err
	}
	rawType, err := r.ReadU16BE()
	if err != nil {
		return Question{}, err
	}
	rawClass, err := r.ReadU16BE()
	if err != nil {
		return Question{}, err
	}
	return Question{
		Name:  name,
		Type:  record.Kind(rawType),
		Class: record.Class(rawClass &^ 0x8000),
		QU:    rawClass&0x8000 != 0,
	}, nil
}
