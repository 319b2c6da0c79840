// Package label implements DNS name (label sequence) encoding and decoding
// per RFC 1035 §3.1/§4.1.4, including backward-pointer message compression.
package label

import (
	"strings"

	berrors "github.com/corvidlabs/beacon/internal/errors"
)

const (
	// MaxSegmentLen is the maximum length of one label segment (63 bytes)
	// per RFC 1035 §3.1.
	MaxSegmentLen = 63

	// MaxWireLen is the maximum serialized length of a name (255 bytes)
	// per RFC 1035 §3.1.
	MaxWireLen = 255
)

// Label is an ordered sequence of at most N segments, where N is bounded by
// the MaxSegments the Label was built with. It has no notion of a trailing
// root dot; "printer.local" is the two segments {"printer", "local"}.
type Label struct {
	segments []string
	// instanceUTF8 marks that segments[0] is a DNS-SD service-instance name
	// (RFC 6763 §4.3) and may therefore contain arbitrary UTF-8 bytes,
	// including spaces, instead of the strict hostname character set.
	instanceUTF8 bool
}

// New builds a Label from dot-separated text such as "printer.local". Use
// NewInstance instead when the first segment is a free-form DNS-SD instance
// name that may contain spaces or non-ASCII bytes.
func New(name string, maxSegments int) (Label, error) {
	return build(name, maxSegments, false)
}

// NewInstance builds a Label whose first segment is a DNS-SD instance name
// (RFC 6763 §4.3) permitted to hold arbitrary UTF-8, and whose remaining
// segments (the service type/proto/domain) are validated as ordinary DNS
// labels.
func NewInstance(name string, maxSegments int) (Label, error) {
	return build(name, maxSegments, true)
}

func build(name string, maxSegments int, utf8Instance bool) (Label, error) {
	if name == "" {
		return Label{}, berrors.ErrInvalidLabel
	}
	parts := strings.Split(strings.TrimSuffix(name, "."), ".")
	if len(parts) > maxSegments {
		return Label{}, berrors.ErrLabelOverflow
	}

	wire := 1 // trailing root byte
	for i, seg := range parts {
		if seg == "" {
			return Label{}, berrors.ErrInvalidLabel
		}
		if len(seg) > MaxSegmentLen {
			return Label{}, berrors.ErrLabelOverflow
		}
		freeform := utf8Instance && i == 0
		if !freeform {
			if err := validateHostSegment(seg); err != nil {
				return Label{}, err
			}
		}
		wire += 1 + len(seg)
	}
	if wire > MaxWireLen {
		return Label{}, berrors.ErrLabelOverflow
	}

	return Label{segments: parts, instanceUTF8: utf8Instance}, nil
}

// FromSegments builds a Label directly from already-validated segments,
// used by the decoder once it has collected segments off the wire.
func FromSegments(segments []string) Label {
	return Label{segments: append([]string(nil), segments...)}
}

func validateHostSegment(seg string) error {
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		valid := (c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '-' || c == '_'
		if !valid {
			return berrors.ErrInvalidLabel
		}
		if c == '-' && (i == 0 || i == len(seg)-1) {
			return berrors.ErrInvalidLabel
		}
	}
	return nil
}

// Segments returns the label's raw segment slice. Callers must not mutate
// it.
func (l Label) Segments() []string {
	return l.segments
}

// Len returns the number of segments.
func (l Label) Len() int {
	return len(l.segments)
}

// String renders the label as dot-joined text, e.g. "printer.local".
func (l Label) String() string {
	return strings.Join(l.segments, ".")
}

// Equal compares two labels per DNS case-insensitive, segment-count-exact
// equality.
func (l Label) Equal(other Label) bool {
	if len(l.segments) != len(other.segments) {
		return false
	}
	for i := range l.segments {
		if !strings.EqualFold(l.segments[i], other.segments[i]) {
			return false
		}
	}
	return true
}

// Join returns a new Label with other's segments appended after l's, used
// to build e.g. "instance" + "_svc._proto.local".
func (l Label) Join(other Label) Label {
	out := make([]string, 0, len(l.segments)+len(other.segments))
	out = append(out, l.segments...)
	out = append(out, other.segments...)
	return Label{segments: out, instanceUTF8: l.instanceUTF8 || other.instanceUTF8}
}
