package errors

import "errors"

// Sentinel error kinds returned by the wire codec packages (wire, label,
// record, message). The engine's Server treats every one of these as "drop
// the packet and proceed" per the inbound-parse error policy; codec callers
// and tests compare against them with errors.Is.
var (
	// ErrTruncated means a read ran past the end of the buffer.
	ErrTruncated = errors.New("beacon: truncated: read past end of buffer")

	// ErrLabelLoop means a compression-pointer chain exceeded the hop limit.
	ErrLabelLoop = errors.New("beacon: label loop: compression pointer recursion exceeded bound")

	// ErrLabelOverflow means a label's segment count or total length exceeded
	// the configured maximum.
	ErrLabelOverflow = errors.New("beacon: label overflow: segment count or length exceeded")

	// ErrInvalidLabel means a label segment was structurally invalid (empty,
	// oversized, or contained a forbidden byte where one is forbidden).
	ErrInvalidLabel = errors.New("beacon: invalid label")

	// ErrInvalidEnum means an unexpected opcode/class/type value was
	// encountered where a known one was expected.
	ErrInvalidEnum = errors.New("beacon: invalid enum value")

	// ErrTooMany means a bounded collection's capacity was exceeded while
	// parsing (questions, answers, label segments, or dictionary entries).
	ErrTooMany = errors.New("beacon: too many entries for configured capacity")

	// ErrBufferFull means a Writer ran out of room; the in-progress message
	// must be abandoned rather than sent truncated.
	ErrBufferFull = errors.New("beacon: buffer full")
)
