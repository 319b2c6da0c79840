// Package protocol implements mDNS protocol validation and constants.
package protocol

import (
	"fmt"

	"github.com/corvidlabs/beacon/internal/errors"
)

// ValidateResponse validates DNS response header flags per RFC 6762 §18.
//
// RFC 6762 Requirements:
//
//	§18.2: Response messages MUST have QR bit set to 1
//	§18.3: OPCODE MUST be zero (standard query)
//	§18.11: mDNS responders MUST ignore messages with non-zero RCODE
func ValidateResponse(flags uint16) error {
	qr := (flags & FlagQR) >> 15
	if qr != 1 {
		return &errors.ValidationError{
			Field:   "flags",
			Value:   flags,
			Message: fmt.Sprintf("QR bit is %d, expected 1 per RFC 6762 §18.2 (flags: 0x%04X)", qr, flags),
		}
	}

	opcode := (flags >> 11) & 0x0F
	if opcode != OpcodeQuery {
		return &errors.ValidationError{
			Field:   "flags",
			Value:   flags,
			Message: fmt.Sprintf("OPCODE is %d, expected %d per RFC 6762 §18.3 (flags: 0x%04X)", opcode, OpcodeQuery, flags),
		}
	}

	rcode := flags & 0x000F
	if rcode != RCodeNoError {
		return &errors.ValidationError{
			Field:   "flags",
			Value:   flags,
			Message: fmt.Sprintf("RCODE is %d, expected %d per RFC 6762 §18.11 (flags: 0x%04X)", rcode, RCodeNoError, flags),
		}
	}

	return nil
}
