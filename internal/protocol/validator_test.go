package protocol

import (
	goerrors "errors"
	"testing"

	"github.com/corvidlabs/beacon/internal/errors"
)

func TestValidateResponse_RFC6762_ResponseFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   uint16
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid response: QR=1, RCODE=0 per RFC 6762 §18.2, §18.11",
			flags:   0x8000, // QR=1, OPCODE=0, AA=0, TC=0, RD=0, RA=0, Z=0, RCODE=0
			wantErr: false,
		},
		{
			name:    "valid response: QR=1, AA=1, RCODE=0",
			flags:   0x8400, // QR=1, AA=1, RCODE=0
			wantErr: false,
		},
		{
			name:    "invalid: QR=0 (query, not response) per RFC 6762 §18.2",
			flags:   0x0000, // QR=0
			wantErr: true,
			errMsg:  "QR bit",
		},
		{
			name:    "invalid: RCODE=1 (format error) per RFC 6762 §18.11",
			flags:   0x8001, // QR=1, RCODE=1
			wantErr: true,
			errMsg:  "RCODE",
		},
		{
			name:    "invalid: RCODE=2 (server failure) per RFC 6762 §18.11",
			flags:   0x8002, // QR=1, RCODE=2
			wantErr: true,
			errMsg:  "RCODE",
		},
		{
			name:    "invalid: RCODE=3 (name error / NXDOMAIN) per RFC 6762 §18.11",
			flags:   0x8003, // QR=1, RCODE=3
			wantErr: true,
			errMsg:  "RCODE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(tt.flags)

			if tt.wantErr && err == nil {
				t.Errorf("ValidateResponse(0x%04X) expected error, got nil", tt.flags)
				return
			}

			if !tt.wantErr && err != nil {
				t.Errorf("ValidateResponse(0x%04X) unexpected error: %v", tt.flags, err)
				return
			}

			if tt.wantErr {
				var validationErr *errors.ValidationError
				if !goerrors.As(err, &validationErr) {
					t.Errorf("ValidateResponse(0x%04X) expected ValidationError, got %T: %v", tt.flags, err, err)
					return
				}
				if tt.errMsg != "" && validationErr.Error() == "" {
					t.Errorf("ValidationError has empty message")
				}
			}
		})
	}
}

func TestValidateResponse_RFC6762_OpcodeHandling(t *testing.T) {
	tests := []struct {
		name    string
		flags   uint16
		wantErr bool
	}{
		{
			name:    "OPCODE=0 (standard query) per RFC 6762 §18.3",
			flags:   0x8000, // QR=1, OPCODE=0, RCODE=0
			wantErr: false,
		},
		{
			name:    "OPCODE=1 (inverse query) - invalid per RFC 6762 §18.3",
			flags:   0x8800, // QR=1, OPCODE=1, RCODE=0
			wantErr: true,
		},
		{
			name:    "OPCODE=2 (status) - invalid per RFC 6762 §18.3",
			flags:   0x9000, // QR=1, OPCODE=2, RCODE=0
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(tt.flags)

			if tt.wantErr && err == nil {
				t.Errorf("ValidateResponse(0x%04X) expected error per RFC 6762 §18.3, got nil", tt.flags)
				return
			}

			if !tt.wantErr && err != nil {
				t.Errorf("ValidateResponse(0x%04X) unexpected error: %v", tt.flags, err)
			}
		})
	}
}
