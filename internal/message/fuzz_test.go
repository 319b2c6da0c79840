package message

import (
	"testing"

	"github.com/corvidlabs/beacon/internal/wire"
)

// FuzzParseMessage feeds arbitrary bytes to Parse to confirm it never
// panics, regardless of how malformed the packet is (mDNS is a lossy,
// untrusted-input protocol; a parse error is fine, a panic is not).
func FuzzParseMessage(f *testing.F) {
	f.Add([]byte{
		0x12, 0x34, 0x84, 0x00,
		0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00,
		0x04, 't', 'e', 's', 't', 0x05, 'l', 'o', 'c', 'a', 'l', 0x00,
		0x00, 0x01, 0x00, 0x01,
		0x04, 't', 'e', 's', 't', 0x05, 'l', 'o', 'c', 'a', 'l', 0x00,
		0x00, 0x01, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x78,
		0x00, 0x04, 192, 168, 1, 100,
	})

	f.Add([]byte{
		0x12, 0x34, 0x84, 0x00,
		0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00,
		0x04, 't', 'e', 's', 't', 0x05, 'l', 'o', 'c', 'a', 'l', 0x00,
		0x00, 0x01, 0x00, 0x01,
		0xC0, 0x0C, 0x00, 0x01, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x78,
		0x00, 0x04, 192, 168, 1, 100,
	})

	f.Add([]byte{0x12, 0x34, 0x84, 0x00})

	f.Add([]byte{
		0x12, 0x34, 0x84, 0x00,
		0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xC0, 0x0C, 0x00, 0x01, 0x00, 0x01,
	})

	f.Add([]byte{
		0x12, 0x34, 0x84, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	})

	limits := Limits{MaxQuestions: 16, MaxAnswers: 16, MaxSegments: 16, MaxEntries: 16}
	f.Fuzz(func(_ *testing.T, data []byte) {
		r := wire.NewReader(data)
		_, _ = Parse(r, limits)
	})
}
