package message

import (
	berrors "github.com/corvidlabs/beacon/internal/errors"
	"github.com/corvidlabs/beacon/internal/label"
	"github.com/corvidlabs/beacon/internal/record"
	"github.com/corvidlabs/beacon/internal/wire"
)

// Limits bounds every collection a Message can hold, replacing the
// compile-time {Q, A, L, S, D} capacities of a statically-typed
// implementation with runtime constructor arguments (see DESIGN.md).
type Limits struct {
	MaxQuestions int // Q: max question-section entries
	MaxAnswers   int // A: max entries in each of answer/authority/additional
	MaxSegments  int // L: max label segments per name
	MaxEntries   int // max TXT bytestring entries per record
}

// Message is the 12-byte header plus its four sections.
type Message struct {
	Header      Header
	Questions   []Question
	Answers     []record.Record
	Authorities []record.Record
	Additionals []record.Record
}

// Serialize writes msg to w, back-patching the section counts once their
// true, possibly-truncated sizes are known. Each section is written
// independently; a record that doesn't fit is rolled back (not left
// half-written) and serialization of that section stops there — RFC 1035
// §4.1.1's "truncated cleanly at a record boundary," never with a partial
// record. If truncation left the message with nothing usable in it at all,
// ErrBufferFull is returned so the caller abandons the packet outright
// instead of sending an empty shell.
func Serialize(w *wire.Writer, c *label.Compressor, msg Message, limits Limits) error {
	countsOff := writeHeaderPlaceholder(w, msg.Header)

	qd := writeQuestions(w, c, msg.Questions, limits.MaxQuestions)
	an := writeRecords(w, c, msg.Answers, limits.MaxAnswers)
	ns := writeRecords(w, c, msg.Authorities, limits.MaxAnswers)
	ar := writeRecords(w, c, msg.Additionals, limits.MaxAnswers)

	backpatchCounts(w, countsOff, qd, an, ns, ar)

	wanted := len(msg.Questions) + len(msg.Answers) + len(msg.Authorities) + len(msg.Additionals)
	if wanted > 0 && qd+an+ns+ar == 0 {
		return berrors.ErrBufferFull
	}
	return w.Finish()
}

func writeQuestions(w *wire.Writer, c *label.Compressor, qs []Question, limit int) int {
	count := 0
	for _, q := range qs {
		if limit > 0 && count >= limit {
			break
		}
		checkpoint := w.Position()
		writeQuestion(w, c, q)
		if w.Overflowed() {
			w.TruncateTo(checkpoint)
			break
		}
		count++
	}
	return count
}

func writeRecords(w *wire.Writer, c *label.Compressor, recs []record.Record, limit int) int {
	count := 0
	for _, rec := range recs {
		if limit > 0 && count >= limit {
			break
		}
		checkpoint := w.Position()
		if err := record.Serialize(w, c, rec); err != nil {
			w.TruncateTo(checkpoint)
			break
		}
		count++
	}
	return count
}

// Parse reads a full message from r. Any section exceeding limits returns
// ErrTooMany; any malformed field returns the underlying codec error. Per
// the engine's inbound-parse policy, callers drop the whole packet on any
// error rather than salvaging a partial Message.
func Parse(r *wire.Reader, limits Limits) (Message, error) {
	header, err := parseHeader(r)
	if err != nil {
		return Message{}, err
	}

	questions, err := parseQuestions(r, int(header.QDCount), limits)
	if err != nil {
		return Message{}, err
	}
	answers, err := parseRecords(r, int(header.ANCount), limits)
	if err != nil {
		return Message{}, err
	}
	authorities, err := parseRecords(r, int(header.NSCount), limits)
	if err != nil {
		return Message{}, err
	}
	additionals, err := parseRecords(r, int(header.ARCount), limits)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Header:      header,
		Questions:   questions,
		Answers:     answers,
		Authorities: authorities,
		Additionals: additionals,
	}, nil
}

func parseQuestions(r *wire.Reader, count int, limits Limits) ([]Question, error) {
	if count > limits.MaxQuestions {
		return nil, berrors.ErrTooMany
	}
	qs := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		q, err := parseQuestion(r, limits.MaxSegments)
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, nil
}

func parseRecords(r *wire.Reader, count int, limits Limits) ([]record.Record, error) {
	if count > limits.MaxAnswers {
		return nil, berrors.ErrTooMany
	}
	recs := make([]record.Record, 0, count)
	for i := 0; i < count; i++ {
		rec, err := record.Parse(r, limits.MaxSegments, limits.MaxEntries)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// DedupQuestions collapses questions with identical (name, type, class)
// tuples, preserving first-occurrence order. This is the fix that prevents
// a duplicate-question query flood when several services independently
// request the same PTR.
func DedupQuestions(qs []Question) []Question {
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		dup := false
		for _, seen := range out {
			if seen.Equal(q) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, q)
		}
	}
	return out
}

// DedupAnswers collapses records with identical (name, type, class, rdata)
// tuples, preserving first-occurrence order.
func DedupAnswers(recs []record.Record) []record.Record {
	out := make([]record.Record, 0, len(recs))
	for _, rec := range recs {
		dup := false
		for _, seen := range out {
			if seen.Kind() == rec.Kind() && seen.Equal(rec) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, rec)
		}
	}
	return out
}
