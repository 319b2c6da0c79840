package beacon

import "github.com/corvidlabs/beacon/internal/label"

const (
	// interAnnounceIntervalMs separates the FirstAnnounce and
	// SecondAnnounce passes per RFC 6762 §8.3.
	interAnnounceIntervalMs int64 = 1000

	// defaultReannounceIntervalMs is the Steady-state re-announce period
	// before jitter is applied.
	defaultReannounceIntervalMs int64 = 60_000

	// reannounceJitterNumerator/Denominator express the +/-10% jitter
	// window applied to defaultReannounceIntervalMs.
	reannounceJitterNumerator   int64 = 10
	reannounceJitterDenominator int64 = 100
)

// jitterSource is a small xorshift64 PRNG. It exists only to deterministically
// spread re-announce timing across independently-running nodes so they don't
// all wake in lockstep; it carries no cryptographic weight whatsoever.
type jitterSource struct {
	state uint64
}

func newJitterSource(seed uint64) *jitterSource {
	if seed == 0 {
		seed = 1 // xorshift64 is fixed at zero forever if seeded with zero
	}
	return &jitterSource{state: seed}
}

func (j *jitterSource) next() uint64 {
	x := j.state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	j.state = x
	return x
}

// seedFromLabel derives a deterministic PRNG seed from a service's full
// instance name, so independently-started nodes advertising different
// instance names naturally land on different re-announce offsets.
func seedFromLabel(l label.Label) uint64 {
	var h uint64 = 1469598103934665603 // FNV-1a offset basis
	for _, seg := range l.Segments() {
		for i := 0; i < len(seg); i++ {
			h ^= uint64(seg[i])
			h *= 1099511628211 // FNV-1a prime
		}
	}
	return h
}

// jitteredReannounceInterval returns defaultReannounceIntervalMs adjusted by
// up to +/-10%, deterministically from j.
func jitteredReannounceInterval(j *jitterSource) int64 {
	span := defaultReannounceIntervalMs * reannounceJitterNumerator / reannounceJitterDenominator
	offset := int64(j.next()%uint64(2*span+1)) - span
	return defaultReannounceIntervalMs + offset
}
