package beacon

// PhaseKind names the four states the Server's announce state machine can
// be in. Go has no sum type with per-variant payloads, so Phase pairs a
// PhaseKind with the one piece of data some variants carry (the index of
// the next service to announce).
type PhaseKind int

const (
	// PhaseFirstAnnounce announces each configured service's 4-record set
	// in turn, advancing Index after each one.
	PhaseFirstAnnounce PhaseKind = iota
	// PhaseSecondAnnounce repeats the same cadence a second time per
	// RFC 6762 §8.3, then settles into Steady.
	PhaseSecondAnnounce
	// PhaseSteady re-announces every configured service together on the
	// jittered reannounce interval.
	PhaseSteady
	// PhaseQueryOnly never announces; it only emits queries armed via
	// Query().
	PhaseQueryOnly
)

// Phase is the Server's current announce-state-machine variant.
type Phase struct {
	Kind  PhaseKind
	Index int
}

func FirstAnnounce(i int) Phase  { return Phase{Kind: PhaseFirstAnnounce, Index: i} }
func SecondAnnounce(i int) Phase { return Phase{Kind: PhaseSecondAnnounce, Index: i} }
func Steady() Phase              { return Phase{Kind: PhaseSteady} }
func QueryOnly() Phase           { return Phase{Kind: PhaseQueryOnly} }
