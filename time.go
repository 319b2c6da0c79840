package beacon

// Time is a monotonic millisecond counter from an arbitrary zero, supplied
// by the driver on every InputTimeout. It is never read from the wall
// clock by this package — the core has no notion of "now" beyond what it's
// told.
type Time int64

// MillisUntil returns how long until other, saturating to zero if other
// has already passed.
func (t Time) MillisUntil(other Time) Time {
	if other <= t {
		return 0
	}
	return other - t
}

// Add returns t advanced by ms milliseconds.
func (t Time) Add(ms int64) Time {
	return t + Time(ms)
}
