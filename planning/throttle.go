package planning

import "time"

// throttle gates an action to once per period on average, advancing its
// cursor by period rather than by the observed time (§9 design note):
// under overrun this keeps the long-run rate at 1/period instead of
// drifting to whatever cadence calls happen to arrive at. After an overrun,
// calls fire back to back until the cursor has caught up with now.
type throttle struct {
	period float64 // seconds
	cursor time.Time
}

func newThrottle(period float64) *throttle {
	return &throttle{period: period}
}

// ready reports whether the throttled action should fire at now, and if so
// advances the internal cursor by exactly one period (it does not reset to
// now, so a burst of late calls still only fires once per period on
// average).
func (th *throttle) ready(now time.Time) bool {
	if th.period <= 0 {
		return true
	}
	if th.cursor.IsZero() {
		th.cursor = now
		return true
	}
	if now.Sub(th.cursor) < time.Duration(th.period*float64(time.Second)) {
		return false
	}
	th.cursor = th.cursor.Add(time.Duration(th.period * float64(time.Second)))
	return true
}
