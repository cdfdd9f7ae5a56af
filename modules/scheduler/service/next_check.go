package service

// NextCheckMinutes returns how long the scheduler should sleep before
// re-evaluating an event whose departure is departureMinutes away. The
// cadence tightens as departure approaches:
//
//	> 60 min out: wake at the one-hour mark
//	> 10 min out: every 10 minutes, or sooner near the 10-minute mark
//	>  0 min out: every 5 minutes, or whatever remains
//
// ok is false when departure has been reached or missed; the event must be
// processed immediately rather than rescheduled.
func NextCheckMinutes(departureMinutes int) (minutes int, ok bool) {
	switch {
	case departureMinutes > 60:
		return departureMinutes - 60, true
	case departureMinutes > 10:
		return min(10, departureMinutes-10), true
	case departureMinutes > 0:
		return min(5, departureMinutes), true
	default:
		return 0, false
	}
}
