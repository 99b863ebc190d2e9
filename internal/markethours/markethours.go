// Package markethours classifies wall-clock time into exchange trading
// sessions. The classification is a weekday/clock heuristic only — it
// deliberately does not consult a holiday calendar.
package markethours

import "time"

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// NSE session thresholds in IST.
const (
	OpenHour    = 9
	OpenMinute  = 15
	CloseHour   = 15
	CloseMinute = 30
)

// Session is the exchange trading-state classification.
type Session string

const (
	SessionPre    Session = "PRE"
	SessionOpen   Session = "OPEN"
	SessionPost   Session = "POST"
	SessionClosed Session = "CLOSED"
)

// Clock abstracts time.Now so session-dependent code can be tested
// against pinned instants.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Classify maps an instant to a trading session:
// Saturday/Sunday → CLOSED, before 9:15 IST → PRE,
// 9:15–15:30 → OPEN, after 15:30 → POST.
func Classify(t time.Time) Session {
	ist := t.In(IST)
	wd := ist.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return SessionClosed
	}

	hm := ist.Hour()*60 + ist.Minute()
	open := OpenHour*60 + OpenMinute
	close := CloseHour*60 + CloseMinute

	switch {
	case hm < open:
		return SessionPre
	case hm < close:
		return SessionOpen
	default:
		return SessionPost
	}
}

// IsOpen reports whether t falls inside the regular trading session.
func IsOpen(t time.Time) bool {
	return Classify(t) == SessionOpen
}
