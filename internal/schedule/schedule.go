// Package schedule implements the exchange session calendar: pure,
// side-effect-free functions mapping a timestamp in the exchange time zone
// to a trading/closed verdict and the session-appropriate slow-tick
// threshold. Nothing in this package touches the system clock, a socket, or
// any other component — every function takes its "now" as an explicit
// argument so tests can drive arbitrary instants.
package schedule

import "time"

// Config holds the session calendar. It is immutable after construction,
// matching SupervisorState's ownership split in the supervisor package: the
// calendar never changes while the process runs.
type Config struct {
	Location *time.Location

	// Session boundaries, expressed as an offset from midnight in Location.
	DayOpen    time.Duration
	DayClose   time.Duration
	NightOpen  time.Duration
	NightClose time.Duration

	// MonitorInterval drives the buffer: sessions are dilated outward by
	// 2*MonitorInterval on each side to absorb clock skew.
	MonitorInterval time.Duration

	DayThreshold   time.Duration
	NightThreshold time.Duration
}

// Default returns the Taipei futures-session calendar from the tuning
// constants: day session 08:30-13:45, night session 14:50-05:00 (wraps).
func Default() Config {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("Asia/Taipei", 8*60*60)
	}
	return Config{
		Location:        loc,
		DayOpen:         clockOf(8, 30),
		DayClose:        clockOf(13, 45),
		NightOpen:       clockOf(14, 50),
		NightClose:      clockOf(5, 0),
		MonitorInterval: 10 * time.Second,
		DayThreshold:    60 * time.Second,
		NightThreshold:  180 * time.Second,
	}
}

func clockOf(hour, minute int) time.Duration {
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute
}

const day = 24 * time.Hour

// wrapClock normalizes a duration into [0, 24h), so that buffering a
// boundary near midnight doesn't produce a negative or >24h offset.
func wrapClock(d time.Duration) time.Duration {
	d %= day
	if d < 0 {
		d += day
	}
	return d
}

// timeOfDay returns how far past local midnight t falls, in t's own
// location (the caller is expected to have already converted t into the
// exchange zone with t.In(cfg.Location)).
func timeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsTradingTime returns true iff now falls inside the buffered day or night
// session, applying the holiday/weekend edge cases of the exchange
// calendar. holidayDate, when non-nil, names a calendar date the exchange
// is known to be closed (the discriminated holiday from the supervisor's
// timeout-retry escalation); its time-of-day component is ignored.
//
// Rules are evaluated in order; the first match wins.
func IsTradingTime(now time.Time, holidayDate *time.Time, cfg Config) bool {
	now = now.In(cfg.Location)

	if holidayDate != nil {
		hd := holidayDate.In(cfg.Location)
		if sameDate(now, hd) {
			return false
		}
	}

	buffer := 2 * cfg.MonitorInterval
	bufDayOpen := wrapClock(cfg.DayOpen - buffer)
	bufDayClose := wrapClock(cfg.DayClose + buffer)
	bufNightOpen := wrapClock(cfg.NightOpen - buffer)
	bufNightClose := wrapClock(cfg.NightClose + buffer)

	nowClock := timeOfDay(now)

	if holidayDate != nil {
		hd := holidayDate.In(cfg.Location)
		nextDay := hd.AddDate(0, 0, 1)
		if sameDate(now, nextDay) && nowClock < bufDayOpen {
			return false
		}
	}

	switch now.Weekday() {
	case time.Sunday:
		return false
	case time.Saturday:
		// Only applies when the night session does not wrap past
		// midnight; a wrapping session's close belongs to Sunday, which
		// rule 3 already excludes.
		if bufNightOpen <= bufNightClose && nowClock >= bufNightClose {
			return false
		}
	case time.Monday:
		if nowClock < bufDayOpen {
			return false
		}
	}

	inDay := bufDayOpen <= nowClock && nowClock < bufDayClose
	var inNight bool
	if bufNightOpen < bufNightClose {
		inNight = bufNightOpen <= nowClock && nowClock < bufNightClose
	} else {
		inNight = nowClock >= bufNightOpen || nowClock < bufNightClose
	}

	return inDay || inNight
}

// SlowTickThreshold returns the silence duration, past which the
// supervisor escalates a slow-tick warning, appropriate for now's session.
// The night session is thinner by nature, so its threshold is looser.
func SlowTickThreshold(now time.Time, cfg Config) time.Duration {
	now = now.In(cfg.Location)
	nowClock := timeOfDay(now)
	if cfg.DayOpen <= nowClock && nowClock < cfg.NightOpen {
		return cfg.DayThreshold
	}
	return cfg.NightThreshold
}
