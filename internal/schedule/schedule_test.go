package schedule

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tm
}

func TestIsTradingTime_DaySession(t *testing.T) {
	cfg := Default()
	now := mustParse(t, "2026-07-30T10:00:00+08:00") // Thursday, mid-day session
	if !IsTradingTime(now, nil, cfg) {
		t.Errorf("expected day session to be trading")
	}
}

func TestIsTradingTime_NightSessionWraps(t *testing.T) {
	cfg := Default()
	// Thursday night
	if !IsTradingTime(mustParse(t, "2026-07-30T20:00:00+08:00"), nil, cfg) {
		t.Errorf("expected Thursday 20:00 to be trading (night session)")
	}
	// Friday in the small hours, still the Thursday-opened night session
	if !IsTradingTime(mustParse(t, "2026-07-31T02:00:00+08:00"), nil, cfg) {
		t.Errorf("expected Friday 02:00 to be trading (night session continuation)")
	}
}

func TestIsTradingTime_OutsideSessions(t *testing.T) {
	cfg := Default()
	now := mustParse(t, "2026-07-30T13:50:00+08:00") // just past the buffered day close (13:45:20)
	// Use a timestamp well clear of both sessions and their buffers.
	now = mustParse(t, "2026-07-30T14:00:00+08:00")
	if IsTradingTime(now, nil, cfg) {
		t.Errorf("expected 14:00 (between day close buffer and night open buffer) to be closed")
	}
}

func TestIsTradingTime_Sunday(t *testing.T) {
	cfg := Default()
	now := mustParse(t, "2026-08-02T10:00:00+08:00") // Sunday
	if IsTradingTime(now, nil, cfg) {
		t.Errorf("expected Sunday to never be trading")
	}
}

func TestIsTradingTime_SaturdayNightCloses(t *testing.T) {
	cfg := Default()
	// The default night session wraps midnight: Friday's session closes at the
	// buffered night_close early Saturday, and Saturday stays closed until the
	// buffered day open.
	now := mustParse(t, "2026-08-01T06:00:00+08:00") // Saturday, after night close
	if IsTradingTime(now, nil, cfg) {
		t.Errorf("expected Saturday after night close to be closed")
	}
}

func TestIsTradingTime_SaturdayDaySessionStillOpen(t *testing.T) {
	cfg := Default()
	now := mustParse(t, "2026-08-01T10:00:00+08:00") // Saturday day session
	if !IsTradingTime(now, nil, cfg) {
		t.Errorf("expected Saturday day session to still trade")
	}
}

func TestIsTradingTime_MondayBeforeOpen(t *testing.T) {
	cfg := Default()
	now := mustParse(t, "2026-08-03T02:00:00+08:00") // Monday, inside the night window, before buffered day open
	if IsTradingTime(now, nil, cfg) {
		t.Errorf("expected Monday before day open to be closed (no Sunday-night carryover)")
	}
}

func TestIsTradingTime_HolidaySameDay(t *testing.T) {
	cfg := Default()
	holiday := mustParse(t, "2026-07-30T00:00:00+08:00")
	now := mustParse(t, "2026-07-30T10:00:00+08:00")
	if IsTradingTime(now, &holiday, cfg) {
		t.Errorf("expected holiday date to be closed")
	}
}

func TestIsTradingTime_HolidayNextDayBeforeOpen(t *testing.T) {
	cfg := Default()
	holiday := mustParse(t, "2026-07-30T00:00:00+08:00")
	now := mustParse(t, "2026-07-31T02:00:00+08:00") // day after holiday, inside the overnight session, before day open
	if IsTradingTime(now, &holiday, cfg) {
		t.Errorf("expected overnight session after a holiday to stay closed until day open")
	}
}

func TestIsTradingTime_HolidayNextDayAfterOpen(t *testing.T) {
	cfg := Default()
	holiday := mustParse(t, "2026-07-30T00:00:00+08:00")
	now := mustParse(t, "2026-07-31T10:00:00+08:00") // day after holiday, inside day session
	if !IsTradingTime(now, &holiday, cfg) {
		t.Errorf("expected trading to resume at the next day's session after a holiday")
	}
}

func TestIsTradingTime_BufferExtendsSession(t *testing.T) {
	cfg := Default()
	// 2 * MonitorInterval = 20s buffer around the 08:30 day open.
	now := mustParse(t, "2026-07-30T08:29:45+08:00")
	if !IsTradingTime(now, nil, cfg) {
		t.Errorf("expected buffered pre-open window to count as trading")
	}
}

func TestSlowTickThreshold(t *testing.T) {
	cfg := Default()
	day := mustParse(t, "2026-07-30T10:00:00+08:00")
	if got := SlowTickThreshold(day, cfg); got != cfg.DayThreshold {
		t.Errorf("day threshold = %s, want %s", got, cfg.DayThreshold)
	}
	night := mustParse(t, "2026-07-30T20:00:00+08:00")
	if got := SlowTickThreshold(night, cfg); got != cfg.NightThreshold {
		t.Errorf("night threshold = %s, want %s", got, cfg.NightThreshold)
	}
}
