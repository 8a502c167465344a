package downstream

import (
	"testing"
	"time"

	"github.com/rickgao/txf-bridge/internal/schedule"
)

func TestSessionOpenInstant(t *testing.T) {
	cfg := schedule.Default()

	tests := []struct {
		name string
		now  string // RFC3339 in Asia/Taipei
		want string
	}{
		{
			name: "mid-day session returns today's day open",
			now:  "2026-07-30T10:00:00+08:00",
			want: "2026-07-30T08:30:00+08:00",
		},
		{
			name: "evening returns today's night open",
			now:  "2026-07-30T20:00:00+08:00",
			want: "2026-07-30T14:50:00+08:00",
		},
		{
			name: "past midnight before day open returns previous night's open",
			now:  "2026-07-30T02:00:00+08:00",
			want: "2026-07-29T14:50:00+08:00",
		},
		{
			name: "just before day open still belongs to the prior night session",
			now:  "2026-07-30T08:00:00+08:00",
			want: "2026-07-29T14:50:00+08:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, tt.now)
			if err != nil {
				t.Fatalf("parse now: %v", err)
			}
			want, err := time.Parse(time.RFC3339, tt.want)
			if err != nil {
				t.Fatalf("parse want: %v", err)
			}
			got := sessionOpenInstant(now, cfg)
			if !got.Equal(want) {
				t.Errorf("sessionOpenInstant(%s) = %s, want %s", tt.now, got, want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RequiredAcks != 1 {
		t.Errorf("expected default RequiredAcks = 1 (leader ack), got %d", cfg.RequiredAcks)
	}
	if cfg.Linger != 100*time.Millisecond {
		t.Errorf("expected default linger 100ms, got %s", cfg.Linger)
	}
	if cfg.FlushTimeout != 15*time.Second {
		t.Errorf("expected default flush timeout 15s, got %s", cfg.FlushTimeout)
	}
}
