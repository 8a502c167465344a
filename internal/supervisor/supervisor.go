// Package supervisor implements the control loop that ties the exchange
// calendar, the upstream session manager, and the downstream log together:
// it keeps the feed subscribed during trading hours, watches for tick
// silence, and discriminates a quiet exchange holiday from a genuine
// upstream outage before escalating to a reconnect.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rickgao/txf-bridge/internal/schedule"
	"github.com/rickgao/txf-bridge/internal/tick"
)

// sessionManager is the subset of *upstream.Manager the control loop
// depends on. Declared here, satisfied there, so this package can be
// tested with a fake instead of a live vendor SDK.
type sessionManager interface {
	Subscribed() bool
	ConnectAndSubscribe(ctx context.Context) error
	Unsubscribe()
	Reconnect(ctx context.Context, reason string)
	Logout()
}

// logPublisher is the subset of *downstream.Publisher the control loop
// depends on.
type logPublisher interface {
	Publish(ctx context.Context, t tick.Tick)
	Flush(ctx context.Context) error
}

// logProbe is the subset of *downstream.Probe the control loop depends on.
type logProbe interface {
	HasOpeningMessages(ctx context.Context, now time.Time, cfg schedule.Config) bool
}

// Config tunes the supervisor's monitor cadence and timeout-retry budget.
type Config struct {
	MonitorInterval   time.Duration // default: 10s
	TimeoutSeconds    time.Duration // default: 300s
	MaxTimeoutRetries int           // default: 3

	// ShutdownDrain is the sleep after unsubscribe that lets in-flight SDK
	// events settle before logout (spec.md §4.5: 2s).
	ShutdownDrain time.Duration
}

// DefaultConfig returns the tuning constants of spec.md §6.
func DefaultConfig() Config {
	return Config{
		MonitorInterval:   10 * time.Second,
		TimeoutSeconds:    300 * time.Second,
		MaxTimeoutRetries: 3,
		ShutdownDrain:     2 * time.Second,
	}
}

// Supervisor is the control core of spec.md §4.4. One instance owns one
// upstream subscription and publishes to one downstream topic.
type Supervisor struct {
	cfg         Config
	scheduleCfg schedule.Config

	upstreamMgr sessionManager
	publisher   logPublisher
	probe       logProbe

	logger *slog.Logger

	// lastTickAt is written from the on-tick callback (SDK thread), the
	// subscription-confirmed callback (SDK thread), and read from the
	// supervisor's own loop. Per spec.md §5 it tolerates staleness up to
	// one monitor interval, so a lock-free atomic cell is sufficient.
	lastTickAt atomic.Int64 // UnixNano

	// holidayDate, timeoutRetries, slowWarningLevel, and wasTrading are
	// touched only by the supervisor goroutine — no synchronization.
	holidayDate       *time.Time
	timeoutRetries    int
	slowWarningLevel  int
	wasTrading        bool
}

// New constructs a Supervisor. Call Callbacks immediately afterward to
// obtain the onTick/onSubscribed functions the upstream Manager must be
// built with, then finish wiring via AttachUpstream before calling Run.
func New(cfg Config, scheduleCfg schedule.Config, publisher logPublisher, probe logProbe, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		cfg:         cfg,
		scheduleCfg: scheduleCfg,
		publisher:   publisher,
		probe:       probe,
		logger:      logger,
	}
}

// AttachUpstream wires the upstream Session Manager. Must be called before
// Run. Split from New so the Manager can be built with callbacks that
// close over this Supervisor (OnTick → s.onTick, subscription-confirmed →
// s.onSubscribed).
func (s *Supervisor) AttachUpstream(mgr sessionManager) {
	s.upstreamMgr = mgr
}

// onTick is the on-tick fast path of spec.md §4.4: publish and stamp
// last-tick-at. Never blocks on broker acknowledgement — Publisher.Publish
// only enqueues.
func (s *Supervisor) onTick(t tick.Tick) {
	s.publisher.Publish(context.Background(), t)
	s.lastTickAt.Store(time.Now().UnixNano())
}

// onSubscribed is the subscription-confirmed callback: stamps
// last-tick-at so a fresh subscription isn't immediately flagged silent.
func (s *Supervisor) onSubscribed() {
	s.lastTickAt.Store(time.Now().UnixNano())
}

// Callbacks exposes the two callbacks the upstream Manager must be built
// with. Call before constructing the Manager, then AttachUpstream the
// result.
func (s *Supervisor) Callbacks() (onTick func(tick.Tick), onSubscribed func()) {
	return s.onTick, s.onSubscribed
}

// Run drives the monitor loop until ctx is cancelled, then performs the
// orderly shutdown sequence of spec.md §4.5 before returning.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.upstreamMgr == nil {
		return fmt.Errorf("supervisor: AttachUpstream must be called before Run")
	}

	s.lastTickAt.Store(time.Now().UnixNano())

	// Attempt the initial connect immediately, the way BridgeService.run()
	// does in the original bridge, instead of waiting for the first
	// monitor tick — otherwise a cold start loses a full MonitorInterval
	// of ticks before subscribing.
	s.tickAt(ctx, time.Now())

	ticker := time.NewTicker(s.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case <-ticker.C:
			s.tickAt(ctx, time.Now())
		}
	}
}

// tickAt runs one iteration of the per-iteration algorithm in spec.md
// §4.4, in strict order, against an explicit now (split out from Run so
// tests can drive arbitrary instants).
func (s *Supervisor) tickAt(ctx context.Context, now time.Time) {
	trading := schedule.IsTradingTime(now, s.holidayDate, s.scheduleCfg)

	if trading != s.wasTrading {
		if trading {
			s.logger.Info("market is now open")
		} else {
			s.logger.Info("market is now closed")
		}
		s.wasTrading = trading
	}

	if !trading {
		if s.upstreamMgr.Subscribed() {
			s.upstreamMgr.Unsubscribe()
		}
		s.timeoutRetries = 0
		s.slowWarningLevel = 0
		return
	}

	s.holidayDate = nil

	if !s.upstreamMgr.Subscribed() {
		if err := s.upstreamMgr.ConnectAndSubscribe(ctx); err != nil {
			s.logger.Error("failed to connect and subscribe", "error", err)
			return
		}
	}

	s.checkHealth(ctx, now)
}

func (s *Supervisor) checkHealth(ctx context.Context, now time.Time) {
	silence := time.Duration(time.Now().UnixNano() - s.lastTickAt.Load())
	threshold := schedule.SlowTickThreshold(now, s.scheduleCfg)

	switch {
	case silence > s.cfg.TimeoutSeconds:
		s.slowWarningLevel = 0
		s.timeoutRetries++

		if s.timeoutRetries > s.cfg.MaxTimeoutRetries {
			if !s.probe.HasOpeningMessages(ctx, now, s.scheduleCfg) {
				s.logger.Warn("no opening ticks on the log, declaring exchange holiday", "date", now.Format("2006-01-02"))
				holiday := now
				s.holidayDate = &holiday
				s.upstreamMgr.Unsubscribe()
				s.timeoutRetries = 0
				return
			}
			s.logger.Error("opening ticks found on the log, confirming connection fault", "silence", silence)
		}

		s.logger.Warn("tick silence exceeded timeout, reconnecting", "silence", silence, "retry", s.timeoutRetries)
		s.upstreamMgr.Reconnect(ctx, "Tick Timeout")

	case silence > threshold+time.Duration(s.slowWarningLevel)*60*time.Second:
		s.logger.Warn("tick flow slower than expected", "silence", silence, "threshold", threshold, "level", s.slowWarningLevel)
		s.slowWarningLevel++

	case silence < threshold && s.slowWarningLevel > 0:
		s.logger.Info("tick flow recovered", "silence", silence)
		s.slowWarningLevel = 0
	}
}

// shutdown runs the orderly teardown of spec.md §4.5: unsubscribe, drain,
// logout, bounded flush. Errors are logged, never fatal — the process is
// exiting regardless.
func (s *Supervisor) shutdown() {
	s.logger.Info("supervisor shutting down")

	s.upstreamMgr.Unsubscribe()
	time.Sleep(s.cfg.ShutdownDrain)
	s.upstreamMgr.Logout()

	flushCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.publisher.Flush(flushCtx); err != nil {
		s.logger.Warn("failed to flush downstream producer within timeout", "error", err)
	}

	s.logger.Info("supervisor shutdown complete")
}

// Healthz is the snapshot exposed on the HTTP health endpoint.
type Healthz struct {
	Subscribed        bool    `json:"subscribed"`
	LastTickAgeSeconds float64 `json:"last_tick_age_seconds"`
	HolidayDate        string  `json:"holiday_date,omitempty"`
	TimeoutRetries     int     `json:"timeout_retries"`
	SlowWarningLevel   int     `json:"slow_warning_level"`
	MarketOpen         bool    `json:"market_open"`
}

// Health returns a point-in-time snapshot for the HTTP health endpoint.
func (s *Supervisor) Health() Healthz {
	h := Healthz{
		Subscribed:         s.upstreamMgr.Subscribed(),
		LastTickAgeSeconds: time.Since(time.Unix(0, s.lastTickAt.Load())).Seconds(),
		TimeoutRetries:     s.timeoutRetries,
		SlowWarningLevel:   s.slowWarningLevel,
		MarketOpen:         s.wasTrading,
	}
	if s.holidayDate != nil {
		h.HolidayDate = s.holidayDate.Format("2006-01-02")
	}
	return h
}
