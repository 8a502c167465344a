package downstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rickgao/txf-bridge/internal/schedule"
)

// Probe implements the holiday-vs-outage discrimination of spec.md §4.3:
// it asks the downstream log whether any message exists at or after the
// current session's open instant. A fresh, throwaway consumer-group
// identity is minted per call so the probe never commits an offset or
// competes with a real consumer group.
type Probe struct {
	cfg    Config
	logger *slog.Logger
}

// NewProbe constructs a Probe over the same broker set the Publisher
// writes to.
func NewProbe(cfg Config, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{cfg: cfg, logger: logger}
}

// HasOpeningMessages implements the algorithm of spec.md §4.3: compute
// this session's open instant, look up the earliest offset at or after
// that instant on every partition, and report whether any partition has
// one. Fails safe: any error (network, metadata, timeout) returns true,
// biasing the supervisor toward "outage" rather than a spuriously
// declared holiday.
func (p *Probe) HasOpeningMessages(ctx context.Context, now time.Time, cfg schedule.Config) bool {
	sessionOpen := sessionOpenInstant(now, cfg)
	startMillis := sessionOpen.UnixMilli()

	client, err := kgo.NewClient(
		kgo.SeedBrokers(p.cfg.Brokers...),
		kgo.ConsumerGroup(fmt.Sprintf("%s-%s", p.cfg.ProbeGroupPrefix, uuid.NewString())),
	)
	if err != nil {
		p.logger.Warn("probe: failed to create transient consumer, assuming ticks exist", "error", err)
		return true
	}
	defer client.Close()

	admin := kadm.NewClient(client)

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	topicDetails, err := admin.ListTopics(queryCtx, p.cfg.Topic)
	if err != nil {
		p.logger.Warn("probe: failed to fetch topic metadata, assuming ticks exist", "error", err)
		return true
	}
	detail, ok := topicDetails[p.cfg.Topic]
	if !ok || errors.Is(detail.Err, kerr.UnknownTopicOrPartition) {
		p.logger.Info("probe: topic absent, treating as no opening messages", "topic", p.cfg.Topic)
		return false
	}
	if detail.Err != nil {
		p.logger.Warn("probe: topic metadata reported an error, assuming ticks exist", "topic", p.cfg.Topic, "error", detail.Err)
		return true
	}

	listed, err := admin.ListOffsetsAfterMilli(queryCtx, startMillis, p.cfg.Topic)
	if err != nil {
		p.logger.Warn("probe: offsets-for-times lookup failed, assuming ticks exist", "error", err)
		return true
	}

	found := false
	var partitionErr error
	listed.Each(func(lo kadm.ListedOffset) {
		if lo.Err != nil {
			partitionErr = lo.Err
			return
		}
		if lo.Offset >= 0 {
			found = true
		}
	})

	if !found && partitionErr != nil {
		p.logger.Warn("probe: offsets-for-times lookup failed on a partition, assuming ticks exist", "error", partitionErr)
		return true
	}
	return found
}

// sessionOpenInstant computes the most recent session-open boundary at or
// before now, per spec.md §4.3 step 1: today's day-open if now falls in
// the day window, otherwise the most recent night-open (today's if past
// night-open, else yesterday's).
func sessionOpenInstant(now time.Time, cfg schedule.Config) time.Time {
	now = now.In(cfg.Location)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, cfg.Location)

	dayOpen := midnight.Add(cfg.DayOpen)
	nightOpen := midnight.Add(cfg.NightOpen)

	if !now.Before(dayOpen) && now.Before(nightOpen) {
		return dayOpen
	}
	if !now.Before(nightOpen) {
		return nightOpen
	}
	return nightOpen.AddDate(0, 0, -1)
}
