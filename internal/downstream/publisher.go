package downstream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rickgao/txf-bridge/internal/tick"
)

// Publisher owns the Kafka producer client and publishes encoded ticks to
// the configured topic. It never blocks the caller on broker
// acknowledgement: Publish hands the record to the client's internal
// batching buffer and returns; delivery failures are logged, not
// propagated, matching the fire-and-forget publish path of
// kafka_handler.send_tick_to_kafka in the original bridge.
type Publisher struct {
	cfg    Config
	client *kgo.Client
	logger *slog.Logger
}

// NewPublisher constructs the producer client with the high-throughput
// tuning of spec.md §6.
func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	acks := kgo.LeaderAck()
	switch cfg.RequiredAcks {
	case 0:
		acks = kgo.NoAck()
	case -1:
		acks = kgo.AllISRAcks()
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerLinger(cfg.Linger),
		kgo.ProducerBatchMaxBytes(int32(cfg.BatchMaxBytes)),
		kgo.MaxBufferedBytes(uint64(cfg.MaxBufferedBytes)),
		kgo.RequiredAcks(acks),
		kgo.ProducerBatchCompression(kgo.ZstdCompression(), kgo.SnappyCompression(), kgo.NoCompression()),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("downstream: create producer client: %w", err)
	}

	return &Publisher{cfg: cfg, client: client, logger: logger}, nil
}

// Publish encodes t and hands it to the producer's internal buffer. The
// delivery callback logs failures asynchronously; it never blocks the
// upstream tick-handler goroutine that calls Publish.
func (p *Publisher) Publish(ctx context.Context, t tick.Tick) {
	payload, err := tick.Encode(t)
	if err != nil {
		p.logger.Error("failed to encode tick for publication", "error", err)
		return
	}

	record := &kgo.Record{Topic: p.cfg.Topic, Value: payload}
	p.client.TryProduce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("failed to publish tick to downstream log", "error", err)
		}
	})
}

// Flush blocks until all buffered records have been acknowledged, ctx
// expires, or the configured FlushTimeout elapses, whichever comes first.
// Called during shutdown with a bounded timeout (spec.md §4.5: 15s).
func (p *Publisher) Flush(ctx context.Context) error {
	if p.cfg.FlushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.FlushTimeout)
		defer cancel()
	}
	return p.client.Flush(ctx)
}

// Close releases the client's connections. Flush should be called first
// if a graceful drain is desired.
func (p *Publisher) Close() {
	p.client.Close()
}
