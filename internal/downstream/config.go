package downstream

import "time"

// Config configures the downstream durable log (Kafka) producer and the
// session-open probe. Producer tuning mirrors the high-throughput profile
// of spec.md §6: large batches, a short linger, and zstd compression to
// keep tick publication off the upstream SDK's own callback goroutine for
// as little time as possible.
type Config struct {
	Brokers []string
	Topic   string

	Linger              time.Duration // default: 100ms
	BatchMaxBytes        int           // default: 256KiB
	MaxBufferedBytes     int           // default: 128MiB, mirrors queue.buffering.max.kbytes
	RequiredAcks         int           // 0, 1, or -1(all); default: 1
	FlushTimeout         time.Duration // default: 15s, bounds Publisher.Flush at shutdown

	// ProbeGroupPrefix names the transient, throwaway consumer group the
	// Probe creates per invocation (a fresh uuid is appended). Never
	// committed, never reused.
	ProbeGroupPrefix string
}

// DefaultConfig returns the producer/probe tuning from spec.md §6.
func DefaultConfig() Config {
	return Config{
		Linger:           100 * time.Millisecond,
		BatchMaxBytes:    256 * 1024,
		MaxBufferedBytes: 128 * 1024 * 1024,
		RequiredAcks:     1,
		FlushTimeout:     15 * time.Second,
		ProbeGroupPrefix: "txf-bridge-probe",
	}
}
