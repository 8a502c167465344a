package upstream

import "time"

// Config configures the Session Manager's retry and confirmation budgets.
type Config struct {
	APIKey       string
	SecretKey    string
	ContractPath string // symbolic path to the subscribed contract, e.g. "Futures.TXF.TXFR1"

	ContractPollAttempts int           // default: 10
	ContractPollInterval time.Duration // default: 1s

	UnsubscribeConfirmTimeout time.Duration // default: 10s
	UnsubscribeConfirmPoll    time.Duration // default: 100ms
}

// DefaultConfig returns the retry/confirmation budgets from spec.md §4.2.
func DefaultConfig() Config {
	return Config{
		ContractPollAttempts:      10,
		ContractPollInterval:      time.Second,
		UnsubscribeConfirmTimeout: 10 * time.Second,
		UnsubscribeConfirmPoll:    100 * time.Millisecond,
	}
}
