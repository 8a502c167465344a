// Package config loads and validates the bridge's YAML configuration.
package config

import "time"

// BridgeConfig is the root configuration for one bridge instance.
type BridgeConfig struct {
	Instance   InstanceConfig   `yaml:"instance"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Downstream DownstreamConfig `yaml:"downstream"`
	Session    SessionConfig    `yaml:"session"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	HTTP       HTTPConfig       `yaml:"http"`
}

// InstanceConfig identifies this bridge process.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// UpstreamConfig holds vendor SDK login and subscription settings.
type UpstreamConfig struct {
	APIKey       string `yaml:"api_key"`
	SecretKey    string `yaml:"secret_key"`
	ContractPath string `yaml:"contract_path"`

	ContractPollAttempts int           `yaml:"contract_poll_attempts"`
	ContractPollInterval time.Duration `yaml:"contract_poll_interval"`

	UnsubscribeConfirmTimeout time.Duration `yaml:"unsubscribe_confirm_timeout"`
	UnsubscribeConfirmPoll    time.Duration `yaml:"unsubscribe_confirm_poll"`
}

// DownstreamConfig holds the Kafka producer and probe settings.
type DownstreamConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`

	Linger           time.Duration `yaml:"linger"`
	BatchMaxBytes    int           `yaml:"batch_max_bytes"`
	MaxBufferedBytes int           `yaml:"max_buffered_bytes"`
	RequiredAcks     int           `yaml:"required_acks"`
	FlushTimeout     time.Duration `yaml:"flush_timeout"`
	ProbeGroupPrefix string        `yaml:"probe_group_prefix"`
}

// SessionConfig holds the exchange trading calendar.
type SessionConfig struct {
	Location   string        `yaml:"location"`
	DayOpen    time.Duration `yaml:"day_open"`
	DayClose   time.Duration `yaml:"day_close"`
	NightOpen  time.Duration `yaml:"night_open"`
	NightClose time.Duration `yaml:"night_close"`

	DayThreshold   time.Duration `yaml:"day_threshold"`
	NightThreshold time.Duration `yaml:"night_threshold"`
}

// SupervisorConfig holds the monitor loop's cadence and retry budget.
type SupervisorConfig struct {
	MonitorInterval   time.Duration `yaml:"monitor_interval"`
	TimeoutSeconds    time.Duration `yaml:"timeout_seconds"`
	MaxTimeoutRetries int           `yaml:"max_timeout_retries"`
}

// HTTPConfig holds the health endpoint's bind address.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}
