package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultContractPollAttempts      = 10
	DefaultContractPollInterval      = time.Second
	DefaultUnsubscribeConfirmTimeout = 10 * time.Second
	DefaultUnsubscribeConfirmPoll    = 100 * time.Millisecond

	DefaultLinger           = 100 * time.Millisecond
	DefaultBatchMaxBytes    = 256 * 1024
	DefaultMaxBufferedBytes = 128 * 1024 * 1024
	DefaultRequiredAcks     = 1
	DefaultFlushTimeout     = 15 * time.Second
	DefaultProbeGroupPrefix = "txf-bridge-probe"

	DefaultLocation   = "Asia/Taipei"
	DefaultDayOpen    = 8*time.Hour + 30*time.Minute
	DefaultDayClose   = 13*time.Hour + 45*time.Minute
	DefaultNightOpen  = 14*time.Hour + 50*time.Minute
	DefaultNightClose = 5 * time.Hour
	DefaultDayThreshold   = 60 * time.Second
	DefaultNightThreshold = 180 * time.Second

	DefaultMonitorInterval   = 10 * time.Second
	DefaultTimeoutSeconds    = 300 * time.Second
	DefaultMaxTimeoutRetries = 3

	DefaultHTTPAddr = ":8080"
)

func (c *BridgeConfig) applyDefaults() {
	if c.Upstream.ContractPollAttempts == 0 {
		c.Upstream.ContractPollAttempts = DefaultContractPollAttempts
	}
	if c.Upstream.ContractPollInterval == 0 {
		c.Upstream.ContractPollInterval = DefaultContractPollInterval
	}
	if c.Upstream.UnsubscribeConfirmTimeout == 0 {
		c.Upstream.UnsubscribeConfirmTimeout = DefaultUnsubscribeConfirmTimeout
	}
	if c.Upstream.UnsubscribeConfirmPoll == 0 {
		c.Upstream.UnsubscribeConfirmPoll = DefaultUnsubscribeConfirmPoll
	}

	if c.Downstream.Linger == 0 {
		c.Downstream.Linger = DefaultLinger
	}
	if c.Downstream.BatchMaxBytes == 0 {
		c.Downstream.BatchMaxBytes = DefaultBatchMaxBytes
	}
	if c.Downstream.MaxBufferedBytes == 0 {
		c.Downstream.MaxBufferedBytes = DefaultMaxBufferedBytes
	}
	if c.Downstream.RequiredAcks == 0 {
		c.Downstream.RequiredAcks = DefaultRequiredAcks
	}
	if c.Downstream.FlushTimeout == 0 {
		c.Downstream.FlushTimeout = DefaultFlushTimeout
	}
	if c.Downstream.ProbeGroupPrefix == "" {
		c.Downstream.ProbeGroupPrefix = DefaultProbeGroupPrefix
	}

	if c.Session.Location == "" {
		c.Session.Location = DefaultLocation
	}
	if c.Session.DayOpen == 0 {
		c.Session.DayOpen = DefaultDayOpen
	}
	if c.Session.DayClose == 0 {
		c.Session.DayClose = DefaultDayClose
	}
	if c.Session.NightOpen == 0 {
		c.Session.NightOpen = DefaultNightOpen
	}
	if c.Session.NightClose == 0 {
		c.Session.NightClose = DefaultNightClose
	}
	if c.Session.DayThreshold == 0 {
		c.Session.DayThreshold = DefaultDayThreshold
	}
	if c.Session.NightThreshold == 0 {
		c.Session.NightThreshold = DefaultNightThreshold
	}

	if c.Supervisor.MonitorInterval == 0 {
		c.Supervisor.MonitorInterval = DefaultMonitorInterval
	}
	if c.Supervisor.TimeoutSeconds == 0 {
		c.Supervisor.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Supervisor.MaxTimeoutRetries == 0 {
		c.Supervisor.MaxTimeoutRetries = DefaultMaxTimeoutRetries
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
}
