package config

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned by Validate when a required upstream
// credential is absent. cmd/bridge treats this as fatal at startup.
var ErrMissingCredential = errors.New("config: missing required credential")

// Validate checks that all required fields are set and values are sane.
func (c *BridgeConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Upstream.APIKey == "" || c.Upstream.SecretKey == "" {
		return fmt.Errorf("%w: upstream.api_key and upstream.secret_key are required", ErrMissingCredential)
	}
	if c.Upstream.ContractPath == "" {
		return errors.New("upstream.contract_path is required")
	}
	if c.Upstream.ContractPollAttempts < 1 {
		return errors.New("upstream.contract_poll_attempts must be >= 1")
	}

	if len(c.Downstream.Brokers) == 0 {
		return errors.New("downstream.brokers must list at least one broker")
	}
	if c.Downstream.Topic == "" {
		return errors.New("downstream.topic is required")
	}
	if c.Downstream.RequiredAcks < -1 || c.Downstream.RequiredAcks > 1 {
		return fmt.Errorf("downstream.required_acks must be -1, 0, or 1, got %d", c.Downstream.RequiredAcks)
	}

	if c.Session.Location == "" {
		return errors.New("session.location is required")
	}

	if c.Supervisor.MonitorInterval <= 0 {
		return errors.New("supervisor.monitor_interval must be > 0")
	}
	if c.Supervisor.TimeoutSeconds <= 0 {
		return errors.New("supervisor.timeout_seconds must be > 0")
	}
	if c.Supervisor.MaxTimeoutRetries < 1 {
		return errors.New("supervisor.max_timeout_retries must be >= 1")
	}

	return nil
}
