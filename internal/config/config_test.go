package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("basic loading", func(t *testing.T) {
		yaml := `
instance:
  id: txf-bridge-1
upstream:
  api_key: test-key
  secret_key: test-secret
  contract_path: Futures.TXF.TXFR1
downstream:
  brokers: [localhost:9092]
  topic: ticks.txf
`
		path := writeTempFile(t, yaml)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Instance.ID != "txf-bridge-1" {
			t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "txf-bridge-1")
		}
		if cfg.Upstream.ContractPath != "Futures.TXF.TXFR1" {
			t.Errorf("Upstream.ContractPath = %q, want %q", cfg.Upstream.ContractPath, "Futures.TXF.TXFR1")
		}
		if len(cfg.Downstream.Brokers) != 1 || cfg.Downstream.Brokers[0] != "localhost:9092" {
			t.Errorf("Downstream.Brokers = %v, want [localhost:9092]", cfg.Downstream.Brokers)
		}
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := Load("/nonexistent/path/config.yaml")
		if err == nil {
			t.Fatal("expected error for nonexistent file")
		}
		if !strings.Contains(err.Error(), "read config file") {
			t.Errorf("error should mention 'read config file', got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		yaml := `
instance:
  id: test
  invalid yaml here: [
`
		path := writeTempFile(t, yaml)

		_, err := Load(path)
		if err == nil {
			t.Fatal("expected error for invalid YAML")
		}
		if !strings.Contains(err.Error(), "parse config yaml") {
			t.Errorf("error should mention 'parse config yaml', got %v", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeTempFile(t, "")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Instance.ID != "" {
			t.Errorf("Instance.ID = %q, want empty", cfg.Instance.ID)
		}
	})
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Run("single env var", func(t *testing.T) {
		t.Setenv("TEST_SECRET_KEY", "s3cr3t")

		yaml := `
instance:
  id: test
upstream:
  api_key: test-key
  secret_key: ${TEST_SECRET_KEY}
`
		path := writeTempFile(t, yaml)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Upstream.SecretKey != "s3cr3t" {
			t.Errorf("Upstream.SecretKey = %q, want %q", cfg.Upstream.SecretKey, "s3cr3t")
		}
	})

	t.Run("multiple env vars", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "abc")
		t.Setenv("TEST_SECRET", "def")

		yaml := `
instance:
  id: test
upstream:
  api_key: ${TEST_API_KEY}
  secret_key: ${TEST_SECRET}
`
		path := writeTempFile(t, yaml)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Upstream.APIKey != "abc" || cfg.Upstream.SecretKey != "def" {
			t.Errorf("got api_key=%q secret_key=%q", cfg.Upstream.APIKey, cfg.Upstream.SecretKey)
		}
	})

	t.Run("unset env var results in empty", func(t *testing.T) {
		os.Unsetenv("TEST_UNSET_VAR")

		yaml := `
instance:
  id: test
upstream:
  secret_key: ${TEST_UNSET_VAR}
`
		path := writeTempFile(t, yaml)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Upstream.SecretKey != "" {
			t.Errorf("Upstream.SecretKey = %q, want empty", cfg.Upstream.SecretKey)
		}
	})
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test
upstream:
  api_key: k
  secret_key: s
  contract_path: Futures.TXF.TXFR1
downstream:
  brokers: [localhost:9092]
  topic: ticks.txf
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Upstream.ContractPollAttempts != DefaultContractPollAttempts {
		t.Errorf("ContractPollAttempts = %d, want %d", cfg.Upstream.ContractPollAttempts, DefaultContractPollAttempts)
	}
	if cfg.Downstream.Linger != DefaultLinger {
		t.Errorf("Linger = %s, want %s", cfg.Downstream.Linger, DefaultLinger)
	}
	if cfg.Session.Location != DefaultLocation {
		t.Errorf("Location = %q, want %q", cfg.Session.Location, DefaultLocation)
	}
	if cfg.Supervisor.MonitorInterval != DefaultMonitorInterval {
		t.Errorf("MonitorInterval = %s, want %s", cfg.Supervisor.MonitorInterval, DefaultMonitorInterval)
	}
	if cfg.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, DefaultHTTPAddr)
	}
}

func TestLoadWithDefaults_DoesNotOverrideSetValues(t *testing.T) {
	yaml := `
instance:
  id: test
upstream:
  api_key: k
  secret_key: s
  contract_poll_attempts: 5
downstream:
  linger: 250ms
supervisor:
  monitor_interval: 30s
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.Upstream.ContractPollAttempts != 5 {
		t.Errorf("ContractPollAttempts = %d, want 5", cfg.Upstream.ContractPollAttempts)
	}
	if cfg.Downstream.Linger != 250*time.Millisecond {
		t.Errorf("Linger = %s, want 250ms", cfg.Downstream.Linger)
	}
	if cfg.Supervisor.MonitorInterval != 30*time.Second {
		t.Errorf("MonitorInterval = %s, want 30s", cfg.Supervisor.MonitorInterval)
	}
}

func TestLoadAndValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		yaml := `
instance:
  id: test
upstream:
  api_key: k
  secret_key: s
  contract_path: Futures.TXF.TXFR1
downstream:
  brokers: [localhost:9092]
  topic: ticks.txf
`
		path := writeTempFile(t, yaml)

		if _, err := LoadAndValidate(path); err != nil {
			t.Errorf("expected valid config to pass, got %v", err)
		}
	})

	t.Run("missing credentials is fatal", func(t *testing.T) {
		yaml := `
instance:
  id: test
downstream:
  brokers: [localhost:9092]
  topic: ticks.txf
`
		path := writeTempFile(t, yaml)

		_, err := LoadAndValidate(path)
		if err == nil {
			t.Fatal("expected error for missing credentials")
		}
		if !errors.Is(err, ErrMissingCredential) {
			t.Errorf("expected ErrMissingCredential, got %v", err)
		}
	})

	t.Run("missing broker list is rejected", func(t *testing.T) {
		yaml := `
instance:
  id: test
upstream:
  api_key: k
  secret_key: s
  contract_path: Futures.TXF.TXFR1
downstream:
  topic: ticks.txf
`
		path := writeTempFile(t, yaml)

		if _, err := LoadAndValidate(path); err == nil {
			t.Fatal("expected error for missing downstream.brokers")
		}
	})
}

func TestValidate_RequiredAcksRange(t *testing.T) {
	cfg := &BridgeConfig{
		Instance:   InstanceConfig{ID: "test"},
		Upstream:   UpstreamConfig{APIKey: "k", SecretKey: "s", ContractPath: "p", ContractPollAttempts: 1},
		Downstream: DownstreamConfig{Brokers: []string{"localhost:9092"}, Topic: "t", RequiredAcks: 7},
		Session:    SessionConfig{Location: "Asia/Taipei"},
		Supervisor: SupervisorConfig{MonitorInterval: time.Second, TimeoutSeconds: time.Minute, MaxTimeoutRetries: 1},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range required_acks")
	}
}
