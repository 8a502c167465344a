// Package upstream implements the Upstream Session Manager: it owns the
// vendor SDK handle, the login/subscription lifecycle, and the subscribed
// state flag, and exposes idempotent connect/unsubscribe/reconnect/logout
// operations on top of a handler capability set delivered via callbacks.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/txf-bridge/internal/tick"
)

type pendingOp int

const (
	opNone pendingOp = iota
	opSubscribe
	opUnsubscribe
)

func (p pendingOp) String() string {
	switch p {
	case opSubscribe:
		return "subscribe"
	case opUnsubscribe:
		return "unsubscribe"
	default:
		return "none"
	}
}

// Manager implements the Upstream Session Manager state machine of
// spec.md §4.2 on top of an injected SDK Factory.
type Manager struct {
	cfg     Config
	factory Factory
	logger  *slog.Logger

	onTick       func(tick.Tick)
	onSubscribed func()

	// State guarded by mu: handle, subscribed, pendingOp. Mutated by the
	// SDK's own event-callback goroutine and by the caller (supervisor)
	// goroutine; writes are single-field and short, never held across an
	// SDK call, matching spec.md §5's shared-resource policy.
	mu         sync.Mutex
	handle     SDK
	subscribed bool
	pendingOp  pendingOp

	// reconnectMu is a try-lock guard: at most one reconnect may be in
	// flight. Blocking acquire is never used, so a session-down callback
	// firing during a supervisor-initiated reconnect returns immediately
	// instead of deadlocking against itself.
	reconnectMu sync.Mutex
}

// NewManager creates a Session Manager. onTick is invoked for every tick
// the vendor SDK delivers (the on-tick fast path belongs to the caller:
// Manager only plumbs the callback through). onSubscribed is invoked once
// per successful subscription confirmation.
func NewManager(cfg Config, factory Factory, onTick func(tick.Tick), onSubscribed func(), logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:          cfg,
		factory:      factory,
		onTick:       onTick,
		onSubscribed: onSubscribed,
		logger:       logger,
	}
}

// Subscribed reports the current subscription state.
func (m *Manager) Subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribed
}

// ConnectAndSubscribe is idempotent if already subscribed. It creates a
// fresh handle, logs in, polls the contract catalogue, and issues a
// subscribe request. Returns ErrLoginOrFetch if login fails or the
// contract never appears within the retry budget.
func (m *Manager) ConnectAndSubscribe(ctx context.Context) error {
	m.mu.Lock()
	already := m.subscribed
	m.mu.Unlock()
	if already {
		m.logger.Debug("already subscribed, no action needed")
		return nil
	}

	handle := m.factory()
	handle.OnTick(m.onTick)
	handle.OnEvent(m.handleEvent)
	handle.OnSessionDown(m.handleSessionDown)

	m.logger.Info("logging in to upstream quote feed")
	if err := handle.Login(ctx, m.cfg.APIKey, m.cfg.SecretKey); err != nil {
		m.logger.Error("upstream login failed", "error", err)
		return fmt.Errorf("%w: login: %v", ErrLoginOrFetch, err)
	}

	attempts := m.cfg.ContractPollAttempts
	if attempts <= 0 {
		attempts = 10
	}
	interval := m.cfg.ContractPollInterval
	if interval <= 0 {
		interval = time.Second
	}

	ready := false
	for i := 1; i <= attempts; i++ {
		if handle.ContractReady(m.cfg.ContractPath) {
			ready = true
			break
		}
		m.logger.Debug("contract not ready, retrying", "attempt", i, "max", attempts)
		time.Sleep(interval)
	}
	if !ready {
		return fmt.Errorf("%w: contract %q not available after %d attempts", ErrLoginOrFetch, m.cfg.ContractPath, attempts)
	}

	m.logger.Info("login successful, contract ready", "contract", m.cfg.ContractPath)

	m.mu.Lock()
	m.handle = handle
	m.pendingOp = opSubscribe
	m.mu.Unlock()

	if err := handle.Subscribe(m.cfg.ContractPath); err != nil {
		m.mu.Lock()
		m.pendingOp = opNone
		m.mu.Unlock()
		m.logger.Error("tick subscription request failed", "error", err)
		return nil
	}

	m.logger.Info("tick subscription request sent", "contract", m.cfg.ContractPath)
	return nil
}

// Unsubscribe is a no-op if not subscribed. It issues an unsubscribe
// request, waits up to UnsubscribeConfirmTimeout for the confirmation
// event to clear pendingOp, then always proceeds to Logout to guarantee
// resource release.
func (m *Manager) Unsubscribe() {
	m.mu.Lock()
	handle := m.handle
	subscribed := m.subscribed
	m.mu.Unlock()

	if !subscribed {
		m.logger.Debug("not currently subscribed, skipping unsubscription")
		return
	}

	m.mu.Lock()
	m.pendingOp = opUnsubscribe
	m.mu.Unlock()

	if handle != nil {
		if err := handle.Unsubscribe(m.cfg.ContractPath); err != nil {
			m.mu.Lock()
			m.pendingOp = opNone
			m.mu.Unlock()
			m.logger.Warn("tick unsubscription request failed", "error", err)
		} else {
			m.awaitUnsubscribeConfirmation()
		}
	}

	m.Logout()
}

func (m *Manager) awaitUnsubscribeConfirmation() {
	timeout := m.cfg.UnsubscribeConfirmTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	poll := m.cfg.UnsubscribeConfirmPoll
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		pending := m.pendingOp
		m.mu.Unlock()
		if pending != opUnsubscribe {
			return
		}
		time.Sleep(poll)
	}
	m.logger.Warn("timed out waiting for unsubscribe confirmation")
}

// Reconnect is mutually exclusive via a non-blocking guard: if a
// reconnect is already in flight, the call returns silently. Under the
// guard it clears subscribed/pendingOp, logs out the existing handle, and
// calls ConnectAndSubscribe. Errors are logged and swallowed: ErrLoginOrFetch
// as a recoverable failure (the supervisor retries on its next tick), any
// other error as an unexpected one.
func (m *Manager) Reconnect(ctx context.Context, reason string) {
	if !m.reconnectMu.TryLock() {
		m.logger.Warn("reconnection already in progress, skipping", "reason", reason)
		return
	}
	defer m.reconnectMu.Unlock()

	m.logger.Warn("starting session reconnection", "reason", reason)

	m.mu.Lock()
	m.subscribed = false
	m.pendingOp = opNone
	oldHandle := m.handle
	m.handle = nil
	m.mu.Unlock()

	if oldHandle != nil {
		if err := oldHandle.Logout(); err != nil {
			m.logger.Warn("exception during old handle logout", "error", err)
		}
	}

	if err := m.ConnectAndSubscribe(ctx); err != nil {
		if errors.Is(err, ErrLoginOrFetch) {
			m.logger.Error("session recovery failed during login/subscribe, monitor will retry", "error", err)
		} else {
			m.logger.Error("unexpected error during reconnect", "error", err)
		}
		return
	}

	m.logger.Info("reconnection process finished", "reason", reason)
}

// Logout releases the SDK handle if present. Best-effort; errors are
// logged, never propagated.
func (m *Manager) Logout() {
	m.mu.Lock()
	handle := m.handle
	m.handle = nil
	m.subscribed = false
	m.mu.Unlock()

	if handle == nil {
		return
	}
	if err := handle.Logout(); err != nil {
		m.logger.Error("failed to log out from upstream quote feed", "error", err)
	}
}

// handleEvent is registered as the SDK's on-event callback. On the
// subscription-state-change event it completes the pending operation and
// clears pendingOp. Outside this confirmation path, pendingOp is cleared
// only when a subscribe/unsubscribe request itself fails and by Reconnect's
// state reset.
func (m *Manager) handleEvent(eventCode int, info string) {
	m.logger.Debug("upstream event received", "code", eventCode, "info", info)
	if eventCode != SubscriptionEventCode {
		return
	}

	m.mu.Lock()
	var notify func()
	switch m.pendingOp {
	case opSubscribe:
		m.subscribed = true
		m.pendingOp = opNone
		notify = m.onSubscribed
	case opUnsubscribe:
		m.subscribed = false
		m.pendingOp = opNone
	}
	m.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// handleSessionDown is registered as the SDK's on-session-down callback.
// It may fire from the SDK's own goroutine, concurrently with a
// supervisor-initiated reconnect; Reconnect's try-lock guard makes that
// safe.
func (m *Manager) handleSessionDown(reason string) {
	m.logger.Error("session down event triggered by upstream SDK", "reason", reason)
	m.Reconnect(context.Background(), fmt.Sprintf("upstream session down: %s", reason))
}
