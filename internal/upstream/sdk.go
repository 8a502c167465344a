package upstream

import (
	"context"

	"github.com/rickgao/txf-bridge/internal/tick"
)

// SDK is the vendor quote feed's session handle. It is the seam
// spec.md §1 places out of scope: login, subscription lifecycle, and
// callback registration for one instrument. A fresh SDK value is created by
// Factory on every connect and every reconnect — the vendor SDK this models
// has no notion of reusing a handle across a logout.
type SDK interface {
	// Login authenticates the session. Implementations should return
	// promptly; Manager applies no timeout of its own beyond what ctx
	// carries.
	Login(ctx context.Context, apiKey, secretKey string) error

	// ContractReady reports whether the named contract is present in the
	// SDK's local catalogue yet. Manager polls this; it must not block.
	ContractReady(path string) bool

	// Subscribe and Unsubscribe issue requests for the named contract.
	// They return once the request has been sent, not once the vendor
	// confirms it — confirmation arrives asynchronously through the event
	// handler registered via OnEvent.
	Subscribe(path string) error
	Unsubscribe(path string) error

	// Logout releases the handle. Best-effort; Manager always treats its
	// result as advisory.
	Logout() error

	// OnTick, OnEvent, and OnSessionDown register the handler capability
	// set spec.md §9 calls for in place of the vendor's duck-typed
	// callables. Each may be invoked from a goroutine owned by the SDK,
	// concurrently with the Manager's own calls.
	OnTick(handler func(tick.Tick))
	OnEvent(handler func(eventCode int, info string))
	OnSessionDown(handler func(reason string))
}

// Factory creates a fresh SDK handle. Manager calls it once per
// connect/reconnect cycle, mirroring the vendor SDK's own requirement that
// callbacks be (re)registered on a brand-new session object.
type Factory func() SDK

// SubscriptionEventCode is the integer event code the vendor SDK emits for
// subscription state changes (both subscribe and unsubscribe
// confirmations arrive under this single code).
const SubscriptionEventCode = 16
