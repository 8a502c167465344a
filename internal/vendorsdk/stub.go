// Package vendorsdk is the integration seam for the proprietary quote-feed
// SDK. spec.md §1 places the vendor SDK itself out of scope: this package
// supplies nothing but a Factory that satisfies upstream.SDK's shape so
// cmd/bridge has something to wire at startup. Deploying against a real
// feed means replacing Factory with one that constructs the vendor's own
// client and adapts its callback registration to upstream.SDK.
package vendorsdk

import (
	"context"
	"errors"

	"github.com/rickgao/txf-bridge/internal/tick"
	"github.com/rickgao/txf-bridge/internal/upstream"
)

// ErrNotConfigured is returned by the stub client's Login to make the
// missing integration loud at startup instead of silently never ticking.
var ErrNotConfigured = errors.New("vendorsdk: no vendor quote SDK client configured")

type stubClient struct{}

func (stubClient) Login(ctx context.Context, apiKey, secretKey string) error { return ErrNotConfigured }
func (stubClient) ContractReady(path string) bool                           { return false }
func (stubClient) Subscribe(path string) error                              { return ErrNotConfigured }
func (stubClient) Unsubscribe(path string) error                            { return nil }
func (stubClient) Logout() error                                            { return nil }
func (stubClient) OnTick(func(tick.Tick))                                   {}
func (stubClient) OnEvent(func(code int, info string))                      {}
func (stubClient) OnSessionDown(func(reason string))                        {}

// Factory satisfies upstream.Factory. Replace at the call site in
// cmd/bridge with a factory backed by the real vendor client.
func Factory() upstream.SDK {
	return stubClient{}
}
