package upstream

import "errors"

// ErrLoginOrFetch is returned by ConnectAndSubscribe when login fails or
// the target contract never appears in the catalogue within the retry
// budget. It is recoverable: the supervisor logs it and retries on its
// next monitor iteration.
var ErrLoginOrFetch = errors.New("upstream: login or contract fetch failed")
