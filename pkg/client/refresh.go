package client

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

const refreshFlightKey = "access-token"

// refresher runs at most one token refresh at a time. Callers arriving while
// a refresh is in flight wait for that refresh instead of starting another.
type refresher struct {
	group   singleflight.Group
	fetch   func(ctx context.Context) (string, error)
	timeout time.Duration
}

func newRefresher(fetch func(ctx context.Context) (string, error), timeout time.Duration) *refresher {
	return &refresher{fetch: fetch, timeout: timeout}
}

// refresh returns the token produced by the shared refresh call. The call
// itself is detached from ctx so one caller giving up does not fail the
// others, and is bounded by the refresher timeout.
func (r *refresher) refresh(ctx context.Context) (string, error) {
	ch := r.group.DoChan(refreshFlightKey, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.fetch(callCtx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
