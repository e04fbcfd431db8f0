// Package geotag acquires a position fix for evidence photos with a bounded
// wait, falling back to manual location entry when no signal is available.
package geotag

import (
	"context"
	"errors"
	"time"

	"slfcert/internal/checklist/models"
)

// DefaultTimeout bounds how long Acquire waits for a position fix.
const DefaultTimeout = 15 * time.Second

// ErrNoSignal is returned by locators that know no fix is coming.
var ErrNoSignal = errors.New("geotag: no position signal")

// Fix is a GPS position attached to a photo. Manual fixes carry no
// coordinates; the inspector enters a location by hand and NeedsReview says
// whether an admin must approve it.
type Fix struct {
	Latitude    float64   `json:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty"`
	Accuracy    float64   `json:"accuracy,omitempty"`
	CapturedAt  time.Time `json:"captured_at,omitempty"`
	Manual      bool      `json:"manual"`
	NeedsReview bool      `json:"needs_review"`
	Message     string    `json:"message,omitempty"`
}

// Locator produces a position fix. Implementations block until a fix is
// available or ctx is done.
type Locator interface {
	Locate(ctx context.Context) (Fix, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (Fix, error)

func (f LocatorFunc) Locate(ctx context.Context) (Fix, error) {
	return f(ctx)
}

// Acquire waits at most timeout for locator. On timeout or locator failure
// it returns the manual-entry fix described by policy. It only returns an
// error when the caller's ctx is cancelled or when policy forbids manual
// entry and no fix was obtained.
func Acquire(ctx context.Context, locator Locator, timeout time.Duration, policy models.NoSignalPolicy) (Fix, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		fix Fix
		err error
	}
	done := make(chan result, 1)
	go func() {
		fix, err := locator.Locate(waitCtx)
		done <- result{fix: fix, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			return res.fix, nil
		}
		if ctx.Err() != nil {
			return Fix{}, ctx.Err()
		}
		return Fallback(policy)
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return Fix{}, ctx.Err()
		}
		return Fallback(policy)
	}
}

// Fallback returns the manual-entry fix for policy, or ErrNoSignal when the
// policy does not allow manual locations.
func Fallback(policy models.NoSignalPolicy) (Fix, error) {
	if !policy.AllowManualLocation {
		return Fix{}, ErrNoSignal
	}
	return Fix{
		Manual:      true,
		NeedsReview: policy.RequireReviewerApproval,
		Message:     policy.Message,
	}, nil
}
