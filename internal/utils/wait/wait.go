// Package wait has the sleep primitive shared by every polling loop.
package wait

import (
	"context"
	"time"
)

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Recorder is a SleepFunc that never waits and keeps the requested durations.
// It is meant for tests.
type Recorder struct {
	Slept []time.Duration
	// OnSleep is called on every sleep, its error is returned.
	OnSleep func(n int) error
}

// Sleep records d.
func (r *Recorder) Sleep(ctx context.Context, d time.Duration) error {
	r.Slept = append(r.Slept, d)
	if r.OnSleep != nil {
		return r.OnSleep(len(r.Slept))
	}
	return nil
}
