package wait_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/dbsandbox/internal/utils/wait"
)

func TestSleep(t *testing.T) {
	tests := map[string]struct {
		ctx    func() context.Context
		d      time.Duration
		expErr bool
	}{
		"A short sleep should finish without error.": {
			ctx: context.Background,
			d:   time.Millisecond,
		},

		"A cancelled context should stop the sleep with an error.": {
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			d:      time.Hour,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			err := wait.Sleep(test.ctx(), test.d)
			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func TestRecorder(t *testing.T) {
	assert := assert.New(t)

	r := &wait.Recorder{OnSleep: func(n int) error {
		if n == 2 {
			return context.Canceled
		}
		return nil
	}}

	assert.NoError(r.Sleep(context.Background(), time.Second))
	assert.ErrorIs(r.Sleep(context.Background(), time.Millisecond), context.Canceled)
	assert.Equal([]time.Duration{time.Second, time.Millisecond}, r.Slept)
}
