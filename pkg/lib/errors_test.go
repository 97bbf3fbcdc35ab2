package lib

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/prompt"
)

func TestMapError(t *testing.T) {
	tests := map[string]struct {
		err   error
		expIs []error
	}{
		"A not found error should be mapped.": {
			err:   fmt.Errorf("sandbox not found: 3310: %w", model.ErrNotFound),
			expIs: []error{ErrNotFound, model.ErrNotFound},
		},

		"A timeout error should be mapped.": {
			err:   fmt.Errorf("waiting: %w", model.ErrTimeout),
			expIs: []error{ErrTimeout},
		},

		"An unexpected prompt error should be mapped.": {
			err:   fmt.Errorf("answering: %w", prompt.ErrUnexpectedPrompt),
			expIs: []error{ErrUnexpectedPrompt},
		},

		"A fatal error should be mapped before its other causes.": {
			err:   fmt.Errorf("rebuild: %w: %w", model.ErrNotValid, model.ErrFatal),
			expIs: []error{ErrFatal, model.ErrNotValid},
		},

		"An unknown error should be kept.": {
			err: errors.New("something"),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			got := mapError(test.err)

			assert.Equal(test.err.Error(), got.Error())
			for _, target := range test.expIs {
				assert.True(errors.Is(got, target), "expected %v in %v", target, got)
			}
		})
	}

	assert.NoError(t, mapError(nil))
}

func TestHandleErrorCallsOnFatal(t *testing.T) {
	tests := map[string]struct {
		err         error
		expFatalErr bool
	}{
		"A fatal error should call the fatal handler.": {
			err:         fmt.Errorf("could not rebuild stale boilerplate: %w", model.ErrFatal),
			expFatalErr: true,
		},

		"A regular error should not call the fatal handler.": {
			err: fmt.Errorf("could not start sandbox: %w", model.ErrNotFound),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var fatal error
			c := &Client{
				logger:  log.Noop,
				onFatal: func(err error) { fatal = err },
			}

			err := c.handleError(test.err)

			assert.Error(err)
			if test.expFatalErr {
				assert.Equal(test.err, fatal)
				assert.True(errors.Is(err, ErrFatal))
			} else {
				assert.Nil(fatal)
			}
		})
	}
}

func TestDefaultOnFatalPanics(t *testing.T) {
	cfg := Config{Provisioner: ProvisionerTypeFake, SandboxDir: t.TempDir()}
	assert.NoError(t, cfg.defaults())

	assert.Panics(t, func() { cfg.OnFatal(model.ErrFatal) })
}
