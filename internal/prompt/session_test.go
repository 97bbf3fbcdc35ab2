//go:build !windows

package prompt_test

import (
	"context"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dbsandbox/internal/prompt"
)

func requirePTY(t *testing.T) {
	t.Helper()

	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pseudo-terminals not available: %v", err)
	}
	ptmx.Close()
	tty.Close()
}

func TestSessionRun(t *testing.T) {
	tests := map[string]struct {
		script       string
		queue        func(f *prompt.Feeder)
		expOutput    string
		expNotOutput string
		expErr       bool
		expErrIs     error
	}{
		"A program without prompts should run to completion.": {
			script:    `echo ready`,
			queue:     func(f *prompt.Feeder) {},
			expOutput: "ready",
		},

		"Text and password prompts should be answered.": {
			script: `printf "Name: "; read n; printf "Password: "; read p; echo "hello $n with $p"`,
			queue: func(f *prompt.Feeder) {
				_ = f.Expect("Name: ", "bob")
				_ = f.ExpectPassword("*", "secret")
			},
			expOutput:    "hello bob with ********",
			expNotOutput: "secret",
		},

		"Echoed password answers should be redacted.": {
			script: `printf "Enter password: "; read p; echo done`,
			queue: func(f *prompt.Feeder) {
				_ = f.ExpectPassword("Enter password: ", "s3cr3t-root")
			},
			expOutput:    "done",
			expNotOutput: "s3cr3t-root",
		},

		"Text answers should be kept.": {
			script: `printf "Name: "; read n; echo "hello $n"`,
			queue: func(f *prompt.Feeder) {
				_ = f.Expect("Name: ", "bob")
			},
			expOutput: "hello bob",
		},

		"An unexpected prompt should stop the program.": {
			script: `printf "Surname: "; read n; echo "hello $n"`,
			queue: func(f *prompt.Feeder) {
				_ = f.Expect("Name: ", "bob")
			},
			expErr:   true,
			expErrIs: prompt.ErrUnexpectedPrompt,
		},

		"A failing program should return an error.": {
			script: `echo boom; exit 3`,
			queue:  func(f *prompt.Feeder) {},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			requirePTY(t)
			assert := assert.New(t)
			require := require.New(t)

			f, err := prompt.NewFeeder(prompt.FeederConfig{})
			require.NoError(err)
			test.queue(f)

			s, err := prompt.NewSession(prompt.SessionConfig{
				Command: []string{"sh", "-c", test.script},
				Feeder:  f,
			})
			require.NoError(err)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			out, err := s.Run(ctx)
			if test.expErr {
				assert.Error(err)
				if test.expErrIs != nil {
					assert.ErrorIs(err, test.expErrIs)
				}
				return
			}

			require.NoError(err)
			assert.Contains(out, test.expOutput)
			if test.expNotOutput != "" {
				assert.NotContains(out, test.expNotOutput)
			}
		})
	}
}

func TestNewSession(t *testing.T) {
	f, _ := prompt.NewFeeder(prompt.FeederConfig{})

	_, err := prompt.NewSession(prompt.SessionConfig{Feeder: f})
	assert.Error(t, err)

	_, err = prompt.NewSession(prompt.SessionConfig{Command: []string{"true"}})
	assert.Error(t, err)
}
