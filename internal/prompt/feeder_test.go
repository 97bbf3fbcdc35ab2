package prompt_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dbsandbox/internal/prompt"
)

type answerCall struct {
	prompt string
	kind   prompt.Kind
}

func TestFeederAnswer(t *testing.T) {
	tests := map[string]struct {
		queue      func(f *prompt.Feeder)
		calls      []answerCall
		expAnswers []string
		expErr     error
	}{
		"Expectations should be answered in order.": {
			queue: func(f *prompt.Feeder) {
				_ = f.Expect("Continue? [y/N]: ", "y")
				_ = f.ExpectPassword("Please provide the password for 'root@localhost:3310': ", "secret")
			},
			calls: []answerCall{
				{prompt: "Continue? [y/N]: ", kind: prompt.KindText},
				{prompt: "Please provide the password for 'root@localhost:3310': ", kind: prompt.KindPassword},
			},
			expAnswers: []string{"y", "secret"},
		},

		"Surrounding whitespace should be ignored.": {
			queue: func(f *prompt.Feeder) {
				_ = f.Expect("Name:", "bob")
			},
			calls:      []answerCall{{prompt: "Name: ", kind: prompt.KindText}},
			expAnswers: []string{"bob"},
		},

		"A wildcard should match any prompt of its kind.": {
			queue: func(f *prompt.Feeder) {
				_ = f.ExpectPassword("*", "secret")
			},
			calls:      []answerCall{{prompt: "Password for x: ", kind: prompt.KindPassword}},
			expAnswers: []string{"secret"},
		},

		"A different prompt text should fail.": {
			queue: func(f *prompt.Feeder) {
				_ = f.Expect("Name: ", "bob")
			},
			calls:  []answerCall{{prompt: "Surname: ", kind: prompt.KindText}},
			expErr: prompt.ErrUnexpectedPrompt,
		},

		"A different prompt kind should fail, even with a wildcard.": {
			queue: func(f *prompt.Feeder) {
				_ = f.Expect("*", "bob")
			},
			calls:  []answerCall{{prompt: "Password: ", kind: prompt.KindPassword}},
			expErr: prompt.ErrUnexpectedPrompt,
		},

		"A prompt without expectations should fail when the context ends.": {
			queue:  func(f *prompt.Feeder) {},
			calls:  []answerCall{{prompt: "Name: ", kind: prompt.KindText}},
			expErr: context.DeadlineExceeded,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			f, err := prompt.NewFeeder(prompt.FeederConfig{})
			require.NoError(err)
			test.queue(f)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			var gotAnswers []string
			for _, c := range test.calls {
				answer, err := f.Answer(ctx, c.prompt, c.kind)
				if err != nil {
					assert.ErrorIs(err, test.expErr)
					return
				}
				gotAnswers = append(gotAnswers, answer)
			}

			assert.Nil(test.expErr)
			assert.Equal(test.expAnswers, gotAnswers)
			assert.Zero(f.Pending())
		})
	}
}

func TestFeederAnswerWaitsForExpectation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	f, err := prompt.NewFeeder(prompt.FeederConfig{})
	require.NoError(err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = f.Expect("Name: ", "bob")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	answer, err := f.Answer(ctx, "Name: ", prompt.KindText)
	require.NoError(err)
	assert.Equal("bob", answer)
}

func TestFeederCapacity(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	f, err := prompt.NewFeeder(prompt.FeederConfig{Capacity: 2})
	require.NoError(err)

	assert.NoError(f.Expect("a: ", "1"))
	assert.NoError(f.ExpectPassword("b: ", "2"))
	assert.Error(f.Expect("c: ", "3"))
	assert.Equal(2, f.Pending())
}
