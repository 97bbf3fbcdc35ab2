// Package prompt answers the interactive prompts of a process under test.
//
// The test driver queues expectations in order (the prompt it expects and the
// answer to give) and the consumer of an interactive session asks the Feeder
// for the answer of every prompt it detects. Any difference between the
// detected and the expected prompt is an error, never a silent hang.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slok/dbsandbox/internal/log"
)

// ErrUnexpectedPrompt is returned when a detected prompt does not match the next expectation.
var ErrUnexpectedPrompt = errors.New("unexpected prompt")

// AnyPrompt matches any prompt of the expected kind.
const AnyPrompt = "*"

// Kind is the kind of prompt.
type Kind int

const (
	// KindText is a prompt with an echoed answer.
	KindText Kind = iota
	// KindPassword is a prompt with a hidden answer.
	KindPassword
)

func (k Kind) String() string {
	if k == KindPassword {
		return "password"
	}
	return "text"
}

// Expectation is a queued prompt and its answer.
type Expectation struct {
	Pattern string
	Answer  string
	Kind    Kind
}

// Matches reports whether prompt of kind satisfies the expectation.
// Surrounding whitespace is ignored.
func (e Expectation) Matches(prompt string, kind Kind) bool {
	if e.Kind != kind {
		return false
	}
	if e.Pattern == AnyPrompt {
		return true
	}
	return strings.TrimSpace(e.Pattern) == strings.TrimSpace(prompt)
}

// FeederConfig is the configuration for the Feeder.
type FeederConfig struct {
	// Capacity is the maximum number of pending expectations. Defaults to 64.
	Capacity int
	Logger   log.Logger
}

func (c *FeederConfig) defaults() error {
	if c.Capacity == 0 {
		c.Capacity = 64
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity can't be negative")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "prompt.Feeder"})

	return nil
}

// Feeder is a FIFO of prompt expectations with a single consumer.
type Feeder struct {
	queue  chan Expectation
	logger log.Logger
}

// NewFeeder returns a new empty Feeder.
func NewFeeder(cfg FeederConfig) (*Feeder, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Feeder{
		queue:  make(chan Expectation, cfg.Capacity),
		logger: cfg.Logger,
	}, nil
}

// Expect queues a text prompt and its answer.
func (f *Feeder) Expect(pattern, answer string) error {
	return f.push(Expectation{Pattern: pattern, Answer: answer, Kind: KindText})
}

// ExpectPassword queues a password prompt and its answer.
func (f *Feeder) ExpectPassword(pattern, answer string) error {
	return f.push(Expectation{Pattern: pattern, Answer: answer, Kind: KindPassword})
}

func (f *Feeder) push(e Expectation) error {
	select {
	case f.queue <- e:
		return nil
	default:
		return fmt.Errorf("too many pending prompt expectations (%d)", cap(f.queue))
	}
}

// Pending returns the number of queued expectations.
func (f *Feeder) Pending() int { return len(f.queue) }

// Answer pops the next expectation and returns its answer when it matches the
// prompt. With nothing queued it blocks until an expectation arrives or ctx ends.
func (f *Feeder) Answer(ctx context.Context, prompt string, kind Kind) (string, error) {
	var exp Expectation
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("no answer for %s prompt %q: %w", kind, prompt, ctx.Err())
	case exp = <-f.queue:
	}

	if !exp.Matches(prompt, kind) {
		return "", fmt.Errorf("got %s prompt %q, expected %s prompt %q: %w", kind, prompt, exp.Kind, exp.Pattern, ErrUnexpectedPrompt)
	}
	f.logger.Debugf("Answering %s prompt %q", kind, prompt)

	return exp.Answer, nil
}
