package lib

import (
	"context"
	"fmt"

	"github.com/slok/dbsandbox/internal/prompt"
	"github.com/slok/dbsandbox/internal/utils/env"
)

// AnyPrompt matches any prompt of the expected kind.
const AnyPrompt = prompt.AnyPrompt

// ExpectPrompt queues the next expected text prompt and the answer to give.
// Use [AnyPrompt] to accept any prompt. Expectations are consumed in order
// by [Client.RunInteractive].
func (c *Client) ExpectPrompt(pattern, answer string) error {
	return c.feeder.Expect(pattern, answer)
}

// ExpectPassword queues the next expected password prompt and the answer to give.
func (c *Client) ExpectPassword(pattern, answer string) error {
	return c.feeder.ExpectPassword(pattern, answer)
}

// PendingPrompts returns the number of queued prompt expectations.
func (c *Client) PendingPrompts() int { return c.feeder.Pending() }

// RunInteractive runs command on a pseudo-terminal answering its prompts with
// the queued expectations, and returns everything it printed. A prompt
// different from the next expectation kills the program and returns
// [ErrUnexpectedPrompt].
func (c *Client) RunInteractive(ctx context.Context, command []string, extraEnv map[string]string) (string, error) {
	s, err := prompt.NewSession(prompt.SessionConfig{
		Command: command,
		Env:     env.List(extraEnv),
		Feeder:  c.feeder,
		Logger:  c.logger,
	})
	if err != nil {
		return "", mapError(fmt.Errorf("could not create interactive session: %w", err))
	}

	out, err := s.Run(ctx)
	return out, mapError(err)
}
