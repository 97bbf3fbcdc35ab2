package prompt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"

	"github.com/slok/dbsandbox/internal/log"
)

// DefaultPromptSuffixes are the output endings detected as prompts.
var DefaultPromptSuffixes = []string{": ", "? "}

// SessionConfig is the configuration for an interactive session.
type SessionConfig struct {
	// Command is the program and its arguments.
	Command []string
	// Env is appended to the current process environment.
	Env []string
	// Feeder answers the detected prompts.
	Feeder *Feeder
	// PromptSuffixes defaults to DefaultPromptSuffixes.
	PromptSuffixes []string
	Logger         log.Logger
}

func (c *SessionConfig) defaults() error {
	if len(c.Command) == 0 {
		return fmt.Errorf("command is required")
	}

	if c.Feeder == nil {
		return fmt.Errorf("feeder is required")
	}

	if len(c.PromptSuffixes) == 0 {
		c.PromptSuffixes = DefaultPromptSuffixes
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "prompt.Session"})

	return nil
}

// Session runs a program on a pseudo-terminal and answers its prompts.
type Session struct {
	command  []string
	env      []string
	feeder   *Feeder
	suffixes []string
	logger   log.Logger
}

// NewSession returns a new interactive session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Session{
		command:  cfg.Command,
		env:      cfg.Env,
		feeder:   cfg.Feeder,
		suffixes: cfg.PromptSuffixes,
		logger:   cfg.Logger,
	}, nil
}

// RedactedAnswer replaces password answers in the returned output.
const RedactedAnswer = "********"

// Run runs the program until it exits and returns everything it printed,
// with the password answers redacted. An unexpected prompt kills the program.
func (s *Session) Run(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Env = append(os.Environ(), s.env...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return "", fmt.Errorf("could not start %s on a terminal: %w", s.command[0], err)
	}
	defer ptmx.Close()

	var transcript bytes.Buffer
	var secrets []string
	output := func() string { return redact(transcript.String(), secrets) }
	var line []byte
	buf := make([]byte, 4096)
	for {
		n, rerr := ptmx.Read(buf)
		if n > 0 {
			transcript.Write(buf[:n])
			line = append(line, buf[:n]...)
			if i := bytes.LastIndexByte(line, '\n'); i >= 0 {
				line = line[i+1:]
			}

			if prompt, kind, ok := s.detect(string(line)); ok {
				answer, err := s.feeder.Answer(ctx, prompt, kind)
				if err != nil {
					_ = cmd.Process.Kill()
					_ = cmd.Wait()
					return output(), err
				}
				if kind == KindPassword && answer != "" {
					secrets = append(secrets, answer)
				}
				if _, err := ptmx.Write([]byte(answer + "\n")); err != nil {
					_ = cmd.Process.Kill()
					_ = cmd.Wait()
					return output(), fmt.Errorf("could not write answer: %w", err)
				}
				line = line[:0]
			}
		}
		// Reads fail (EIO on Linux) once the program closes the terminal.
		if rerr != nil {
			break
		}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output(), fmt.Errorf("%s exited with code %d", s.command[0], exitErr.ExitCode())
		}
		return output(), err
	}

	return output(), nil
}

// redact replaces every secret in out, the terminal echoes typed answers back.
func redact(out string, secrets []string) string {
	for _, secret := range secrets {
		out = strings.ReplaceAll(out, secret, RedactedAnswer)
	}
	return out
}

// detect reports whether the pending output line is a prompt.
func (s *Session) detect(line string) (string, Kind, bool) {
	line = strings.TrimLeft(line, "\r")
	for _, suffix := range s.suffixes {
		if !strings.HasSuffix(line, suffix) {
			continue
		}

		kind := KindText
		if strings.Contains(strings.ToLower(line), "password") {
			kind = KindPassword
		}
		return line, kind, true
	}

	return "", KindText, false
}
