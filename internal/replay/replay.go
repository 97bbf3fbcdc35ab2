// Package replay models the run mode of a test session.
//
// A session runs in one of three modes chosen once per run: Direct (real
// servers, nothing recorded), Record (real servers, interactions recorded) or
// Replay (recorded interactions, no real servers). The mode is an explicit
// value held by a Gate and passed to every component that needs it. A context
// derived with NoReplay forces Direct for a scope, so the side effects that must
// always happen (e.g. filesystem cleanup) run even while replaying, and nothing
// done inside that scope is recorded.
package replay

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Mode is the run mode of a test session.
type Mode int

const (
	// ModeDirect runs against real servers without recording.
	ModeDirect Mode = iota
	// ModeRecord runs against real servers and records the interactions.
	ModeRecord
	// ModeReplay replays recorded interactions, there are no real servers.
	ModeReplay
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeRecord:
		return "record"
	case ModeReplay:
		return "replay"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "direct":
		return ModeDirect, nil
	case "record":
		return ModeRecord, nil
	case "replay":
		return ModeReplay, nil
	default:
		return ModeDirect, fmt.Errorf("unknown replay mode %q (must be: direct, record, replay)", s)
	}
}

type contextKey string

const noReplayKey = contextKey("no-replay")

// NoReplay returns a copy of parent in which the effective mode is Direct.
// The parent keeps its mode, so the override ends with the derived context.
func NoReplay(parent context.Context) context.Context {
	return context.WithValue(parent, noReplayKey, true)
}

func isNoReplay(ctx context.Context) bool {
	v, _ := ctx.Value(noReplayKey).(bool)
	return v
}

// Gate holds the run mode and answers what the components are allowed to do.
type Gate struct {
	mode Mode
}

// NewGate returns a gate for mode.
func NewGate(mode Mode) Gate {
	return Gate{mode: mode}
}

// RunMode returns the mode the run was configured with, ignoring scoped overrides.
func (g Gate) RunMode() Mode { return g.mode }

// Mode returns the effective mode for ctx.
func (g Gate) Mode(ctx context.Context) Mode {
	if isNoReplay(ctx) {
		return ModeDirect
	}
	return g.mode
}

// Replaying reports whether real side effects must be skipped for ctx.
func (g Gate) Replaying(ctx context.Context) bool { return g.Mode(ctx) == ModeReplay }

// Recording reports whether interactions done with ctx are recorded.
func (g Gate) Recording(ctx context.Context) bool { return g.Mode(ctx) == ModeRecord }

// PollInterval returns the interval to wait between polls of a real server.
// Replayed runs have no server to wait on, so they use the replayed interval.
func (g Gate) PollInterval(ctx context.Context, real, replayed time.Duration) time.Duration {
	if g.Replaying(ctx) {
		return replayed
	}
	return real
}
