package model

import (
	"fmt"
	"strings"
)

// HarnessConfig is the file based configuration of a sandbox run. Every field
// is optional, unset fields fall back to flags, environment and defaults.
type HarnessConfig struct {
	SandboxDir         string
	DefaultPorts       []int
	ExpectedVersion    string
	ProvisionerCommand string
	ProvisionerEnv     map[string]string
	ReplayMode         string
	SnapshotDir        string
	Debug              bool
	ReuseBoilerplate   bool
}

// Validate validates the harness configuration.
func (c HarnessConfig) Validate() error {
	for _, p := range c.DefaultPorts {
		if err := ValidatePort(p); err != nil {
			return fmt.Errorf("default ports: %w", err)
		}
	}

	switch strings.ToLower(c.ReplayMode) {
	case "", "direct", "record", "replay":
	default:
		return fmt.Errorf("unknown replay mode %q: %w", c.ReplayMode, ErrNotValid)
	}

	if c.ReplayMode != "" && !strings.EqualFold(c.ReplayMode, "direct") && c.SnapshotDir == "" {
		return fmt.Errorf("replay mode %q requires a snapshot dir: %w", c.ReplayMode, ErrNotValid)
	}

	return nil
}
