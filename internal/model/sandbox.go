package model

import (
	"fmt"
	"strings"
	"time"
)

// SandboxStatus represents the status of a sandbox.
type SandboxStatus string

const (
	// SandboxStatusDeployed indicates the sandbox files exist but the server never ran.
	SandboxStatusDeployed SandboxStatus = "deployed"
	// SandboxStatusRunning indicates the sandbox server is running.
	SandboxStatusRunning SandboxStatus = "running"
	// SandboxStatusStopped indicates the sandbox server was shut down cleanly.
	SandboxStatusStopped SandboxStatus = "stopped"
	// SandboxStatusKilled indicates the sandbox server was killed.
	SandboxStatusKilled SandboxStatus = "killed"
)

// Sandbox represents a locally deployed database server instance.
// The port is the unique key, every path is derived from it.
type Sandbox struct {
	ID        string
	Port      int
	BaseDir   string
	Status    SandboxStatus
	CreatedAt time.Time
	StartedAt *time.Time
	StoppedAt *time.Time
}

// Validate validates the sandbox model.
func (s Sandbox) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("sandbox id is required: %w", ErrNotValid)
	}

	if err := ValidatePort(s.Port); err != nil {
		return err
	}

	if s.BaseDir == "" {
		return fmt.Errorf("sandbox base dir is required: %w", ErrNotValid)
	}

	if _, err := ParseSandboxStatus(string(s.Status)); err != nil {
		return err
	}

	return nil
}

// ParseSandboxStatus parses a case insensitive sandbox status.
func ParseSandboxStatus(s string) (SandboxStatus, error) {
	status := SandboxStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case SandboxStatusDeployed, SandboxStatusRunning, SandboxStatusStopped, SandboxStatusKilled:
		return status, nil
	}
	return "", fmt.Errorf("unknown sandbox status %q: %w", s, ErrNotValid)
}

// ValidatePort checks the port is usable as a sandbox key. Sandboxes also
// listen on port*10 so that one has to fit too.
func ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port %d out of range: %w", port, ErrNotValid)
	}
	if port*10 > 65535 {
		return fmt.Errorf("extended port %d for port %d out of range: %w", port*10, port, ErrNotValid)
	}
	return nil
}

// BoilerplateSignature is what a boilerplate was built with. A boilerplate is only
// reusable while both values match what the run requests.
type BoilerplateSignature struct {
	RootPassword string
	Version      string
}

// TestContext is the caller location used to attribute failures.
type TestContext struct {
	File string
	Line int
}

func (t TestContext) String() string {
	if t.File == "" {
		return "unknown location"
	}
	return fmt.Sprintf("%s:%d", t.File, t.Line)
}

// DiskUsage is the space used by the files of a sandbox.
type DiskUsage struct {
	VirtualBytes   int64
	AllocatedBytes int64
}
