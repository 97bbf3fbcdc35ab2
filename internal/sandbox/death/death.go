// Package death confirms that a server process is fully gone.
//
// A killed or stopped server keeps holding its files for a while after the
// provisioning tool returns. Starting a new server on the same data directory
// before they are released makes it fail, so the lifecycle waits on a Probe
// between stopping and starting a sandbox. There is one Probe implementation
// per platform family, selected at build time.
package death

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/utils/wait"
)

const (
	// SocketLockPollInterval is the wait between checks of the socket lock file.
	SocketLockPollInterval = 500 * time.Millisecond
	// DataLockPollInterval is the wait between checks of the data file lock.
	DataLockPollInterval = 1000 * time.Millisecond
	// AppendOpenPollInterval is the wait between attempts of opening the data file for append.
	AppendOpenPollInterval = 500 * time.Millisecond
)

// Probe waits until the server owning a data directory has released every
// resource that shows it is alive.
//
// There is no internal deadline, a server that never dies makes WaitUntilDead
// poll forever. Callers needing a hard limit cancel the context.
type Probe interface {
	WaitUntilDead(ctx context.Context, dataDir string) error
}

// ProbeConfig is the configuration for the platform probe.
type ProbeConfig struct {
	// Sleep is used between polls. Defaults to wait.Sleep.
	Sleep  wait.SleepFunc
	Logger log.Logger
}

func (c *ProbeConfig) defaults() error {
	if c.Sleep == nil {
		c.Sleep = wait.Sleep
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "death.Probe"})
	return nil
}

// NewProbe returns the probe for the current platform.
func NewProbe(cfg ProbeConfig) (Probe, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return newPlatformProbe(cfg), nil
}
