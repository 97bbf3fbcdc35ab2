// Package mysql implements sandbox.Engine for local MySQL server sandboxes.
//
// Every sandbox is a copy of a shared boilerplate sandbox (a fully
// initialized and stopped server directory) with its identity options rewritten.
// Cloning is much faster than initializing a new data directory, so the
// boilerplate is built once per root password and server version.
package mysql

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/slok/dbsandbox/internal/cluster"
	clustermysql "github.com/slok/dbsandbox/internal/cluster/mysql"
	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/provisioning"
	"github.com/slok/dbsandbox/internal/replay"
	"github.com/slok/dbsandbox/internal/sandbox/death"
	"github.com/slok/dbsandbox/internal/utils/wait"
)

const (
	// DefaultStartAttempts is how many times a start is tried before failing.
	DefaultStartAttempts = 5
	// DefaultStartRetryInterval is the wait between start attempts.
	DefaultStartRetryInterval = 1 * time.Second
)

// EngineConfig is the configuration for the MySQL sandbox engine.
type EngineConfig struct {
	// SandboxDir is the directory holding every sandbox and the boilerplate.
	SandboxDir string
	// DefaultPorts are the ports reserved for sandboxes, the first one is used to build the boilerplate.
	DefaultPorts []int
	// ExpectedVersion is the server version sandboxes must run. When empty the
	// boilerplate is rebuilt on every deploy with a new password and is never reused.
	ExpectedVersion string
	// ReuseBoilerplate reuses an existing boilerplate directory left by a previous run.
	ReuseBoilerplate bool
	// SnapshotDir is where configuration and error log snapshots are stored.
	SnapshotDir string
	// Gate decides when real side effects are skipped.
	Gate replay.Gate
	// Provisioner runs the real server operations.
	Provisioner provisioning.Provisioner
	// Probe waits for server death. Defaults to the platform probe.
	Probe death.Probe
	// Opener opens the sessions used to query the boilerplate version.
	Opener cluster.Opener
	// StartAttempts defaults to DefaultStartAttempts.
	StartAttempts int
	// StartRetryInterval defaults to DefaultStartRetryInterval.
	StartRetryInterval time.Duration
	// Sleep defaults to wait.Sleep.
	Sleep  wait.SleepFunc
	Logger log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.SandboxDir == "" {
		return fmt.Errorf("sandbox dir is required")
	}

	if c.Provisioner == nil {
		return fmt.Errorf("provisioner is required")
	}

	for _, p := range c.DefaultPorts {
		if err := model.ValidatePort(p); err != nil {
			return fmt.Errorf("invalid default port: %w", err)
		}
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "sandbox.MySQL"})

	if c.Sleep == nil {
		c.Sleep = wait.Sleep
	}

	if c.Probe == nil {
		p, err := death.NewProbe(death.ProbeConfig{Sleep: c.Sleep, Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create death probe: %w", err)
		}
		c.Probe = p
	}

	if c.Opener == nil {
		o, err := clustermysql.NewOpener(clustermysql.OpenerConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create session opener: %w", err)
		}
		c.Opener = o
	}

	if c.StartAttempts == 0 {
		c.StartAttempts = DefaultStartAttempts
	}
	if c.StartAttempts < 0 {
		return fmt.Errorf("start attempts can't be negative")
	}

	if c.StartRetryInterval == 0 {
		c.StartRetryInterval = DefaultStartRetryInterval
	}

	return nil
}

// Engine is the MySQL implementation of the sandbox.Engine interface.
type Engine struct {
	sandboxDir         string
	defaultPorts       []int
	expectedVersion    string
	reuseBoilerplate   bool
	snapshotDir        string
	gate               replay.Gate
	prov               provisioning.Provisioner
	probe              death.Probe
	opener             cluster.Opener
	startAttempts      int
	startRetryInterval time.Duration
	sleep              wait.SleepFunc
	logger             log.Logger

	// Boilerplate and snapshot state, shared by every operation.
	mu                 sync.Mutex
	boilerplateReady   bool
	signature          model.BoilerplateSignature
	boilerplateChecked bool
	snapshotLogIndex   int
}

// NewEngine creates a new MySQL sandbox engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		sandboxDir:         cfg.SandboxDir,
		defaultPorts:       cfg.DefaultPorts,
		expectedVersion:    cfg.ExpectedVersion,
		reuseBoilerplate:   cfg.ReuseBoilerplate,
		snapshotDir:        cfg.SnapshotDir,
		gate:               cfg.Gate,
		prov:               cfg.Provisioner,
		probe:              cfg.Probe,
		opener:             cfg.Opener,
		startAttempts:      cfg.StartAttempts,
		startRetryInterval: cfg.StartRetryInterval,
		sleep:              cfg.Sleep,
		logger:             cfg.Logger,
	}, nil
}

// SandboxDir returns the directory holding every sandbox.
func (e *Engine) SandboxDir() string { return e.sandboxDir }

// BaseDir returns the base directory of the sandbox on port.
func (e *Engine) BaseDir(port int) string { return conventions.SandboxDir(e.sandboxDir, port) }

// ConfPath returns the configuration file path of the sandbox on port.
func (e *Engine) ConfPath(port int) string { return conventions.ConfigPath(e.sandboxDir, port) }

// LogPath returns the error log path of the sandbox on port.
func (e *Engine) LogPath(port int) string { return conventions.ErrorLogPath(e.sandboxDir, port) }

// Signature returns the signature of the current boilerplate.
func (e *Engine) Signature() model.BoilerplateSignature {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.signature
}

// Check performs preflight checks for the MySQL engine.
func (e *Engine) Check(ctx context.Context) model.Outcomes {
	return model.Outcomes{
		e.checkSandboxDir(),
		e.checkProvisioningTool(),
		e.checkBoilerplate(),
	}
}

func (e *Engine) checkSandboxDir() model.Outcome {
	if err := os.MkdirAll(e.sandboxDir, 0o755); err != nil {
		return model.Outcome{Kind: model.OutcomeKindError, Message: fmt.Sprintf("Sandbox dir %s can't be created: %v", e.sandboxDir, err)}
	}

	f, err := os.CreateTemp(e.sandboxDir, ".check-*")
	if err != nil {
		return model.Outcome{Kind: model.OutcomeKindError, Message: fmt.Sprintf("Sandbox dir %s is not writable: %v", e.sandboxDir, err)}
	}
	f.Close()
	os.Remove(f.Name())

	return model.Outcome{Kind: model.OutcomeKindOK, Message: fmt.Sprintf("Sandbox dir %s is writable", e.sandboxDir)}
}

func (e *Engine) checkProvisioningTool() model.Outcome {
	tool, ok := e.prov.(interface{ Bin() string })
	if !ok {
		return model.Outcome{Kind: model.OutcomeKindOK, Message: "Provisioner has no external tool"}
	}

	path, err := exec.LookPath(tool.Bin())
	if err != nil {
		return model.Outcome{Kind: model.OutcomeKindError, Message: fmt.Sprintf("Provisioning tool %q not found: %v", tool.Bin(), err)}
	}

	return model.Outcome{Kind: model.OutcomeKindOK, Message: fmt.Sprintf("Provisioning tool found at %s", path)}
}

func (e *Engine) checkBoilerplate() model.Outcome {
	bp := conventions.BoilerplatePath(e.sandboxDir)
	if _, err := os.Stat(bp); err != nil {
		return model.Outcome{Kind: model.OutcomeKindWarning, Message: "Boilerplate missing, it will be built on the first deploy"}
	}

	version, err := os.ReadFile(filepath.Join(bp, conventions.VersionFile))
	if err != nil {
		return model.Outcome{Kind: model.OutcomeKindWarning, Message: fmt.Sprintf("Boilerplate version unknown: %v", err)}
	}

	if e.expectedVersion != "" && string(version) != e.expectedVersion {
		return model.Outcome{Kind: model.OutcomeKindWarning, Message: fmt.Sprintf("Boilerplate built for %s, expected %s, it will be rebuilt", version, e.expectedVersion)}
	}

	return model.Outcome{Kind: model.OutcomeKindOK, Message: fmt.Sprintf("Boilerplate ready (%s)", version)}
}

func (e *Engine) request(port int) provisioning.Request {
	return provisioning.Request{Port: port, SandboxDir: e.sandboxDir}
}
