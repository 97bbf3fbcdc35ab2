// Package fake provides a provisioner that only lays out sandbox files on disk.
//
// It never starts a real server, which makes it useful for tests and dry runs
// of the lifecycle logic.
package fake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/mycnf"
	"github.com/slok/dbsandbox/internal/provisioning"
)

// Call is a provisioning call received by the fake.
type Call struct {
	Operation string
	Request   provisioning.Request
}

// ProvisionerConfig is the configuration for the fake provisioner.
type ProvisionerConfig struct {
	// Results are queued outcomes per operation name (create, start, stop,
	// kill, delete). Each call pops one and returns it without touching the
	// filesystem. A nil entry, or an empty queue, runs the regular fake behavior.
	Results map[string][]model.Outcomes
	Logger  log.Logger
}

func (c *ProvisionerConfig) defaults() error {
	if c.Results == nil {
		c.Results = map[string][]model.Outcomes{}
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "provisioning.Fake"})

	return nil
}

// Provisioner is a filesystem only provisioner.
type Provisioner struct {
	mu      sync.Mutex
	results map[string][]model.Outcomes
	running map[string]bool
	calls   []Call
	logger  log.Logger
}

// NewProvisioner returns a new fake provisioner.
func NewProvisioner(cfg ProvisionerConfig) (*Provisioner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Provisioner{
		results: cfg.Results,
		running: map[string]bool{},
		logger:  cfg.Logger,
	}, nil
}

func (p *Provisioner) CreateSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	if o, ok := p.record("create", req); ok {
		return o, nil
	}

	baseDir := conventions.SandboxDir(req.SandboxDir, req.Port)
	if _, err := os.Stat(baseDir); err == nil {
		return model.Outcomes{{Kind: model.OutcomeKindError, Message: fmt.Sprintf("sandbox %d already exists", req.Port)}}, nil
	}

	dataDir := filepath.Join(baseDir, conventions.DataDir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create data dir: %w", err)
	}

	lines := []string{
		mycnf.ServerSection,
		fmt.Sprintf("port=%d", req.Port),
		fmt.Sprintf("loose_mysqlx_port=%d", req.ExtendedPort),
		fmt.Sprintf("server_id=%d", conventions.ServerID(req.Port)),
		"datadir=" + conventions.ConfPath(dataDir),
		"log_error=" + conventions.ConfPath(filepath.Join(dataDir, conventions.ErrorLogFile)),
		"pid_file=" + conventions.ConfPath(conventions.PIDFilePath(req.SandboxDir, req.Port)),
		"secure_file_priv=" + conventions.ConfPath(filepath.Join(baseDir, conventions.SecureFilesDir)),
		fmt.Sprintf("report_port=%d", req.Port),
	}
	lines = append(lines, req.Options...)
	if err := os.WriteFile(filepath.Join(baseDir, conventions.ConfigFile), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("could not write config: %w", err)
	}

	files := map[string]string{
		conventions.IBDataFile:     "",
		conventions.ErrorLogFile:   "",
		conventions.AutoConfigFile: "[auto]\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("could not write %s: %w", name, err)
		}
	}

	p.setRunning(baseDir, true)
	return model.Outcomes{}, nil
}

func (p *Provisioner) StartSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	if o, ok := p.record("start", req); ok {
		return o, nil
	}

	baseDir := conventions.SandboxDir(req.SandboxDir, req.Port)
	if _, err := os.Stat(filepath.Join(baseDir, conventions.ConfigFile)); err != nil {
		return model.Outcomes{{Kind: model.OutcomeKindError, Message: fmt.Sprintf("sandbox %d not found", req.Port)}}, nil
	}

	p.setRunning(baseDir, true)
	return model.Outcomes{}, nil
}

func (p *Provisioner) StopSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	if o, ok := p.record("stop", req); ok {
		return o, nil
	}

	p.setRunning(conventions.SandboxDir(req.SandboxDir, req.Port), false)
	return model.Outcomes{}, nil
}

func (p *Provisioner) KillSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	if o, ok := p.record("kill", req); ok {
		return o, nil
	}

	p.setRunning(conventions.SandboxDir(req.SandboxDir, req.Port), false)
	return model.Outcomes{}, nil
}

func (p *Provisioner) DeleteSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	if o, ok := p.record("delete", req); ok {
		return o, nil
	}

	baseDir := conventions.SandboxDir(req.SandboxDir, req.Port)
	if err := os.RemoveAll(baseDir); err != nil {
		return nil, fmt.Errorf("could not remove sandbox: %w", err)
	}
	p.setRunning(baseDir, false)

	return model.Outcomes{}, nil
}

// Calls returns the received calls in order.
func (p *Provisioner) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Call{}, p.calls...)
}

// CallCount returns how many calls of an operation were received.
func (p *Provisioner) CallCount(op string) int {
	n := 0
	for _, c := range p.Calls() {
		if c.Operation == op {
			n++
		}
	}
	return n
}

// Running returns the base directories of the sandboxes the fake considers running, sorted.
func (p *Provisioner) Running() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	dirs := make([]string, 0, len(p.running))
	for d, ok := range p.running {
		if ok {
			dirs = append(dirs, d)
		}
	}
	sort.Strings(dirs)

	return dirs
}

func (p *Provisioner) record(op string, req provisioning.Request) (model.Outcomes, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, Call{Operation: op, Request: req})
	p.logger.Debugf("%s sandbox %d", op, req.Port)

	queue := p.results[op]
	if len(queue) == 0 {
		return nil, false
	}
	p.results[op] = queue[1:]
	if queue[0] == nil {
		return nil, false
	}

	return queue[0], true
}

func (p *Provisioner) setRunning(baseDir string, running bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.running[baseDir] = running
}
