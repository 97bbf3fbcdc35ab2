package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/util/homedir"

	"github.com/slok/dbsandbox/internal/cluster"
	clusterfake "github.com/slok/dbsandbox/internal/cluster/fake"
	clustermysql "github.com/slok/dbsandbox/internal/cluster/mysql"
	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/prompt"
	"github.com/slok/dbsandbox/internal/provisioning"
	"github.com/slok/dbsandbox/internal/provisioning/command"
	provisioningfake "github.com/slok/dbsandbox/internal/provisioning/fake"
	"github.com/slok/dbsandbox/internal/replay"
	"github.com/slok/dbsandbox/internal/sandbox/mysql"
	"github.com/slok/dbsandbox/internal/storage"
	"github.com/slok/dbsandbox/internal/storage/memory"
	"github.com/slok/dbsandbox/internal/storage/sqlite"
	"github.com/slok/dbsandbox/internal/utils/env"
)

const (
	// EnvDebug enables debug logging when set.
	EnvDebug = "TEST_DEBUG"
	// EnvReuseBoilerplate reuses the boilerplate left by a previous run when set.
	EnvReuseBoilerplate = "TEST_REUSE_SANDBOX_BOILERPLATE"
)

// Config configures the SDK client.
//
// Only the provisioner is required: either [ProvisionerTypeCommand] with
// ProvisionerCommand set, or [ProvisionerTypeFake] for tests without real servers.
type Config struct {
	// SandboxDir is the directory holding every sandbox and the boilerplate.
	// Default: ~/.dbsandbox/sandboxes.
	SandboxDir string

	// DBPath is the SQLite registry database path. When empty the registry
	// lives in memory and is lost on Close.
	DBPath string

	// DefaultPorts are the ports reserved for sandboxes. The first one is
	// used to build the boilerplate.
	DefaultPorts []int

	// ExpectedVersion is the server version sandboxes must run. When empty
	// the version is not checked.
	ExpectedVersion string

	// ReuseBoilerplate reuses a boilerplate left by a previous run.
	ReuseBoilerplate bool

	// Provisioner selects the provisioner implementation.
	// Default: [ProvisionerTypeCommand].
	Provisioner ProvisionerType

	// ProvisionerCommand is the provisioning tool command line, split with
	// shell rules. Required for [ProvisionerTypeCommand].
	ProvisionerCommand string

	// ProvisionerEnv is added to the provisioning tool environment.
	ProvisionerEnv map[string]string

	// ReplayMode is the run mode. Default: [ReplayModeDirect].
	ReplayMode ReplayMode

	// SnapshotDir is where configuration and error log snapshots are stored.
	// Required when recording or replaying.
	SnapshotDir string

	// Debug keeps debug messages, otherwise they are dropped before reaching Logger.
	Debug bool

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// LogFile is the file the Logger writes to, returned by [Client.GetShellLogPath].
	LogFile string

	// FailureReporter receives the failures reported with [Client.Fail].
	// Default: logs them as errors.
	FailureReporter FailureReporter

	// OnFatal is called when an operation fails in a way the run can't
	// recover from (e.g. the boilerplate can't be rebuilt).
	// Default: panics with the error.
	OnFatal func(err error)
}

// ConfigFromEnv returns a Config with the toggles read from the environment:
// [EnvDebug] and [EnvReuseBoilerplate].
func ConfigFromEnv() Config {
	return Config{
		Debug:            env.Enabled(EnvDebug),
		ReuseBoilerplate: env.Enabled(EnvReuseBoilerplate),
	}
}

func (c *Config) defaults() error {
	if c.SandboxDir == "" {
		home := homedir.HomeDir()
		if home == "" {
			return fmt.Errorf("could not get user home dir: %w", ErrNotValid)
		}
		c.SandboxDir = filepath.Join(home, conventions.DefaultDataDir, conventions.SandboxesDir)
	}

	if c.Provisioner == "" {
		c.Provisioner = ProvisionerTypeCommand
	}

	if c.ReplayMode == "" {
		c.ReplayMode = ReplayModeDirect
	}
	if c.ReplayMode != ReplayModeDirect && c.SnapshotDir == "" {
		return fmt.Errorf("%s mode requires a snapshot dir: %w", c.ReplayMode, ErrNotValid)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if !c.Debug {
		c.Logger = quietLogger{Logger: c.Logger}
	}

	if c.FailureReporter == nil {
		logger := c.Logger
		c.FailureReporter = func(at TestContext, msg string) {
			logger.Errorf("Failure at %s: %s", at, msg)
		}
	}

	if c.OnFatal == nil {
		c.OnFatal = func(err error) { panic(err) }
	}

	return nil
}

// Client is the main SDK entry point for driving sandboxes from tests.
//
// Create a Client with [New] and release its resources with [Client.Close].
// Sandbox operations are serialized, a Client is safe for concurrent use.
type Client struct {
	engine     *mysql.Engine
	repo       storage.Repository
	opener     cluster.Opener
	watcher    *cluster.Watcher
	feeder     *prompt.Feeder
	gate       replay.Gate
	sandboxDir string
	logFile    string
	reporter   FailureReporter
	onFatal    func(err error)
	logger     log.Logger
	closeFn    func() error

	mu           sync.Mutex
	session      cluster.Session
	ownedSession cluster.Conn
	testCtx      model.TestContext
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the registry.
// Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{ProvisionerCommand: "provision-tool"})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	mode, err := replay.ParseMode(string(cfg.ReplayMode))
	if err != nil {
		return nil, mapError(fmt.Errorf("invalid config: %w: %w", err, model.ErrNotValid))
	}
	gate := replay.NewGate(mode)

	prov, opener, err := newProvisioner(cfg)
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create provisioner: %w", err))
	}

	engine, err := mysql.NewEngine(mysql.EngineConfig{
		SandboxDir:       cfg.SandboxDir,
		DefaultPorts:     cfg.DefaultPorts,
		ExpectedVersion:  cfg.ExpectedVersion,
		ReuseBoilerplate: cfg.ReuseBoilerplate,
		SnapshotDir:      cfg.SnapshotDir,
		Gate:             gate,
		Provisioner:      prov,
		Opener:           opener,
		Logger:           cfg.Logger,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create engine: %w", err))
	}

	watcher, err := cluster.NewWatcher(cluster.WatcherConfig{
		Gate:   gate,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create member watcher: %w", err)
	}

	feeder, err := prompt.NewFeeder(prompt.FeederConfig{Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create prompt feeder: %w", err)
	}

	c := &Client{
		engine:     engine,
		opener:     opener,
		watcher:    watcher,
		feeder:     feeder,
		gate:       gate,
		sandboxDir: cfg.SandboxDir,
		logFile:    cfg.LogFile,
		reporter:   cfg.FailureReporter,
		onFatal:    cfg.OnFatal,
		logger:     cfg.Logger,
	}

	if cfg.DBPath == "" {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo = repo
		return c, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("could not create registry directory: %w", err)
	}
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}
	c.repo = repo
	c.closeFn = repo.Close

	return c, nil
}

func newProvisioner(cfg Config) (provisioning.Provisioner, cluster.Opener, error) {
	switch cfg.Provisioner {
	case ProvisionerTypeCommand:
		p, err := command.NewProvisioner(command.ProvisionerConfig{
			Command: cfg.ProvisionerCommand,
			Env:     env.List(cfg.ProvisionerEnv),
			Logger:  cfg.Logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", err, model.ErrNotValid)
		}
		o, err := clustermysql.NewOpener(clustermysql.OpenerConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, nil, err
		}
		return p, o, nil
	case ProvisionerTypeFake:
		p, err := provisioningfake.NewProvisioner(provisioningfake.ProvisionerConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, nil, err
		}
		o, err := clusterfake.NewOpener(clusterfake.OpenerConfig{Version: cfg.ExpectedVersion, Logger: cfg.Logger})
		if err != nil {
			return nil, nil, err
		}
		return p, o, nil
	default:
		return nil, nil, fmt.Errorf("unsupported provisioner type %q: %w", cfg.Provisioner, model.ErrNotValid)
	}
}

// Close releases resources held by the client, including the registry database
// and the session opened with [Client.OpenSession].
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if err := c.CloseSession(); err != nil {
		c.logger.Warningf("%s", err)
	}

	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// Doctor runs preflight health checks: the sandbox dir, the provisioning
// tool and the boilerplate state.
func (c *Client) Doctor(ctx context.Context) ([]CheckResult, error) {
	return fromInternalOutcomes(c.engine.Check(ctx)), nil
}

// IsReplaying reports whether the run replays recorded interactions, there
// are no real servers when it does.
func (c *Client) IsReplaying() bool {
	return c.gate.RunMode() == replay.ModeReplay
}

// ReplayMode returns the run mode.
func (c *Client) ReplayMode() ReplayMode {
	return ReplayMode(c.gate.RunMode().String())
}
