package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/log"
	storageio "github.com/slok/dbsandbox/internal/storage/io"
	utilsenv "github.com/slok/dbsandbox/internal/utils/env"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string
	ConfigFile string

	// Sandbox flags, the harness config file fills the unset ones.
	SandboxDir         string
	DefaultPorts       []int
	ExpectedVersion    string
	ReuseBoilerplate   bool
	ProvisionerCommand string
	ProvisionerEnv     map[string]string
	ReplayMode         string
	SnapshotDir        string

	provisionerEnvSpecs []string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").Envar("TEST_DEBUG").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	app.Flag("db-path", "Path to the SQLite registry database file.").Default(filepath.Join(defaultDataDir, conventions.DBFile)).StringVar(&c.DBPath)
	app.Flag("config", "Path to a harness configuration YAML file.").Short('c').StringVar(&c.ConfigFile)

	app.Flag("sandbox-dir", "Directory holding every sandbox and the boilerplate. Defaults to ~/.dbsandbox/sandboxes.").StringVar(&c.SandboxDir)
	app.Flag("default-port", "Port reserved for sandboxes, the first one builds the boilerplate. Can be repeated.").IntsVar(&c.DefaultPorts)
	app.Flag("expected-version", "Server version sandboxes must run, the boilerplate is validated against it.").StringVar(&c.ExpectedVersion)
	app.Flag("reuse-boilerplate", "Reuse the boilerplate left by a previous run.").Envar("TEST_REUSE_SANDBOX_BOILERPLATE").BoolVar(&c.ReuseBoilerplate)
	app.Flag("provisioner-command", "Provisioning tool command line.").StringVar(&c.ProvisionerCommand)
	app.Flag("provisioner-env", "Provisioning tool environment variables (KEY=VALUE or KEY from current environment). Can be repeated.").StringsVar(&c.provisionerEnvSpecs)
	app.Flag("replay-mode", "Run mode (direct, record, replay).").StringVar(&c.ReplayMode)
	app.Flag("snapshot-dir", "Directory for configuration and error log snapshots, required to record or replay.").StringVar(&c.SnapshotDir)

	return c
}

// Prepare merges the harness config file into the unset flags and resolves
// the defaults. It must be called after parsing.
func (c *RootCommand) Prepare(ctx context.Context) error {
	cliEnv, err := utilsenv.ParseSpecs(c.provisionerEnvSpecs)
	if err != nil {
		return fmt.Errorf("invalid --provisioner-env value: %w", err)
	}

	if c.ConfigFile != "" {
		configPath := c.ConfigFile
		if !filepath.IsAbs(configPath) {
			absPath, err := filepath.Abs(configPath)
			if err != nil {
				return fmt.Errorf("could not resolve harness config path: %w", err)
			}
			configPath = absPath
		}

		configRepo := storageio.NewHarnessYAMLRepository(os.DirFS("/"))
		cfg, err := configRepo.GetConfig(ctx, configPath[1:])
		if err != nil {
			return fmt.Errorf("could not load harness config: %w", err)
		}

		c.SandboxDir = firstNonEmpty(c.SandboxDir, cfg.SandboxDir)
		c.ExpectedVersion = firstNonEmpty(c.ExpectedVersion, cfg.ExpectedVersion)
		c.ProvisionerCommand = firstNonEmpty(c.ProvisionerCommand, cfg.ProvisionerCommand)
		c.ReplayMode = firstNonEmpty(c.ReplayMode, cfg.ReplayMode)
		c.SnapshotDir = firstNonEmpty(c.SnapshotDir, cfg.SnapshotDir)
		if len(c.DefaultPorts) == 0 {
			c.DefaultPorts = cfg.DefaultPorts
		}
		c.Debug = c.Debug || cfg.Debug
		c.ReuseBoilerplate = c.ReuseBoilerplate || cfg.ReuseBoilerplate
		c.ProvisionerEnv = cfg.ProvisionerEnv
	}

	c.ProvisionerEnv = utilsenv.MergeMaps(c.ProvisionerEnv, cliEnv)

	if c.SandboxDir == "" {
		c.SandboxDir = filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir, conventions.SandboxesDir)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
