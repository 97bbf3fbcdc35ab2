package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/dbsandbox/internal/cluster"
	clustermysql "github.com/slok/dbsandbox/internal/cluster/mysql"
	"github.com/slok/dbsandbox/internal/printer"
	"github.com/slok/dbsandbox/internal/provisioning/command"
	"github.com/slok/dbsandbox/internal/replay"
	"github.com/slok/dbsandbox/internal/sandbox/mysql"
	"github.com/slok/dbsandbox/internal/storage/sqlite"
	utilsenv "github.com/slok/dbsandbox/internal/utils/env"
)

func (c *RootCommand) gate() (replay.Gate, error) {
	mode, err := replay.ParseMode(c.ReplayMode)
	if err != nil {
		return replay.Gate{}, err
	}
	return replay.NewGate(mode), nil
}

// newEngine creates the MySQL engine from the global flags.
func (c *RootCommand) newEngine() (*mysql.Engine, error) {
	gate, err := c.gate()
	if err != nil {
		return nil, err
	}

	prov, err := command.NewProvisioner(command.ProvisionerConfig{
		Command: c.ProvisionerCommand,
		Env:     utilsenv.List(c.ProvisionerEnv),
		Logger:  c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create provisioner (use --provisioner-command): %w", err)
	}

	opener, err := c.newOpener()
	if err != nil {
		return nil, err
	}

	return mysql.NewEngine(mysql.EngineConfig{
		SandboxDir:       c.SandboxDir,
		DefaultPorts:     c.DefaultPorts,
		ExpectedVersion:  c.ExpectedVersion,
		ReuseBoilerplate: c.ReuseBoilerplate,
		SnapshotDir:      c.SnapshotDir,
		Gate:             gate,
		Provisioner:      prov,
		Opener:           opener,
		Logger:           c.Logger,
	})
}

func (c *RootCommand) newOpener() (cluster.Opener, error) {
	o, err := clustermysql.NewOpener(clustermysql.OpenerConfig{Logger: c.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create session opener: %w", err)
	}
	return o, nil
}

// newRepository opens the SQLite registry, the caller must close it.
func (c *RootCommand) newRepository(ctx context.Context) (*sqlite.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(c.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("could not create registry directory: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.DBPath,
		Logger: c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}
	return repo, nil
}

func (c *RootCommand) newPrinter(format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(c.Stdout)
	}
	return printer.NewTablePrinter(c.Stdout)
}
