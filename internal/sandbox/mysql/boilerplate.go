package mysql

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/dbsandbox/internal/cluster"
	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/mycnf"
	"github.com/slok/dbsandbox/internal/provisioning"
	"github.com/slok/dbsandbox/internal/replay"
)

// Options for a small and fast to copy server.
var boilerplateOptions = []string{
	"innodb_log_file_size=1M",
	"innodb_log_buffer_size=1M",
	"innodb_data_file_path=ibdata1:10M:autoextend",
}

// Identity options set again on every clone.
var boilerplateStrippedOptions = []string{
	"port",
	"server_id",
	"datadir",
	"log_error",
	"pid_file",
	"secure_file_priv",
	"loose_mysqlx_port",
	"report_port",
}

// Runtime files a fresh clone must not inherit.
var boilerplateStrippedFiles = []string{
	conventions.AutoConfigFile,
	conventions.GeneralLogFile,
	conventions.SocketFile,
	conventions.XSocketFile,
	conventions.ErrorLogFile,
}

const versionQuery = "select @@version"

func (e *Engine) boilerplatePort() int {
	if len(e.defaultPorts) > 0 {
		return e.defaultPorts[0]
	}
	return conventions.DefaultBoilerplatePort
}

// ensureBoilerplate leaves a stopped boilerplate sandbox for rootPassword in place.
//
// An existing boilerplate is kept only when reuse was requested and there is
// an expected version, the first clone validates it against that version.
func (e *Engine) ensureBoilerplate(ctx context.Context, rootPassword string) error {
	bp := conventions.BoilerplatePath(e.sandboxDir)
	if _, err := os.Stat(bp); err == nil && e.expectedVersion != "" && e.reuseBoilerplate {
		e.logger.Infof("Reusing existing sandbox boilerplate as requested")
		version, _ := os.ReadFile(filepath.Join(bp, conventions.VersionFile))
		e.setSignature(rootPassword, string(version))
		return nil
	}

	e.logger.Infof("Preparing sandbox boilerplate")
	port := e.boilerplatePort()
	outcomes, err := e.prov.CreateSandbox(ctx, provisioning.Request{
		Port:         port,
		ExtendedPort: conventions.ExtendedPort(port),
		SandboxDir:   e.sandboxDir,
		Password:     rootPassword,
		Options:      boilerplateOptions,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrBoilerplateBuild, err)
	}
	if len(outcomes) > 0 {
		for _, o := range outcomes {
			e.logger.Errorf("Error deploying sandbox: %s", o)
		}
		return fmt.Errorf("%w: %s", model.ErrBoilerplateBuild, outcomes)
	}

	version, err := e.serverVersion(replay.NoReplay(ctx), port, rootPassword)
	if err != nil {
		return fmt.Errorf("%w: could not get server version: %w", model.ErrBoilerplateBuild, err)
	}

	if err := os.WriteFile(conventions.SandboxFilePath(e.sandboxDir, port, conventions.VersionFile), []byte(version), 0o644); err != nil {
		return fmt.Errorf("could not write boilerplate version: %w", err)
	}

	if err := e.stop(ctx, port, rootPassword); err != nil {
		return err
	}

	confPath := e.ConfPath(port)
	for _, opt := range boilerplateStrippedOptions {
		if err := mycnf.Remove(confPath, opt); err != nil {
			return fmt.Errorf("could not strip %s from boilerplate configuration: %w", opt, err)
		}
	}

	if err := os.RemoveAll(bp); err != nil {
		return fmt.Errorf("could not remove previous boilerplate: %w", err)
	}
	if err := os.Rename(e.BaseDir(port), bp); err != nil {
		return fmt.Errorf("could not move boilerplate into place: %w", err)
	}

	dataDir := filepath.Join(bp, conventions.DataDir)
	for _, name := range boilerplateStrippedFiles {
		if err := os.Remove(filepath.Join(dataDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("could not remove %s from boilerplate: %w", name, err)
		}
	}

	e.setSignature(rootPassword, version)
	e.logger.Infof("Sandbox boilerplate ready for version %s", version)

	return nil
}

func (e *Engine) setSignature(rootPassword, version string) {
	e.signature = model.BoilerplateSignature{RootPassword: rootPassword, Version: version}
	e.boilerplateReady = true
}

func (e *Engine) serverVersion(ctx context.Context, port int, rootPassword string) (string, error) {
	conn, err := e.opener.Open(ctx, cluster.ConnOptions{
		Host:     "localhost",
		Port:     port,
		User:     "root",
		Password: rootPassword,
	})
	if err != nil {
		return "", err
	}
	defer conn.Close()

	res, err := conn.Query(ctx, versionQuery)
	if err != nil {
		return "", err
	}

	row, err := res.FetchOne()
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", fmt.Errorf("no version returned")
	}

	return row.GetString(0)
}
