package mysql

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/utils/file"
)

// clone deploys the sandbox on port as a copy of the boilerplate and starts it.
//
// The first clone of the process validates the boilerplate version. A stale
// boilerplate destroys the new sandbox and returns ErrBoilerplateStale.
func (e *Engine) clone(ctx context.Context, port int) error {
	e.logger.Debugf("Deploying sandbox %d from boilerplate", port)

	bp := conventions.BoilerplatePath(e.sandboxDir)
	baseDir := e.BaseDir(port)
	if err := copyTree(ctx, bp, baseDir); err != nil {
		return fmt.Errorf("error copying boilerplate for sandbox %d: %w", port, err)
	}

	for _, opt := range cloneOptions(baseDir, port) {
		if err := e.changeConf(port, opt); err != nil {
			return err
		}
	}

	if err := e.start(ctx, port); err != nil {
		return err
	}

	if e.boilerplateChecked || e.expectedVersion == "" {
		return nil
	}
	e.boilerplateChecked = true

	version, err := os.ReadFile(filepath.Join(bp, conventions.VersionFile))
	switch {
	case err != nil:
		e.logger.Errorf("Error checking boilerplate version: %v", err)
	case string(version) != e.expectedVersion:
		e.logger.Warningf("Boilerplate instance was created for %s and will be recreated", version)
	default:
		return nil
	}

	if err := e.destroy(ctx, port); err != nil {
		e.logger.Warningf("Could not destroy sandbox %d deployed from stale boilerplate: %v", port, err)
	}

	return model.ErrBoilerplateStale
}

// cloneOptions returns the identity options of the sandbox on port.
func cloneOptions(baseDir string, port int) []string {
	dataDir := filepath.Join(baseDir, conventions.DataDir)
	return []string{
		"port=" + strconv.Itoa(port),
		"server_id=" + strconv.Itoa(conventions.ServerID(port)),
		"datadir=" + conventions.ConfPath(dataDir),
		"log_error=" + conventions.ConfPath(filepath.Join(dataDir, conventions.ErrorLogFile)),
		"pid_file=" + conventions.ConfPath(filepath.Join(baseDir, strconv.Itoa(port)+".pid")),
		"secure_file_priv=" + conventions.ConfPath(filepath.Join(baseDir, conventions.SecureFilesDir)),
		"loose_mysqlx_port=" + strconv.Itoa(conventions.ExtendedPort(port)),
		"report_port=" + strconv.Itoa(port),
		"general_log=1",
	}
}

// copyTree copies the from directory into to. The server binary is linked
// instead of copied where symlinks are available. Entries that vanish from
// the source while copying are skipped.
func copyTree(ctx context.Context, from, to string) error {
	if err := os.MkdirAll(to, 0o755); err != nil {
		return err
	}

	return filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == from {
				return err
			}
			return skipVanished(path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		// Only the parent is resolved, the entry itself must not be followed
		// when it already exists as a symlink in the destination.
		parent, err := securejoin.SecureJoin(to, filepath.Dir(rel))
		if err != nil {
			return fmt.Errorf("could not resolve %s: %w", rel, err)
		}
		dst := filepath.Join(parent, filepath.Base(rel))

		return skipVanished(path, copyEntry(ctx, path, dst, d))
	})
}

// skipVanished drops a not found error only when the source entry is gone.
func skipVanished(src string, err error) error {
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if _, lerr := os.Lstat(src); errors.Is(lerr, fs.ErrNotExist) {
		return nil
	}
	return err
}

func copyEntry(ctx context.Context, src, dst string, d fs.DirEntry) error {
	if d.IsDir() {
		info, err := d.Info()
		if err != nil {
			return err
		}
		return os.MkdirAll(dst, info.Mode().Perm()|0o700)
	}

	if d.Name() == conventions.ServerBinary && runtime.GOOS != "windows" {
		abs, err := filepath.Abs(src)
		if err != nil {
			return err
		}
		if err := os.Symlink(abs, dst); err != nil {
			return fmt.Errorf("unable to create symlink %s to %s: %w", dst, abs, err)
		}
		return nil
	}

	return file.CopyFile(ctx, src, dst)
}
