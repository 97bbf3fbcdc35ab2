package mysql

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/replay"
	"github.com/slok/dbsandbox/internal/utils/file"
)

// SnapshotConfPath returns the snapshot path of the sandbox configuration.
func (e *Engine) SnapshotConfPath(port int) string {
	return filepath.Join(e.snapshotDir, "sandbox_"+strconv.Itoa(port)+"_my.cnf")
}

func (e *Engine) snapshotLogPath(port, index int) string {
	return filepath.Join(e.snapshotDir, fmt.Sprintf("sandbox_%d_%d_error.log", port, index))
}

// SnapshotConf saves the sandbox configuration into the snapshot dir while
// recording, and restores it from there while replaying. Direct runs do nothing.
func (e *Engine) SnapshotConf(ctx context.Context, port int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	mode := e.gate.Mode(ctx)
	if mode == replay.ModeDirect {
		return nil
	}
	if e.snapshotDir == "" {
		return fmt.Errorf("could not snapshot sandbox %d configuration: %w", port, model.ErrSnapshotDirNotSet)
	}

	if mode == replay.ModeReplay {
		return e.restoreSnapshot(ctx, e.SnapshotConfPath(port), e.ConfPath(port))
	}

	if err := file.CopyFile(ctx, e.ConfPath(port), e.SnapshotConfPath(port)); err != nil {
		return fmt.Errorf("could not snapshot sandbox %d configuration: %w", port, err)
	}
	return nil
}

// BeginSnapshotErrorLog restores the next error log snapshot into the
// sandbox while replaying. Without snapshot dir only Direct runs are allowed.
func (e *Engine) BeginSnapshotErrorLog(ctx context.Context, port int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snapshotDir == "" {
		if e.gate.Mode(ctx) != replay.ModeDirect {
			return fmt.Errorf("could not restore sandbox %d error log: %w", port, model.ErrSnapshotDirNotSet)
		}
		return nil
	}

	if !e.gate.Replaying(ctx) {
		return nil
	}

	snap := e.snapshotLogPath(port, e.snapshotLogIndex)
	e.snapshotLogIndex++

	return e.restoreSnapshot(ctx, snap, e.LogPath(port))
}

// EndSnapshotErrorLog saves the sandbox error log as the next snapshot when
// not replaying. Without snapshot dir only Direct runs are allowed.
func (e *Engine) EndSnapshotErrorLog(ctx context.Context, port int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snapshotDir == "" {
		if e.gate.Mode(ctx) != replay.ModeDirect {
			return fmt.Errorf("could not snapshot sandbox %d error log: %w", port, model.ErrSnapshotDirNotSet)
		}
		return nil
	}

	if e.gate.Replaying(ctx) {
		return nil
	}

	snap := e.snapshotLogPath(port, e.snapshotLogIndex)
	e.snapshotLogIndex++

	if err := file.CopyFile(ctx, e.LogPath(port), snap); err != nil {
		return fmt.Errorf("could not snapshot sandbox %d error log: %w", port, err)
	}
	return nil
}

// restoreSnapshot copies a snapshot into a sandbox, creating its directory when needed.
func (e *Engine) restoreSnapshot(ctx context.Context, snap, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("could not create %s: %w", filepath.Dir(dst), err)
	}

	if err := file.CopyFile(ctx, snap, dst); err != nil {
		return fmt.Errorf("could not restore snapshot %s: %w", snap, err)
	}
	e.logger.Debugf("Copied %s to %s", snap, dst)

	return nil
}
