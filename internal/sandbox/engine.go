package sandbox

import (
	"context"

	"github.com/slok/dbsandbox/internal/model"
)

// Engine is the interface for sandbox lifecycle management.
//
// Sandboxes are addressed by their port. Every lifecycle operation is a no-op
// while the run is replaying, except Destroy which always cleans the files.
type Engine interface {
	// Check performs preflight checks and returns the results.
	Check(ctx context.Context) model.Outcomes

	// Deploy creates and starts a sandbox cloned from the shared boilerplate,
	// building the boilerplate first when needed.
	Deploy(ctx context.Context, port int, rootPassword string) error
	Start(ctx context.Context, port int) error
	Stop(ctx context.Context, port int, rootPassword string) error
	// Kill kills the server and waits until it is fully dead.
	Kill(ctx context.Context, port int) error
	Restart(ctx context.Context, port int, rootPassword string) error
	Destroy(ctx context.Context, port int) error

	// ChangeConf sets an option in the server section of the sandbox configuration.
	ChangeConf(ctx context.Context, port int, option string) error
	// RemoveFromConf removes every configuration line containing option.
	RemoveFromConf(ctx context.Context, port int, option string) error
	ConfPath(port int) string
	LogPath(port int) string

	// SnapshotConf saves (recording) or restores (replaying) the sandbox configuration.
	SnapshotConf(ctx context.Context, port int) error
	// BeginSnapshotErrorLog restores the error log of the next snapshot while replaying.
	BeginSnapshotErrorLog(ctx context.Context, port int) error
	// EndSnapshotErrorLog saves the error log as the next snapshot when not replaying.
	EndSnapshotErrorLog(ctx context.Context, port int) error
}
