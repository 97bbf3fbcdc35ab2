package lib

import (
	"context"
	"fmt"

	"github.com/slok/dbsandbox/internal/app/conf"
)

// ChangeSandboxConf sets option (`name` or `name=value`) in the server
// section of the sandbox configuration, replacing a previous value. The
// change takes effect on the next start.
func (c *Client) ChangeSandboxConf(ctx context.Context, port int, option string) error {
	return c.editConf(ctx, port, option, false)
}

// RemoveFromSandboxConf removes every configuration line containing option.
func (c *Client) RemoveFromSandboxConf(ctx context.Context, port int, option string) error {
	return c.editConf(ctx, port, option, true)
}

func (c *Client) editConf(ctx context.Context, port int, option string, remove bool) error {
	svc, err := conf.NewService(conf.ServiceConfig{
		Engine:     c.engine,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	_, err = svc.Run(ctx, conf.Request{Port: port, Option: option, Remove: remove})
	return mapError(err)
}

// GetSandboxConfPath returns the configuration file path of the sandbox on port.
func (c *Client) GetSandboxConfPath(port int) string { return c.engine.ConfPath(port) }

// GetSandboxLogPath returns the error log path of the sandbox on port.
func (c *Client) GetSandboxLogPath(port int) string { return c.engine.LogPath(port) }

// SnapshotSandboxConf saves the sandbox configuration in the snapshot dir
// while recording and restores it while replaying. It does nothing on direct runs.
func (c *Client) SnapshotSandboxConf(ctx context.Context, port int) error {
	return mapError(c.engine.SnapshotConf(ctx, port))
}

// BeginSnapshotSandboxErrorLog restores the next recorded error log of the
// sandbox while replaying. Call it before the code that reads the log and
// [Client.EndSnapshotSandboxErrorLog] after it.
func (c *Client) BeginSnapshotSandboxErrorLog(ctx context.Context, port int) error {
	return mapError(c.engine.BeginSnapshotErrorLog(ctx, port))
}

// EndSnapshotSandboxErrorLog saves the error log of the sandbox as the next
// snapshot when not replaying.
func (c *Client) EndSnapshotSandboxErrorLog(ctx context.Context, port int) error {
	return mapError(c.engine.EndSnapshotErrorLog(ctx, port))
}
