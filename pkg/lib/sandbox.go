package lib

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/dbsandbox/internal/app/deploy"
	"github.com/slok/dbsandbox/internal/app/destroy"
	"github.com/slok/dbsandbox/internal/app/kill"
	"github.com/slok/dbsandbox/internal/app/list"
	"github.com/slok/dbsandbox/internal/app/restart"
	"github.com/slok/dbsandbox/internal/app/start"
	"github.com/slok/dbsandbox/internal/app/status"
	"github.com/slok/dbsandbox/internal/app/stop"
	"github.com/slok/dbsandbox/internal/model"
)

// DeploySandbox creates and starts a new sandbox on port, cloned from the
// shared boilerplate. The boilerplate is built first when there is none for
// rootPassword and the expected server version.
//
// A boilerplate that can't be rebuilt calls [Config].OnFatal and returns [ErrFatal].
func (c *Client) DeploySandbox(ctx context.Context, port int, rootPassword string) (*Sandbox, error) {
	svc, err := deploy.NewService(deploy.ServiceConfig{
		Engine:     c.engine,
		Repository: c.repo,
		SandboxDir: c.sandboxDir,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	sb, err := svc.Run(ctx, deploy.Request{
		Port:         port,
		RootPassword: rootPassword,
	})
	if err != nil {
		return nil, c.handleError(err)
	}

	return fromRegisteredSandbox(sb), nil
}

// DestroySandbox kills the sandbox server and removes its files and registry
// entry. Sandboxes left unregistered by crashed runs are cleaned too.
// The files are removed even while replaying.
func (c *Client) DestroySandbox(ctx context.Context, port int) error {
	svc, err := destroy.NewService(destroy.ServiceConfig{
		Engine:     c.engine,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	_, err = svc.Run(ctx, destroy.Request{Port: port})
	return c.handleError(err)
}

// StartSandbox starts a stopped or killed sandbox. It retries the start a
// few times, a previous server may still be releasing its files.
//
// Lifecycle operations are addressed by port, sandboxes deployed by another
// client are handled too. The returned sandbox is nil for those.
func (c *Client) StartSandbox(ctx context.Context, port int) (*Sandbox, error) {
	svc, err := start.NewService(start.ServiceConfig{
		Engine:     c.engine,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	sb, err := svc.Run(ctx, start.Request{Port: port})
	if err != nil {
		return nil, c.handleError(err)
	}

	return fromRegisteredSandbox(sb), nil
}

// StopSandbox shuts the sandbox server down cleanly and waits until it is dead.
func (c *Client) StopSandbox(ctx context.Context, port int, rootPassword string) (*Sandbox, error) {
	svc, err := stop.NewService(stop.ServiceConfig{
		Engine:     c.engine,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	sb, err := svc.Run(ctx, stop.Request{Port: port, RootPassword: rootPassword})
	if err != nil {
		return nil, c.handleError(err)
	}

	return fromRegisteredSandbox(sb), nil
}

// KillSandbox kills the sandbox server and waits until it is dead. Killing an
// already dead server returns right away.
func (c *Client) KillSandbox(ctx context.Context, port int) (*Sandbox, error) {
	svc, err := kill.NewService(kill.ServiceConfig{
		Engine:     c.engine,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	sb, err := svc.Run(ctx, kill.Request{Port: port})
	if err != nil {
		return nil, c.handleError(err)
	}

	return fromRegisteredSandbox(sb), nil
}

// RestartSandbox stops and starts the sandbox server.
func (c *Client) RestartSandbox(ctx context.Context, port int, rootPassword string) (*Sandbox, error) {
	svc, err := restart.NewService(restart.ServiceConfig{
		Engine:     c.engine,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	sb, err := svc.Run(ctx, restart.Request{Port: port, RootPassword: rootPassword})
	if err != nil {
		return nil, c.handleError(err)
	}

	return fromRegisteredSandbox(sb), nil
}

// ListSandboxes lists the registered sandboxes sorted by port. Pass nil opts
// for all sandboxes.
func (c *Client) ListSandboxes(ctx context.Context, opts *ListSandboxesOpts) ([]Sandbox, error) {
	svc, err := list.NewService(list.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	result, err := svc.Run(ctx, list.Request{
		Statuses: toInternalStatuses(opts),
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalSandboxList(result), nil
}

// GetSandbox retrieves the registered sandbox on port.
func (c *Client) GetSandbox(ctx context.Context, port int) (*Sandbox, error) {
	res, err := c.sandboxStatus(ctx, port, false)
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalSandbox(res.Sandbox)
	return &out, nil
}

// GetSandboxDiskUsage returns the space used by the files of the sandbox on port.
// Sandboxes without files, like the ones of a replayed run, use zero bytes.
func (c *Client) GetSandboxDiskUsage(ctx context.Context, port int) (*DiskUsage, error) {
	res, err := c.sandboxStatus(ctx, port, true)
	if err != nil {
		return nil, mapError(err)
	}

	if res.DiskUsage == nil {
		return &DiskUsage{}, nil
	}
	return &DiskUsage{VirtualBytes: res.DiskUsage.VirtualBytes, AllocatedBytes: res.DiskUsage.AllocatedBytes}, nil
}

func (c *Client) sandboxStatus(ctx context.Context, port int, diskUsage bool) (*status.Result, error) {
	svc, err := status.NewService(status.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc.Run(ctx, status.Request{Port: port, DiskUsage: diskUsage})
}

// handleError maps err to the SDK errors, calling the fatal handler first
// when the run can't continue.
func (c *Client) handleError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, model.ErrFatal) {
		c.logger.Errorf("Fatal sandbox error: %v", err)
		c.onFatal(err)
	}

	return mapError(err)
}
