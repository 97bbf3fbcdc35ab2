package conf

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/sandbox"
	"github.com/slok/dbsandbox/internal/storage"
)

// ServiceConfig is the configuration for the conf service.
type ServiceConfig struct {
	Engine     sandbox.Engine
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Engine == nil {
		return fmt.Errorf("engine is required")
	}

	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Conf"})

	return nil
}

// Service edits the configuration file of sandboxes.
type Service struct {
	engine sandbox.Engine
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new conf service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		engine: cfg.Engine,
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the conf request parameters.
type Request struct {
	Port int
	// Option is a `name` or `name=value` line. With Remove it is the
	// substring that selects the lines to drop.
	Option string
	Remove bool
}

// Result is the result of a conf edit.
type Result struct {
	// Sandbox is nil when the port is not registered.
	Sandbox  *model.Sandbox
	ConfPath string
}

// Run changes or removes an option from the sandbox configuration.
// Changes take effect on the next sandbox start.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Option == "" {
		return nil, fmt.Errorf("option is required: %w", model.ErrNotValid)
	}

	sb, err := s.repo.GetSandbox(ctx, req.Port)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not get sandbox: %w", err)
	}

	if req.Remove {
		if err := s.engine.RemoveFromConf(ctx, req.Port, req.Option); err != nil {
			return nil, fmt.Errorf("could not remove %q from sandbox conf: %w", req.Option, err)
		}
		s.logger.Infof("removed %q from sandbox %d conf", req.Option, req.Port)
	} else {
		if err := s.engine.ChangeConf(ctx, req.Port, req.Option); err != nil {
			return nil, fmt.Errorf("could not change sandbox conf with %q: %w", req.Option, err)
		}
		s.logger.Infof("changed sandbox %d conf with %q", req.Port, req.Option)
	}

	return &Result{Sandbox: sb, ConfPath: s.engine.ConfPath(req.Port)}, nil
}
