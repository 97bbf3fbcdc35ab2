package stop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/sandbox"
	"github.com/slok/dbsandbox/internal/storage"
)

// ServiceConfig is the configuration for the stop service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Stop"})

	return nil
}

// Service stops a running sandbox cleanly.
type Service struct {
	engine sandbox.Engine
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new stop service.
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

// Request represents the stop request parameters.
type Request struct {
	Port         int
	RootPassword string
}

// Run shuts down a sandbox server and waits until it is dead.
// The returned sandbox is nil when the port is not registered.
func (s *Service) Run(ctx context.Context, req Request) (*model.Sandbox, error) {
	s.logger.Debugf("stopping sandbox: %d", req.Port)

	sb, err := s.repo.GetSandbox(ctx, req.Port)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not get sandbox: %w", err)
	}

	if err := s.engine.Stop(ctx, req.Port, req.RootPassword); err != nil {
		return nil, fmt.Errorf("could not stop sandbox: %w", err)
	}

	if sb == nil {
		s.logger.Warningf("sandbox %d is not registered, stopped without registry update", req.Port)
		return nil, nil
	}

	now := time.Now().UTC()
	sb.Status = model.SandboxStatusStopped
	sb.StoppedAt = &now

	if err := s.repo.UpdateSandbox(ctx, *sb); err != nil {
		return nil, fmt.Errorf("could not update sandbox: %w", err)
	}

	s.logger.Infof("stopped sandbox: %d (ID: %s)", sb.Port, sb.ID)
	return sb, nil
}
