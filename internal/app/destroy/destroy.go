package destroy

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/sandbox"
	"github.com/slok/dbsandbox/internal/storage"
)

// ServiceConfig is the configuration for the destroy service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Destroy"})

	return nil
}

// Service destroys sandboxes.
type Service struct {
	engine sandbox.Engine
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new destroy service.
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

// Request represents the destroy request parameters.
type Request struct {
	Port int
}

// Run kills the sandbox server and removes its files and registry entry.
// Unregistered sandboxes are destroyed too so leftovers of crashed runs can
// be cleaned, in that case the returned sandbox is nil.
func (s *Service) Run(ctx context.Context, req Request) (*model.Sandbox, error) {
	s.logger.Debugf("destroying sandbox: %d", req.Port)

	sb, err := s.repo.GetSandbox(ctx, req.Port)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not get sandbox: %w", err)
	}

	if err := s.engine.Destroy(ctx, req.Port); err != nil {
		return nil, fmt.Errorf("could not destroy sandbox: %w", err)
	}

	if sb == nil {
		s.logger.Warningf("sandbox %d was not registered, destroyed its files only", req.Port)
		return nil, nil
	}

	if err := s.repo.DeleteSandbox(ctx, req.Port); err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not delete sandbox from repository: %w", err)
	}

	s.logger.Infof("destroyed sandbox: %d (ID: %s)", sb.Port, sb.ID)
	return sb, nil
}
