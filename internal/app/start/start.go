package start

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

// ServiceConfig is the configuration for the start service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Start"})

	return nil
}

// Service starts a deployed sandbox.
type Service struct {
	engine sandbox.Engine
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new start service.
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

// Request represents the start request parameters.
type Request struct {
	Port int
}

// Run starts the sandbox on the port. Unregistered sandboxes are started too
// and a nil sandbox is returned for them.
// The registry status is not trusted to decide, servers can die behind our
// back (shutdown statements, crashes) so the engine always waits for the
// previous server to be dead and starts a new one.
func (s *Service) Run(ctx context.Context, req Request) (*model.Sandbox, error) {
	s.logger.Debugf("starting sandbox: %d", req.Port)

	sb, err := s.repo.GetSandbox(ctx, req.Port)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not get sandbox: %w", err)
	}

	if err := s.engine.Start(ctx, req.Port); err != nil {
		return nil, fmt.Errorf("could not start sandbox: %w", err)
	}

	if sb == nil {
		s.logger.Warningf("sandbox %d is not registered, started without registry update", req.Port)
		return nil, nil
	}

	now := time.Now().UTC()
	sb.Status = model.SandboxStatusRunning
	sb.StartedAt = &now
	sb.StoppedAt = nil

	if err := s.repo.UpdateSandbox(ctx, *sb); err != nil {
		return nil, fmt.Errorf("could not update sandbox: %w", err)
	}

	s.logger.Infof("started sandbox: %d (ID: %s)", sb.Port, sb.ID)
	return sb, nil
}
