package deploy

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/sandbox"
	"github.com/slok/dbsandbox/internal/storage"
)

// ServiceConfig is the configuration for the deploy service.
type ServiceConfig struct {
	Engine     sandbox.Engine
	Repository storage.Repository
	// SandboxDir is the root where sandboxes are deployed, used for the registry base dir.
	SandboxDir string
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Engine == nil {
		return fmt.Errorf("engine is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.SandboxDir == "" {
		return fmt.Errorf("sandbox dir is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Deploy"})
	return nil
}

// Service handles sandbox deployment business logic.
type Service struct {
	engine     sandbox.Engine
	repo       storage.Repository
	sandboxDir string
	logger     log.Logger
}

// NewService creates a new deploy service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		engine:     cfg.Engine,
		repo:       cfg.Repository,
		sandboxDir: cfg.SandboxDir,
		logger:     cfg.Logger,
	}, nil
}

// Request represents the deploy request parameters.
type Request struct {
	Port         int
	RootPassword string
}

// Run deploys and starts a new sandbox on the requested port and registers it.
func (s *Service) Run(ctx context.Context, req Request) (*model.Sandbox, error) {
	// 1. Validate port.
	if err := model.ValidatePort(req.Port); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	// 2. Check port is free.
	_, err := s.repo.GetSandbox(ctx, req.Port)
	if err == nil {
		return nil, fmt.Errorf("sandbox on port %d already exists: %w", req.Port, model.ErrAlreadyExists)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not check port uniqueness: %w", err)
	}

	// 3. Deploy via engine.
	if err := s.engine.Deploy(ctx, req.Port, req.RootPassword); err != nil {
		return nil, fmt.Errorf("could not deploy sandbox: %w", err)
	}

	// 4. Save to repository.
	now := time.Now().UTC()
	sb := model.Sandbox{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Port:      req.Port,
		BaseDir:   conventions.SandboxDir(s.sandboxDir, req.Port),
		Status:    model.SandboxStatusRunning,
		CreatedAt: now,
		StartedAt: &now,
	}
	if err := s.repo.CreateSandbox(ctx, sb); err != nil {
		return nil, fmt.Errorf("could not save sandbox: %w", err)
	}

	s.logger.Infof("Deployed sandbox: %d (%s)", sb.Port, sb.ID)

	return &sb, nil
}
