package status

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/storage"
	"github.com/slok/dbsandbox/internal/utils/file"
)

// ServiceConfig is the configuration for the status service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Status"})

	return nil
}

// Service retrieves the registered state of a sandbox and the space its files use.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the status request.
type Request struct {
	Port int
	// DiskUsage also measures the sandbox files.
	DiskUsage bool
}

// Result is the status of a sandbox.
type Result struct {
	Sandbox model.Sandbox
	// DiskUsage is nil when not requested or when the sandbox has no files,
	// like the ones registered by a replayed run.
	DiskUsage *model.DiskUsage
}

// Run retrieves the registered state of the sandbox on a port.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	sb, err := s.repo.GetSandbox(ctx, req.Port)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("sandbox not found: %d: %w", req.Port, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get sandbox status: %w", err)
	}

	res := &Result{Sandbox: *sb}
	if !req.DiskUsage {
		return res, nil
	}

	virtual, allocated, err := file.DirSizeStats(sb.BaseDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debugf("Sandbox %d has no files at %s", sb.Port, sb.BaseDir)
	case err != nil:
		return nil, fmt.Errorf("could not get sandbox %d disk usage: %w", sb.Port, err)
	default:
		res.DiskUsage = &model.DiskUsage{VirtualBytes: virtual, AllocatedBytes: allocated}
	}

	return res, nil
}
