package list

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/storage"
)

// ServiceConfig is the configuration for the list service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.List"})

	return nil
}

// Service lists the registered sandboxes.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the list request.
type Request struct {
	// Statuses keeps only the sandboxes in any of them, empty keeps all.
	Statuses []model.SandboxStatus
}

func (r Request) validate() error {
	for _, s := range r.Statuses {
		if _, err := model.ParseSandboxStatus(string(s)); err != nil {
			return err
		}
	}
	return nil
}

// Run returns the registered sandboxes ordered by port.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Sandbox, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	sandboxes, err := s.repo.ListSandboxes(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list sandboxes: %w", err)
	}

	result := make([]model.Sandbox, 0, len(sandboxes))
	for _, sb := range sandboxes {
		if len(req.Statuses) == 0 || slices.Contains(req.Statuses, sb.Status) {
			result = append(result, sb)
		}
	}
	slices.SortFunc(result, func(a, b model.Sandbox) int { return cmp.Compare(a.Port, b.Port) })

	s.logger.Debugf("%d of %d sandboxes match %v", len(result), len(sandboxes), req.Statuses)
	return result, nil
}
