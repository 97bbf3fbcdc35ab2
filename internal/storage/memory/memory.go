package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
// Replaying runs use it so nothing is persisted between sessions.
type Repository struct {
	sandboxes map[int]model.Sandbox
	mu        sync.RWMutex
	logger    log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		sandboxes: make(map[int]model.Sandbox),
		logger:    cfg.Logger,
	}, nil
}

// CreateSandbox creates a new sandbox in the repository.
func (r *Repository) CreateSandbox(ctx context.Context, s model.Sandbox) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid sandbox: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sandboxes[s.Port]; ok {
		return fmt.Errorf("sandbox on port %d: %w", s.Port, model.ErrAlreadyExists)
	}

	for _, existing := range r.sandboxes {
		if existing.ID == s.ID {
			return fmt.Errorf("sandbox with id %s: %w", s.ID, model.ErrAlreadyExists)
		}
	}

	r.sandboxes[s.Port] = s
	r.logger.Debugf("Created sandbox in repository: %d", s.Port)

	return nil
}

// GetSandbox retrieves a sandbox by port.
func (r *Repository) GetSandbox(ctx context.Context, port int) (*model.Sandbox, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sandbox, ok := r.sandboxes[port]
	if !ok {
		return nil, fmt.Errorf("sandbox on port %d: %w", port, model.ErrNotFound)
	}

	// Return a copy
	sandboxCopy := sandbox
	return &sandboxCopy, nil
}

// ListSandboxes returns all sandboxes ordered by port.
func (r *Repository) ListSandboxes(ctx context.Context) ([]model.Sandbox, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sandboxes := make([]model.Sandbox, 0, len(r.sandboxes))
	for _, sandbox := range r.sandboxes {
		sandboxes = append(sandboxes, sandbox)
	}
	sort.Slice(sandboxes, func(i, j int) bool { return sandboxes[i].Port < sandboxes[j].Port })

	return sandboxes, nil
}

// UpdateSandbox updates an existing sandbox.
func (r *Repository) UpdateSandbox(ctx context.Context, s model.Sandbox) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid sandbox: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sandboxes[s.Port]; !ok {
		return fmt.Errorf("sandbox on port %d: %w", s.Port, model.ErrNotFound)
	}

	r.sandboxes[s.Port] = s
	r.logger.Debugf("Updated sandbox in repository: %d", s.Port)

	return nil
}

// DeleteSandbox deletes a sandbox.
func (r *Repository) DeleteSandbox(ctx context.Context, port int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sandboxes[port]; !ok {
		return fmt.Errorf("sandbox on port %d: %w", port, model.ErrNotFound)
	}

	delete(r.sandboxes, port)
	r.logger.Debugf("Deleted sandbox from repository: %d", port)

	return nil
}
