package storage

import (
	"context"

	"github.com/slok/dbsandbox/internal/model"
)

// Repository is the interface for the sandbox registry. Sandboxes are keyed by port.
type Repository interface {
	CreateSandbox(ctx context.Context, s model.Sandbox) error
	GetSandbox(ctx context.Context, port int) (*model.Sandbox, error)
	ListSandboxes(ctx context.Context) ([]model.Sandbox, error)
	UpdateSandbox(ctx context.Context, s model.Sandbox) error
	DeleteSandbox(ctx context.Context, port int) error
}
