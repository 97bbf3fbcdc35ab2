// Package provisioning is the boundary with the tool that actually creates,
// starts, stops, kills and deletes database server sandboxes.
package provisioning

import (
	"context"

	"github.com/slok/dbsandbox/internal/model"
)

// Request is the input of every provisioning operation.
//
// Port and SandboxDir address the sandbox (its base directory is SandboxDir/Port).
// The remaining fields are only used by the operations that need them.
type Request struct {
	Port         int      `json:"port"`
	SandboxDir   string   `json:"sandbox_dir"`
	ExtendedPort int      `json:"extended_port,omitempty"`
	Password     string   `json:"password,omitempty"`
	Options      []string `json:"options,omitempty"`
}

// Provisioner manages the server processes backing sandboxes.
//
// Operation level problems are reported as outcomes, the returned error is
// reserved for failures talking with the provisioning tool itself.
type Provisioner interface {
	// CreateSandbox initializes and starts a new sandbox.
	CreateSandbox(ctx context.Context, req Request) (model.Outcomes, error)
	StartSandbox(ctx context.Context, req Request) (model.Outcomes, error)
	// StopSandbox performs a clean shutdown using the root password.
	StopSandbox(ctx context.Context, req Request) (model.Outcomes, error)
	KillSandbox(ctx context.Context, req Request) (model.Outcomes, error)
	DeleteSandbox(ctx context.Context, req Request) (model.Outcomes, error)
}
