package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/provisioning"
)

// Operation names passed as the last argument to the tool.
const (
	OperationCreate = "create"
	OperationStart  = "start"
	OperationStop   = "stop"
	OperationKill   = "kill"
	OperationDelete = "delete"
)

// ProvisionerConfig is the configuration for the command provisioner.
type ProvisionerConfig struct {
	// Command is the tool command line, split with shell rules (e.g: `mysqlsh --py -f provision.py --`).
	Command string
	// Env is appended to the current process environment.
	Env    []string
	Logger log.Logger
}

func (c *ProvisionerConfig) defaults() error {
	if strings.TrimSpace(c.Command) == "" {
		return fmt.Errorf("command is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "provisioning.Command"})

	return nil
}

// Provisioner runs an external tool for every operation.
//
// The tool receives the operation name as its last argument and the JSON
// encoded request on stdin. It must print a JSON array of
// `{"type": "OK|WARNING|ERROR", "message": "..."}` entries on stdout, an
// empty output is an empty outcome list.
type Provisioner struct {
	bin    string
	args   []string
	env    []string
	logger log.Logger
}

// NewProvisioner returns a new command based provisioner.
func NewProvisioner(cfg ProvisionerConfig) (*Provisioner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	words, err := shellquote.Split(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("invalid provisioning command %q: %w", cfg.Command, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("empty provisioning command: %w", model.ErrNotValid)
	}

	return &Provisioner{
		bin:    words[0],
		args:   words[1:],
		env:    cfg.Env,
		logger: cfg.Logger,
	}, nil
}

func (p *Provisioner) CreateSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	return p.run(ctx, OperationCreate, req)
}

func (p *Provisioner) StartSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	return p.run(ctx, OperationStart, req)
}

func (p *Provisioner) StopSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	return p.run(ctx, OperationStop, req)
}

func (p *Provisioner) KillSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	return p.run(ctx, OperationKill, req)
}

func (p *Provisioner) DeleteSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	return p.run(ctx, OperationDelete, req)
}

// Bin returns the tool executable.
func (p *Provisioner) Bin() string { return p.bin }

type jsonOutcome struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (p *Provisioner) run(ctx context.Context, op string, req provisioning.Request) (model.Outcomes, error) {
	in, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not encode request: %w", err)
	}

	args := append(append([]string{}, p.args...), op)
	cmd := exec.CommandContext(ctx, p.bin, args...)
	cmd.Env = append(os.Environ(), p.env...)
	cmd.Stdin = bytes.NewReader(in)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debugf("Running %s %s for port %d", p.bin, op, req.Port)
	err = cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return decodeOutcomes(stdout.Bytes())
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		// The tool reports its failures as outcomes and exits non-zero.
		outcomes, derr := decodeOutcomes(stdout.Bytes())
		if derr == nil && len(outcomes) > 0 {
			if !outcomes.HasErrors() {
				outcomes = append(outcomes, model.Outcome{
					Kind:    model.OutcomeKindError,
					Message: fmt.Sprintf("provisioning %s exited with code %d", op, exitErr.ExitCode()),
				})
			}
			return outcomes, nil
		}
	}

	return nil, fmt.Errorf("provisioning %s on port %d failed: %w: %s", op, req.Port, err, strings.TrimSpace(stderr.String()))
}

func decodeOutcomes(data []byte) (model.Outcomes, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return model.Outcomes{}, nil
	}

	var entries []jsonOutcome
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("could not decode provisioning output: %w", err)
	}

	outcomes := make(model.Outcomes, 0, len(entries))
	for _, e := range entries {
		outcomes = append(outcomes, model.Outcome{
			Kind:    model.ParseOutcomeKind(e.Type),
			Message: e.Message,
		})
	}

	return outcomes, nil
}
