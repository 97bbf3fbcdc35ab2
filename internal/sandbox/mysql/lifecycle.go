package mysql

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/mycnf"
	"github.com/slok/dbsandbox/internal/replay"
)

// Deploy creates and starts the sandbox on port from the boilerplate.
//
// The boilerplate is rebuilt first when it was built for another root
// password or there is no expected version to validate it against. When the
// clone finds the boilerplate stale it is rebuilt and the clone retried once,
// a second failure is an ErrFatal error.
func (e *Engine) Deploy(ctx context.Context, port int, rootPassword string) error {
	if err := model.ValidatePort(port); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gate.Replaying(ctx) {
		e.logger.Debugf("Replaying, skipping deploy of sandbox %d", port)
		return nil
	}
	ctx = replay.NoReplay(ctx)

	reusable := e.boilerplateReady && e.signature.RootPassword == rootPassword && e.expectedVersion != ""
	if !reusable {
		if err := e.ensureBoilerplate(ctx, rootPassword); err != nil {
			return fmt.Errorf("could not prepare boilerplate: %w", err)
		}
	}

	err := e.clone(ctx, port)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrBoilerplateStale) {
		return fmt.Errorf("could not deploy sandbox %d: %w", port, err)
	}

	e.logger.Warningf("Boilerplate was created for a different server version than %s and will be recreated", e.expectedVersion)
	if err := e.ensureBoilerplate(ctx, rootPassword); err != nil {
		return fmt.Errorf("could not rebuild stale boilerplate: %v: %w", err, model.ErrFatal)
	}
	if err := e.clone(ctx, port); err != nil {
		return fmt.Errorf("unable to deploy sandbox %d from rebuilt boilerplate: %v: %w", port, err, model.ErrFatal)
	}

	return nil
}

// Start starts the sandbox on port once any previous server on it is dead.
func (e *Engine) Start(ctx context.Context, port int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.start(ctx, port)
}

func (e *Engine) start(ctx context.Context, port int) error {
	if e.gate.Replaying(ctx) {
		e.logger.Debugf("Replaying, skipping start of sandbox %d", port)
		return nil
	}

	if err := e.probe.WaitUntilDead(ctx, conventions.DataDirPath(e.sandboxDir, port)); err != nil {
		return fmt.Errorf("waiting for previous sandbox %d to die: %w", port, err)
	}

	for attempt := 1; attempt <= e.startAttempts; attempt++ {
		outcomes, err := e.prov.StartSandbox(ctx, e.request(port))
		if err != nil {
			return fmt.Errorf("could not start sandbox %d: %w", port, err)
		}
		if !outcomes.HasErrors() {
			if len(outcomes) > 0 {
				e.logger.Warningf("During start of %d: %s", port, outcomes)
			}
			e.logger.Infof("Sandbox %d started", port)
			return nil
		}

		e.logger.Debugf("Start attempt %d/%d of sandbox %d failed: %s", attempt, e.startAttempts, port, outcomes)
		if attempt == e.startAttempts {
			e.logger.Errorf("During start of %d: %s (tried %d times)", port, outcomes, e.startAttempts)
			break
		}

		if err := e.sleep(ctx, e.startRetryInterval); err != nil {
			return fmt.Errorf("could not start sandbox %d: %w", port, err)
		}
	}

	return fmt.Errorf("could not start sandbox instance %d", port)
}

// Stop shuts down the sandbox on port cleanly. Reported problems are logged.
func (e *Engine) Stop(ctx context.Context, port int, rootPassword string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.stop(ctx, port, rootPassword)
}

func (e *Engine) stop(ctx context.Context, port int, rootPassword string) error {
	if e.gate.Replaying(ctx) {
		e.logger.Debugf("Replaying, skipping stop of sandbox %d", port)
		return nil
	}

	req := e.request(port)
	req.Password = rootPassword
	outcomes, err := e.prov.StopSandbox(replay.NoReplay(ctx), req)
	if err != nil {
		return fmt.Errorf("could not stop sandbox %d: %w", port, err)
	}
	if len(outcomes) > 0 {
		e.logger.Warningf("During stop of %d: %s", port, outcomes)
	}

	return nil
}

// Kill kills the sandbox on port and waits until it is fully dead.
func (e *Engine) Kill(ctx context.Context, port int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.kill(ctx, port)
}

func (e *Engine) kill(ctx context.Context, port int) error {
	if e.gate.Replaying(ctx) {
		e.logger.Debugf("Replaying, skipping kill of sandbox %d", port)
		return nil
	}

	outcomes, err := e.prov.KillSandbox(ctx, e.request(port))
	if err != nil {
		return fmt.Errorf("could not kill sandbox %d: %w", port, err)
	}
	if len(outcomes) > 0 {
		e.logger.Warningf("During kill of %d: %s", port, outcomes)
	}

	if err := e.probe.WaitUntilDead(ctx, conventions.DataDirPath(e.sandboxDir, port)); err != nil {
		return fmt.Errorf("waiting for sandbox %d to die: %w", port, err)
	}

	return nil
}

// Restart stops and starts the sandbox on port.
func (e *Engine) Restart(ctx context.Context, port int, rootPassword string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.stop(ctx, port, rootPassword); err != nil {
		return err
	}

	return e.start(ctx, port)
}

// Destroy kills the sandbox on port and deletes its files. The files are
// deleted even while replaying, restored snapshots live in the same place.
func (e *Engine) Destroy(ctx context.Context, port int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.destroy(ctx, port)
}

func (e *Engine) destroy(ctx context.Context, port int) error {
	replaying := e.gate.Replaying(ctx)
	ctx = replay.NoReplay(ctx)

	if !replaying {
		if err := e.kill(ctx, port); err != nil {
			return err
		}
	}

	baseDir := e.BaseDir(port)
	if err := clearReadOnly(baseDir); err != nil {
		e.logger.Warningf("Could not clear read-only attributes on %s: %v", baseDir, err)
	}

	if !replaying {
		outcomes, err := e.prov.DeleteSandbox(ctx, e.request(port))
		if err != nil {
			return fmt.Errorf("could not delete sandbox %d: %w", port, err)
		}
		if len(outcomes) > 0 {
			e.logger.Warningf("During delete of %d: %s", port, outcomes)
		}
	}

	if err := os.RemoveAll(baseDir); err != nil {
		return fmt.Errorf("could not remove sandbox %d files: %w", port, err)
	}

	e.logger.Infof("Sandbox %d destroyed", port)
	return nil
}

// ChangeConf sets option in the server section of the sandbox configuration.
func (e *Engine) ChangeConf(ctx context.Context, port int, option string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.changeConf(port, option)
}

func (e *Engine) changeConf(port int, option string) error {
	if err := mycnf.Change(e.ConfPath(port), option); err != nil {
		return fmt.Errorf("could not change sandbox %d configuration: %w", port, err)
	}
	return nil
}

// RemoveFromConf removes every line containing option from the sandbox configuration.
func (e *Engine) RemoveFromConf(ctx context.Context, port int, option string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := mycnf.Remove(e.ConfPath(port), option); err != nil {
		return fmt.Errorf("could not remove from sandbox %d configuration: %w", port, err)
	}
	return nil
}
