package dbsandbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/slok/dbsandbox/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary             string
	ProvisionerCommand string
	ExpectedVersion    string
	Port               int
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "dbsandbox"
	}

	// go test changes the CWD to the package directory so relative paths are useless.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("DBSANDBOX_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("dbsandbox binary not found at %q: %w", c.Binary, err)
	}

	if c.ProvisionerCommand == "" {
		return fmt.Errorf("provisioning tool command is required (DBSANDBOX_INTEGRATION_PROVISIONER)")
	}

	if c.Port == 0 {
		c.Port = 3310
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation  = "DBSANDBOX_INTEGRATION"
		envBinary      = "DBSANDBOX_INTEGRATION_BINARY"
		envProvisioner = "DBSANDBOX_INTEGRATION_PROVISIONER"
		envVersion     = "DBSANDBOX_INTEGRATION_VERSION"
		envPort        = "DBSANDBOX_INTEGRATION_PORT"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary:             os.Getenv(envBinary),
		ProvisionerCommand: os.Getenv(envProvisioner),
		ExpectedVersion:    os.Getenv(envVersion),
	}
	if p := os.Getenv(envPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			t.Skipf("Skipping due to invalid %s: %s", envPort, err)
		}
		c.Port = port
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// Env is the isolated state of a test run.
type Env struct {
	DBPath     string
	SandboxDir string
}

// NewEnv creates isolated registry and sandbox directories.
func NewEnv(t *testing.T) Env {
	t.Helper()
	dir := t.TempDir()
	return Env{
		DBPath:     filepath.Join(dir, "dbsandbox.db"),
		SandboxDir: filepath.Join(dir, "sandboxes"),
	}
}

// RunCmd runs a dbsandbox command against the isolated environment.
func RunCmd(ctx context.Context, config Config, env Env, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --db-path %s --sandbox-dir %s %s", env.DBPath, env.SandboxDir, cmdArgs)

	// The provisioning command may contain spaces so it goes through the env.
	cmdEnv := []string{"DBSANDBOX_PROVISIONER_COMMAND=" + config.ProvisionerCommand}
	if config.ExpectedVersion != "" {
		cmdEnv = append(cmdEnv, "DBSANDBOX_EXPECTED_VERSION="+config.ExpectedVersion)
	}

	return testutils.RunDBSandbox(ctx, cmdEnv, config.Binary, args, true)
}

// RunDeploy deploys a sandbox.
func RunDeploy(ctx context.Context, config Config, env Env, port int) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, env, fmt.Sprintf("deploy %d", port))
}

// RunDestroy destroys a sandbox.
func RunDestroy(ctx context.Context, config Config, env Env, port int) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, env, fmt.Sprintf("destroy %d", port))
}

// RunStop stops a sandbox.
func RunStop(ctx context.Context, config Config, env Env, port int) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, env, fmt.Sprintf("stop %d", port))
}

// RunStart starts a sandbox.
func RunStart(ctx context.Context, config Config, env Env, port int) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, env, fmt.Sprintf("start %d", port))
}

// RunKill kills a sandbox.
func RunKill(ctx context.Context, config Config, env Env, port int) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, env, fmt.Sprintf("kill %d", port))
}

// RunConf changes a sandbox configuration option.
func RunConf(ctx context.Context, config Config, env Env, port int, option string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, env, fmt.Sprintf("conf %d %s", port, option))
}

// RunList lists sandboxes in JSON format.
func RunList(ctx context.Context, config Config, env Env) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, env, "list --format json")
}

// RunStatus gets a sandbox status in JSON format.
func RunStatus(ctx context.Context, config Config, env Env, port int) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, env, fmt.Sprintf("status %d --format json", port))
}
