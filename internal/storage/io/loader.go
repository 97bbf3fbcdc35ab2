package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/dbsandbox/internal/model"
)

// HarnessYAMLRepository loads the harness configuration from YAML files.
type HarnessYAMLRepository struct {
	fs fs.FS
}

// NewHarnessYAMLRepository creates a new YAML harness config repository.
func NewHarnessYAMLRepository(filesystem fs.FS) *HarnessYAMLRepository {
	return &HarnessYAMLRepository{fs: filesystem}
}

// GetConfig loads a harness configuration from a YAML file and returns a validated domain model.
func (r *HarnessYAMLRepository) GetConfig(ctx context.Context, path string) (model.HarnessConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.HarnessConfig{}, fmt.Errorf("reading harness config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.HarnessConfig{}, ctx.Err()
	}

	var cfg HarnessConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.HarnessConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	m := cfg.toModel()
	if err := m.Validate(); err != nil {
		return model.HarnessConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return m, nil
}

// HarnessConfig represents the YAML structure for the harness configuration.
type HarnessConfig struct {
	SandboxDir       string            `yaml:"sandbox_dir"`
	DefaultPorts     []int             `yaml:"default_ports"`
	ExpectedVersion  string            `yaml:"expected_version"`
	Provisioner      ProvisionerConfig `yaml:"provisioner"`
	ReplayMode       string            `yaml:"replay_mode"`
	SnapshotDir      string            `yaml:"snapshot_dir"`
	Debug            bool              `yaml:"debug"`
	ReuseBoilerplate bool              `yaml:"reuse_boilerplate"`
}

// ProvisionerConfig represents the YAML structure for the provisioning tool.
type ProvisionerConfig struct {
	Command string            `yaml:"command"`
	Env     map[string]string `yaml:"env"`
}

func (c HarnessConfig) toModel() model.HarnessConfig {
	return model.HarnessConfig{
		SandboxDir:         c.SandboxDir,
		DefaultPorts:       c.DefaultPorts,
		ExpectedVersion:    c.ExpectedVersion,
		ProvisionerCommand: c.Provisioner.Command,
		ProvisionerEnv:     c.Provisioner.Env,
		ReplayMode:         c.ReplayMode,
		SnapshotDir:        c.SnapshotDir,
		Debug:              c.Debug,
		ReuseBoilerplate:   c.ReuseBoilerplate,
	}
}
