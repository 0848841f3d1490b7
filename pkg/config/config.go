// Copyright (c) 2025, The chronus Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/AndersSpringborg/chronus/pkg/defaults"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/runner"
	"github.com/AndersSpringborg/chronus/pkg/serializer"
	"gopkg.in/yaml.v3"
)

// Config is the resolved chronus configuration.
type Config struct {
	// Database is the SQLite database path.
	Database string `json:"database,omitempty" yaml:"database,omitempty"`

	// Runner names the benchmark backend, see runner.Names.
	Runner string `json:"runner,omitempty" yaml:"runner,omitempty"`

	// HPCGPath is the benchmark binary.
	HPCGPath string `json:"hpcg_path,omitempty" yaml:"hpcg_path,omitempty"`

	// WorkDir holds the benchmark output directory.
	WorkDir string `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`

	// SettingsRoot holds the active model and its settings.
	SettingsRoot string `json:"settings_root,omitempty" yaml:"settings_root,omitempty"`

	// ModelDir receives trained model artifacts.
	ModelDir string `json:"model_dir,omitempty" yaml:"model_dir,omitempty"`

	// SampleInterval is the pause between telemetry samples.
	SampleInterval Duration `json:"sample_interval,omitempty" yaml:"sample_interval,omitempty"`

	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`
}

// ServerConfig configures chronusd.
type ServerConfig struct {
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database:       defaults.DatabasePath,
		Runner:         runner.NameHPCG,
		WorkDir:        ".",
		SettingsRoot:   defaults.SettingsRoot,
		ModelDir:       defaults.ModelDir,
		SampleInterval: Duration(defaults.SampleInterval),
		Server: ServerConfig{
			Port: defaults.ServerPort,
		},
	}
}

// Load reads path over the defaults. An empty path returns Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	file, err := serializer.FromFile[Config](path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to load config file", err,
			map[string]any{"path": path})
	}
	cfg.merge(file)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("config loaded", "path", path, "runner", cfg.Runner, "database", cfg.Database)
	return cfg, nil
}

// merge copies every non-zero field of o into c.
func (c *Config) merge(o *Config) {
	if o.Database != "" {
		c.Database = o.Database
	}
	if o.Runner != "" {
		c.Runner = o.Runner
	}
	if o.HPCGPath != "" {
		c.HPCGPath = o.HPCGPath
	}
	if o.WorkDir != "" {
		c.WorkDir = o.WorkDir
	}
	if o.SettingsRoot != "" {
		c.SettingsRoot = o.SettingsRoot
	}
	if o.ModelDir != "" {
		c.ModelDir = o.ModelDir
	}
	if o.SampleInterval != 0 {
		c.SampleInterval = o.SampleInterval
	}
	if o.Server.Port != 0 {
		c.Server.Port = o.Server.Port
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.SampleInterval <= 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "sample_interval must be positive",
			map[string]any{"sample_interval": c.SampleInterval.String()})
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "server.port out of range",
			map[string]any{"port": c.Server.Port})
	}
	if !slices.Contains(runner.Names(), c.Runner) {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown runner %q", c.Runner),
			map[string]any{"supported": runner.Names()})
	}
	return nil
}

// Duration is a time.Duration written as "1s" or "500ms" in config files.
type Duration time.Duration

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	return d.parse(node.Value)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}
