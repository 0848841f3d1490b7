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

package optimizer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

const (
	NameBruteForce       = "brute-force"
	NameLinearRegression = "linear-regression"
	NameRandomForest     = "random-forest"
)

// Optimizer trains on runs and recommends a configuration for a machine.
type Optimizer interface {
	// Name is the stable identifier used for dispatch and artifact naming.
	Name() string
	// MakeModel fits the optimizer to runs.
	MakeModel(runs []*benchmark.Run) error
	// Save writes the fitted model to path.
	Save(path string) error
	// Load replaces the model with the one stored at path.
	Load(path string) error
	// Run returns the recommended configuration for info.
	Run(info system.SystemInfo) (system.Configuration, error)
}

// Factory creates an untrained optimizer.
type Factory func() Optimizer

var registry = map[string]Factory{
	NameBruteForce:       func() Optimizer { return NewBruteForce() },
	NameLinearRegression: func() Optimizer { return NewLinearRegression() },
	NameRandomForest:     func() Optimizer { return NewRandomForest() },
}

// New returns an untrained optimizer by name.
func New(name string) (Optimizer, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown optimizer %q", name),
			map[string]any{"supported": Names()})
	}
	return f(), nil
}

// Names lists the registered optimizers in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Train fits o to runs and records the outcome.
func Train(o Optimizer, runs []*benchmark.Run) error {
	start := time.Now()
	err := o.MakeModel(runs)
	fitDuration.WithLabelValues(o.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		fitTotal.WithLabelValues(o.Name(), "error").Inc()
		return err
	}
	fitTotal.WithLabelValues(o.Name(), "success").Inc()
	slog.Info("model trained", "optimizer", o.Name(), "runs", len(runs), "duration", time.Since(start))
	return nil
}

// DetectType returns the strategy name recorded in the artifact at path.
func DetectType(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("failed to read model artifact %q", path), err)
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("malformed model artifact %q", path), err)
	}
	if head.Type == "" {
		return "", errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("model artifact %q has no type", path))
	}
	return head.Type, nil
}

func writeArtifact(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to create model directory %q", dir), err)
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode model artifact", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to write model artifact %q", path), err)
	}
	slog.Debug("model artifact written", "path", path, "bytes", len(b))
	return nil
}

func readArtifact(path, name string, v any) error {
	typ, err := DetectType(path)
	if err != nil {
		return err
	}
	if typ != name {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "model artifact was written by another optimizer",
			map[string]any{"path": path, "expected": name, "actual": typ})
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("failed to read model artifact %q", path), err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("malformed model artifact %q", path), err)
	}
	return nil
}

func errNotTrained(name string) error {
	return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("%s model has not been trained or loaded", name))
}

func errNoRuns(name string) error {
	return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("%s requires at least one run to train", name))
}
