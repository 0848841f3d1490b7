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

package cpu

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/AndersSpringborg/chronus/pkg/collector/file"
	"github.com/AndersSpringborg/chronus/pkg/command"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

const (
	// DefaultSysfsRoot is where the kernel exposes per-CPU attributes.
	DefaultSysfsRoot = "/sys/devices/system/cpu"

	// UnknownModel is reported when lscpu has no model name.
	UnknownModel = "Unknown"

	availableFrequenciesFile = "cpu0/cpufreq/scaling_available_frequencies"

	keyModelName      = "Model name"
	keyCoresPerSocket = "Core(s) per socket"
	keyThreadsPerCore = "Thread(s) per core"
)

// Collector implements the CPU capability probe.
type Collector struct {
	exec      command.Executor
	sysfsRoot string
}

// Option configures a Collector.
type Option func(*Collector)

// WithExecutor replaces the command executor.
func WithExecutor(e command.Executor) Option {
	return func(c *Collector) {
		c.exec = e
	}
}

// WithSysfsRoot replaces DefaultSysfsRoot.
func WithSysfsRoot(root string) Option {
	return func(c *Collector) {
		c.sysfsRoot = root
	}
}

// NewCollector returns a Collector reading the host.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		exec:      command.Exec{},
		sysfsRoot: DefaultSysfsRoot,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCPUInfo returns the fingerprint of the local machine.
func (c *Collector) GetCPUInfo(ctx context.Context) (system.SystemInfo, error) {
	out, err := c.exec.Output(ctx, command.Cmd{Name: "lscpu"})
	if err != nil {
		return system.SystemInfo{}, errors.Wrap(errors.ErrCodeTelemetryUnavailable, "failed to run lscpu", err)
	}

	fields := file.NewParser(file.WithKVDelimiter(":")).ParseMap(string(out))

	name := fields[keyModelName]
	if name == "" {
		slog.Debug("lscpu reported no model name")
		name = UnknownModel
	}
	cores := atoi(fields, keyCoresPerSocket)
	tpc := atoi(fields, keyThreadsPerCore)

	freqs, err := c.frequencies()
	if err != nil {
		return system.SystemInfo{}, err
	}

	info := system.NewSystemInfo(name, cores, tpc, freqs)
	slog.Debug("cpu probed", "cpu", info.CPU, "cores", info.Cores, "threads_per_core", info.ThreadsPerCore,
		"frequencies", len(info.Frequencies))
	return info, nil
}

func (c *Collector) frequencies() ([]float64, error) {
	path := filepath.Join(c.sysfsRoot, availableFrequenciesFile)
	freqs, err := file.NewParser().GetFloats(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTelemetryUnavailable, "failed to read available cpu frequencies", err)
	}
	slices.Sort(freqs)
	return slices.Compact(freqs), nil
}

func atoi(fields map[string]string, key string) int {
	v, ok := fields[key]
	if !ok {
		slog.Debug("lscpu field missing", "field", key)
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Debug("lscpu field is not a number", "field", key, "value", v)
		return 0
	}
	return n
}
