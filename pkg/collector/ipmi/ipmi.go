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

package ipmi

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"k8s.io/utils/clock"

	"github.com/AndersSpringborg/chronus/pkg/collector/file"
	"github.com/AndersSpringborg/chronus/pkg/command"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

const (
	SensorTotalPower = "Total_Power"
	SensorCPUTemp    = "CPU_Temp"
	SensorCPUPower   = "CPU_Power"

	// DefaultSysfsRoot is where the kernel exposes per-CPU attributes.
	DefaultSysfsRoot = "/sys/devices/system/cpu"
)

// Collector implements the telemetry sampler.
type Collector struct {
	exec      command.Executor
	sysfsRoot string
	clock     clock.PassiveClock
	sensors   []string
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

// WithClock sets the clock used to timestamp samples.
func WithClock(clk clock.PassiveClock) Option {
	return func(c *Collector) {
		c.clock = clk
	}
}

// NewCollector returns a Collector reading the host BMC and sysfs.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		exec:      command.Exec{},
		sysfsRoot: DefaultSysfsRoot,
		clock:     clock.RealClock{},
		sensors:   []string{SensorTotalPower, SensorCPUTemp, SensorCPUPower},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sample takes one telemetry reading.
func (c *Collector) Sample(ctx context.Context) (system.SystemSample, error) {
	ts := c.clock.Now()

	readings, err := c.readSensors(ctx)
	if err != nil {
		return system.SystemSample{}, err
	}

	freqs, err := c.cpuFrequencies()
	if err != nil {
		return system.SystemSample{}, err
	}

	return system.SystemSample{
		Timestamp:        ts,
		CurrentPowerDraw: readings[SensorTotalPower],
		CPUPower:         readings[SensorCPUPower],
		CPUTemp:          readings[SensorCPUTemp],
		CPUFreq:          freqs,
	}, nil
}

func (c *Collector) readSensors(ctx context.Context) (map[string]float64, error) {
	args := append([]string{"sensor", "reading"}, c.sensors...)
	out, err := c.exec.Output(ctx, command.Cmd{Name: "ipmitool", Args: args})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTelemetryUnavailable, "failed to read ipmi sensors", err)
	}

	raw := file.NewParser(file.WithKVDelimiter("|")).ParseMap(string(out))

	readings := make(map[string]float64, len(c.sensors))
	for _, name := range c.sensors {
		v, ok := raw[name]
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeTelemetryUnavailable, "ipmi sensor missing",
				map[string]any{"sensor": name})
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeTelemetryUnavailable, "ipmi sensor has no reading", err,
				map[string]any{"sensor": name, "value": v})
		}
		readings[name] = f
	}
	return readings, nil
}

// cpuFrequencies reads current, min and max clock of every CPU with a
// cpufreq directory, ordered by CPU number.
func (c *Collector) cpuFrequencies() ([]system.CPUFreq, error) {
	dirs, err := filepath.Glob(filepath.Join(c.sysfsRoot, "cpu[0-9]*", "cpufreq"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "invalid sysfs pattern", err)
	}
	if len(dirs) == 0 {
		slog.Debug("no cpufreq attributes found", "root", c.sysfsRoot)
		return []system.CPUFreq{}, nil
	}

	slices.SortFunc(dirs, func(a, b string) int {
		return cpuNumber(a) - cpuNumber(b)
	})

	p := file.NewParser()
	res := make([]system.CPUFreq, 0, len(dirs))
	for _, dir := range dirs {
		var vals [3]float64
		for i, name := range []string{"scaling_cur_freq", "scaling_min_freq", "scaling_max_freq"} {
			v, err := p.GetFloat(filepath.Join(dir, name))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeTelemetryUnavailable,
					fmt.Sprintf("failed to read cpu frequency from %s", dir), err)
			}
			vals[i] = v
		}
		res = append(res, system.CPUFreq{Current: vals[0], Min: vals[1], Max: vals[2]})
	}
	return res, nil
}

// cpuNumber extracts N from ".../cpuN/cpufreq".
func cpuNumber(dir string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(filepath.Dir(dir)), "cpu"))
	if err != nil {
		return -1
	}
	return n
}
