// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package collector

import (
	"context"

	"github.com/AndersSpringborg/chronus/pkg/collector/cpu"
	"github.com/AndersSpringborg/chronus/pkg/collector/ipmi"
	"github.com/AndersSpringborg/chronus/pkg/collector/systemd"
	"github.com/AndersSpringborg/chronus/pkg/command"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// Prober reports the capabilities of the local CPU.
type Prober interface {
	GetCPUInfo(ctx context.Context) (system.SystemInfo, error)
}

// Sampler takes one telemetry reading.
type Sampler interface {
	Sample(ctx context.Context) (system.SystemSample, error)
}

// ServiceCollector reports the state of systemd units.
type ServiceCollector interface {
	Collect(ctx context.Context) ([]systemd.UnitStatus, error)
}

// Factory creates collectors.
type Factory interface {
	CreateProber() Prober
	CreateSampler() Sampler
	CreateServiceCollector() ServiceCollector
}

// DefaultFactory creates collectors with production dependencies.
type DefaultFactory struct {
	SysfsRoot string
	Executor  command.Executor
	Services  []string
}

// Option configures a DefaultFactory.
type Option func(*DefaultFactory)

// WithSysfsRoot replaces the sysfs cpu directory.
func WithSysfsRoot(root string) Option {
	return func(f *DefaultFactory) {
		f.SysfsRoot = root
	}
}

// WithExecutor replaces the command executor.
func WithExecutor(e command.Executor) Option {
	return func(f *DefaultFactory) {
		f.Executor = e
	}
}

// WithServices sets the systemd units the service collector reports on.
func WithServices(services []string) Option {
	return func(f *DefaultFactory) {
		f.Services = services
	}
}

// NewDefaultFactory returns a factory reading the host.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{
		SysfsRoot: cpu.DefaultSysfsRoot,
		Executor:  command.Exec{},
		Services:  systemd.DefaultServices(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateProber creates the lscpu backed capability probe.
func (f *DefaultFactory) CreateProber() Prober {
	return cpu.NewCollector(cpu.WithExecutor(f.Executor), cpu.WithSysfsRoot(f.SysfsRoot))
}

// CreateSampler creates the ipmitool backed telemetry sampler.
func (f *DefaultFactory) CreateSampler() Sampler {
	return ipmi.NewCollector(ipmi.WithExecutor(f.Executor), ipmi.WithSysfsRoot(f.SysfsRoot))
}

// CreateServiceCollector creates the systemd unit state collector.
func (f *DefaultFactory) CreateServiceCollector() ServiceCollector {
	return &systemd.Collector{Services: f.Services}
}
