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

// Package collector gathers facts about the machine a benchmark runs on.
//
// Two capabilities are consumed by the rest of chronus:
//
//	type Prober interface {
//	    GetCPUInfo(ctx context.Context) (system.SystemInfo, error)
//	}
//
//	type Sampler interface {
//	    Sample(ctx context.Context) (system.SystemSample, error)
//	}
//
// The DefaultFactory builds the production implementations:
//
//	factory := collector.NewDefaultFactory()
//	probe := factory.CreateProber()     // lscpu + sysfs
//	sampler := factory.CreateSampler()  // ipmitool + sysfs
//
// # Subpackages
//
//   - collector/cpu - CPU capability probe
//   - collector/ipmi - power, temperature and clock telemetry
//   - collector/systemd - state of the services a benchmark depends on
//   - collector/file - line and key/value parsing of sysfs files and tool output
//
// # Error Handling
//
// Collectors fail with TELEMETRY_UNAVAILABLE when a tool is missing or
// returns unusable output. They never substitute made up values.
package collector
