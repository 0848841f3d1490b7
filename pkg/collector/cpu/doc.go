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

// Package cpu probes the capabilities of the local CPU: model name, cores
// per socket, threads per core and the frequencies the cpufreq governor
// accepts.
//
// The model name and topology come from lscpu. Frequencies come from
// scaling_available_frequencies of cpu0 in sysfs and are reported in kHz,
// sorted ascending.
//
//	info, err := cpu.NewCollector().GetCPUInfo(ctx)
package cpu
