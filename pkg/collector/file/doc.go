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

// Package file parses the line oriented text the collectors consume: sysfs
// attribute files and the output of tools such as lscpu and ipmitool.
//
// A Parser splits content into trimmed, non-empty lines and optionally into
// key/value pairs:
//
//	p := file.NewParser(file.WithKVDelimiter(":"))
//	fields := p.ParseMap(string(lscpuOutput))
//	name := fields["Model name"]
//
// Sysfs attributes usually hold a single number or a space separated list:
//
//	khz, err := file.NewParser().GetFloat("/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq")
//	freqs, err := file.NewParser().GetFloats(".../scaling_available_frequencies")
//
// Files larger than the configured maximum (1MB by default) or that are not
// valid UTF-8 are rejected.
package file
