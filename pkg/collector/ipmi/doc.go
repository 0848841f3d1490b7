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

// Package ipmi samples machine telemetry while a benchmark runs.
//
// Power and temperature come from the BMC through ipmitool:
//
//	ipmitool sensor reading Total_Power CPU_Temp CPU_Power
//
// Per-CPU clock speeds come from the cpufreq attributes in sysfs and are
// reported in MHz. A missing sensor or an unreadable reading fails the
// sample; telemetry is never fabricated.
package ipmi
