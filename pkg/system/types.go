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

package system

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// SystemInfo is the CPU capability descriptor of a machine.
type SystemInfo struct {
	CPU            string    `json:"cpu" yaml:"cpu"`
	Cores          int       `json:"cores" yaml:"cores"`
	ThreadsPerCore int       `json:"threads_per_core" yaml:"threadsPerCore"`
	Frequencies    []float64 `json:"frequencies" yaml:"frequencies"`
}

// NewSystemInfo returns a SystemInfo that owns a copy of frequencies.
func NewSystemInfo(cpu string, cores, threadsPerCore int, frequencies []float64) SystemInfo {
	return SystemInfo{
		CPU:            cpu,
		Cores:          cores,
		ThreadsPerCore: threadsPerCore,
		Frequencies:    slices.Clone(frequencies),
	}
}

// Key returns the canonical serialization used as the fingerprint.
// Equal fields always produce equal keys.
func (s SystemInfo) Key() string {
	freqs := s.Frequencies
	if freqs == nil {
		freqs = []float64{}
	}
	b, err := json.Marshal(struct {
		CPU            string    `json:"cpu"`
		Cores          int       `json:"cores"`
		ThreadsPerCore int       `json:"threads_per_core"`
		Frequencies    []float64 `json:"frequencies"`
	}{s.CPU, s.Cores, s.ThreadsPerCore, freqs})
	if err != nil {
		// only reachable with NaN or Inf frequencies
		return fmt.Sprintf("%s/%d/%d/%v", s.CPU, s.Cores, s.ThreadsPerCore, freqs)
	}
	return string(b)
}

// Equal reports whether s and other are the same fingerprint.
func (s SystemInfo) Equal(other SystemInfo) bool {
	return s.Key() == other.Key()
}

// String implements fmt.Stringer.
func (s SystemInfo) String() string {
	return fmt.Sprintf("%s (cores=%d tpc=%d freqs=%d)", s.CPU, s.Cores, s.ThreadsPerCore, len(s.Frequencies))
}

// ParseSystemInfo decodes a key produced by SystemInfo.Key.
func ParseSystemInfo(key string) (SystemInfo, error) {
	var s SystemInfo
	if err := json.Unmarshal([]byte(key), &s); err != nil {
		return SystemInfo{}, fmt.Errorf("failed to parse system info %q: %w", key, err)
	}
	if s.Frequencies == nil {
		s.Frequencies = []float64{}
	}
	return s, nil
}

// Configuration is a candidate tuning point.
type Configuration struct {
	Cores          int     `json:"cores" yaml:"cores"`
	ThreadsPerCore int     `json:"threads_per_core" yaml:"threadsPerCore"`
	Frequency      float64 `json:"frequency" yaml:"frequency"`
}

// String implements fmt.Stringer.
func (c Configuration) String() string {
	return fmt.Sprintf("cores=%d tpc=%d freq=%s", c.Cores, c.ThreadsPerCore,
		strconv.FormatFloat(c.Frequency, 'f', -1, 64))
}

// CPUFreq is the frequency reading of one logical CPU in kHz, the unit of
// SystemInfo.Frequencies and Configuration.Frequency.
type CPUFreq struct {
	Current float64 `json:"current" yaml:"current"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
}

// SystemSample is one telemetry reading taken while a benchmark runs.
type SystemSample struct {
	Timestamp        time.Time `json:"timestamp" yaml:"timestamp"`
	CurrentPowerDraw float64   `json:"current_power_draw" yaml:"currentPowerDraw"`
	CPUPower         float64   `json:"cpu_power" yaml:"cpuPower"`
	CPUTemp          float64   `json:"cpu_temp" yaml:"cpuTemp"`
	CPUFreq          []CPUFreq `json:"cpu_freq" yaml:"cpuFreq"`
}
