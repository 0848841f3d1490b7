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

package benchmark

import "time"

// Record is the flat, serializable view of a Run including its derived
// figures. It is what the CLI, the API and the CSV export emit.
type Record struct {
	ID             int64      `json:"id" yaml:"id"`
	BenchmarkID    *int64     `json:"benchmark_id,omitempty" yaml:"benchmarkId,omitempty"`
	CPU            string     `json:"cpu" yaml:"cpu"`
	Cores          int        `json:"cores" yaml:"cores"`
	ThreadsPerCore int        `json:"threads_per_core" yaml:"threadsPerCore"`
	Frequency      float64    `json:"frequency" yaml:"frequency"`
	Gflops         float64    `json:"gflops" yaml:"gflops"`
	Flop           float64    `json:"flop" yaml:"flop"`
	EnergyUsed     float64    `json:"energy_used" yaml:"energyUsed"`
	GflopsPerWatt  float64    `json:"gflops_per_watt" yaml:"gflopsPerWatt"`
	Samples        int        `json:"samples" yaml:"samples"`
	StartTime      time.Time  `json:"start_time" yaml:"startTime"`
	EndTime        *time.Time `json:"end_time,omitempty" yaml:"endTime,omitempty"`
}

// Record returns the serializable view of r.
func (r *Run) Record() Record {
	return Record{
		ID:             r.ID,
		BenchmarkID:    r.BenchmarkID,
		CPU:            r.CPU,
		Cores:          r.Cores,
		ThreadsPerCore: r.ThreadsPerCore,
		Frequency:      r.Frequency,
		Gflops:         r.Gflops,
		Flop:           r.Flop,
		EnergyUsed:     r.EnergyUsedJoules(),
		GflopsPerWatt:  r.GflopsPerWatt(),
		Samples:        len(r.Samples),
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
	}
}

// Records converts runs into their serializable views.
func Records(runs []*Run) []Record {
	res := make([]Record, 0, len(runs))
	for _, r := range runs {
		res = append(res, r.Record())
	}
	return res
}
