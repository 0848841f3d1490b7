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

package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronus_sweep_runs_total",
			Help: "Total number of benchmark runs by outcome",
		},
		[]string{"status"}, // completed, failed or error
	)

	sweepRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chronus_sweep_run_duration_seconds",
			Help:    "Wall clock duration of completed benchmark runs",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 1800},
		},
	)

	sweepEnergy = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chronus_sweep_energy_joules",
			Help:    "Energy used by completed benchmark runs",
			Buckets: prometheus.ExponentialBuckets(1000, 4, 8),
		},
	)

	sweepSamplesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronus_sweep_samples_total",
			Help: "Total number of telemetry samples taken during sweeps",
		},
	)
)
