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

package optimizer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronus_optimizer_fit_duration_seconds",
			Help:    "Time taken to train an optimizer",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"optimizer"},
	)

	fitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronus_optimizer_fit_total",
			Help: "Total number of optimizer training attempts",
		},
		[]string{"optimizer", "status"}, // success or error
	)
)
