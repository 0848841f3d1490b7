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

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Requests are labeled by route pattern, never by raw path, so unknown URLs
// collapse into the "/" route.
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronus_http_requests_total",
			Help: "HTTP requests by route, status and error code.",
		},
		[]string{"route", "method", "status", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronus_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chronus_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		},
	)

	rateLimitRejects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronus_http_rate_limit_rejects_total",
			Help: "Requests rejected by the route token bucket.",
		},
		[]string{"route"},
	)

	requestTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronus_http_request_timeouts_total",
			Help: "Requests that ran past their route deadline.",
		},
		[]string{"route"},
	)

	panicRecoveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronus_http_panic_recoveries_total",
			Help: "Handler panics recovered by the middleware chain.",
		},
		[]string{"route"},
	)
)
