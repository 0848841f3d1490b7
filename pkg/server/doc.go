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

// Package server provides the HTTP server used by chronusd.
//
// Callers register Routes; the server wraps each in a fixed middleware chain
// and adds system endpoints that bypass it:
//
//	GET /health   liveness, always 200
//	GET /ready    readiness, 503 until the listener is up
//	GET /metrics  Prometheus exposition
//	GET /         server name, version and registered routes
//
// # Usage
//
//	s := server.New(
//	    server.WithName("chronusd"),
//	    server.WithVersion(version),
//	    server.WithPort(8080),
//	    server.WithRoutes(
//	        server.Route{Pattern: "/v1/runs", Handler: h.HandleRuns},
//	        server.Route{Pattern: "/v1/recommendation", Handler: h.HandleRecommendation,
//	            Timeout: 20 * time.Second, Limit: 2, Burst: 4},
//	    ),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// Run blocks until SIGINT, SIGTERM or ctx cancellation and then drains
// in-flight requests within Config.ShutdownTimeout.
//
// # Middleware
//
// Outermost first: instrumentation, request ID, panic recovery, the route
// token bucket and the route deadline. Routes without a Limit share the
// server-wide bucket. A route with a Timeout runs with that deadline on its
// request context; if the handler returns without writing, the client gets
// 504 TIMEOUT.
//
// Request IDs are taken from X-Request-Id when it holds a UUID and generated
// otherwise; the value is echoed in the response header and in every error
// body.
//
// # Errors
//
// Every error is returned as:
//
//	{
//	  "code": "NOT_FOUND",
//	  "message": "no model loaded, run load-model first",
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2026-01-02T12:00:00Z",
//	  "retryable": false
//	}
//
// WriteErrorFromErr derives the status and code from a pkg/errors
// StructuredError; HTTPStatusFromCode documents the mapping.
//
// # Metrics
//
// Labels carry the route pattern, never the raw path.
//
//	chronus_http_requests_total{route,method,status,code}
//	chronus_http_request_duration_seconds{route}
//	chronus_http_requests_in_flight
//	chronus_http_rate_limit_rejects_total{route}
//	chronus_http_request_timeouts_total{route}
//	chronus_http_panic_recoveries_total{route}
package server
