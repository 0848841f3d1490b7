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

package server

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Route is an endpoint served behind the middleware chain.
type Route struct {
	// Pattern is the ServeMux pattern and the metrics route label.
	Pattern string

	Handler http.HandlerFunc

	// Timeout bounds the request context. Zero leaves it unbounded apart
	// from the server write timeout.
	Timeout time.Duration

	// Limit gives the route its own token bucket of Burst tokens. Zero
	// shares the server-wide limiter.
	Limit rate.Limit
	Burst int
}

// limiter returns the token bucket guarding rt.
func (s *Server) limiter(rt Route) *rate.Limiter {
	if rt.Limit <= 0 {
		return s.rateLimiter
	}
	burst := rt.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rt.Limit, burst)
}
