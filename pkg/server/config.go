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
	"time"

	"golang.org/x/time/rate"

	"github.com/AndersSpringborg/chronus/pkg/defaults"
)

// Config holds server configuration
type Config struct {
	// Server identity
	Name    string
	Version string

	// Routes served behind the middleware chain.
	Routes []Route

	Address string
	Port    int

	// Server-wide token bucket shared by routes without their own limit.
	RateLimit      rate.Limit
	RateLimitBurst int

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// NewConfig returns the chronusd defaults.
func NewConfig() *Config {
	return &Config{
		Name:              "chronusd",
		Version:           "undefined",
		Port:              defaults.ServerPort,
		RateLimit:         defaults.ServerRateLimit,
		RateLimitBurst:    defaults.ServerRateLimitBurst,
		ReadTimeout:       defaults.ServerReadTimeout,
		ReadHeaderTimeout: defaults.ServerReadHeaderTimeout,
		WriteTimeout:      defaults.ServerWriteTimeout,
		IdleTimeout:       defaults.ServerIdleTimeout,
		ShutdownTimeout:   defaults.ServerShutdownTimeout,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithConfig replaces the whole server configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithName sets the server name reported in logs and on /.
func WithName(name string) Option {
	return func(s *Server) {
		s.config.Name = name
	}
}

// WithVersion sets the server version reported in logs and on /.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.config.Version = version
	}
}

// WithRoutes adds routes. A later route with the same pattern replaces an
// earlier one.
func WithRoutes(routes ...Route) Option {
	return func(s *Server) {
		for _, rt := range routes {
			s.config.Routes = upsertRoute(s.config.Routes, rt)
		}
	}
}

// WithAddress sets the listen address. Empty means all interfaces.
func WithAddress(addr string) Option {
	return func(s *Server) {
		s.config.Address = addr
	}
}

// WithPort sets the listen port. Non-positive values are ignored.
func WithPort(port int) Option {
	return func(s *Server) {
		if port > 0 {
			s.config.Port = port
		}
	}
}

// WithRateLimit sets the server-wide token bucket.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Server) {
		if limit > 0 && burst > 0 {
			s.config.RateLimit = limit
			s.config.RateLimitBurst = burst
		}
	}
}

func upsertRoute(routes []Route, rt Route) []Route {
	for i := range routes {
		if routes[i].Pattern == rt.Pattern {
			routes[i] = rt
			return routes
		}
	}
	return append(routes, rt)
}
