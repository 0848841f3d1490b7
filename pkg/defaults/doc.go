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

// Package defaults provides centralized configuration constants for chronus.
//
// Timeouts, intervals and filesystem locations used across the codebase are
// defined here so the CLI, the daemon and the tests agree on them.
//
// # Categories
//
//   - Sweep: telemetry sampling interval and external command timeouts
//   - Storage: database, settings and model artifact locations
//   - Server: HTTP server timeouts
//   - HTTP client: outbound registry requests
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CommandTimeout)
//	defer cancel()
package defaults
