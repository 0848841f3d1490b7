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

// Package api wires the chronusd HTTP API.
//
// Serve opens the SQLite repository and the read-only local settings, then
// registers the handlers below with pkg/server, which adds middleware,
// health probes, metrics and graceful shutdown.
//
// # Endpoints
//
//	GET /v1/systems                 known machine fingerprints, index is the system id
//	GET /v1/models                  recorded models
//	GET /v1/runs?benchmark_id=N     stored runs, optionally of one benchmark
//	GET /v1/runs/best?limit=N       runs ranked by flop per joule (default 15)
//	GET /v1/recommendation          configuration suggested by the loaded model
//
// Responses are chronus documents carrying kind, apiVersion and metadata.
// Errors use the pkg/server envelope; a missing loaded model is 404, a probe
// or model timeout is 504.
//
// The document types (SystemList, ModelList, RunList, EfficiencyList,
// Recommendation) are shared with the CLI and render as tables through
// pkg/serializer.
package api
