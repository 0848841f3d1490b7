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

// Package system describes the machine under test: its CPU capabilities
// (SystemInfo), the tuning points that can be applied to it (Configuration)
// and the telemetry read from it while a benchmark runs (SystemSample).
//
// SystemInfo doubles as a fingerprint. Two values with identical fields
// produce the same Key, and historical runs and trained models are grouped
// by that key.
//
// Space enumerates every Configuration to test for a SystemInfo:
//
//	for _, cfg := range system.Space(info) {
//	    fmt.Println(cfg)
//	}
package system
