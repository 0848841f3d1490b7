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

// Package benchmark holds the measurement records produced by a sweep.
//
// A Run is one execution of the benchmark application under one
// system.Configuration. It owns its telemetry samples and derives two
// figures from them:
//
//   - EnergyUsedJoules: trapezoidal integral of power draw over time,
//     zero with fewer than two samples.
//   - GflopsPerWatt: Gflops divided by the mean sampled power draw, where
//     the mean is 1.0 when no samples were taken.
//
// Both are cached once the run is finished. A Benchmark groups the runs of
// one sweep under the SystemInfo fingerprint of the machine, and AddRun
// stamps each run with the benchmark id so it can be persisted.
package benchmark
