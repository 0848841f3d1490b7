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

// Package orchestrator drives a benchmark sweep across the configuration
// space of the local machine.
//
// A sweep probes the CPU, persists a Benchmark, then executes every
// configuration from system.Space strictly one after another so each power
// measurement is taken on an otherwise idle node:
//
//	o, err := orchestrator.New(
//	    orchestrator.WithRunner(r),
//	    orchestrator.WithSampler(factory.CreateSampler()),
//	    orchestrator.WithProbe(factory.CreateProber()),
//	    orchestrator.WithStore(repo),
//	)
//	summary, err := o.Sweep(ctx)
//
// For each configuration the runner is prepared, started and polled. While
// the job runs a telemetry sample is taken every Interval, and one final
// sample is taken after it stops. The finished Run is stored with its
// samples.
//
// Failure handling:
//
//   - JOB_FAILED errors are logged with the configuration and the sweep moves
//     on. The failed Run is not stored.
//   - A failing Prepare aborts the sweep with PREPARATION_FAILED.
//   - Telemetry, storage and all other errors abort the sweep.
//   - Cleanup runs exactly once for every configuration whose Prepare
//     succeeded.
//
// A cancelled context stops the sweep between samples. The interrupted Run
// is not stored.
package orchestrator
