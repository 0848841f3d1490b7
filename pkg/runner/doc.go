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

// Package runner launches the compute benchmark under a given configuration
// and reports its result.
//
// A Runner is driven through a fixed lifecycle by the sweep:
//
//	r, err := runner.New(runner.NameHPCG, runner.Options{
//	    HPCGPath: "/opt/hpcg/bin/xhpcg",
//	    WorkDir:  "/scratch",
//	})
//	if err := r.Prepare(ctx); err != nil { ... }
//	defer r.Cleanup(ctx)
//	if err := r.Run(ctx, 16, 2200000, 1); err != nil { ... }
//	for running, err := r.IsRunning(ctx); running; running, err = r.IsRunning(ctx) { ... }
//	gflops, err := r.Gflops(ctx)
//
// Two runners are registered:
//
//   - hpcg: submits HPCG as a slurm batch job through sbatch and polls its
//     state with scontrol.
//   - systemd: starts HPCG through mpirun as a transient systemd unit pinned
//     to the selected CPUs, after setting the clock with cpupower.
//
// Both write into <WorkDir>/hpcg_benchmark_output and parse the
// HPCG-Benchmark_*.txt report HPCG leaves there. A job that fails, or that
// finishes without a report, is returned as a JOB_FAILED error so the sweep
// can skip the configuration and continue.
//
// Frequencies are in kHz, as listed in scaling_available_frequencies.
package runner
