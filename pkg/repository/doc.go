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

// Package repository persists benchmarks, runs, telemetry samples and trained
// model records.
//
// The Repository interface is the storage contract used by the sweep and the
// model lifecycle. SQLite is the default backend:
//
//	repo, err := repository.Open(ctx, "chronus.db")
//	if err != nil {
//	    return err
//	}
//	defer repo.Close()
//
// # Schema
//
//	benchmarks(id, system_info, application, created_at)
//	runs(id, benchmark_id, cpu, cores, thread_per_core, frequency, gflops, flop,
//	     energy_used, gflops_per_watt, start_time, end_time)
//	system_samples(id, run_id, timestamp, current_power_draw, cpu_power, cpu_temp, cpu_freq)
//	models(id, name, system_info, path_to_model, type, created_at)
//
// system_info holds the canonical SystemInfo key, so filtering runs by system
// is an exact string match. Tables are created on open, then migrations run in
// order. A migration that was already applied (duplicate column) is logged at
// info level and skipped.
//
// Runs can also be exported as CSV with ExportCSV.
package repository
