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

package repository

import (
	"context"
	"time"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/model"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// Repository is the persistence contract for sweeps and models.
type Repository interface {
	// SaveBenchmark stores b and any runs already attached to it, and sets b.ID.
	SaveBenchmark(ctx context.Context, b *benchmark.Benchmark) (int64, error)
	// SaveRun stores r and its samples. r must carry a BenchmarkID.
	SaveRun(ctx context.Context, r *benchmark.Run) error
	// GetAllRuns returns every run, or only those of benchmarkID when set.
	GetAllRuns(ctx context.Context, benchmarkID *int64) ([]*benchmark.Run, error)
	// GetAllRunsFromSystem returns the runs of every benchmark taken on info.
	GetAllRunsFromSystem(ctx context.Context, info system.SystemInfo) ([]*benchmark.Run, error)
	// GetAllSystemInfo returns the distinct fingerprints seen, oldest first.
	GetAllSystemInfo(ctx context.Context) ([]system.SystemInfo, error)
	// SaveModel stores m and sets m.ID.
	SaveModel(ctx context.Context, m *model.Model) (int64, error)
	// GetModel returns the model with id or a NOT_FOUND error.
	GetModel(ctx context.Context, id int64) (*model.Model, error)
	// GetAllModels returns every stored model.
	GetAllModels(ctx context.Context) ([]*model.Model, error)
}

// RunEfficiency ranks a stored run by floating point operations per joule.
type RunEfficiency struct {
	RunID          int64      `json:"run_id" yaml:"runId"`
	Cores          int        `json:"cores" yaml:"cores"`
	ThreadsPerCore int        `json:"threads_per_core" yaml:"threadsPerCore"`
	Frequency      float64    `json:"frequency" yaml:"frequency"`
	StartTime      time.Time  `json:"start_time" yaml:"startTime"`
	EndTime        *time.Time `json:"end_time,omitempty" yaml:"endTime,omitempty"`
	Efficiency     float64    `json:"efficiency" yaml:"efficiency"`
}

// BenchmarkSummary is a stored benchmark with its runs.
type BenchmarkSummary struct {
	ID          int64              `json:"id" yaml:"id"`
	SystemInfo  system.SystemInfo  `json:"system_info" yaml:"systemInfo"`
	Application string             `json:"application" yaml:"application"`
	CreatedAt   time.Time          `json:"created_at" yaml:"createdAt"`
	Runs        []benchmark.Record `json:"runs" yaml:"runs"`
}
