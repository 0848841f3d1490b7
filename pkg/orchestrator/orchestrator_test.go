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

package orchestrator

import (
	"context"
	"fmt"
	"testing"
	"time"

	testclock "k8s.io/utils/clock/testing"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

type fakeRunner struct {
	polls int

	// failures keyed by the 1-based job number
	runErr  map[int]error
	pollErr map[int]error

	prepareErr error
	cleanupErr error

	prepared int
	started  int
	cleaned  int
	left     int
	configs  []system.Configuration
}

func (f *fakeRunner) Prepare(context.Context) error {
	if f.prepareErr != nil {
		return f.prepareErr
	}
	f.prepared++
	return nil
}

func (f *fakeRunner) Run(_ context.Context, cores int, frequency float64, tpc int) error {
	f.started++
	f.configs = append(f.configs, system.Configuration{Cores: cores, ThreadsPerCore: tpc, Frequency: frequency})
	f.left = f.polls
	return f.runErr[f.started]
}

func (f *fakeRunner) IsRunning(context.Context) (bool, error) {
	if f.left == 0 {
		return false, nil
	}
	f.left--
	if err := f.pollErr[f.started]; err != nil && f.left == 0 {
		return false, err
	}
	return true, nil
}

func (f *fakeRunner) Gflops(context.Context) (float64, error) {
	return 30.0, nil
}

func (f *fakeRunner) Result(context.Context) (float64, error) {
	return 1.5e9, nil
}

func (f *fakeRunner) Cleanup(context.Context) error {
	f.cleaned++
	return f.cleanupErr
}

type fakeSampler struct {
	clock *testclock.FakeClock
	power float64
	err   error
	hook  func()
	count int
}

func (f *fakeSampler) Sample(context.Context) (system.SystemSample, error) {
	if f.err != nil {
		return system.SystemSample{}, f.err
	}
	f.count++
	if f.hook != nil {
		f.hook()
	}
	return system.SystemSample{Timestamp: f.clock.Now(), CurrentPowerDraw: f.power}, nil
}

type fakeProbe struct {
	info system.SystemInfo
}

func (f fakeProbe) GetCPUInfo(context.Context) (system.SystemInfo, error) {
	return f.info, nil
}

type memStore struct {
	benchmarks []*benchmark.Benchmark
	runs       []*benchmark.Run
	runErr     error
}

func (m *memStore) SaveBenchmark(_ context.Context, b *benchmark.Benchmark) (int64, error) {
	m.benchmarks = append(m.benchmarks, b)
	return int64(len(m.benchmarks)), nil
}

func (m *memStore) SaveRun(_ context.Context, r *benchmark.Run) error {
	if m.runErr != nil {
		return m.runErr
	}
	if r.BenchmarkID == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "run has no benchmark")
	}
	r.ID = int64(len(m.runs) + 1)
	m.runs = append(m.runs, r)
	return nil
}

type harness struct {
	clock   *testclock.FakeClock
	runner  *fakeRunner
	sampler *fakeSampler
	store   *memStore
	orch    *Orchestrator
}

func newHarness(t *testing.T, info system.SystemInfo, polls int) *harness {
	t.Helper()
	clk := testclock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	h := &harness{
		clock:   clk,
		runner:  &fakeRunner{polls: polls},
		sampler: &fakeSampler{clock: clk, power: 100},
		store:   &memStore{},
	}
	o, err := New(
		WithRunner(h.runner),
		WithSampler(h.sampler),
		WithProbe(fakeProbe{info: info}),
		WithStore(h.store),
		WithClock(clk),
		WithInterval(time.Second),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.orch = o
	return h
}

func twoConfigs() system.SystemInfo {
	return system.NewSystemInfo("Test CPU", 2, 1, []float64{1.0})
}

func TestSweep(t *testing.T) {
	h := newHarness(t, twoConfigs(), 3)

	summary, err := h.orch.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	want := Summary{BenchmarkID: 1, Configurations: 2, Completed: 2}
	if *summary != want {
		t.Errorf("summary = %+v, want %+v", *summary, want)
	}
	if h.runner.prepared != 2 || h.runner.cleaned != 2 {
		t.Errorf("prepare/cleanup = %d/%d, want 2/2", h.runner.prepared, h.runner.cleaned)
	}
	if len(h.store.runs) != 2 {
		t.Fatalf("stored %d runs, want 2", len(h.store.runs))
	}
	if len(h.store.benchmarks) != 1 || h.store.benchmarks[0].Application != DefaultApplication {
		t.Errorf("unexpected benchmarks: %+v", h.store.benchmarks)
	}

	for i, r := range h.store.runs {
		if r.Cores != i+1 {
			t.Errorf("run %d cores = %d, want %d", i, r.Cores, i+1)
		}
		if *r.BenchmarkID != 1 || r.CPU != "Test CPU" {
			t.Errorf("run %d not stamped: benchmark=%d cpu=%q", i, *r.BenchmarkID, r.CPU)
		}
		// three polls plus the final sample, one second apart
		if len(r.Samples) != 4 {
			t.Errorf("run %d samples = %d, want 4", i, len(r.Samples))
		}
		if got := r.EnergyUsedJoules(); got != 300 {
			t.Errorf("run %d energy = %v, want 300", i, got)
		}
		if got := r.GflopsPerWatt(); got != 0.3 {
			t.Errorf("run %d gflops per watt = %v, want 0.3", i, got)
		}
		if r.Flop != 1.5e9 || !r.Finished() {
			t.Errorf("run %d flop = %v finished = %v", i, r.Flop, r.Finished())
		}
		if r.Duration() != 3*time.Second {
			t.Errorf("run %d duration = %v, want 3s", i, r.Duration())
		}
	}
}

func TestSweepJobFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *fakeRunner)
	}{
		{
			name:  "run rejected",
			setup: func(r *fakeRunner) { r.runErr = map[int]error{1: errors.New(errors.ErrCodeJobFailed, "sbatch rejected")} },
		},
		{
			name:  "job failed while polling",
			setup: func(r *fakeRunner) { r.pollErr = map[int]error{1: errors.New(errors.ErrCodeJobFailed, "state FAILED")} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, twoConfigs(), 2)
			tt.setup(h.runner)

			summary, err := h.orch.Sweep(context.Background())
			if err != nil {
				t.Fatalf("Sweep: %v", err)
			}
			if summary.Completed != 1 || summary.Failed != 1 {
				t.Errorf("summary = %+v, want 1 completed 1 failed", *summary)
			}
			if h.runner.cleaned != 2 {
				t.Errorf("cleanup calls = %d, want 2", h.runner.cleaned)
			}
			if len(h.store.runs) != 1 || h.store.runs[0].Cores != 2 {
				t.Errorf("stored runs = %d, want the 2 core run only", len(h.store.runs))
			}
		})
	}
}

func TestSweepFatalErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(h *harness)
		code     errors.ErrorCode
		cleanups int
	}{
		{
			name:     "prepare",
			setup:    func(h *harness) { h.runner.prepareErr = fmt.Errorf("output directory already exists") },
			code:     errors.ErrCodePreparationFailed,
			cleanups: 0,
		},
		{
			name: "telemetry",
			setup: func(h *harness) {
				h.sampler.err = errors.New(errors.ErrCodeTelemetryUnavailable, "ipmitool failed")
			},
			code:     errors.ErrCodeTelemetryUnavailable,
			cleanups: 1,
		},
		{
			name:     "storage",
			setup:    func(h *harness) { h.store.runErr = errors.New(errors.ErrCodeInternal, "disk full") },
			code:     errors.ErrCodeInternal,
			cleanups: 1,
		},
		{
			name:     "cleanup",
			setup:    func(h *harness) { h.runner.cleanupErr = errors.New(errors.ErrCodeInternal, "busy") },
			code:     errors.ErrCodeInternal,
			cleanups: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, twoConfigs(), 1)
			tt.setup(h)

			summary, err := h.orch.Sweep(context.Background())
			if !errors.IsCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
			if summary.Completed != 0 {
				t.Errorf("completed = %d, want 0", summary.Completed)
			}
			if h.runner.cleaned != tt.cleanups {
				t.Errorf("cleanup calls = %d, want %d", h.runner.cleaned, tt.cleanups)
			}
		})
	}
}

func TestSweepCancelled(t *testing.T) {
	h := newHarness(t, twoConfigs(), 5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.sampler.hook = cancel

	_, err := h.orch.Sweep(ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(h.store.runs) != 0 {
		t.Errorf("interrupted run was stored")
	}
	if h.runner.cleaned != 1 {
		t.Errorf("cleanup calls = %d, want 1", h.runner.cleaned)
	}
	if h.sampler.count != 1 {
		t.Errorf("samples = %d, want 1", h.sampler.count)
	}
}

func TestRunOne(t *testing.T) {
	h := newHarness(t, twoConfigs(), 0)
	ctx := context.Background()

	b, err := h.orch.NewBenchmark(ctx, twoConfigs())
	if err != nil {
		t.Fatalf("NewBenchmark: %v", err)
	}

	cfg := system.Configuration{Cores: 2, ThreadsPerCore: 1, Frequency: 1.0}
	run, err := h.orch.RunOne(ctx, b, cfg)
	if err != nil {
		t.Fatalf("RunOne: %v", err)
	}
	if run.Configuration() != cfg {
		t.Errorf("configuration = %v, want %v", run.Configuration(), cfg)
	}
	// a job that finishes immediately still gets its final sample
	if len(run.Samples) != 1 {
		t.Errorf("samples = %d, want 1", len(run.Samples))
	}
	if len(b.Runs) != 1 || b.Runs[0] != run {
		t.Errorf("run not attached to benchmark")
	}
	if h.runner.configs[0] != cfg {
		t.Errorf("runner started with %v", h.runner.configs[0])
	}
}

func TestNew(t *testing.T) {
	r := &fakeRunner{}
	s := &fakeSampler{}
	st := &memStore{}

	tests := []struct {
		name string
		opts []Option
	}{
		{"no runner", []Option{WithSampler(s), WithStore(st)}},
		{"no sampler", []Option{WithRunner(r), WithStore(st)}},
		{"no store", []Option{WithRunner(r), WithSampler(s)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts...); !errors.IsCode(err, errors.ErrCodeInvalidRequest) {
				t.Errorf("expected INVALID_REQUEST, got %v", err)
			}
		})
	}

	o, err := New(WithRunner(r), WithSampler(s), WithStore(st), WithInterval(0), WithApplication(""))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if o.interval != time.Second || o.application != DefaultApplication {
		t.Errorf("defaults not kept: interval=%v application=%q", o.interval, o.application)
	}
	if _, err := o.Sweep(context.Background()); !errors.IsCode(err, errors.ErrCodeInvalidRequest) {
		t.Errorf("sweep without probe: expected INVALID_REQUEST, got %v", err)
	}
}
