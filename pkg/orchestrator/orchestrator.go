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
	stderrors "errors"
	"log/slog"
	"time"

	"k8s.io/utils/clock"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/defaults"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/runner"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// DefaultApplication is recorded on benchmarks when none is set.
const DefaultApplication = "HPCG"

// Prober reports the capabilities of the local CPU.
type Prober interface {
	GetCPUInfo(ctx context.Context) (system.SystemInfo, error)
}

// Sampler takes one telemetry reading.
type Sampler interface {
	Sample(ctx context.Context) (system.SystemSample, error)
}

// Store persists benchmarks and their runs.
type Store interface {
	SaveBenchmark(ctx context.Context, b *benchmark.Benchmark) (int64, error)
	SaveRun(ctx context.Context, r *benchmark.Run) error
}

// Summary is the outcome of a sweep.
type Summary struct {
	BenchmarkID    int64 `json:"benchmark_id" yaml:"benchmarkId"`
	Configurations int   `json:"configurations" yaml:"configurations"`
	Completed      int   `json:"completed" yaml:"completed"`
	Failed         int   `json:"failed" yaml:"failed"`
}

// Orchestrator executes benchmark runs.
type Orchestrator struct {
	runner      runner.Runner
	sampler     Sampler
	probe       Prober
	store       Store
	clock       clock.Clock
	interval    time.Duration
	application string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRunner sets the benchmark runner.
func WithRunner(r runner.Runner) Option {
	return func(o *Orchestrator) {
		o.runner = r
	}
}

// WithSampler sets the telemetry source.
func WithSampler(s Sampler) Option {
	return func(o *Orchestrator) {
		o.sampler = s
	}
}

// WithProbe sets the CPU capability probe.
func WithProbe(p Prober) Option {
	return func(o *Orchestrator) {
		o.probe = p
	}
}

// WithStore sets where benchmarks and runs are persisted.
func WithStore(s Store) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithClock replaces the clock used for run timestamps and sleeping.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// WithInterval sets the pause between telemetry samples.
func WithInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithApplication sets the application name recorded on benchmarks.
func WithApplication(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.application = name
		}
	}
}

// New returns an orchestrator. Runner, sampler and store are required;
// the probe is only required by Sweep.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		clock:       clock.RealClock{},
		interval:    defaults.SampleInterval,
		application: DefaultApplication,
	}
	for _, opt := range opts {
		opt(o)
	}

	switch {
	case o.runner == nil:
		return nil, errors.New(errors.ErrCodeInvalidRequest, "runner is required")
	case o.sampler == nil:
		return nil, errors.New(errors.ErrCodeInvalidRequest, "sampler is required")
	case o.store == nil:
		return nil, errors.New(errors.ErrCodeInvalidRequest, "store is required")
	}
	return o, nil
}

// Sweep benchmarks every configuration of the local machine.
func (o *Orchestrator) Sweep(ctx context.Context) (*Summary, error) {
	if o.probe == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "probe is required")
	}

	info, err := o.probe.GetCPUInfo(ctx)
	if err != nil {
		return nil, err
	}

	b, err := o.NewBenchmark(ctx, info)
	if err != nil {
		return nil, err
	}

	configs := system.Space(info)
	summary := &Summary{BenchmarkID: b.ID, Configurations: len(configs)}
	slog.Info("starting sweep",
		"benchmark", b.ID,
		"cpu", info.CPU,
		"configurations", len(configs))

	for i, cfg := range configs {
		if err := ctx.Err(); err != nil {
			return summary, interrupted(err)
		}

		slog.Info("starting configuration",
			"index", i+1,
			"of", len(configs),
			"cores", cfg.Cores,
			"threads_per_core", cfg.ThreadsPerCore,
			"frequency", cfg.Frequency)

		if _, err := o.RunOne(ctx, b, cfg); err != nil {
			if errors.IsCode(err, errors.ErrCodeJobFailed) {
				summary.Failed++
				slog.Error("job failed",
					"cores", cfg.Cores,
					"threads_per_core", cfg.ThreadsPerCore,
					"frequency", cfg.Frequency,
					"error", err)
				continue
			}
			return summary, err
		}
		summary.Completed++
	}

	slog.Info("sweep complete",
		"benchmark", b.ID,
		"completed", summary.Completed,
		"failed", summary.Failed)
	return summary, nil
}

// NewBenchmark creates and persists a benchmark for info.
func (o *Orchestrator) NewBenchmark(ctx context.Context, info system.SystemInfo) (*benchmark.Benchmark, error) {
	b := benchmark.New(info, o.application, o.clock.Now())
	id, err := o.store.SaveBenchmark(ctx, b)
	if err != nil {
		return nil, err
	}
	b.ID = id
	return b, nil
}

// RunOne executes a single configuration and stores the finished run on b.
func (o *Orchestrator) RunOne(ctx context.Context, b *benchmark.Benchmark, cfg system.Configuration) (run *benchmark.Run, err error) {
	run = benchmark.NewRun(b.SystemInfo.CPU, cfg,
		benchmark.WithClock(o.clock),
		benchmark.WithBenchmarkID(b.ID))

	if err := o.runner.Prepare(ctx); err != nil {
		sweepRunsTotal.WithLabelValues("error").Inc()
		return nil, errors.WrapWithContext(errors.ErrCodePreparationFailed, "failed to prepare benchmark", err,
			map[string]any{"configuration": cfg.String()})
	}

	defer func() {
		// cleanup must run even after the sweep is cancelled
		if cerr := o.runner.Cleanup(context.WithoutCancel(ctx)); cerr != nil {
			if err == nil {
				run, err = nil, cerr
				return
			}
			slog.Warn("cleanup failed", "configuration", cfg.String(), "error", cerr)
		}
	}()

	if err := o.execute(ctx, run); err != nil {
		status := "error"
		if errors.IsCode(err, errors.ErrCodeJobFailed) {
			status = "failed"
		}
		sweepRunsTotal.WithLabelValues(status).Inc()
		return nil, err
	}

	b.Runs = append(b.Runs, run)
	sweepRunsTotal.WithLabelValues("completed").Inc()
	sweepRunDuration.Observe(run.Duration().Seconds())
	sweepEnergy.Observe(run.EnergyUsedJoules())

	slog.Info("run stored",
		"run", run.ID,
		"configuration", cfg.String(),
		"gflops", run.Gflops,
		"energy_joules", run.EnergyUsedJoules(),
		"gflops_per_watt", run.GflopsPerWatt(),
		"samples", len(run.Samples))
	return run, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *benchmark.Run) error {
	if err := o.runner.Run(ctx, run.Cores, run.Frequency, run.ThreadsPerCore); err != nil {
		return err
	}

	for {
		running, err := o.runner.IsRunning(ctx)
		if err != nil {
			return err
		}
		if !running {
			break
		}
		if err := o.sample(ctx, run); err != nil {
			return err
		}
		o.clock.Sleep(o.interval)
		if err := ctx.Err(); err != nil {
			return interrupted(err)
		}
	}
	if err := o.sample(ctx, run); err != nil {
		return err
	}

	if err := run.Finish(); err != nil {
		return err
	}

	gflops, err := o.runner.Gflops(ctx)
	if err != nil {
		return err
	}
	flop, err := o.runner.Result(ctx)
	if err != nil {
		return err
	}
	run.Gflops = gflops
	run.Flop = flop

	return o.store.SaveRun(ctx, run)
}

func (o *Orchestrator) sample(ctx context.Context, run *benchmark.Run) error {
	s, err := o.sampler.Sample(ctx)
	if err != nil {
		return err
	}
	if err := run.AddSample(s); err != nil {
		return err
	}
	sweepSamplesTotal.Inc()
	return nil
}

func interrupted(err error) error {
	code := errors.ErrCodeInternal
	if stderrors.Is(err, context.DeadlineExceeded) {
		code = errors.ErrCodeTimeout
	}
	return errors.Wrap(code, "sweep interrupted", err)
}
