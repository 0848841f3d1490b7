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

package benchmark

import (
	"time"

	"github.com/montanaflynn/stats"
	"k8s.io/utils/clock"
	"k8s.io/utils/ptr"

	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// Run is one measured execution of the benchmark under one configuration.
type Run struct {
	ID             int64
	CPU            string
	Cores          int
	ThreadsPerCore int
	Frequency      float64
	Gflops         float64
	Flop           float64
	Samples        []system.SystemSample
	StartTime      time.Time
	EndTime        *time.Time
	BenchmarkID    *int64

	clock  clock.PassiveClock
	energy *float64
	gpw    *float64
}

// RunOption configures a Run.
type RunOption func(*Run)

// WithClock sets the clock used for the start and end timestamps.
func WithClock(c clock.PassiveClock) RunOption {
	return func(r *Run) {
		r.clock = c
	}
}

// WithBenchmarkID attaches the run to a persisted benchmark.
func WithBenchmarkID(id int64) RunOption {
	return func(r *Run) {
		r.BenchmarkID = ptr.To(id)
	}
}

// NewRun creates a run for cfg on cpu, stamping StartTime.
func NewRun(cpu string, cfg system.Configuration, opts ...RunOption) *Run {
	r := &Run{
		CPU:            cpu,
		Cores:          cfg.Cores,
		ThreadsPerCore: cfg.ThreadsPerCore,
		Frequency:      cfg.Frequency,
		Samples:        make([]system.SystemSample, 0),
		clock:          clock.RealClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.StartTime = r.clock.Now()
	return r
}

// Restore rebuilds a finished run from storage with its persisted derived
// values, so they are not recomputed from samples.
func Restore(r *Run, energyUsed, gflopsPerWatt float64) *Run {
	if r.clock == nil {
		r.clock = clock.RealClock{}
	}
	r.energy = ptr.To(energyUsed)
	r.gpw = ptr.To(gflopsPerWatt)
	return r
}

// Configuration returns the tuning point the run was executed with.
func (r *Run) Configuration() system.Configuration {
	return system.Configuration{
		Cores:          r.Cores,
		ThreadsPerCore: r.ThreadsPerCore,
		Frequency:      r.Frequency,
	}
}

// Finished reports whether Finish has been called.
func (r *Run) Finished() bool {
	return r.EndTime != nil
}

// AddSample appends a telemetry sample. Samples must arrive in strictly
// increasing timestamp order and only before the run is finished.
func (r *Run) AddSample(s system.SystemSample) error {
	if r.Finished() {
		return errors.New(errors.ErrCodeInvalidRequest, "cannot add sample to a finished run")
	}
	if n := len(r.Samples); n > 0 && !s.Timestamp.After(r.Samples[n-1].Timestamp) {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "sample timestamps must be strictly increasing",
			map[string]any{
				"previous": r.Samples[n-1].Timestamp,
				"current":  s.Timestamp,
			})
	}
	r.Samples = append(r.Samples, s)
	return nil
}

// Finish sets EndTime. It may only be called once.
func (r *Run) Finish() error {
	if r.Finished() {
		return errors.New(errors.ErrCodeInvalidRequest, "run already finished")
	}
	if r.clock == nil {
		r.clock = clock.RealClock{}
	}
	r.EndTime = ptr.To(r.clock.Now())
	return nil
}

// Duration is the wall clock time between start and finish, or zero while
// the run is still in progress.
func (r *Run) Duration() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// EnergyUsedJoules integrates power draw over the samples with the
// trapezoidal rule.
func (r *Run) EnergyUsedJoules() float64 {
	if r.energy != nil {
		return *r.energy
	}
	v := trapezoid(r.Samples)
	if r.Finished() {
		r.energy = ptr.To(v)
	}
	return v
}

// GflopsPerWatt divides Gflops by the mean sampled power draw.
func (r *Run) GflopsPerWatt() float64 {
	if r.gpw != nil {
		return *r.gpw
	}
	v := r.Gflops / averagePowerDraw(r.Samples)
	if r.Finished() {
		r.gpw = ptr.To(v)
	}
	return v
}

func trapezoid(samples []system.SystemSample) float64 {
	if len(samples) < 2 {
		return 0
	}
	var energy float64
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Timestamp.Sub(samples[i-1].Timestamp).Seconds()
		energy += (samples[i].CurrentPowerDraw + samples[i-1].CurrentPowerDraw) / 2 * dt
	}
	return energy
}

func averagePowerDraw(samples []system.SystemSample) float64 {
	if len(samples) == 0 {
		return 1.0
	}
	draws := make(stats.Float64Data, len(samples))
	for i, s := range samples {
		draws[i] = s.CurrentPowerDraw
	}
	mean, err := stats.Mean(draws)
	if err != nil {
		return 1.0
	}
	return mean
}
