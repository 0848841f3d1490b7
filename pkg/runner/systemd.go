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

package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/coreos/go-systemd/v22/dbus"
	godbus "github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/AndersSpringborg/chronus/pkg/command"
	"github.com/AndersSpringborg/chronus/pkg/errors"
)

const (
	unitPrefix = "chronus-hpcg-"
	stdoutFile = "HPCG_BENCHMARK.out"
	stderrFile = "HPCG_BENCHMARK.err"
)

// unitManager is the subset of *dbus.Conn the systemd runner uses.
type unitManager interface {
	StartTransientUnitContext(ctx context.Context, name, mode string, properties []dbus.Property, ch chan<- string) (int, error)
	StopUnitContext(ctx context.Context, name, mode string, ch chan<- string) (int, error)
	ResetFailedUnitContext(ctx context.Context, name string) error
	GetUnitPropertiesContext(ctx context.Context, unit string) (map[string]interface{}, error)
	Close()
}

// Systemd runs HPCG under mpirun as a transient systemd unit restricted to
// the selected CPUs.
type Systemd struct {
	hpcgPath string
	ws       workspace
	exec     command.Executor

	connect  func(ctx context.Context) (unitManager, error)
	lookPath func(file string) (string, error)
	unitName func() string

	conn unitManager
	unit string
}

// NewSystemd creates a systemd runner.
func NewSystemd(opts Options) (*Systemd, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Systemd{
		hpcgPath: opts.HPCGPath,
		ws:       newWorkspace(opts.WorkDir),
		exec:     opts.executor(),
		connect: func(ctx context.Context) (unitManager, error) {
			return dbus.NewSystemdConnectionContext(ctx)
		},
		lookPath: exec.LookPath,
		unitName: func() string { return unitPrefix + uuid.NewString() + ".service" },
	}, nil
}

// Dir returns the output directory.
func (s *Systemd) Dir() string {
	return s.ws.dir
}

// Unit returns the name of the last started unit, or empty.
func (s *Systemd) Unit() string {
	return s.unit
}

// Prepare implements Runner.
func (s *Systemd) Prepare(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodePreparationFailed, "failed to connect to systemd", err)
	}
	if err := s.ws.prepare(); err != nil {
		conn.Close()
		return err
	}
	s.conn = conn
	slog.Info("prepared systemd runner", "dir", s.ws.dir)
	return nil
}

// Run implements Runner. The frequency is applied to all CPUs with cpupower
// before the unit starts.
func (s *Systemd) Run(ctx context.Context, cores int, frequency float64, threadsPerCore int) error {
	if s.conn == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "runner not prepared")
	}

	if _, err := s.exec.Output(ctx, command.Cmd{
		Name: "cpupower",
		Args: []string{"frequency-set", "--freq", formatFrequency(frequency) + "KHz"},
	}); err != nil {
		if errors.IsCode(err, errors.ErrCodeInternal) {
			return errors.Wrap(errors.ErrCodeJobFailed, "failed to set cpu frequency", err)
		}
		return err
	}

	mpirun, err := s.lookPath("mpirun")
	if err != nil {
		return errors.Wrap(errors.ErrCodeServiceUnavailable, "mpirun not found in PATH", err)
	}

	name := s.unitName()
	props := []dbus.Property{
		dbus.PropDescription("chronus HPCG benchmark"),
		dbus.PropExecStart(launchArgs(mpirun, s.hpcgPath, cores, threadsPerCore), true),
		{Name: "WorkingDirectory", Value: godbus.MakeVariant(s.ws.dir)},
		{Name: "StandardOutputFile", Value: godbus.MakeVariant(filepath.Join(s.ws.dir, stdoutFile))},
		{Name: "StandardErrorFile", Value: godbus.MakeVariant(filepath.Join(s.ws.dir, stderrFile))},
		{Name: "AllowedCPUs", Value: godbus.MakeVariant(cpuMask(cores * threadsPerCore))},
	}

	ch := make(chan string, 1)
	if _, err := s.conn.StartTransientUnitContext(ctx, name, "fail", props, ch); err != nil {
		return errors.Wrap(errors.ErrCodeJobFailed, fmt.Sprintf("failed to start unit %s", name), err)
	}
	s.unit = name

	select {
	case <-ctx.Done():
		return errors.Wrap(errors.ErrCodeTimeout, "interrupted while starting unit", ctx.Err())
	case result := <-ch:
		if result != "done" {
			return errors.NewWithContext(errors.ErrCodeJobFailed, "unit start did not complete",
				map[string]any{"unit": name, "result": result})
		}
	}

	slog.Info("unit started", "unit", name, "cores", cores, "frequency", frequency, "threads_per_core", threadsPerCore)
	return nil
}

// IsRunning implements Runner. A failed unit is a JOB_FAILED error.
func (s *Systemd) IsRunning(ctx context.Context) (bool, error) {
	if s.conn == nil || s.unit == "" {
		return false, errors.New(errors.ErrCodeInvalidRequest, "no unit started")
	}
	props, err := s.conn.GetUnitPropertiesContext(ctx, s.unit)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to read state of %s", s.unit), err)
	}
	state, _ := props["ActiveState"].(string)
	result, _ := props["Result"].(string)
	return unitRunning(s.unit, state, result)
}

// Gflops implements Runner.
func (s *Systemd) Gflops(_ context.Context) (float64, error) {
	return s.ws.gflops()
}

// Result implements Runner.
func (s *Systemd) Result(_ context.Context) (float64, error) {
	return s.ws.flop()
}

// Cleanup implements Runner. The unit is stopped and its failed state
// cleared so the next configuration starts from a clean slate.
func (s *Systemd) Cleanup(ctx context.Context) error {
	if s.conn != nil {
		if s.unit != "" {
			if _, err := s.conn.StopUnitContext(ctx, s.unit, "replace", nil); err != nil {
				slog.Debug("stop unit", "unit", s.unit, "error", err)
			}
			if err := s.conn.ResetFailedUnitContext(ctx, s.unit); err != nil {
				slog.Debug("reset failed unit", "unit", s.unit, "error", err)
			}
		}
		s.conn.Close()
		s.conn = nil
	}
	s.unit = ""
	return s.ws.cleanup()
}

func unitRunning(unit, state, result string) (bool, error) {
	switch state {
	case "active", "activating", "deactivating", "reloading":
		return true, nil
	case "inactive":
		return false, nil
	default:
		return false, errors.NewWithContext(errors.ErrCodeJobFailed, fmt.Sprintf("unit ended in state %s", state),
			map[string]any{"unit": unit, "state": state, "result": result})
	}
}

func launchArgs(mpirun, hpcgPath string, cores, threadsPerCore int) []string {
	return []string{
		mpirun,
		"--np", strconv.Itoa(cores),
		"--map-by", fmt.Sprintf("ppr:%d:core", threadsPerCore),
		hpcgPath,
	}
}

// cpuMask returns the AllowedCPUs bitmask selecting CPUs 0..n-1.
func cpuMask(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	mask := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		mask[i/8] |= 1 << (i % 8)
	}
	return mask
}
