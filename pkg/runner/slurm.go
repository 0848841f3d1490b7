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
	"regexp"
	"strconv"

	"github.com/AndersSpringborg/chronus/pkg/command"
	"github.com/AndersSpringborg/chronus/pkg/errors"
)

const slurmFile = "HPCG_BENCHMARK.slurm"

var (
	jobIDRe    = regexp.MustCompile(`Submitted batch job (\d+)`)
	jobStateRe = regexp.MustCompile(`JobState=(\w+)`)
)

// Slurm submits HPCG through sbatch.
type Slurm struct {
	hpcgPath string
	ws       workspace
	exec     command.Executor
	jobID    int
}

// NewSlurm creates a slurm runner.
func NewSlurm(opts Options) (*Slurm, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Slurm{
		hpcgPath: opts.HPCGPath,
		ws:       newWorkspace(opts.WorkDir),
		exec:     opts.executor(),
	}, nil
}

// Dir returns the output directory.
func (s *Slurm) Dir() string {
	return s.ws.dir
}

// JobID returns the id of the last submitted job, or 0.
func (s *Slurm) JobID() int {
	return s.jobID
}

// Prepare implements Runner.
func (s *Slurm) Prepare(_ context.Context) error {
	if err := s.ws.prepare(); err != nil {
		return err
	}
	slog.Info("prepared hpcg runner", "dir", s.ws.dir)
	return nil
}

// Run implements Runner.
func (s *Slurm) Run(ctx context.Context, cores int, frequency float64, threadsPerCore int) error {
	if err := s.ws.write(slurmFile, batchScript(s.hpcgPath, cores, frequency, threadsPerCore)); err != nil {
		return err
	}

	out, err := s.exec.Output(ctx, command.Cmd{Name: "sbatch", Args: []string{slurmFile}, Dir: s.ws.dir})
	if err != nil {
		// sbatch ran and rejected the job; anything else is an environment problem
		if errors.IsCode(err, errors.ErrCodeInternal) {
			return errors.Wrap(errors.ErrCodeJobFailed, "sbatch rejected the job", err)
		}
		return err
	}

	m := jobIDRe.FindSubmatch(out)
	if m == nil {
		return errors.NewWithContext(errors.ErrCodeJobFailed, "unexpected sbatch output",
			map[string]any{"output": string(out)})
	}
	id, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return errors.Wrap(errors.ErrCodeJobFailed, "invalid job id", err)
	}
	s.jobID = id
	slog.Info("job submitted", "job", id, "cores", cores, "frequency", frequency, "threads_per_core", threadsPerCore)
	return nil
}

// IsRunning implements Runner. Any terminal state other than COMPLETED is
// a JOB_FAILED error.
func (s *Slurm) IsRunning(ctx context.Context) (bool, error) {
	if s.jobID == 0 {
		return false, errors.New(errors.ErrCodeInvalidRequest, "no job submitted")
	}
	out, err := s.exec.Output(ctx, command.Cmd{Name: "scontrol", Args: []string{"show", "job", strconv.Itoa(s.jobID)}})
	if err != nil {
		return false, err
	}
	m := jobStateRe.FindSubmatch(out)
	if m == nil {
		return false, errors.NewWithContext(errors.ErrCodeInternal, "job state not found in scontrol output",
			map[string]any{"job": s.jobID})
	}
	return jobRunning(s.jobID, string(m[1]))
}

// Gflops implements Runner.
func (s *Slurm) Gflops(_ context.Context) (float64, error) {
	return s.ws.gflops()
}

// Result implements Runner.
func (s *Slurm) Result(_ context.Context) (float64, error) {
	return s.ws.flop()
}

// Cleanup implements Runner.
func (s *Slurm) Cleanup(_ context.Context) error {
	s.jobID = 0
	return s.ws.cleanup()
}

func jobRunning(id int, state string) (bool, error) {
	switch state {
	case "PENDING", "RUNNING", "CONFIGURING", "COMPLETING", "SUSPENDED":
		return true, nil
	case "COMPLETED":
		return false, nil
	default:
		return false, errors.NewWithContext(errors.ErrCodeJobFailed, fmt.Sprintf("job ended in state %s", state),
			map[string]any{"job": id, "state": state})
	}
}

func batchScript(hpcgPath string, cores int, frequency float64, threadsPerCore int) string {
	return fmt.Sprintf(`#!/bin/bash
#SBATCH --job-name=HPCG_BENCHMARK
#SBATCH --output=HPCG_BENCHMARK.out
#SBATCH --error=HPCG_BENCHMARK.err
#SBATCH --nodes=1
#SBATCH --ntasks=%d
#SBATCH --cpu-freq=%s

srun --mpi=pmix_v4 --ntasks-per-core=%d %s
`, cores, formatFrequency(frequency), threadsPerCore, hpcgPath)
}
