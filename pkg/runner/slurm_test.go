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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AndersSpringborg/chronus/pkg/command"
	"github.com/AndersSpringborg/chronus/pkg/errors"
)

// fakeSlurm answers sbatch and scontrol, walking through states on each poll.
type fakeSlurm struct {
	t       *testing.T
	states  []string
	report  string
	calls   []command.Cmd
	sbatch  error
	polls   int
	scripts []string
}

func (f *fakeSlurm) Output(_ context.Context, c command.Cmd) ([]byte, error) {
	f.calls = append(f.calls, c)
	switch c.Name {
	case "sbatch":
		if f.sbatch != nil {
			return nil, f.sbatch
		}
		b, err := os.ReadFile(filepath.Join(c.Dir, c.Args[0]))
		if err != nil {
			f.t.Fatalf("sbatch script missing: %v", err)
		}
		f.scripts = append(f.scripts, string(b))
		if f.report != "" {
			writeReport(f.t, c.Dir, "HPCG-Benchmark_3.1_2024-01-01_10-00-00.txt", f.report)
		}
		return []byte("Submitted batch job 449\n"), nil
	case "scontrol":
		state := f.states[min(f.polls, len(f.states)-1)]
		f.polls++
		return []byte(fmt.Sprintf("JobId=%s JobName=HPCG_BENCHMARK\n   JobState=%s Reason=None\n", c.Args[2], state)), nil
	}
	return nil, fmt.Errorf("unexpected command %s", c)
}

func TestSlurmLifecycle(t *testing.T) {
	fake := &fakeSlurm{t: t, states: []string{"PENDING", "RUNNING", "COMPLETED"}, report: sampleReport}
	s, err := NewSlurm(Options{HPCGPath: "/opt/hpcg/xhpcg", WorkDir: t.TempDir(), Executor: fake})
	if err != nil {
		t.Fatalf("NewSlurm: %v", err)
	}
	ctx := context.Background()

	if err := s.Prepare(ctx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := s.Run(ctx, 16, 2200000, 2); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.JobID() != 449 {
		t.Errorf("JobID = %d, want 449", s.JobID())
	}
	if fake.calls[0].Dir != s.Dir() {
		t.Errorf("sbatch ran in %q, want %q", fake.calls[0].Dir, s.Dir())
	}

	script := fake.scripts[0]
	for _, want := range []string{
		"#SBATCH --ntasks=16\n",
		"#SBATCH --cpu-freq=2200000\n",
		"srun --mpi=pmix_v4 --ntasks-per-core=2 /opt/hpcg/xhpcg",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}

	var polls int
	for {
		running, err := s.IsRunning(ctx)
		if err != nil {
			t.Fatalf("IsRunning: %v", err)
		}
		if !running {
			break
		}
		polls++
	}
	if polls != 2 {
		t.Errorf("running polls = %d, want 2", polls)
	}
	if last := fake.calls[len(fake.calls)-1]; last.String() != "scontrol show job 449" {
		t.Errorf("last command = %q", last)
	}

	gflops, err := s.Gflops(ctx)
	if err != nil || gflops != 1.23456 {
		t.Errorf("Gflops = %v, %v", gflops, err)
	}
	flop, err := s.Result(ctx)
	if err != nil || flop != 1.36952e+08 {
		t.Errorf("Result = %v, %v", flop, err)
	}

	if err := s.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(s.Dir()); !os.IsNotExist(err) {
		t.Errorf("output directory not removed")
	}
}

func TestSlurmJobStates(t *testing.T) {
	tests := []struct {
		state   string
		running bool
		failed  bool
	}{
		{"PENDING", true, false},
		{"RUNNING", true, false},
		{"CONFIGURING", true, false},
		{"COMPLETING", true, false},
		{"SUSPENDED", true, false},
		{"COMPLETED", false, false},
		{"FAILED", false, true},
		{"CANCELLED", false, true},
		{"TIMEOUT", false, true},
		{"OUT_OF_MEMORY", false, true},
		{"NODE_FAIL", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			running, err := jobRunning(7, tt.state)
			if running != tt.running {
				t.Errorf("running = %v, want %v", running, tt.running)
			}
			if got := errors.IsCode(err, errors.ErrCodeJobFailed); got != tt.failed {
				t.Errorf("failed = %v (err %v), want %v", got, err, tt.failed)
			}
		})
	}
}

func TestSlurmRunErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected", func(t *testing.T) {
		fake := &fakeSlurm{t: t, sbatch: errors.New(errors.ErrCodeInternal, "invalid cpu frequency")}
		s, _ := NewSlurm(Options{HPCGPath: "/opt/xhpcg", WorkDir: t.TempDir(), Executor: fake})
		if err := s.Prepare(ctx); err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		if err := s.Run(ctx, 1, 1000000, 1); !errors.IsCode(err, errors.ErrCodeJobFailed) {
			t.Errorf("expected JOB_FAILED, got %v", err)
		}
	})

	t.Run("no sbatch", func(t *testing.T) {
		fake := &fakeSlurm{t: t, sbatch: errors.New(errors.ErrCodeServiceUnavailable, "sbatch not found in PATH")}
		s, _ := NewSlurm(Options{HPCGPath: "/opt/xhpcg", WorkDir: t.TempDir(), Executor: fake})
		if err := s.Prepare(ctx); err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		if err := s.Run(ctx, 1, 1000000, 1); !errors.IsCode(err, errors.ErrCodeServiceUnavailable) {
			t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
		}
	})

	t.Run("not submitted", func(t *testing.T) {
		s, _ := NewSlurm(Options{HPCGPath: "/opt/xhpcg", WorkDir: t.TempDir(), Executor: &fakeSlurm{t: t}})
		if _, err := s.IsRunning(ctx); !errors.IsCode(err, errors.ErrCodeInvalidRequest) {
			t.Errorf("expected INVALID_REQUEST, got %v", err)
		}
	})

	t.Run("failed job", func(t *testing.T) {
		fake := &fakeSlurm{t: t, states: []string{"RUNNING", "FAILED"}}
		s, _ := NewSlurm(Options{HPCGPath: "/opt/xhpcg", WorkDir: t.TempDir(), Executor: fake})
		if err := s.Prepare(ctx); err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		if err := s.Run(ctx, 2, 1000000, 1); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if running, err := s.IsRunning(ctx); !running || err != nil {
			t.Fatalf("first poll = %v, %v", running, err)
		}
		if _, err := s.IsRunning(ctx); !errors.IsCode(err, errors.ErrCodeJobFailed) {
			t.Errorf("expected JOB_FAILED, got %v", err)
		}
	})
}
