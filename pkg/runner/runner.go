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
	"slices"

	"github.com/AndersSpringborg/chronus/pkg/command"
	"github.com/AndersSpringborg/chronus/pkg/errors"
)

const (
	NameHPCG    = "hpcg"
	NameSystemd = "systemd"
)

// Runner executes one benchmark job at a time.
type Runner interface {
	// Prepare creates the output directory and input files.
	Prepare(ctx context.Context) error
	// Run starts the job with the given core count, frequency in kHz and
	// threads per core.
	Run(ctx context.Context, cores int, frequency float64, threadsPerCore int) error
	// IsRunning reports whether the job started by Run is still executing.
	IsRunning(ctx context.Context) (bool, error)
	// Gflops is the GFLOP/s rating of the finished job.
	Gflops(ctx context.Context) (float64, error)
	// Result is the total floating point operations of the finished job.
	Result(ctx context.Context) (float64, error)
	// Cleanup removes everything Prepare and Run created.
	Cleanup(ctx context.Context) error
}

// Options configure a Runner.
type Options struct {
	// HPCGPath is the xhpcg binary.
	HPCGPath string
	// WorkDir holds the output directory. Empty means the current directory.
	WorkDir string
	// Executor runs external commands. Nil uses command.Exec.
	Executor command.Executor
}

// Factory creates a runner from options.
type Factory func(opts Options) (Runner, error)

var registry = map[string]Factory{
	NameHPCG:    func(opts Options) (Runner, error) { return NewSlurm(opts) },
	NameSystemd: func(opts Options) (Runner, error) { return NewSystemd(opts) },
}

// New returns the runner registered under name.
func New(name string, opts Options) (Runner, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown runner %q", name),
			map[string]any{"supported": Names()})
	}
	return f(opts)
}

// Names lists the registered runners in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (o Options) executor() command.Executor {
	if o.Executor == nil {
		return command.Exec{}
	}
	return o.Executor
}

func (o Options) validate() error {
	if o.HPCGPath == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "hpcg path is required")
	}
	return nil
}
