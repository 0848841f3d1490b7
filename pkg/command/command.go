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

package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/AndersSpringborg/chronus/pkg/defaults"
	"github.com/AndersSpringborg/chronus/pkg/errors"
)

// Cmd describes one invocation.
type Cmd struct {
	// Name is the executable, resolved through PATH.
	Name string
	// Args are passed verbatim.
	Args []string
	// Dir is the working directory. Empty means the current one.
	Dir string
}

// String implements fmt.Stringer.
func (c Cmd) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Executor runs a command and returns its standard output.
type Executor interface {
	Output(ctx context.Context, c Cmd) ([]byte, error)
}

// Func adapts a function to Executor.
type Func func(ctx context.Context, c Cmd) ([]byte, error)

// Output implements Executor.
func (f Func) Output(ctx context.Context, c Cmd) ([]byte, error) {
	return f(ctx, c)
}

// Exec runs commands on the host.
type Exec struct {
	// Timeout bounds each command. Zero uses defaults.CommandTimeout.
	Timeout time.Duration
}

// Output implements Executor. A missing executable is SERVICE_UNAVAILABLE,
// a non-zero exit is INTERNAL with stderr attached.
func (e Exec) Output(ctx context.Context, c Cmd) ([]byte, error) {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeServiceUnavailable, fmt.Sprintf("%s not found in PATH", c.Name), err)
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaults.CommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("executing command", "command", c.String(), "dir", c.Dir)

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil && stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.WrapWithContext(errors.ErrCodeTimeout, fmt.Sprintf("%s timed out", c.Name), err,
				map[string]any{"command": c.String(), "timeout": timeout.String()})
		}
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, fmt.Sprintf("failed to execute %s", c.Name), err,
			map[string]any{"command": c.String(), "stderr": strings.TrimSpace(stderr.String())})
	}
	return out, nil
}
