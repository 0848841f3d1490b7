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

// Package command runs external tools such as lscpu, ipmitool and the slurm
// client commands.
//
// Callers depend on the Executor interface so tests can substitute canned
// output with Func:
//
//	exec := command.Func(func(ctx context.Context, c command.Cmd) ([]byte, error) {
//	    return []byte("Submitted batch job 42\n"), nil
//	})
package command
