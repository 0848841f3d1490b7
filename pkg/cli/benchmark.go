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

package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/AndersSpringborg/chronus/pkg/api"
	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/header"
	"github.com/AndersSpringborg/chronus/pkg/orchestrator"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// SweepReport is the document printed after a sweep.
type SweepReport struct {
	header.Header `json:",inline" yaml:",inline"`

	orchestrator.Summary `json:",inline" yaml:",inline"`
}

func benchmarkCmd() *cli.Command {
	return &cli.Command{
		Name:                  "benchmark",
		EnableShellCompletion: true,
		Usage:                 "Benchmark every configuration of this machine",
		Description: `Probe the CPU, enumerate every (cores, threads per core, frequency)
configuration and run the benchmark once per configuration while sampling
power. Finished runs are stored in the database; a failed job is logged and
the sweep continues with the next configuration.

# Examples

  chronus benchmark --hpcg-path /opt/hpcg/bin/xhpcg --database runs.db
  chronus benchmark --runner systemd --hpcg-path /opt/hpcg/bin/xhpcg`,
		Flags: append(runnerFlags(), outputFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			repo, closeRepo, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			factory := newFactory()
			preflight(ctx, factory)

			o, err := newOrchestrator(cfg, repo, factory)
			if err != nil {
				return err
			}

			summary, err := o.Sweep(ctx)
			if err != nil {
				return err
			}

			report := &SweepReport{Summary: *summary}
			report.Init(header.KindSweepSummary, header.APIVersion, version)
			if host, herr := os.Hostname(); herr == nil {
				report.Metadata["source-host"] = host
			}
			return writeOutput(ctx, cmd, report)
		},
	}
}

func runConfigCmd() *cli.Command {
	return &cli.Command{
		Name:                  "run-config",
		EnableShellCompletion: true,
		Usage:                 "Benchmark a single configuration",
		Description: `Run the benchmark once with the given configuration and store the run
under a new benchmark for this machine.

# Examples

  chronus run-config --cores 32 --threads-per-core 1 --frequency 2200000 --hpcg-path ./xhpcg`,
		Flags: append(append(runnerFlags(),
			&cli.IntFlag{
				Name:     "cores",
				Usage:    "number of cores",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "threads-per-core",
				Usage: "threads per core",
				Value: 1,
			},
			&cli.FloatFlag{
				Name:     "frequency",
				Usage:    "CPU frequency in kHz",
				Required: true,
			},
		), outputFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			target := system.Configuration{
				Cores:          cmd.Int("cores"),
				ThreadsPerCore: cmd.Int("threads-per-core"),
				Frequency:      cmd.Float("frequency"),
			}
			if err := validateConfiguration(target); err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			repo, closeRepo, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			factory := newFactory()
			o, err := newOrchestrator(cfg, repo, factory)
			if err != nil {
				return err
			}

			info, err := factory.CreateProber().GetCPUInfo(ctx)
			if err != nil {
				return err
			}

			b, err := o.NewBenchmark(ctx, info)
			if err != nil {
				return err
			}

			run, err := o.RunOne(ctx, b, target)
			if err != nil {
				return err
			}

			slog.Info("run finished",
				"benchmark", b.ID,
				"configuration", target.String(),
				"gflopsPerWatt", run.GflopsPerWatt())
			return writeOutput(ctx, cmd, api.NewRunList(version, []*benchmark.Run{run}))
		},
	}
}
