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
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/AndersSpringborg/chronus/pkg/api"
	"github.com/AndersSpringborg/chronus/pkg/defaults"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/repository"
)

func runsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "runs",
		EnableShellCompletion: true,
		Usage:                 "List stored runs",
		Description: `List stored runs with energy and efficiency figures. --best ranks runs
by floating point operations per joule instead.

# Examples

  chronus runs --benchmark-id 2
  chronus runs --best --limit 5 --format json`,
		Flags: append(outputFlags(),
			&cli.Int64Flag{
				Name:  "benchmark-id",
				Usage: "only runs of this benchmark",
			},
			&cli.BoolFlag{
				Name:  "best",
				Usage: "rank runs by flop per joule",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "number of ranked runs with --best",
				Value: defaults.BestRunsLimit,
			},
		),
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

			if cmd.Bool("best") {
				best, err := repo.GetBestRuns(ctx, cmd.Int("limit"))
				if err != nil {
					return err
				}
				return writeOutput(ctx, cmd, api.NewEfficiencyList(version, best))
			}

			benchmarkID, err := benchmarkFilter(cmd)
			if err != nil {
				return err
			}
			runs, err := repo.GetAllRuns(ctx, benchmarkID)
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, api.NewRunList(version, runs))
		},
	}
}

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "export",
		EnableShellCompletion: true,
		Usage:                 "Export runs as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "CSV file to write, - for stdout",
				Required: true,
			},
			&cli.Int64Flag{
				Name:  "benchmark-id",
				Usage: "only runs of this benchmark",
			},
		},
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

			benchmarkID, err := benchmarkFilter(cmd)
			if err != nil {
				return err
			}

			path := cmd.String("output")
			if path == "-" {
				return repository.ExportCSV(ctx, repo, benchmarkID, cmd.Root().Writer)
			}

			f, err := os.Create(path)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to create %s", path), err)
			}
			if err := repository.ExportCSV(ctx, repo, benchmarkID, f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to write %s", path), err)
			}

			slog.Info("runs exported", "path", path)
			return nil
		},
	}
}

func maintenanceCmd() *cli.Command {
	return &cli.Command{
		Name:                  "maintenance",
		EnableShellCompletion: true,
		Usage:                 "Repair derived values in the database",
		Description: `Recompute gflops per watt of every run from its samples and backfill
per-CPU frequency readings on samples recorded before they were captured.`,
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

			recomputed, err := repo.RecomputeEfficiency(ctx)
			if err != nil {
				return err
			}
			backfilled, err := repo.BackfillSampleFrequencies(ctx)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.Root().Writer, "recomputed %d runs, backfilled %d samples\n", recomputed, backfilled)
			return err
		},
	}
}

func benchmarkFilter(cmd *cli.Command) (*int64, error) {
	if !cmd.IsSet("benchmark-id") {
		return nil, nil
	}
	id := cmd.Int64("benchmark-id")
	if id <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "benchmark-id must be positive")
	}
	return &id, nil
}
