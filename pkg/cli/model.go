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
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/AndersSpringborg/chronus/pkg/api"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/localstorage"
	"github.com/AndersSpringborg/chronus/pkg/serializer"
	"github.com/AndersSpringborg/chronus/pkg/server"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

func initModelCmd() *cli.Command {
	return &cli.Command{
		Name:                  "init-model",
		EnableShellCompletion: true,
		Usage:                 "Train a model on the runs of one system",
		Description: `Train an optimizer on every stored run of the system with the given id
(see "chronus systems") and record the model. Prints the new model id.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "system-id",
				Usage:    "index of the system as listed by 'chronus systems'",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "optimizer",
				Usage:    optimizerUsage(),
				Required: true,
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

			svc, err := newModelService(cfg, repo, modelServiceOptions{mode: localstorage.ReadOnly})
			if err != nil {
				return err
			}

			id, err := svc.InitModel(ctx, cmd.Int("system-id"), cmd.String("optimizer"))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.Root().Writer, id)
			return err
		},
	}
}

func loadModelCmd() *cli.Command {
	return &cli.Command{
		Name:                  "load-model",
		EnableShellCompletion: true,
		Usage:                 "Activate a model on this machine",
		Description: `Copy the model artifact (local file or oci:// reference) into the
settings root and mark it as the active model. Usually requires root.`,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "model-id",
				Usage:    "model id as listed by 'chronus models'",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "use HTTP when pulling from a registry",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "skip TLS verification when pulling from a registry",
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

			svc, err := newModelService(cfg, repo, modelServiceOptions{
				mode:      localstorage.Writable,
				plainHTTP: cmd.Bool("plain-http"),
				insecure:  cmd.Bool("insecure-tls"),
			})
			if err != nil {
				return err
			}

			m, err := svc.LoadModel(ctx, cmd.Int64("model-id"))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.Root().Writer, "loaded model %d (%s)\n", m.ID, m.Name)
			return err
		},
	}
}

func recommendCmd() *cli.Command {
	return &cli.Command{
		Name:                  "recommend",
		EnableShellCompletion: true,
		Usage:                 "Recommend a configuration for this machine",
		Description: `Evaluate the active model against this machine and print the most
energy efficient configuration. With --server the recommendation is fetched
from a running chronusd instead.

# Examples

  chronus recommend --format json
  chronus recommend --server http://node-1:8080`,
		Flags: append(outputFlags(),
			&cli.StringFlag{
				Name:    "server",
				Usage:   "chronusd base URL to query instead of evaluating locally",
				Sources: cli.EnvVars("CHRONUS_SERVER"),
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if base := cmd.String("server"); base != "" {
				rec, err := fetchRecommendation(ctx, base)
				if err != nil {
					return err
				}
				return writeOutput(ctx, cmd, rec)
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

			svc, err := newModelService(cfg, repo, modelServiceOptions{mode: localstorage.ReadOnly})
			if err != nil {
				return err
			}

			recommended, err := svc.RunModel(ctx)
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, api.NewRecommendation(version, recommended))
		},
	}
}

// fetchRecommendation queries GET /v1/recommendation on a chronusd.
func fetchRecommendation(ctx context.Context, base string) (*api.Recommendation, error) {
	url := strings.TrimRight(base, "/") + "/v1/recommendation"
	slog.Debug("fetching recommendation", "url", url)

	data, err := serializer.NewHttpReader().ReadWithContext(ctx, url)
	if err != nil {
		var se *serializer.StatusError
		if stderrors.As(err, &se) {
			return nil, remoteError(se)
		}
		return nil, errors.Wrap(errors.ErrCodeServiceUnavailable, "failed to reach chronusd", err)
	}

	var rec api.Recommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "invalid recommendation response", err)
	}
	return &rec, nil
}

// remoteError turns a chronusd error envelope back into a structured error.
func remoteError(se *serializer.StatusError) error {
	var resp server.ErrorResponse
	if err := json.Unmarshal(se.Body, &resp); err != nil || resp.Code == "" {
		return errors.Wrap(errors.ErrCodeInternal, "unexpected chronusd response", se)
	}
	return errors.NewWithContext(errors.ErrorCode(resp.Code), resp.Message,
		map[string]any{"status": se.StatusCode, "requestId": resp.RequestID})
}

func publishModelCmd() *cli.Command {
	return &cli.Command{
		Name:                  "publish-model",
		EnableShellCompletion: true,
		Usage:                 "Push a model artifact to an OCI registry",
		Description: `Push the artifact of a recorded model to an OCI registry. A reference
without a tag is tagged model-<id>.

# Examples

  chronus publish-model --model-id 3 --registry oci://ghcr.io/acme/chronus-models:epyc-7763`,
		Flags: append(outputFlags(),
			&cli.Int64Flag{
				Name:     "model-id",
				Usage:    "model id as listed by 'chronus models'",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "registry",
				Usage:    "target reference, oci://registry/repository[:tag]",
				Required: true,
				Sources:  cli.EnvVars("CHRONUS_REGISTRY"),
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "use HTTP instead of HTTPS",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "skip TLS certificate verification",
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

			svc, err := newModelService(cfg, repo, modelServiceOptions{
				mode:      localstorage.ReadOnly,
				plainHTTP: cmd.Bool("plain-http"),
				insecure:  cmd.Bool("insecure-tls"),
			})
			if err != nil {
				return err
			}

			res, err := svc.PublishModel(ctx, cmd.Int64("model-id"), cmd.String("registry"))
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, res)
		},
	}
}

func modelsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "models",
		EnableShellCompletion: true,
		Usage:                 "List recorded models",
		Flags:                 outputFlags(),
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

			models, err := repo.GetAllModels(ctx)
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, api.NewModelList(version, models))
		},
	}
}

func systemsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "systems",
		EnableShellCompletion: true,
		Usage:                 "List benchmarked systems",
		Flags:                 outputFlags(),
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

			systems, err := repo.GetAllSystemInfo(ctx)
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, api.NewSystemList(version, systems))
		},
	}
}

func validateConfiguration(c system.Configuration) error {
	if c.Cores <= 0 || c.ThreadsPerCore <= 0 || c.Frequency <= 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"cores, threads-per-core and frequency must be positive",
			map[string]any{"configuration": c.String()})
	}
	return nil
}
