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
	"time"

	"github.com/AndersSpringborg/chronus/pkg/collector"
	"github.com/AndersSpringborg/chronus/pkg/config"
	"github.com/AndersSpringborg/chronus/pkg/localstorage"
	"github.com/AndersSpringborg/chronus/pkg/model"
	"github.com/AndersSpringborg/chronus/pkg/oci"
	"github.com/AndersSpringborg/chronus/pkg/orchestrator"
	"github.com/AndersSpringborg/chronus/pkg/repository"
	"github.com/AndersSpringborg/chronus/pkg/runner"
)

// newFactory creates the host collectors. Replaced in tests.
var newFactory = func() collector.Factory {
	return collector.NewDefaultFactory()
}

func openRepository(ctx context.Context, cfg *config.Config) (*repository.SQLite, func(), error) {
	repo, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() {
		if err := repo.Close(); err != nil {
			slog.Warn("failed to close repository", "error", err)
		}
	}, nil
}

// modelServiceOptions configures the model service for one command.
type modelServiceOptions struct {
	mode      localstorage.Mode
	plainHTTP bool
	insecure  bool
}

func newModelService(cfg *config.Config, repo *repository.SQLite, opts modelServiceOptions) (*model.Service, error) {
	storage, err := localstorage.Open(cfg.SettingsRoot, opts.mode)
	if err != nil {
		return nil, err
	}

	return model.NewService(
		model.WithStore(repo),
		model.WithSettings(storage),
		model.WithProbe(newFactory().CreateProber()),
		model.WithModelDir(cfg.ModelDir),
		model.WithTransport(&oci.Registry{PlainHTTP: opts.plainHTTP, InsecureTLS: opts.insecure}),
	), nil
}

func newOrchestrator(cfg *config.Config, store orchestrator.Store, factory collector.Factory) (*orchestrator.Orchestrator, error) {
	r, err := runner.New(cfg.Runner, runner.Options{
		HPCGPath: cfg.HPCGPath,
		WorkDir:  cfg.WorkDir,
	})
	if err != nil {
		return nil, err
	}

	return orchestrator.New(
		orchestrator.WithRunner(r),
		orchestrator.WithSampler(factory.CreateSampler()),
		orchestrator.WithProbe(factory.CreateProber()),
		orchestrator.WithStore(store),
		orchestrator.WithInterval(time.Duration(cfg.SampleInterval)),
		orchestrator.WithApplication(orchestrator.DefaultApplication),
	)
}

// preflight logs the state of the units the runner depends on. It never
// fails the command.
func preflight(ctx context.Context, factory collector.Factory) {
	units, err := factory.CreateServiceCollector().Collect(ctx)
	if err != nil {
		slog.Warn("unable to check systemd units", "error", err)
		return
	}
	for _, u := range units {
		if !u.Active() {
			slog.Warn("systemd unit not active", "unit", u.Name, "state", u.ActiveState, "subState", u.SubState)
			continue
		}
		slog.Debug("systemd unit active", "unit", u.Name)
	}
}
