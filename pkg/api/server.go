// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package api

import (
	"context"
	"log/slog"

	"github.com/AndersSpringborg/chronus/pkg/collector"
	"github.com/AndersSpringborg/chronus/pkg/config"
	"github.com/AndersSpringborg/chronus/pkg/localstorage"
	"github.com/AndersSpringborg/chronus/pkg/logging"
	"github.com/AndersSpringborg/chronus/pkg/model"
	"github.com/AndersSpringborg/chronus/pkg/repository"
	"github.com/AndersSpringborg/chronus/pkg/server"
)

const (
	name           = "chronusd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/AndersSpringborg/chronus/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve opens the repository and local settings named by cfg and serves the
// read-only API until ctx is canceled or the process is signaled.
func Serve(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}

	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	repo, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			slog.Warn("failed to close repository", "error", cerr)
		}
	}()

	storage, err := localstorage.Open(cfg.SettingsRoot, localstorage.ReadOnly)
	if err != nil {
		return err
	}

	svc := model.NewService(
		model.WithStore(repo),
		model.WithSettings(storage),
		model.WithProbe(collector.NewDefaultFactory().CreateProber()),
		model.WithModelDir(cfg.ModelDir),
	)

	h := NewHandler(
		WithStore(repo),
		WithRecommender(svc),
		WithVersion(version),
	)

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithPort(cfg.Server.Port),
		server.WithRoutes(h.Routes()...),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}
