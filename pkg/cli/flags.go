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
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/AndersSpringborg/chronus/pkg/config"
	"github.com/AndersSpringborg/chronus/pkg/optimizer"
	"github.com/AndersSpringborg/chronus/pkg/runner"
	"github.com/AndersSpringborg/chronus/pkg/serializer"
)

// Flags are built per command; urfave flags keep parse state.

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "configuration file (yaml or json)",
			Sources: cli.EnvVars("CHRONUS_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("CHRONUS_LOG_LEVEL", "LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "shorthand for --log-level=debug",
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "SQLite database path",
			DefaultText: "chronus.db",
			Sources:     cli.EnvVars("CHRONUS_DATABASE"),
		},
		&cli.StringFlag{
			Name:        "settings-root",
			Usage:       "directory holding the loaded model",
			DefaultText: "/etc/chronus",
			Sources:     cli.EnvVars("CHRONUS_SETTINGS_ROOT"),
		},
		&cli.StringFlag{
			Name:        "model-dir",
			Usage:       "directory receiving trained models",
			DefaultText: "models",
			Sources:     cli.EnvVars("CHRONUS_MODEL_DIR"),
		},
	}
}

func runnerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "runner",
			Aliases:     []string{"r"},
			Usage:       fmt.Sprintf("benchmark backend (%s)", strings.Join(runner.Names(), ", ")),
			DefaultText: runner.NameHPCG,
			Sources:     cli.EnvVars("CHRONUS_RUNNER"),
		},
		&cli.StringFlag{
			Name:    "hpcg-path",
			Usage:   "path to the xhpcg binary",
			Sources: cli.EnvVars("CHRONUS_HPCG_PATH"),
		},
		&cli.StringFlag{
			Name:        "work-dir",
			Usage:       "directory for benchmark output",
			DefaultText: ".",
			Sources:     cli.EnvVars("CHRONUS_WORK_DIR"),
		},
		&cli.DurationFlag{
			Name:        "sample-interval",
			Usage:       "pause between telemetry samples",
			DefaultText: "1s",
			Sources:     cli.EnvVars("CHRONUS_SAMPLE_INTERVAL"),
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output file path (default: stdout)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"t"},
			Usage:   fmt.Sprintf("output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
			Value:   string(serializer.FormatTable),
		},
	}
}

func optimizerUsage() string {
	return fmt.Sprintf("optimizer (%s)", strings.Join(optimizer.Names(), ", "))
}

// loadConfig resolves configuration as flag > env > file > default.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	for flag, dst := range map[string]*string{
		"database":      &cfg.Database,
		"settings-root": &cfg.SettingsRoot,
		"model-dir":     &cfg.ModelDir,
		"runner":        &cfg.Runner,
		"hpcg-path":     &cfg.HPCGPath,
		"work-dir":      &cfg.WorkDir,
	} {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
	if cmd.IsSet("sample-interval") {
		cfg.SampleInterval = config.Duration(cmd.Duration("sample-interval"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("configuration resolved",
		"database", cfg.Database,
		"runner", cfg.Runner,
		"settingsRoot", cfg.SettingsRoot,
		"modelDir", cfg.ModelDir,
		"sampleInterval", time.Duration(cfg.SampleInterval).String())
	return cfg, nil
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	format := serializer.Format(cmd.String("format"))
	if format.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", format)
	}
	return format, nil
}

// writeOutput serializes v to --output, or to the command writer.
func writeOutput(ctx context.Context, cmd *cli.Command, v any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	var w *serializer.Writer
	if path := strings.TrimSpace(cmd.String("output")); path != "" {
		w = serializer.NewFileWriterOrStdout(format, path)
	} else {
		w = serializer.NewWriter(format, cmd.Root().Writer)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			slog.Warn("failed to close output", "error", cerr)
		}
	}()

	return w.Serialize(ctx, v)
}
