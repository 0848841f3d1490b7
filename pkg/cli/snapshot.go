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

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/AndersSpringborg/chronus/pkg/serializer"
	"github.com/AndersSpringborg/chronus/pkg/snapshotter"
)

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Capture the tuning relevant state of this machine",
		Description: `Capture the CPU fingerprint, the size of the configuration space, one
telemetry sample and the state of the systemd units the benchmark depends on.

The snapshot can be output in JSON, YAML, or table format.`,
		Flags: outputFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			var w *serializer.Writer
			if path := cmd.String("output"); path != "" {
				w = serializer.NewFileWriterOrStdout(format, path)
			} else {
				w = serializer.NewWriter(format, cmd.Root().Writer)
			}
			defer func() { _ = w.Close() }()

			ns := snapshotter.NodeSnapshotter{
				Version:    version,
				Factory:    newFactory(),
				Serializer: w,
			}
			return ns.Measure(ctx)
		},
	}
}
