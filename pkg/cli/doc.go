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

// Package cli implements the chronus command-line interface.
//
// # Overview
//
// chronus sweeps every core count, threads per core and frequency
// combination of a machine with a benchmark, records power and performance
// samples in SQLite, trains a model on the results and recommends the most
// energy efficient configuration.
//
// # Commands
//
// Benchmarking:
//
//	chronus benchmark [--runner hpcg|systemd] [--hpcg-path PATH]
//	chronus run-config --cores N [--threads-per-core N] --frequency KHZ
//
// Models:
//
//	chronus init-model --system-id ID --optimizer brute-force|linear-regression|random-forest
//	chronus load-model --model-id ID
//	chronus recommend [--server URL]
//	chronus publish-model --model-id ID --registry REGISTRY/REPO[:TAG]
//	chronus models
//
// Stored data:
//
//	chronus systems
//	chronus runs [--benchmark-id ID] [--best [--limit N]]
//	chronus export --output FILE|-
//	chronus maintenance
//	chronus snapshot
//
// # Configuration
//
// Values resolve as flag, then environment, then the --config file, then the
// built-in default. Environment variables use the CHRONUS_ prefix:
//
//	CHRONUS_CONFIG          configuration file
//	CHRONUS_DATABASE        SQLite database path
//	CHRONUS_RUNNER          benchmark backend
//	CHRONUS_HPCG_PATH       xhpcg binary
//	CHRONUS_SETTINGS_ROOT   directory holding the loaded model
//	CHRONUS_LOG_LEVEL       debug, info, warn or error
//
// # Exit Codes
//
//	0  Success
//	1  General error
//	2  Canceled or timed out
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/AndersSpringborg/chronus/pkg/cli.version=1.0.0'"
package cli
