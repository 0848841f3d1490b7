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

package defaults

import "time"

// Sweep timing.
const (
	// SampleInterval is the pause between telemetry samples while a
	// benchmark job is running.
	SampleInterval = 1 * time.Second

	// CommandTimeout bounds a single external command such as sbatch,
	// scontrol, lscpu or ipmitool.
	CommandTimeout = 30 * time.Second

	// ProbeTimeout bounds CPU capability probing.
	ProbeTimeout = 10 * time.Second
)

// Server timeouts.
const (
	ServerReadTimeout = 10 * time.Second

	ServerReadHeaderTimeout = 5 * time.Second

	ServerWriteTimeout = 30 * time.Second

	ServerIdleTimeout = 120 * time.Second

	ServerShutdownTimeout = 30 * time.Second

	// RecommendHandlerTimeout bounds the recommendation endpoint, which probes
	// the CPU and evaluates the loaded model.
	RecommendHandlerTimeout = 20 * time.Second
)

// HTTP client timeouts used for registry transfers.
const (
	HTTPClientTimeout = 30 * time.Second

	HTTPConnectTimeout = 5 * time.Second

	HTTPTLSHandshakeTimeout = 5 * time.Second

	HTTPResponseHeaderTimeout = 10 * time.Second

	HTTPIdleConnTimeout = 90 * time.Second

	// ArtifactTransferTimeout bounds a full model push or pull.
	ArtifactTransferTimeout = 5 * time.Minute
)
