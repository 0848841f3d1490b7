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

package snapshotter

import (
	"context"

	"github.com/AndersSpringborg/chronus/pkg/collector/systemd"
	"github.com/AndersSpringborg/chronus/pkg/header"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// Snapshotter collects and serializes a node snapshot.
type Snapshotter interface {
	Measure(ctx context.Context) error
}

// Snapshot is the report of one node.
type Snapshot struct {
	header.Header `json:",inline" yaml:",inline"`

	// System is the CPU fingerprint.
	System system.SystemInfo `json:"system" yaml:"system"`

	// Configurations is the number of configurations a sweep would run.
	Configurations int `json:"configurations" yaml:"configurations"`

	// Services holds the state of the runner's systemd units.
	Services []systemd.UnitStatus `json:"services,omitempty" yaml:"services,omitempty"`

	// Telemetry is a single sample taken at collection time.
	Telemetry *system.SystemSample `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`
}

// NewSnapshot creates an empty Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Services: make([]systemd.UnitStatus, 0),
	}
}
