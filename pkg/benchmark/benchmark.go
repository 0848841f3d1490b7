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

package benchmark

import (
	"time"

	"k8s.io/utils/ptr"

	"github.com/AndersSpringborg/chronus/pkg/system"
)

// Benchmark groups the runs of one sweep on one machine.
type Benchmark struct {
	ID          int64
	SystemInfo  system.SystemInfo
	Application string
	CreatedAt   time.Time
	Runs        []*Run
}

// New creates an unsaved benchmark for info.
func New(info system.SystemInfo, application string, createdAt time.Time) *Benchmark {
	return &Benchmark{
		SystemInfo:  info,
		Application: application,
		CreatedAt:   createdAt,
		Runs:        make([]*Run, 0),
	}
}

// AddRun appends r and stamps it with the benchmark id.
func (b *Benchmark) AddRun(r *Run) {
	r.BenchmarkID = ptr.To(b.ID)
	b.Runs = append(b.Runs, r)
}
