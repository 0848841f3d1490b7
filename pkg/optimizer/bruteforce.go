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

package optimizer

import (
	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// BruteForce recommends the best configuration ever measured.
type BruteForce struct {
	best *system.Configuration
	gpw  float64
}

type bruteForceArtifact struct {
	Type          string               `json:"type"`
	Configuration system.Configuration `json:"configuration"`
	GflopsPerWatt float64              `json:"gflops_per_watt"`
}

// NewBruteForce returns an untrained BruteForce optimizer.
func NewBruteForce() *BruteForce {
	return &BruteForce{}
}

// Name implements Optimizer.
func (o *BruteForce) Name() string {
	return NameBruteForce
}

// MakeModel keeps the run with the highest GFLOPS/W. Ties keep the first.
func (o *BruteForce) MakeModel(runs []*benchmark.Run) error {
	var best *benchmark.Run
	for _, r := range runs {
		if r == nil {
			continue
		}
		if best == nil || r.GflopsPerWatt() > best.GflopsPerWatt() {
			best = r
		}
	}
	if best == nil {
		return errNoRuns(o.Name())
	}
	cfg := best.Configuration()
	o.best = &cfg
	o.gpw = best.GflopsPerWatt()
	return nil
}

// Save implements Optimizer.
func (o *BruteForce) Save(path string) error {
	if o.best == nil {
		return errNotTrained(o.Name())
	}
	return writeArtifact(path, bruteForceArtifact{
		Type:          o.Name(),
		Configuration: *o.best,
		GflopsPerWatt: o.gpw,
	})
}

// Load implements Optimizer.
func (o *BruteForce) Load(path string) error {
	var a bruteForceArtifact
	if err := readArtifact(path, o.Name(), &a); err != nil {
		return err
	}
	cfg := a.Configuration
	o.best = &cfg
	o.gpw = a.GflopsPerWatt
	return nil
}

// Run returns the stored configuration regardless of info.
func (o *BruteForce) Run(_ system.SystemInfo) (system.Configuration, error) {
	if o.best == nil {
		return system.Configuration{}, errNotTrained(o.Name())
	}
	return *o.best, nil
}
