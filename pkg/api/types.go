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

package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/header"
	"github.com/AndersSpringborg/chronus/pkg/model"
	"github.com/AndersSpringborg/chronus/pkg/repository"
	"github.com/AndersSpringborg/chronus/pkg/system"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.English)

// DisplayName turns an identifier such as "random-forest" into "Random Forest".
func DisplayName(id string) string {
	return titler.String(strings.NewReplacer("-", " ", "_", " ").Replace(id))
}

// SystemList lists the known machine fingerprints. The position of an entry
// is the system id accepted by init-model.
type SystemList struct {
	header.Header `json:",inline" yaml:",inline"`

	Systems []system.SystemInfo `json:"systems" yaml:"systems"`
}

// NewSystemList wraps systems in a SystemList document.
func NewSystemList(version string, systems []system.SystemInfo) *SystemList {
	l := &SystemList{Systems: systems}
	l.Init(header.KindSystemList, header.APIVersion, version)
	return l
}

func (l *SystemList) TableHeader() []string {
	return []string{"id", "cpu", "cores", "threads per core", "frequencies"}
}

func (l *SystemList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Systems))
	for i, s := range l.Systems {
		rows = append(rows, []string{
			strconv.Itoa(i),
			s.CPU,
			strconv.Itoa(s.Cores),
			strconv.Itoa(s.ThreadsPerCore),
			strconv.Itoa(len(s.Frequencies)),
		})
	}
	return rows
}

// ModelList lists recorded models.
type ModelList struct {
	header.Header `json:",inline" yaml:",inline"`

	Models []*model.Model `json:"models" yaml:"models"`
}

// NewModelList wraps models in a ModelList document.
func NewModelList(version string, models []*model.Model) *ModelList {
	l := &ModelList{Models: models}
	l.Init(header.KindModelList, header.APIVersion, version)
	return l
}

func (l *ModelList) TableHeader() []string {
	return []string{"id", "name", "type", "created", "path"}
}

func (l *ModelList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Models))
	for _, m := range l.Models {
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.Name,
			DisplayName(m.Type),
			m.CreatedAt.UTC().Format(time.RFC3339),
			m.PathToModel,
		})
	}
	return rows
}

// RunList lists stored runs with their derived figures.
type RunList struct {
	header.Header `json:",inline" yaml:",inline"`

	Runs []benchmark.Record `json:"runs" yaml:"runs"`
}

// NewRunList wraps runs in a RunList document.
func NewRunList(version string, runs []*benchmark.Run) *RunList {
	l := &RunList{Runs: benchmark.Records(runs)}
	l.Init(header.KindRunList, header.APIVersion, version)
	return l
}

func (l *RunList) TableHeader() []string {
	return []string{"id", "benchmark", "cores", "tpc", "frequency", "gflops", "energy (j)", "gflops/w", "samples"}
}

func (l *RunList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Runs))
	for _, r := range l.Runs {
		bid := "-"
		if r.BenchmarkID != nil {
			bid = strconv.FormatInt(*r.BenchmarkID, 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			bid,
			strconv.Itoa(r.Cores),
			strconv.Itoa(r.ThreadsPerCore),
			formatFloat(r.Frequency),
			formatFloat(r.Gflops),
			formatFloat(r.EnergyUsed),
			formatFloat(r.GflopsPerWatt),
			strconv.Itoa(r.Samples),
		})
	}
	return rows
}

// EfficiencyList ranks runs by floating point operations per joule.
type EfficiencyList struct {
	header.Header `json:",inline" yaml:",inline"`

	Runs []repository.RunEfficiency `json:"runs" yaml:"runs"`
}

// NewEfficiencyList wraps ranked runs in an EfficiencyList document.
func NewEfficiencyList(version string, runs []repository.RunEfficiency) *EfficiencyList {
	l := &EfficiencyList{Runs: runs}
	l.Init(header.KindRunList, header.APIVersion, version)
	return l
}

func (l *EfficiencyList) TableHeader() []string {
	return []string{"rank", "run", "cores", "tpc", "frequency", "flop/j"}
}

func (l *EfficiencyList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Runs))
	for i, r := range l.Runs {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(r.RunID, 10),
			strconv.Itoa(r.Cores),
			strconv.Itoa(r.ThreadsPerCore),
			formatFloat(r.Frequency),
			formatFloat(r.Efficiency),
		})
	}
	return rows
}

// Recommendation is the configuration the active model suggests for this
// machine.
type Recommendation struct {
	header.Header `json:",inline" yaml:",inline"`

	Configuration system.Configuration `json:"configuration" yaml:"configuration"`
}

// NewRecommendation wraps cfg in a Recommendation document.
func NewRecommendation(version string, cfg system.Configuration) *Recommendation {
	r := &Recommendation{Configuration: cfg}
	r.Init(header.KindRecommendation, header.APIVersion, version)
	return r
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
