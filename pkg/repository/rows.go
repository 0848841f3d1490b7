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

package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/model"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

const (
	tableBenchmarks    = "benchmarks"
	tableRuns          = "runs"
	tableSystemSamples = "system_samples"
	tableModels        = "models"

	timeLayout = time.RFC3339Nano
)

type benchmarkRow struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement:true"`
	SystemInfo  string `gorm:"column:system_info"`
	Application string `gorm:"column:application"`
	Created     string `gorm:"column:created_at"`
}

func (benchmarkRow) TableName() string {
	return tableBenchmarks
}

type runRow struct {
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement:true"`
	BenchmarkID   int64   `gorm:"column:benchmark_id"`
	CPU           string  `gorm:"column:cpu"`
	Cores         int     `gorm:"column:cores"`
	ThreadPerCore int     `gorm:"column:thread_per_core"`
	Frequency     float64 `gorm:"column:frequency"`
	Gflops        float64 `gorm:"column:gflops"`
	Flop          float64 `gorm:"column:flop"`
	EnergyUsed    float64 `gorm:"column:energy_used"`
	GflopsPerWatt float64 `gorm:"column:gflops_per_watt"`
	StartTime     string  `gorm:"column:start_time"`
	EndTime       *string `gorm:"column:end_time"`
}

func (runRow) TableName() string {
	return tableRuns
}

type sampleRow struct {
	ID               int64   `gorm:"column:id;primaryKey;autoIncrement:true"`
	RunID            int64   `gorm:"column:run_id"`
	Timestamp        string  `gorm:"column:timestamp"`
	CurrentPowerDraw float64 `gorm:"column:current_power_draw"`
	CPUPower         float64 `gorm:"column:cpu_power"`
	CPUTemp          float64 `gorm:"column:cpu_temp"`
	CPUFreq          *string `gorm:"column:cpu_freq"`
}

func (sampleRow) TableName() string {
	return tableSystemSamples
}

type modelRow struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement:true"`
	Name        string `gorm:"column:name"`
	SystemInfo  string `gorm:"column:system_info"`
	PathToModel string `gorm:"column:path_to_model"`
	Type        string `gorm:"column:type"`
	Created     string `gorm:"column:created_at"`
}

func (modelRow) TableName() string {
	return tableModels
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func toRunRow(r *benchmark.Run) runRow {
	row := runRow{
		BenchmarkID:   *r.BenchmarkID,
		CPU:           r.CPU,
		Cores:         r.Cores,
		ThreadPerCore: r.ThreadsPerCore,
		Frequency:     r.Frequency,
		Gflops:        r.Gflops,
		Flop:          r.Flop,
		EnergyUsed:    r.EnergyUsedJoules(),
		GflopsPerWatt: r.GflopsPerWatt(),
		StartTime:     formatTime(r.StartTime),
	}
	if r.EndTime != nil {
		end := formatTime(*r.EndTime)
		row.EndTime = &end
	}
	return row
}

func fromRunRow(row runRow, samples []system.SystemSample) (*benchmark.Run, error) {
	start, err := parseTime(row.StartTime)
	if err != nil {
		return nil, err
	}
	bid := row.BenchmarkID
	r := &benchmark.Run{
		ID:             row.ID,
		CPU:            row.CPU,
		Cores:          row.Cores,
		ThreadsPerCore: row.ThreadPerCore,
		Frequency:      row.Frequency,
		Gflops:         row.Gflops,
		Flop:           row.Flop,
		Samples:        samples,
		StartTime:      start,
		BenchmarkID:    &bid,
	}
	if row.EndTime != nil && *row.EndTime != "" {
		end, err := parseTime(*row.EndTime)
		if err != nil {
			return nil, err
		}
		r.EndTime = &end
	}
	return benchmark.Restore(r, row.EnergyUsed, row.GflopsPerWatt), nil
}

func toSampleRows(runID int64, samples []system.SystemSample) ([]sampleRow, error) {
	rows := make([]sampleRow, 0, len(samples))
	for _, s := range samples {
		freq := s.CPUFreq
		if freq == nil {
			freq = []system.CPUFreq{}
		}
		b, err := json.Marshal(freq)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cpu frequencies: %w", err)
		}
		encoded := string(b)
		rows = append(rows, sampleRow{
			RunID:            runID,
			Timestamp:        formatTime(s.Timestamp),
			CurrentPowerDraw: s.CurrentPowerDraw,
			CPUPower:         s.CPUPower,
			CPUTemp:          s.CPUTemp,
			CPUFreq:          &encoded,
		})
	}
	return rows, nil
}

func fromSampleRow(row sampleRow) (system.SystemSample, error) {
	ts, err := parseTime(row.Timestamp)
	if err != nil {
		return system.SystemSample{}, err
	}
	s := system.SystemSample{
		Timestamp:        ts,
		CurrentPowerDraw: row.CurrentPowerDraw,
		CPUPower:         row.CPUPower,
		CPUTemp:          row.CPUTemp,
		CPUFreq:          []system.CPUFreq{},
	}
	if row.CPUFreq != nil && *row.CPUFreq != "" {
		if err := json.Unmarshal([]byte(*row.CPUFreq), &s.CPUFreq); err != nil {
			return system.SystemSample{}, fmt.Errorf("invalid cpu_freq for sample %d: %w", row.ID, err)
		}
	}
	return s, nil
}

func fromModelRow(row modelRow) (*model.Model, error) {
	info, err := system.ParseSystemInfo(row.SystemInfo)
	if err != nil {
		return nil, err
	}
	created, err := parseTime(row.Created)
	if err != nil {
		return nil, err
	}
	return &model.Model{
		ID:          row.ID,
		Name:        row.Name,
		SystemInfo:  info,
		PathToModel: row.PathToModel,
		Type:        row.Type,
		CreatedAt:   created,
	}, nil
}
