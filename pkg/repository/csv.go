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
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	apperrors "github.com/AndersSpringborg/chronus/pkg/errors"
)

var csvHeader = []string{
	"cpu", "cores", "thread_per_core", "frequency", "gflops", "gflop",
	"energy_used", "gflops_per_watt", "start_time", "end_time",
}

// RunLister is the subset of Repository needed to export runs.
type RunLister interface {
	GetAllRuns(ctx context.Context, benchmarkID *int64) ([]*benchmark.Run, error)
}

// ExportCSV writes every stored run, or only those of benchmarkID, to w.
func ExportCSV(ctx context.Context, repo RunLister, benchmarkID *int64, w io.Writer) error {
	runs, err := repo.GetAllRuns(ctx, benchmarkID)
	if err != nil {
		return err
	}
	return WriteCSV(w, runs)
}

// WriteCSV writes runs to w with a header row.
func WriteCSV(w io.Writer, runs []*benchmark.Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to write csv header", err)
	}
	for _, r := range runs {
		end := ""
		if r.EndTime != nil {
			end = formatTime(*r.EndTime)
		}
		rec := []string{
			r.CPU,
			strconv.Itoa(r.Cores),
			strconv.Itoa(r.ThreadsPerCore),
			formatFloat(r.Frequency),
			formatFloat(r.Gflops),
			formatFloat(r.Flop),
			formatFloat(r.EnergyUsedJoules()),
			formatFloat(r.GflopsPerWatt()),
			formatTime(r.StartTime),
			end,
		}
		if err := cw.Write(rec); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to write csv record", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to flush csv", err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
