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
	"log/slog"

	apperrors "github.com/AndersSpringborg/chronus/pkg/errors"
)

// RecomputeEfficiency rewrites gflops_per_watt of every run that has samples
// as gflops divided by its mean sampled power draw. Returns the number of
// rows updated.
func (s *SQLite) RecomputeEfficiency(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Exec(`
UPDATE runs
SET gflops_per_watt = gflops / (
    SELECT AVG(current_power_draw) FROM system_samples WHERE system_samples.run_id = runs.id
)
WHERE (
    SELECT AVG(current_power_draw) FROM system_samples WHERE system_samples.run_id = runs.id
) > 0`)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to recompute efficiency", res.Error)
	}
	slog.Info("efficiency recomputed", "runs", res.RowsAffected)
	return res.RowsAffected, nil
}

// BackfillSampleFrequencies replaces missing per-CPU frequency readings on
// samples recorded before the column existed with an empty list.
func (s *SQLite) BackfillSampleFrequencies(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&sampleRow{}).
		Where("cpu_freq IS NULL OR cpu_freq = ''").
		Update("cpu_freq", "[]")
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to backfill sample frequencies", res.Error)
	}
	slog.Info("sample frequencies backfilled", "samples", res.RowsAffected)
	return res.RowsAffected, nil
}
