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
	"errors"
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	apperrors "github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/model"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// SQLite is the gorm backed Repository.
type SQLite struct {
	db   *gorm.DB
	path string
}

// Option configures the SQLite repository.
type Option func(*gorm.Config)

// WithLogger replaces the gorm query logger, which is silent by default.
func WithLogger(l logger.Interface) Option {
	return func(c *gorm.Config) {
		c.Logger = l
	}
}

// Open opens or creates the database at path and brings its schema up to date.
func Open(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	if path == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "database path is required")
	}

	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, fmt.Sprintf("failed to open database %q", path), err)
	}

	if err := createSchema(ctx, db); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to prepare database schema", err)
	}

	slog.Debug("database ready", "path", path)

	return &SQLite{db: db, path: path}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveBenchmark implements Repository.
func (s *SQLite) SaveBenchmark(ctx context.Context, b *benchmark.Benchmark) (int64, error) {
	row := benchmarkRow{
		SystemInfo:  b.SystemInfo.Key(),
		Application: b.Application,
		Created:     formatTime(b.CreatedAt),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert benchmark: %w", err)
		}
		b.ID = row.ID
		for _, r := range b.Runs {
			id := b.ID
			r.BenchmarkID = &id
			if err := saveRun(tx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to save benchmark", err)
	}

	slog.Info("benchmark saved", "id", b.ID, "application", b.Application, "runs", len(b.Runs))
	return b.ID, nil
}

// SaveRun implements Repository.
func (s *SQLite) SaveRun(ctx context.Context, r *benchmark.Run) error {
	if r == nil {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "run is required")
	}
	if r.BenchmarkID == nil {
		return apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "run must be associated with a benchmark",
			map[string]any{"configuration": r.Configuration().String()})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveRun(tx, r)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to save run", err)
	}

	slog.Info("run saved",
		"id", r.ID,
		"benchmark_id", *r.BenchmarkID,
		"configuration", r.Configuration().String(),
		"samples", len(r.Samples))
	return nil
}

func saveRun(tx *gorm.DB, r *benchmark.Run) error {
	row := toRunRow(r)
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	r.ID = row.ID

	samples, err := toSampleRows(row.ID, r.Samples)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return nil
	}
	if err := tx.Create(&samples).Error; err != nil {
		return fmt.Errorf("failed to insert samples for run %d: %w", row.ID, err)
	}
	return nil
}

// GetAllRuns implements Repository.
func (s *SQLite) GetAllRuns(ctx context.Context, benchmarkID *int64) ([]*benchmark.Run, error) {
	q := s.db.WithContext(ctx).Model(&runRow{})
	if benchmarkID != nil {
		q = q.Where("benchmark_id = ?", *benchmarkID)
	}

	var rows []runRow
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to query runs", err)
	}
	return s.hydrateRuns(ctx, rows)
}

// GetAllRunsFromSystem implements Repository.
func (s *SQLite) GetAllRunsFromSystem(ctx context.Context, info system.SystemInfo) ([]*benchmark.Run, error) {
	var rows []runRow
	err := s.db.WithContext(ctx).
		Table(tableRuns).
		Select(tableRuns+".*").
		Joins("JOIN "+tableBenchmarks+" ON "+tableBenchmarks+".id = "+tableRuns+".benchmark_id").
		Where(tableBenchmarks+".system_info = ?", info.Key()).
		Order(tableRuns + ".id").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to query runs for system", err)
	}
	return s.hydrateRuns(ctx, rows)
}

func (s *SQLite) hydrateRuns(ctx context.Context, rows []runRow) ([]*benchmark.Run, error) {
	if len(rows) == 0 {
		return []*benchmark.Run{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var sampleRows []sampleRow
	if err := s.db.WithContext(ctx).Where("run_id IN ?", ids).Order("id").Find(&sampleRows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to query samples", err)
	}

	byRun := make(map[int64][]system.SystemSample, len(rows))
	for _, sr := range sampleRows {
		smp, err := fromSampleRow(sr)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "corrupt sample row", err)
		}
		byRun[sr.RunID] = append(byRun[sr.RunID], smp)
	}

	runs := make([]*benchmark.Run, 0, len(rows))
	for _, row := range rows {
		samples := byRun[row.ID]
		if samples == nil {
			samples = []system.SystemSample{}
		}
		r, err := fromRunRow(row, samples)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "corrupt run row", err)
		}
		runs = append(runs, r)
	}
	return runs, nil
}

// GetAllSystemInfo implements Repository.
func (s *SQLite) GetAllSystemInfo(ctx context.Context) ([]system.SystemInfo, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&benchmarkRow{}).
		Select("system_info").
		Group("system_info").
		Order("MIN(id)").
		Pluck("system_info", &keys).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to query systems", err)
	}

	res := make([]system.SystemInfo, 0, len(keys))
	for _, k := range keys {
		info, err := system.ParseSystemInfo(k)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "corrupt system info", err)
		}
		res = append(res, info)
	}
	return res, nil
}

// GetAllBenchmarks returns every benchmark with its runs.
func (s *SQLite) GetAllBenchmarks(ctx context.Context) ([]BenchmarkSummary, error) {
	var rows []benchmarkRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to query benchmarks", err)
	}

	res := make([]BenchmarkSummary, 0, len(rows))
	for _, row := range rows {
		info, err := system.ParseSystemInfo(row.SystemInfo)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "corrupt system info", err)
		}
		created, err := parseTime(row.Created)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "corrupt benchmark row", err)
		}
		id := row.ID
		runs, err := s.GetAllRuns(ctx, &id)
		if err != nil {
			return nil, err
		}
		res = append(res, BenchmarkSummary{
			ID:          row.ID,
			SystemInfo:  info,
			Application: row.Application,
			CreatedAt:   created,
			Runs:        benchmark.Records(runs),
		})
	}
	return res, nil
}

// GetBestRuns ranks runs by flop per joule, best first.
func (s *SQLite) GetBestRuns(ctx context.Context, limit int) ([]RunEfficiency, error) {
	if limit <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "limit must be positive")
	}

	var rows []struct {
		ID            int64
		Cores         int
		ThreadPerCore int
		Frequency     float64
		StartTime     string
		EndTime       *string
		Efficiency    float64
	}
	err := s.db.WithContext(ctx).
		Model(&runRow{}).
		Select("id, cores, thread_per_core, frequency, start_time, end_time, flop / energy_used AS efficiency").
		Where("energy_used > 0").
		Order("efficiency DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to rank runs", err)
	}

	res := make([]RunEfficiency, 0, len(rows))
	for _, row := range rows {
		start, err := parseTime(row.StartTime)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "corrupt run row", err)
		}
		re := RunEfficiency{
			RunID:          row.ID,
			Cores:          row.Cores,
			ThreadsPerCore: row.ThreadPerCore,
			Frequency:      row.Frequency,
			StartTime:      start,
			Efficiency:     row.Efficiency,
		}
		if row.EndTime != nil && *row.EndTime != "" {
			end, err := parseTime(*row.EndTime)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "corrupt run row", err)
			}
			re.EndTime = &end
		}
		res = append(res, re)
	}
	return res, nil
}

// SaveModel implements Repository.
func (s *SQLite) SaveModel(ctx context.Context, m *model.Model) (int64, error) {
	row := modelRow{
		Name:        m.Name,
		SystemInfo:  m.SystemInfo.Key(),
		PathToModel: m.PathToModel,
		Type:        m.Type,
		Created:     formatTime(m.CreatedAt),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to save model", err)
	}
	m.ID = row.ID

	slog.Info("model saved", "id", m.ID, "name", m.Name, "type", m.Type)
	return m.ID, nil
}

// GetModel implements Repository.
func (s *SQLite) GetModel(ctx context.Context, id int64) (*model.Model, error) {
	var row modelRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeNotFound, "model not found",
			map[string]any{"id": id})
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to query model", err)
	}

	m, err := fromModelRow(row)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "corrupt model row", err)
	}
	return m, nil
}

// GetAllModels implements Repository.
func (s *SQLite) GetAllModels(ctx context.Context) ([]*model.Model, error) {
	var rows []modelRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to query models", err)
	}

	res := make([]*model.Model, 0, len(rows))
	for _, row := range rows {
		m, err := fromModelRow(row)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "corrupt model row", err)
		}
		res = append(res, m)
	}
	return res, nil
}
