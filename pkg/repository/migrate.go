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
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS benchmarks (
    id INTEGER PRIMARY KEY,
    system_info TEXT,
    application TEXT,
    created_at TEXT
)`,
	`CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY,
    benchmark_id INTEGER,
    cpu TEXT,
    cores INTEGER,
    thread_per_core INTEGER,
    frequency REAL,
    gflops REAL,
    flop REAL,
    energy_used REAL,
    gflops_per_watt REAL,
    start_time TEXT,
    end_time TEXT,
    FOREIGN KEY(benchmark_id) REFERENCES benchmarks(id)
)`,
	`CREATE TABLE IF NOT EXISTS system_samples (
    id INTEGER PRIMARY KEY,
    run_id INTEGER,
    timestamp TEXT,
    current_power_draw REAL,
    cpu_power REAL,
    cpu_temp REAL,
    FOREIGN KEY(run_id) REFERENCES runs(id)
)`,
	`CREATE TABLE IF NOT EXISTS models (
    id INTEGER PRIMARY KEY,
    name TEXT,
    system_info TEXT,
    path_to_model TEXT,
    type TEXT,
    created_at TEXT
)`,
}

// migration is a schema change applied after table creation.
type migration struct {
	name  string
	query string
}

// migrations are applied in order on every open. Append only.
var migrations = []migration{
	{
		name:  "add_cpu_freq_to_system_samples",
		query: "ALTER TABLE system_samples ADD COLUMN cpu_freq TEXT",
	},
	{
		name:  "index_runs_benchmark_id",
		query: "CREATE INDEX IF NOT EXISTS idx_runs_benchmark_id ON runs(benchmark_id)",
	},
	{
		name:  "index_system_samples_run_id",
		query: "CREATE INDEX IF NOT EXISTS idx_system_samples_run_id ON system_samples(run_id)",
	},
}

func createSchema(ctx context.Context, db *gorm.DB) error {
	for _, stmt := range schema {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	for _, m := range migrations {
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *gorm.DB, m migration) error {
	err := db.WithContext(ctx).Exec(m.query).Error
	if err == nil {
		slog.Debug("migration applied", "migration", m.name)
		return nil
	}
	if isAlreadyApplied(err) {
		slog.Info("migration already applied", "migration", m.name, "reason", err.Error())
		return nil
	}
	return fmt.Errorf("migration %s failed: %w", m.name, err)
}

func isAlreadyApplied(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}
