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

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/collector"
	"github.com/AndersSpringborg/chronus/pkg/collector/systemd"
	"github.com/AndersSpringborg/chronus/pkg/config"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/repository"
	"github.com/AndersSpringborg/chronus/pkg/serializer"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeProber struct{}

func (fakeProber) GetCPUInfo(context.Context) (system.SystemInfo, error) {
	return system.NewSystemInfo("Test CPU", 4, 2, []float64{1500000, 3000000}), nil
}

type fakeSampler struct{}

func (fakeSampler) Sample(context.Context) (system.SystemSample, error) {
	return system.SystemSample{Timestamp: time.Now(), CurrentPowerDraw: 150}, nil
}

type fakeServices struct{}

func (fakeServices) Collect(context.Context) ([]systemd.UnitStatus, error) {
	return []systemd.UnitStatus{{Name: "slurmd.service", ActiveState: "inactive"}}, nil
}

type fakeFactory struct{}

func (fakeFactory) CreateProber() collector.Prober                     { return fakeProber{} }
func (fakeFactory) CreateSampler() collector.Sampler                   { return fakeSampler{} }
func (fakeFactory) CreateServiceCollector() collector.ServiceCollector { return fakeServices{} }

func useFakeFactory(t *testing.T) {
	t.Helper()
	orig := newFactory
	newFactory = func() collector.Factory { return fakeFactory{} }
	t.Cleanup(func() { newFactory = orig })
}

// seedDB creates a database holding one benchmark with two finished runs.
func seedDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chronus.db")

	db, err := repository.Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	info := system.NewSystemInfo("AMD EPYC 7302", 16, 2, []float64{1500000, 2200000, 3000000})
	bid, err := db.SaveBenchmark(ctx, benchmark.New(info, "hpcg", epoch))
	require.NoError(t, err)

	for _, c := range []struct {
		cfg    system.Configuration
		gflops float64
	}{
		{system.Configuration{Cores: 8, ThreadsPerCore: 1, Frequency: 1500000}, 10},
		{system.Configuration{Cores: 16, ThreadsPerCore: 2, Frequency: 2200000}, 30},
	} {
		clk := testingclock.NewFakeClock(epoch)
		r := benchmark.NewRun(info.CPU, c.cfg, benchmark.WithClock(clk), benchmark.WithBenchmarkID(bid))
		for i, w := range []float64{100, 120} {
			require.NoError(t, r.AddSample(system.SystemSample{
				Timestamp:        epoch.Add(time.Duration(i) * time.Second),
				CurrentPowerDraw: w,
				CPUFreq:          []system.CPUFreq{{Current: 2200000, Min: 1500000, Max: 3000000}},
			}))
		}
		r.Gflops = c.gflops
		r.Flop = c.gflops * 2e9
		clk.Step(2 * time.Second)
		require.NoError(t, r.Finish())
		require.NoError(t, db.SaveRun(ctx, r))
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.Writer = &out
	root.ErrWriter = &bytes.Buffer{}
	err := root.Run(context.Background(), append([]string{name}, args...))
	return out.String(), err
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    serializer.Format
		wantErr bool
	}{
		{name: "default", args: nil, want: serializer.FormatTable},
		{name: "json", args: []string{"--format", "json"}, want: serializer.FormatJSON},
		{name: "yaml short", args: []string{"-t", "yaml"}, want: serializer.FormatYAML},
		{name: "unknown", args: []string{"--format", "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got serializer.Format
			var gotErr error
			cmd := &cli.Command{
				Name:  "test",
				Flags: outputFlags(),
				Action: func(_ context.Context, cmd *cli.Command) error {
					got, gotErr = parseOutputFormat(cmd)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, tt.args...)))
			if tt.wantErr {
				assert.Error(t, gotErr)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "chronus.yaml")
	require.NoError(t, os.WriteFile(file, []byte("database: file.db\nmodel_dir: file-models\nwork_dir: file-work\nsample_interval: 3s\n"), 0o600))

	t.Setenv("CHRONUS_MODEL_DIR", "env-models")
	t.Setenv("CHRONUS_WORK_DIR", "env-work")

	var cfg *config.Config
	cmd := &cli.Command{
		Name:  "test",
		Flags: append(globalFlags(), runnerFlags()...),
		Action: func(_ context.Context, cmd *cli.Command) error {
			var err error
			cfg, err = loadConfig(cmd)
			return err
		},
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"test", "--config", file, "--work-dir", "flag-work"}))

	assert.Equal(t, "file.db", cfg.Database, "file beats default")
	assert.Equal(t, "env-models", cfg.ModelDir, "env beats file")
	assert.Equal(t, "flag-work", cfg.WorkDir, "flag beats env")
	assert.Equal(t, 3*time.Second, time.Duration(cfg.SampleInterval))
	assert.Equal(t, "hpcg", cfg.Runner)
}

func TestLoadConfigRejectsUnknownRunner(t *testing.T) {
	cmd := &cli.Command{
		Name:   "test",
		Flags:  append(globalFlags(), runnerFlags()...),
		Action: func(_ context.Context, cmd *cli.Command) error { _, err := loadConfig(cmd); return err },
	}
	err := cmd.Run(context.Background(), []string{"test", "--runner", "pbs"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestSystemsCommand(t *testing.T) {
	db := seedDB(t)

	out, err := runCLI(t, "--database", db, "systems", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "SystemList")
	assert.Contains(t, out, "AMD EPYC 7302")
}

func TestRunsCommand(t *testing.T) {
	db := seedDB(t)

	t.Run("all", func(t *testing.T) {
		out, err := runCLI(t, "--database", db, "runs", "--format", "json")
		require.NoError(t, err)
		assert.Contains(t, out, "RunList")
		assert.Contains(t, out, "2200000")
	})

	t.Run("filtered to missing benchmark", func(t *testing.T) {
		out, err := runCLI(t, "--database", db, "runs", "--benchmark-id", "99", "--format", "json")
		require.NoError(t, err)
		assert.NotContains(t, out, "2200000")
	})

	t.Run("invalid benchmark id", func(t *testing.T) {
		_, err := runCLI(t, "--database", db, "runs", "--benchmark-id", "0")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
	})

	t.Run("best", func(t *testing.T) {
		out, err := runCLI(t, "--database", db, "runs", "--best", "--limit", "1", "--format", "table")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		assert.Len(t, lines, 2, "header plus one ranked run")
		assert.Contains(t, lines[1], "2200000")
	})
}

func TestExportCommand(t *testing.T) {
	db := seedDB(t)

	t.Run("stdout", func(t *testing.T) {
		out, err := runCLI(t, "--database", db, "export", "--output", "-")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "cpu,cores,thread_per_core,frequency"))
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "runs.csv")
		_, err := runCLI(t, "--database", db, "export", "--output", path)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "AMD EPYC 7302")
	})

	t.Run("output required", func(t *testing.T) {
		_, err := runCLI(t, "--database", db, "export")
		assert.Error(t, err)
	})
}

func TestMaintenanceCommand(t *testing.T) {
	db := seedDB(t)

	out, err := runCLI(t, "--database", db, "maintenance")
	require.NoError(t, err)
	assert.Contains(t, out, "recomputed 2 runs")
}

func TestRunConfigRejectsInvalidConfiguration(t *testing.T) {
	_, err := runCLI(t, "--database", filepath.Join(t.TempDir(), "chronus.db"),
		"run-config", "--cores", "0", "--frequency", "2200000")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestSnapshotCommand(t *testing.T) {
	useFakeFactory(t)

	out, err := runCLI(t, "snapshot", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot")
	assert.Contains(t, out, "Test CPU")
	assert.Contains(t, out, "slurmd.service")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "canceled", err: context.Canceled, want: 2},
		{name: "deadline", err: context.DeadlineExceeded, want: 2},
		{name: "timeout code", err: errors.New(errors.ErrCodeTimeout, "slow"), want: 2},
		{name: "wrapped cancel", err: errors.Wrap(errors.ErrCodeInternal, "stopped", context.Canceled), want: 2},
		{name: "other", err: errors.New(errors.ErrCodeInvalidRequest, "bad"), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
