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

package runner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"github.com/AndersSpringborg/chronus/pkg/errors"
)

const (
	// OutputDirName is created inside the work directory for every sweep.
	OutputDirName = "hpcg_benchmark_output"

	hpcgDatFile   = "hpcg.dat"
	reportPattern = "HPCG-Benchmark_*"

	// Problem size 104^3 for 900 seconds.
	hpcgDat = "HPCG benchmark input file\n" +
		"Benchmarked on 2020-11-24 14:00:00\n" +
		"104 104 104\n" +
		"900"
)

var (
	gflopsRe = regexp.MustCompile(`GFLOP/s rating of=(\d+\.\d+)`)
	flopRe   = regexp.MustCompile(`Floating Point Operations Summary::Total=(\d+\.\d+e\+\d+)`)
)

// workspace is the output directory shared by the HPCG runners.
type workspace struct {
	dir string
}

func newWorkspace(workDir string) workspace {
	if workDir == "" {
		workDir = "."
	}
	return workspace{dir: filepath.Join(workDir, OutputDirName)}
}

func (w workspace) prepare() error {
	if _, err := os.Stat(w.dir); err == nil {
		return errors.NewWithContext(errors.ErrCodePreparationFailed, "output directory already exists",
			map[string]any{"dir": w.dir})
	}
	if err := os.Mkdir(w.dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodePreparationFailed, fmt.Sprintf("failed to create %s", w.dir), err)
	}
	slog.Info("created output directory", "dir", w.dir)

	if err := w.write(hpcgDatFile, hpcgDat); err != nil {
		return errors.Wrap(errors.ErrCodePreparationFailed, "failed to write hpcg input", err)
	}
	return nil
}

func (w workspace) write(name, content string) error {
	p := filepath.Join(w.dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to write %s", p), err)
	}
	slog.Debug("wrote file", "path", p)
	return nil
}

// report returns the newest HPCG report in the directory. HPCG names reports
// by completion time, so the lexically last one is the newest.
func (w workspace) report() (string, error) {
	matches, err := filepath.Glob(filepath.Join(w.dir, reportPattern))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "invalid report pattern", err)
	}
	if len(matches) == 0 {
		return "", errors.NewWithContext(errors.ErrCodeJobFailed, "benchmark produced no report",
			map[string]any{"dir": w.dir})
	}
	slices.Sort(matches)
	b, err := os.ReadFile(matches[len(matches)-1])
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeJobFailed, "failed to read benchmark report", err)
	}
	return string(b), nil
}

func (w workspace) gflops() (float64, error) {
	return w.parse(gflopsRe, "GFLOP/s rating")
}

func (w workspace) flop() (float64, error) {
	return w.parse(flopRe, "floating point operations total")
}

func (w workspace) parse(re *regexp.Regexp, what string) (float64, error) {
	content, err := w.report()
	if err != nil {
		return 0, err
	}
	v, err := parseReport(content, re)
	if err != nil {
		return 0, errors.WrapWithContext(errors.ErrCodeJobFailed, fmt.Sprintf("%s not found in report", what), err,
			map[string]any{"dir": w.dir})
	}
	slog.Debug("parsed report", "field", what, "value", v)
	return v, nil
}

func (w workspace) cleanup() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to remove %s", w.dir), err)
	}
	slog.Info("removed output directory", "dir", w.dir)
	return nil
}

func parseReport(content string, re *regexp.Regexp) (float64, error) {
	m := re.FindStringSubmatch(content)
	if m == nil {
		return 0, fmt.Errorf("no match for %s", re.String())
	}
	return strconv.ParseFloat(m[1], 64)
}

func formatFrequency(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
