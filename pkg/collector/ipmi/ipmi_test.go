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

package ipmi

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/AndersSpringborg/chronus/pkg/command"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const sensorOutput = `Total_Power      | 240
CPU_Temp         | 45.5
CPU_Power        | 120
`

func ipmitool(out string, err error) command.Executor {
	return command.Func(func(_ context.Context, c command.Cmd) ([]byte, error) {
		want := "ipmitool sensor reading Total_Power CPU_Temp CPU_Power"
		if c.String() != want {
			return nil, fmt.Errorf("unexpected command %q", c.String())
		}
		return []byte(out), err
	})
}

// cpufreq lays out sysfs for cpus with kHz readings.
func cpufreq(t *testing.T, cpus map[int][3]string) string {
	t.Helper()
	root := t.TempDir()
	for n, v := range cpus {
		dir := filepath.Join(root, fmt.Sprintf("cpu%d", n), "cpufreq")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for i, name := range []string{"scaling_cur_freq", "scaling_min_freq", "scaling_max_freq"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(v[i]+"\n"), 0o644))
		}
	}
	return root
}

func TestSample(t *testing.T) {
	root := cpufreq(t, map[int][3]string{
		0:  {"2200000", "1500000", "3000000"},
		1:  {"1500000", "1500000", "3000000"},
		10: {"3000000", "1500000", "3000000"},
	})
	c := NewCollector(
		WithExecutor(ipmitool(sensorOutput, nil)),
		WithSysfsRoot(root),
		WithClock(testingclock.NewFakePassiveClock(epoch)),
	)

	s, err := c.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, epoch, s.Timestamp)
	assert.Equal(t, 240.0, s.CurrentPowerDraw)
	assert.Equal(t, 45.5, s.CPUTemp)
	assert.Equal(t, 120.0, s.CPUPower)
	assert.Equal(t, []system.CPUFreq{
		{Current: 2200000, Min: 1500000, Max: 3000000},
		{Current: 1500000, Min: 1500000, Max: 3000000},
		{Current: 3000000, Min: 1500000, Max: 3000000},
	}, s.CPUFreq)
}

func TestSampleWithoutCPUFreq(t *testing.T) {
	c := NewCollector(WithExecutor(ipmitool(sensorOutput, nil)), WithSysfsRoot(t.TempDir()))

	s, err := c.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []system.CPUFreq{}, s.CPUFreq)
}

func TestSampleErrors(t *testing.T) {
	tests := []struct {
		name string
		exec command.Executor
	}{
		{name: "ipmitool fails", exec: ipmitool("", errors.New(errors.ErrCodeServiceUnavailable, "not found"))},
		{name: "sensor missing", exec: ipmitool("Total_Power | 240\nCPU_Temp | 45\n", nil)},
		{name: "no reading", exec: ipmitool("Total_Power | na\nCPU_Temp | 45\nCPU_Power | 120\n", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector(WithExecutor(tt.exec), WithSysfsRoot(t.TempDir()))
			_, err := c.Sample(context.Background())
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeTelemetryUnavailable))
		})
	}
}

func TestSampleUnreadableFrequency(t *testing.T) {
	root := cpufreq(t, map[int][3]string{0: {"2200000", "1500000", "3000000"}})
	require.NoError(t, os.Remove(filepath.Join(root, "cpu0", "cpufreq", "scaling_max_freq")))

	c := NewCollector(WithExecutor(ipmitool(sensorOutput, nil)), WithSysfsRoot(root))
	_, err := c.Sample(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeTelemetryUnavailable))
}
