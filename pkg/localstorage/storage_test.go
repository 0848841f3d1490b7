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

package localstorage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/model"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

func TestOpenWritableCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "etc", "chronus")

	s, err := Open(root, Writable)
	require.NoError(t, err)
	assert.Equal(t, root, s.Root())
	assert.Equal(t, Writable, s.Mode())

	fi, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestOpenReadOnlyDoesNotCreate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	s, err := Open(root, ReadOnly)
	require.NoError(t, err)

	_, err = os.Stat(root)
	assert.True(t, os.IsNotExist(err))

	settings, err := s.GetSettings()
	require.NoError(t, err)
	assert.Nil(t, settings.LoadedModel)
}

func TestSettingsRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir(), Writable)
	require.NoError(t, err)

	m := &model.Model{
		ID:          7,
		Name:        "brute-force-test-cpu",
		SystemInfo:  system.NewSystemInfo("test-cpu", 8, 2, []float64{1.5, 3.0}),
		PathToModel: "/var/lib/chronus/models/brute-force-1.json",
		Type:        "brute-force",
		CreatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveSettings(model.LocalSettings{LoadedModel: m}))

	got, err := s.GetSettings()
	require.NoError(t, err)
	require.NotNil(t, got.LoadedModel)
	assert.Equal(t, m.ID, got.LoadedModel.ID)
	assert.Equal(t, m.Type, got.LoadedModel.Type)
	assert.True(t, got.LoadedModel.SystemInfo.Equal(m.SystemInfo))
	assert.True(t, got.LoadedModel.CreatedAt.Equal(m.CreatedAt))

	// reopening read-only sees the same settings
	ro, err := Open(s.Root(), ReadOnly)
	require.NoError(t, err)
	again, err := ro.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestSaveSettingsReadOnly(t *testing.T) {
	s, err := Open(t.TempDir(), ReadOnly)
	require.NoError(t, err)

	err = s.SaveSettings(model.LocalSettings{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))
}

func TestGetSettingsCorrupt(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "settings.json"), []byte("{not json"), 0o644))

	s, err := Open(root, ReadOnly)
	require.NoError(t, err)
	_, err = s.GetSettings()
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}

func TestFullPath(t *testing.T) {
	s, err := Open("/etc/chronus", ReadOnly)
	require.NoError(t, err)
	assert.Equal(t, "/etc/chronus/model", s.FullPath("model"))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "read-only", ReadOnly.String())
	assert.Equal(t, "writable", Writable.String())
}
