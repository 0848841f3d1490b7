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
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AndersSpringborg/chronus/pkg/defaults"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/model"
)

// Mode controls whether the storage may be written.
type Mode int

const (
	ReadOnly Mode = iota
	Writable
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == Writable {
		return "writable"
	}
	return "read-only"
}

// Storage is a directory holding the settings file and loaded artifacts.
type Storage struct {
	root string
	mode Mode
}

// Open returns storage rooted at root. Writable storage creates root when
// missing. An empty root selects the default location.
func Open(root string, mode Mode) (*Storage, error) {
	if root == "" {
		root = defaults.SettingsRoot
	}
	s := &Storage{root: root, mode: mode}

	if mode == Writable {
		if err := os.MkdirAll(root, 0o755); err != nil {
			if stderrors.Is(err, fs.ErrPermission) {
				return nil, errors.WrapWithContext(errors.ErrCodeUnauthorized,
					fmt.Sprintf("permission denied creating %s, try running as root", root), err,
					map[string]any{"root": root})
			}
			return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to create %s", root), err)
		}
	}

	slog.Debug("local storage opened", "root", root, "mode", mode.String())
	return s, nil
}

// Root returns the storage directory.
func (s *Storage) Root() string {
	return s.root
}

// Mode returns the access mode the storage was opened with.
func (s *Storage) Mode() Mode {
	return s.mode
}

// FullPath resolves rel against the storage root.
func (s *Storage) FullPath(rel string) string {
	return filepath.Join(s.root, rel)
}

// GetSettings reads the settings file. A missing file yields empty settings.
func (s *Storage) GetSettings() (model.LocalSettings, error) {
	var settings model.LocalSettings

	b, err := os.ReadFile(s.FullPath(defaults.SettingsFile))
	if stderrors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		if stderrors.Is(err, fs.ErrPermission) {
			return settings, errors.Wrap(errors.ErrCodeUnauthorized, "permission denied reading settings", err)
		}
		return settings, errors.Wrap(errors.ErrCodeInternal, "failed to read settings", err)
	}

	if len(b) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(b, &settings); err != nil {
		return settings, errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("corrupt settings file %s", s.FullPath(defaults.SettingsFile)), err)
	}
	return settings, nil
}

// SaveSettings replaces the settings file. It fails on read-only storage.
func (s *Storage) SaveSettings(settings model.LocalSettings) error {
	if s.mode != Writable {
		return errors.NewWithContext(errors.ErrCodeUnauthorized, "local storage is read-only",
			map[string]any{"root": s.root})
	}

	b, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode settings", err)
	}

	// write then rename so readers never see a partial file
	path := s.FullPath(defaults.SettingsFile)
	tmp, err := os.CreateTemp(s.root, defaults.SettingsFile+".*")
	if err != nil {
		return s.writeError(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return s.writeError(err)
	}
	if err := tmp.Close(); err != nil {
		return s.writeError(err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return s.writeError(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return s.writeError(err)
	}

	slog.Info("settings saved", "path", path)
	return nil
}

func (s *Storage) writeError(err error) error {
	if stderrors.Is(err, fs.ErrPermission) {
		return errors.Wrap(errors.ErrCodeUnauthorized,
			fmt.Sprintf("permission denied writing to %s, try running as root", s.root), err)
	}
	return errors.Wrap(errors.ErrCodeInternal, "failed to write settings", err)
}
