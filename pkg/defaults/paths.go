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

package defaults

const (
	// SettingsRoot is the system-wide directory holding the active model.
	SettingsRoot = "/etc/chronus"

	// SettingsFile is the settings document name inside SettingsRoot.
	SettingsFile = "settings.json"

	// LocalModelName is the well-known artifact name inside SettingsRoot.
	LocalModelName = "model"

	// DatabasePath is the default SQLite database location.
	DatabasePath = "chronus.db"

	// ModelDir is where trained model artifacts are written.
	ModelDir = "models"

	// BestRunsLimit is the default number of runs returned by the
	// efficiency ranking.
	BestRunsLimit = 15

	// ServerPort is the default daemon port.
	ServerPort = 8080
)
