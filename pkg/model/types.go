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

package model

import (
	"time"

	"github.com/AndersSpringborg/chronus/pkg/system"
)

// Model is the record of a trained optimizer artifact for one machine type.
type Model struct {
	ID          int64             `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	SystemInfo  system.SystemInfo `json:"system_info" yaml:"systemInfo"`
	PathToModel string            `json:"path_to_model" yaml:"pathToModel"`
	Type        string            `json:"type" yaml:"type"`
	CreatedAt   time.Time         `json:"created_at" yaml:"createdAt"`
}

// LocalSettings is the machine-local pointer to the active model.
type LocalSettings struct {
	LoadedModel *Model `json:"loaded_model" yaml:"loadedModel"`
}
