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

// Package localstorage persists machine-local state under a settings root,
// by default /etc/chronus.
//
// The settings file records the model currently loaded on the machine. The
// load step writes it and the recommend step reads it. Storage opened in
// ReadOnly mode refuses writes, so commands that only recommend never need
// elevated privileges.
//
//	store, err := localstorage.Open(defaults.SettingsRoot, localstorage.Writable)
//	if err != nil {
//	    return err
//	}
//	err = store.SaveSettings(model.LocalSettings{LoadedModel: m})
package localstorage
