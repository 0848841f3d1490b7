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

// Package config loads the chronus configuration file.
//
// The file is YAML or JSON, chosen by extension:
//
//	database: /var/lib/chronus/chronus.db
//	runner: hpcg
//	hpcg_path: /opt/hpcg/bin/xhpcg
//	work_dir: /scratch/chronus
//	settings_root: /etc/chronus
//	model_dir: /var/lib/chronus/models
//	sample_interval: 1s
//	server:
//	  port: 8080
//
// Keys left out keep their defaults from pkg/defaults. Command line flags
// and CHRONUS_* environment variables take precedence over the file; that
// merge happens in pkg/cli.
package config
