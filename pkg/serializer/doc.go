// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package serializer writes and reads chronus documents.
//
// Three output formats are supported:
//   - JSON: machine readable, indented
//   - YAML: human readable
//   - Table: column table for lists, flattened FIELD/VALUE table otherwise
//
// Writing:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatTable, outputPath)
//	defer w.Close()
//	if err := w.Serialize(ctx, runs); err != nil {
//	    return err
//	}
//
// Types implementing Tabular control the table layout:
//
//	func (l RunList) TableHeader() []string { return []string{"ID", "Cores", ...} }
//	func (l RunList) TableRows() [][]string { ... }
//
// Reading a JSON or YAML document from a local path or an http(s) URL,
// with the format inferred from the extension:
//
//	cfg, err := serializer.FromFile[config.File]("/etc/chronus/config.yaml")
//
// Fetching a document from the chronusd API:
//
//	r := serializer.NewHttpReader(serializer.WithTotalTimeout(10 * time.Second))
//	body, err := r.ReadWithContext(ctx, "http://node-1:8080/v1/recommendation")
//
// HTTP handlers respond through RespondJSON, which buffers the encoding so
// a failed encode never produces a partial response.
package serializer
