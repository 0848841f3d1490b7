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

// Package header provides the common header carried by chronus result
// documents.
//
// Every document the CLI and daemon emit (node snapshots, sweep summaries,
// recommendations) starts with a Kubernetes style header:
//
//	kind: Recommendation
//	apiVersion: chronus.dev/v1alpha1
//	metadata:
//	  timestamp: "2025-12-30T10:30:00Z"
//	  version: v0.3.0
//
// Documents embed the header inline:
//
//	type Recommendation struct {
//	    header.Header `json:",inline" yaml:",inline"`
//	    Configuration system.Configuration `json:"configuration" yaml:"configuration"`
//	}
//
//	rec.Init(header.KindRecommendation, header.APIVersion, version)
package header
