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

// Package model manages trained optimizer artifacts: training them from
// stored runs, activating one on the local machine, and recommending a
// configuration with the active one.
//
// The lifecycle has three steps, each a Service method:
//
//   - InitModel trains an optimizer on the runs of one known system, writes
//     the artifact under the model directory and records a Model.
//   - LoadModel copies a recorded artifact to the machine's well-known model
//     path and points the local settings at it.
//   - RunModel loads the active artifact and returns its recommendation for
//     the machine it runs on.
//
// Artifacts may live on the local filesystem or in an OCI registry
// (PathToModel starting with oci://). PublishModel pushes a local artifact
// to a registry.
package model
