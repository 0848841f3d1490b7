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

// Package oci moves trained model artifacts to and from OCI registries with
// ORAS.
//
// A model artifact is a single JSON file packed as the only layer of an OCI
// 1.1 manifest with artifact type "application/vnd.chronus.model.v1+json".
// Model records may point at such an artifact with an oci:// reference
// instead of a local path, which lets a model trained on one machine be
// loaded on every machine of the same type.
//
// # Usage
//
// Publish a trained model:
//
//	ref, err := oci.ParseOutputTarget("oci://ghcr.io/acme/models:epyc-7302")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.Push(ctx, oci.PushOptions{Path: "/var/lib/chronus/models/brute-force-1.json", Reference: ref})
//
// Fetch it elsewhere:
//
//	err := oci.Pull(ctx, oci.PullOptions{Reference: ref, Destination: "/etc/chronus/model"})
//
// PushTo and PullFrom accept any oras.Target, such as a local OCI layout, so
// artifacts can be staged without a registry.
//
// # Authentication
//
// Credentials are read from the Docker configuration (~/.docker/config.json)
// through the ORAS credentials package. PlainHTTP and InsecureTLS exist for
// development registries.
package oci
