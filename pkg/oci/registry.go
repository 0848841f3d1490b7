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

package oci

import (
	"context"
)

// Registry pushes and pulls model artifacts over the network.
type Registry struct {
	// PlainHTTP uses HTTP instead of HTTPS.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// Push uploads the artifact at path to ref.
func (r *Registry) Push(ctx context.Context, path string, ref *Reference, annotations map[string]string) (*PushResult, error) {
	return Push(ctx, PushOptions{
		Path:        path,
		Reference:   ref,
		Annotations: annotations,
		PlainHTTP:   r.PlainHTTP,
		InsecureTLS: r.InsecureTLS,
	})
}

// Pull downloads the artifact at ref to dst.
func (r *Registry) Pull(ctx context.Context, ref *Reference, dst string) error {
	return Pull(ctx, PullOptions{
		Reference:   ref,
		Destination: dst,
		PlainHTTP:   r.PlainHTTP,
		InsecureTLS: r.InsecureTLS,
	})
}
