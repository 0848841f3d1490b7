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

package header

import (
	"testing"
	"time"
)

func TestInit(t *testing.T) {
	var h Header
	h.Init(KindRecommendation, APIVersion, "v0.3.0")

	if h.Kind != KindRecommendation || h.APIVersion != APIVersion {
		t.Errorf("unexpected header %+v", h)
	}
	if h.Metadata["version"] != "v0.3.0" {
		t.Errorf("version = %q", h.Metadata["version"])
	}
	if _, err := time.Parse(time.RFC3339, h.Metadata["timestamp"]); err != nil {
		t.Errorf("timestamp %q: %v", h.Metadata["timestamp"], err)
	}

	h.Init(KindSnapshot, APIVersion, "")
	if _, ok := h.Metadata["version"]; ok {
		t.Error("empty version should be omitted")
	}
}

func TestNew(t *testing.T) {
	h := New(WithKind(KindSweepSummary), WithMetadata("host", "node-1"))
	if h.Kind != KindSweepSummary || h.APIVersion != APIVersion || h.Metadata["host"] != "node-1" {
		t.Errorf("unexpected header %+v", h)
	}

	h = New(WithAPIVersion("chronus.dev/v1"))
	if h.APIVersion != "chronus.dev/v1" {
		t.Errorf("APIVersion = %q", h.APIVersion)
	}
}

func TestKindIsValid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindSnapshot, true},
		{KindSweepSummary, true},
		{KindRecommendation, true},
		{KindModelList, true},
		{KindSystemList, true},
		{KindRunList, true},
		{Kind("Recipe"), false},
		{Kind(""), false},
	}
	for _, tt := range tests {
		if got := tt.kind.IsValid(); got != tt.want {
			t.Errorf("%q.IsValid() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
