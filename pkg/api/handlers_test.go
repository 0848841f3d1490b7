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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/defaults"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/header"
	"github.com/AndersSpringborg/chronus/pkg/model"
	"github.com/AndersSpringborg/chronus/pkg/repository"
	"github.com/AndersSpringborg/chronus/pkg/server"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

type fakeStore struct {
	systems   []system.SystemInfo
	models    []*model.Model
	runs      []*benchmark.Run
	best      []repository.RunEfficiency
	err       error
	gotFilter *int64
	gotLimit  int
}

func (f *fakeStore) GetAllSystemInfo(context.Context) ([]system.SystemInfo, error) {
	return f.systems, f.err
}

func (f *fakeStore) GetAllModels(context.Context) ([]*model.Model, error) {
	return f.models, f.err
}

func (f *fakeStore) GetAllRuns(_ context.Context, benchmarkID *int64) ([]*benchmark.Run, error) {
	f.gotFilter = benchmarkID
	return f.runs, f.err
}

func (f *fakeStore) GetBestRuns(_ context.Context, limit int) ([]repository.RunEfficiency, error) {
	f.gotLimit = limit
	return f.best, f.err
}

type fakeRecommender struct {
	cfg   system.Configuration
	err   error
	block bool
}

func (f fakeRecommender) RunModel(ctx context.Context) (system.Configuration, error) {
	if f.block {
		<-ctx.Done()
		return system.Configuration{}, ctx.Err()
	}
	return f.cfg, f.err
}

func do(t *testing.T, h http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) server.ErrorResponse {
	t.Helper()
	var resp server.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestRoutes(t *testing.T) {
	routes := NewHandler(WithRecommendTimeout(time.Second)).Routes()

	byPattern := map[string]server.Route{}
	for _, rt := range routes {
		byPattern[rt.Pattern] = rt
	}
	for _, path := range []string{"/v1/systems", "/v1/models", "/v1/runs", "/v1/runs/best", "/v1/recommendation"} {
		if byPattern[path].Handler == nil {
			t.Errorf("expected route %s", path)
		}
	}

	rec := byPattern["/v1/recommendation"]
	if rec.Timeout != time.Second {
		t.Errorf("expected recommendation timeout 1s, got %v", rec.Timeout)
	}
	if rec.Limit != defaults.RecommendRateLimit || rec.Burst != defaults.RecommendRateLimitBurst {
		t.Errorf("expected dedicated recommendation limiter, got %v/%d", rec.Limit, rec.Burst)
	}
	if byPattern["/v1/systems"].Limit != 0 {
		t.Error("expected listing routes to share the server limiter")
	}
}

func TestHandleSystems(t *testing.T) {
	store := &fakeStore{systems: []system.SystemInfo{
		system.NewSystemInfo("EPYC", 64, 2, []float64{1500000, 2000000}),
	}}
	h := NewHandler(WithStore(store), WithVersion("v1.0.0"))

	w := do(t, h.HandleSystems, http.MethodGet, "/v1/systems")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got SystemList
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != header.KindSystemList || got.APIVersion != header.APIVersion {
		t.Errorf("unexpected header %+v", got.Header)
	}
	if got.Metadata["version"] != "v1.0.0" {
		t.Errorf("expected version metadata, got %v", got.Metadata)
	}
	if len(got.Systems) != 1 || got.Systems[0].CPU != "EPYC" {
		t.Errorf("unexpected systems %+v", got.Systems)
	}
}

func TestHandleModels(t *testing.T) {
	store := &fakeStore{models: []*model.Model{{ID: 3, Name: "brute-force-EPYC", Type: "brute-force"}}}
	h := NewHandler(WithStore(store))

	w := do(t, h.HandleModels, http.MethodGet, "/v1/models")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var got ModelList
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Models) != 1 || got.Models[0].ID != 3 {
		t.Errorf("unexpected models %+v", got.Models)
	}
}

func TestHandleRuns(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run := benchmark.Restore(&benchmark.Run{ID: 9, Cores: 8, ThreadsPerCore: 1, Frequency: 2000000, StartTime: start}, 100, 0.5)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantFilter *int64
	}{
		{name: "all runs", target: "/v1/runs", wantStatus: http.StatusOK},
		{name: "filtered", target: "/v1/runs?benchmark_id=4", wantStatus: http.StatusOK, wantFilter: ptr(4)},
		{name: "bad filter", target: "/v1/runs?benchmark_id=abc", wantStatus: http.StatusBadRequest},
		{name: "zero filter", target: "/v1/runs?benchmark_id=0", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{runs: []*benchmark.Run{run}}
			h := NewHandler(WithStore(store))

			w := do(t, h.HandleRuns, http.MethodGet, tt.target)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if resp := decodeError(t, w); resp.Code != string(errors.ErrCodeInvalidRequest) {
					t.Errorf("expected INVALID_REQUEST, got %s", resp.Code)
				}
				return
			}

			if (tt.wantFilter == nil) != (store.gotFilter == nil) ||
				(tt.wantFilter != nil && *tt.wantFilter != *store.gotFilter) {
				t.Errorf("filter = %v, want %v", store.gotFilter, tt.wantFilter)
			}

			var got RunList
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got.Runs) != 1 || got.Runs[0].GflopsPerWatt != 0.5 || got.Runs[0].EnergyUsed != 100 {
				t.Errorf("unexpected runs %+v", got.Runs)
			}
		})
	}
}

func TestHandleBestRuns(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantLimit  int
	}{
		{name: "default limit", target: "/v1/runs/best", wantStatus: http.StatusOK, wantLimit: 15},
		{name: "explicit limit", target: "/v1/runs/best?limit=3", wantStatus: http.StatusOK, wantLimit: 3},
		{name: "negative limit", target: "/v1/runs/best?limit=-1", wantStatus: http.StatusBadRequest},
		{name: "garbage limit", target: "/v1/runs/best?limit=ten", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{best: []repository.RunEfficiency{{RunID: 1, Efficiency: 42}}}
			h := NewHandler(WithStore(store))

			w := do(t, h.HandleBestRuns, http.MethodGet, tt.target)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK && store.gotLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", store.gotLimit, tt.wantLimit)
			}
		})
	}
}

func TestHandleRecommendation(t *testing.T) {
	cfg := system.Configuration{Cores: 32, ThreadsPerCore: 1, Frequency: 2200000}

	tests := []struct {
		name       string
		rec        Recommender
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{name: "ok", rec: fakeRecommender{cfg: cfg}, wantStatus: http.StatusOK},
		{
			name:       "no model loaded",
			rec:        fakeRecommender{err: errors.New(errors.ErrCodeNotFound, "no model loaded")},
			wantStatus: http.StatusNotFound,
			wantCode:   errors.ErrCodeNotFound,
		},
		{
			name:       "deadline exceeded",
			rec:        fakeRecommender{err: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   errors.ErrCodeTimeout,
		},
		{
			name:       "not configured",
			rec:        nil,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   errors.ErrCodeServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.rec != nil {
				opts = append(opts, WithRecommender(tt.rec))
			}
			h := NewHandler(opts...)

			w := do(t, h.HandleRecommendation, http.MethodGet, "/v1/recommendation")
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}

			if tt.wantCode != "" {
				if resp := decodeError(t, w); resp.Code != string(tt.wantCode) {
					t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
				}
				return
			}

			var got Recommendation
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Configuration != cfg || got.Kind != header.KindRecommendation {
				t.Errorf("unexpected recommendation %+v", got)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewHandler(WithStore(&fakeStore{}))

	w := do(t, h.HandleModels, http.MethodPost, "/v1/models")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if w.Header().Get("Allow") != http.MethodGet {
		t.Errorf("expected Allow: GET, got %q", w.Header().Get("Allow"))
	}
}

func TestStoreErrorIsMapped(t *testing.T) {
	store := &fakeStore{err: errors.New(errors.ErrCodeInternal, "disk on fire")}
	h := NewHandler(WithStore(store))

	w := do(t, h.HandleSystems, http.MethodGet, "/v1/systems")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Message != "disk on fire" {
		t.Errorf("expected structured message, got %q", resp.Message)
	}
}

func TestRoutesThroughServer(t *testing.T) {
	h := NewHandler(
		WithStore(&fakeStore{systems: []system.SystemInfo{}}),
		WithRecommender(fakeRecommender{block: true}),
		WithRecommendTimeout(20*time.Millisecond),
	)
	s := server.New(server.WithRoutes(h.Routes()...))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/systems", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("expected middleware to set X-Request-Id")
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/recommendation", nil))
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeError(t, w); resp.Code != string(errors.ErrCodeTimeout) {
		t.Errorf("expected TIMEOUT, got %s", resp.Code)
	}
}

func ptr(v int64) *int64 {
	return &v
}
