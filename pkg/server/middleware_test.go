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

package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cerrors "github.com/AndersSpringborg/chronus/pkg/errors"
)

func TestRequestID(t *testing.T) {
	const valid = "550e8400-e29b-41d4-a716-446655440000"

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "generated when missing"},
		{name: "kept when a uuid", header: valid, wantSame: true},
		{name: "replaced when not a uuid", header: "node-1; DROP TABLE runs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			s := New(WithRoutes(Route{Pattern: "/v1/models", Handler: func(w http.ResponseWriter, r *http.Request) {
				seen = RequestID(r)
			}}))

			req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-Id", tt.header)
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			got := w.Header().Get("X-Request-Id")
			if got == "" || got != seen {
				t.Fatalf("header %q and context %q must match", got, seen)
			}
			if tt.wantSame != (got == tt.header) {
				t.Errorf("request id = %q, header was %q", got, tt.header)
			}
		})
	}
}

func TestRouteRateLimit(t *testing.T) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	s := New(WithRoutes(
		Route{Pattern: "/v1/recommendation", Handler: ok, Limit: 0.5, Burst: 1},
		Route{Pattern: "/v1/systems", Handler: ok},
	))

	if w := serve(t, s, http.MethodGet, "/v1/recommendation"); w.Code != http.StatusOK {
		t.Fatalf("expected first recommendation to pass, got %d", w.Code)
	}

	w := serve(t, s, http.MethodGet, "/v1/recommendation")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Code != string(cerrors.ErrCodeRateLimitExceeded) || !resp.Retryable {
		t.Errorf("unexpected envelope %+v", resp)
	}
	if resp.Details["route"] != "/v1/recommendation" {
		t.Errorf("expected route in details, got %v", resp.Details)
	}
	if w.Header().Get("Retry-After") != "2" {
		t.Errorf("expected Retry-After 2, got %q", w.Header().Get("Retry-After"))
	}

	// the shared server bucket is untouched
	if w := serve(t, s, http.MethodGet, "/v1/systems"); w.Code != http.StatusOK {
		t.Errorf("expected /v1/systems 200, got %d", w.Code)
	}
}

func TestRouteDeadline(t *testing.T) {
	s := New(WithRoutes(
		Route{
			Pattern: "/v1/recommendation",
			Timeout: 20 * time.Millisecond,
			Handler: func(_ http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
			},
		},
		Route{
			Pattern: "/v1/runs/best",
			Timeout: 20 * time.Millisecond,
			Handler: func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
				WriteError(w, r, http.StatusServiceUnavailable, cerrors.ErrCodeTelemetryUnavailable,
					"probe did not answer", true, nil)
			},
		},
	))

	w := serve(t, s, http.MethodGet, "/v1/recommendation")
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != string(cerrors.ErrCodeTimeout) || resp.Details["timeout"] != "20ms" {
		t.Errorf("unexpected envelope %+v", resp)
	}

	w = serve(t, s, http.MethodGet, "/v1/runs/best")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected the handler's own error to be kept, got %d", w.Code)
	}
}

func TestPanicRecovery(t *testing.T) {
	s := New(WithRoutes(Route{Pattern: "/v1/runs", Handler: func(http.ResponseWriter, *http.Request) {
		panic("index out of range")
	}}))

	w := serve(t, s, http.MethodGet, "/v1/runs")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Code != string(cerrors.ErrCodeInternal) {
		t.Errorf("expected INTERNAL, got %s", resp.Code)
	}
	if resp.RequestID != w.Header().Get("X-Request-Id") {
		t.Errorf("expected body request id %s to match header %s", resp.RequestID, w.Header().Get("X-Request-Id"))
	}
}

func TestMetricsAreLabeledByRoute(t *testing.T) {
	s := New(WithRoutes(Route{Pattern: "/v1/models", Handler: func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusBadRequest, cerrors.ErrCodeInvalidRequest, "bad model id", false, nil)
	}}))

	serve(t, s, http.MethodGet, "/v1/models")
	serve(t, s, http.MethodGet, "/no/such/path")

	w := serve(t, s, http.MethodGet, "/metrics")
	body, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	text := string(body)

	for _, want := range []string{
		`chronus_http_requests_total{code="INVALID_REQUEST",method="GET",route="/v1/models",status="400"}`,
		`chronus_http_requests_total{code="NOT_FOUND",method="GET",route="/",status="404"}`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected metrics to contain %s", want)
		}
	}
	if strings.Contains(text, `route="/no/such/path"`) {
		t.Error("raw paths must not become metric labels")
	}
}

func TestDeadlineLeavesFastRequestsAlone(t *testing.T) {
	var deadlineSet bool
	s := New(WithRoutes(Route{
		Pattern: "/v1/systems",
		Timeout: time.Second,
		Handler: func(w http.ResponseWriter, r *http.Request) {
			_, deadlineSet = r.Context().Deadline()
			w.WriteHeader(http.StatusOK)
		},
	}))

	if w := serve(t, s, http.MethodGet, "/v1/systems"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !deadlineSet {
		t.Error("expected the route timeout on the request context")
	}
}
