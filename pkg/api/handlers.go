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
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/defaults"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/model"
	"github.com/AndersSpringborg/chronus/pkg/repository"
	"github.com/AndersSpringborg/chronus/pkg/serializer"
	"github.com/AndersSpringborg/chronus/pkg/server"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// Store is the read side of the repository used by the API.
type Store interface {
	GetAllSystemInfo(ctx context.Context) ([]system.SystemInfo, error)
	GetAllModels(ctx context.Context) ([]*model.Model, error)
	GetAllRuns(ctx context.Context, benchmarkID *int64) ([]*benchmark.Run, error)
	GetBestRuns(ctx context.Context, limit int) ([]repository.RunEfficiency, error)
}

// Recommender evaluates the active model for this machine.
type Recommender interface {
	RunModel(ctx context.Context) (system.Configuration, error)
}

// Handler serves the read-only chronusd endpoints.
type Handler struct {
	store            Store
	recommender      Recommender
	version          string
	recommendTimeout time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithStore sets the repository the handlers read from.
func WithStore(s Store) Option {
	return func(h *Handler) {
		h.store = s
	}
}

// WithRecommender sets the model evaluator behind /v1/recommendation.
func WithRecommender(r Recommender) Option {
	return func(h *Handler) {
		h.recommender = r
	}
}

// WithVersion sets the tool version stamped on response documents.
func WithVersion(v string) Option {
	return func(h *Handler) {
		h.version = v
	}
}

// WithRecommendTimeout sets the deadline of the recommendation route.
func WithRecommendTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.recommendTimeout = d
		}
	}
}

// NewHandler returns a Handler with the given options applied.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		recommendTimeout: defaults.RecommendHandlerTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the endpoints registered with the server. The
// recommendation route gets its own deadline and token bucket.
func (h *Handler) Routes() []server.Route {
	return []server.Route{
		{Pattern: "/v1/systems", Handler: h.HandleSystems},
		{Pattern: "/v1/models", Handler: h.HandleModels},
		{Pattern: "/v1/runs", Handler: h.HandleRuns},
		{Pattern: "/v1/runs/best", Handler: h.HandleBestRuns},
		{
			Pattern: "/v1/recommendation",
			Handler: h.HandleRecommendation,
			Timeout: h.recommendTimeout,
			Limit:   defaults.RecommendRateLimit,
			Burst:   defaults.RecommendRateLimitBurst,
		},
	}
}

// HandleSystems serves GET /v1/systems.
func (h *Handler) HandleSystems(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, h.store != nil) {
		return
	}

	systems, err := h.store.GetAllSystemInfo(r.Context())
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to list systems", nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, NewSystemList(h.version, systems))
}

// HandleModels serves GET /v1/models.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, h.store != nil) {
		return
	}

	models, err := h.store.GetAllModels(r.Context())
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to list models", nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, NewModelList(h.version, models))
}

// HandleRuns serves GET /v1/runs with an optional benchmark_id filter.
func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, h.store != nil) {
		return
	}

	var benchmarkID *int64
	if raw := r.URL.Query().Get("benchmark_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
				"benchmark_id must be a positive integer", false, map[string]any{"benchmark_id": raw})
			return
		}
		benchmarkID = &id
	}

	runs, err := h.store.GetAllRuns(r.Context(), benchmarkID)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to list runs", nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, NewRunList(h.version, runs))
}

// HandleBestRuns serves GET /v1/runs/best?limit=N.
func (h *Handler) HandleBestRuns(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, h.store != nil) {
		return
	}

	limit := defaults.BestRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
				"limit must be a positive integer", false, map[string]any{"limit": raw})
			return
		}
		limit = n
	}

	runs, err := h.store.GetBestRuns(r.Context(), limit)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to rank runs", nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, NewEfficiencyList(h.version, runs))
}

// HandleRecommendation serves GET /v1/recommendation. The route deadline
// bounds the model evaluation.
func (h *Handler) HandleRecommendation(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, h.recommender != nil) {
		return
	}

	cfg, err := h.recommender.RunModel(r.Context())
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			err = errors.Wrap(errors.ErrCodeTimeout, "recommendation timed out", err)
		}
		server.WriteErrorFromErr(w, r, err, "failed to compute recommendation", nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, NewRecommendation(h.version, cfg))
}

// allow rejects non-GET requests and unconfigured handlers.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, configured bool) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"method not allowed", false, map[string]any{"method": r.Method})
		return false
	}
	if !configured {
		server.WriteError(w, r, http.StatusServiceUnavailable, errors.ErrCodeServiceUnavailable,
			"endpoint not configured", true, nil)
		return false
	}
	return true
}
