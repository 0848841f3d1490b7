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
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/AndersSpringborg/chronus/pkg/errors"
)

// codeNone labels successful requests in chronus_http_requests_total.
const codeNone = "none"

// chain wraps rt with the middleware chain, outermost first: instrumentation,
// request ID, panic recovery, the route token bucket and the route deadline.
func (s *Server) chain(rt Route) http.HandlerFunc {
	return instrument(rt.Pattern,
		withRequestID(
			recoverPanic(rt.Pattern,
				limitRate(rt.Pattern, s.limiter(rt),
					withDeadline(rt.Pattern, rt.Timeout, rt.Handler)))))
}

// responseWriter records what the chain and the handler wrote.
type responseWriter struct {
	http.ResponseWriter
	status    int
	written   bool
	errorCode errors.ErrorCode
}

func (rw *responseWriter) WriteHeader(status int) {
	if rw.written {
		return
	}
	rw.status = status
	rw.written = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// instrument records metrics and logs one line per request.
func instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		elapsed := time.Since(start)
		code := string(rw.errorCode)
		if code == "" {
			code = codeNone
		}
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rw.status), code).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		level := slog.LevelDebug
		if rw.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "request completed",
			"requestID", rw.Header().Get("X-Request-Id"),
			"route", route,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"code", code,
			"duration", elapsed.String())
	}
}

// withRequestID keeps a client supplied UUID in X-Request-Id or assigns one.
func withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next(w, r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, id)))
	}
}

func recoverPanic(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			panicRecoveries.WithLabelValues(route).Inc()
			slog.Error("panic recovered",
				"error", fmt.Sprint(v),
				"requestID", RequestID(r),
				"route", route,
				"method", r.Method)
			if rw, ok := w.(*responseWriter); ok && rw.written {
				return
			}
			WriteError(w, r, http.StatusInternalServerError, errors.ErrCodeInternal,
				"internal server error", true, nil)
		}()
		next(w, r)
	}
}

func limitRate(route string, limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(float64(limiter.Limit()), 'f', -1, 64))
		if !limiter.Allow() {
			rateLimitRejects.WithLabelValues(route).Inc()
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limiter.Limit())))
			WriteError(w, r, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded,
				"rate limit exceeded", true, map[string]any{
					"route": route,
					"limit": float64(limiter.Limit()),
					"burst": limiter.Burst(),
				})
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		next(w, r)
	}
}

// retryAfterSeconds is the time until one token is back, at least 1s.
func retryAfterSeconds(limit rate.Limit) int {
	if limit <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(limit))))
}

// withDeadline bounds the request context by d. Handlers that return on
// cancellation without writing get a TIMEOUT envelope.
func withDeadline(route string, d time.Duration, next http.HandlerFunc) http.HandlerFunc {
	if d <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()

		next(w, r.WithContext(ctx))

		if !stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}
		requestTimeouts.WithLabelValues(route).Inc()
		if rw, ok := w.(*responseWriter); ok && rw.written {
			return
		}
		WriteError(w, r, http.StatusGatewayTimeout, errors.ErrCodeTimeout,
			"request timed out", true, map[string]any{"route": route, "timeout": d.String()})
	}
}
