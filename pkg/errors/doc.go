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

// Package errors provides coded errors shared by every chronus component.
//
// Codes classify failures so callers can branch without string matching:
//
//   - ErrCodeJobFailed: one benchmark configuration failed; the sweep continues.
//   - ErrCodePreparationFailed: the benchmark workspace could not be created; fatal.
//   - ErrCodeInvalidRequest / ErrCodeNotFound: validation failures surfaced to the caller.
//   - ErrCodeTelemetryUnavailable: a sensor read failed; propagated, never substituted.
//
// Usage:
//
//	if err := runner.Run(ctx, cores, freq, tpc); err != nil {
//	    if errors.IsCode(err, errors.ErrCodeJobFailed) {
//	        slog.Warn("job failed", "error", err)
//	    }
//	}
package errors
