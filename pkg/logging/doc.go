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

// Package logging provides structured logging setup for chronus binaries.
//
// # Overview
//
// The package wraps log/slog with chronus defaults: JSON records on stderr,
// module and version attributes on every record, and source locations when
// running at debug level.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: detailed diagnostic information with source location
//   - INFO: general informational messages (default)
//   - WARN/WARNING: potentially problematic situations, such as a failed
//     benchmark configuration that the sweep skipped
//   - ERROR: failures requiring attention
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("chronus", version)
//	    slog.Info("sweep started", "configurations", n)
//	}
//
// Setting an explicit level, for example from a --log-level flag:
//
//	logging.SetDefaultStructuredLoggerWithLevel("chronus", version, "debug")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls verbosity when no explicit
// level is given:
//
//	LOG_LEVEL=debug chronus benchmark --hpcg-path /opt/hpcg/xhpcg
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "run saved",
//	    "module": "chronus",
//	    "version": "v0.3.0",
//	    "cores": 4
//	}
package logging
