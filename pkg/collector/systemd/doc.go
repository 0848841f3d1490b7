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

// Package systemd reports the state of the services a benchmark sweep
// depends on, such as slurmd and munge on slurm nodes.
//
// The collector talks to systemd over D-Bus and reads the load, active and
// sub states of each configured unit:
//
//	c := &systemd.Collector{Services: systemd.DefaultServices()}
//	units, err := c.Collect(ctx)
//	for _, u := range units {
//	    if !u.Active() {
//	        slog.Warn("service not running", "unit", u.Name, "state", u.ActiveState)
//	    }
//	}
//
// Collection fails with TELEMETRY_UNAVAILABLE when the system bus cannot be
// reached, for example inside a container.
package systemd
