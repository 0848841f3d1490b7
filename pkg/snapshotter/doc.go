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

// Package snapshotter captures a point-in-time report of a benchmark node.
//
// A snapshot combines what a sweep needs to know before it starts:
//   - the CPU fingerprint and the size of its configuration space
//   - the state of the services the runner depends on (slurmd, munge)
//   - one telemetry reading, proving ipmitool and sysfs are readable
//
// The three collectors run concurrently:
//
//	s := &snapshotter.NodeSnapshotter{
//	    Version:    version,
//	    Factory:    collector.NewDefaultFactory(),
//	    Serializer: serializer.NewStdoutWriter(serializer.FormatYAML),
//	}
//	if err := s.Measure(ctx); err != nil {
//	    return err
//	}
//
// Probe and telemetry failures fail the snapshot. Service state is best
// effort since the system bus is often unavailable in containers; a failure
// there is logged and the services are left out.
//
// Output carries a header with kind Snapshot and the source host in
// metadata.
package snapshotter
