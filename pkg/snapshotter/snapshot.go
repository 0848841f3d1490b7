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

package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AndersSpringborg/chronus/pkg/collector"
	"github.com/AndersSpringborg/chronus/pkg/header"
	"github.com/AndersSpringborg/chronus/pkg/serializer"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// NodeSnapshotter collects a snapshot of the current node.
type NodeSnapshotter struct {
	// Version is the tool version recorded in the header.
	Version string

	// Factory creates the collectors. If nil, the default factory is used.
	Factory collector.Factory

	// Serializer writes the snapshot. If nil, JSON to stdout is used.
	Serializer serializer.Serializer
}

// Measure collects the snapshot and serializes it.
func (n *NodeSnapshotter) Measure(ctx context.Context) error {
	snap, err := n.Collect(ctx)
	if err != nil {
		return err
	}

	if n.Serializer == nil {
		n.Serializer = serializer.NewStdoutWriter(serializer.FormatJSON)
	}
	if err := n.Serializer.Serialize(ctx, snap); err != nil {
		slog.Error("failed to serialize", "error", err)
		return fmt.Errorf("failed to serialize: %w", err)
	}
	return nil
}

// Collect runs the collectors concurrently and returns the snapshot.
func (n *NodeSnapshotter) Collect(ctx context.Context) (*Snapshot, error) {
	if n.Factory == nil {
		n.Factory = collector.NewDefaultFactory()
	}

	slog.Debug("starting node snapshot")

	start := time.Now()
	defer func() {
		snapshotCollectionDuration.Observe(time.Since(start).Seconds())
	}()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	snap := NewSnapshot()
	snap.Init(header.KindSnapshot, header.APIVersion, n.Version)
	if host, err := os.Hostname(); err == nil {
		snap.Metadata["source-host"] = host
	}

	g.Go(func() error {
		defer observe("cpu", time.Now())
		info, err := n.Factory.CreateProber().GetCPUInfo(gctx)
		if err != nil {
			slog.Error("failed to probe cpu", "error", err)
			return fmt.Errorf("failed to probe cpu: %w", err)
		}
		mu.Lock()
		snap.System = info
		snap.Configurations = len(system.Space(info))
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		defer observe("telemetry", time.Now())
		sample, err := n.Factory.CreateSampler().Sample(gctx)
		if err != nil {
			slog.Error("failed to sample telemetry", "error", err)
			return fmt.Errorf("failed to sample telemetry: %w", err)
		}
		mu.Lock()
		snap.Telemetry = &sample
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		defer observe("services", time.Now())
		units, err := n.Factory.CreateServiceCollector().Collect(gctx)
		if err != nil {
			slog.Warn("service state unavailable", "error", err)
			return nil
		}
		mu.Lock()
		snap.Services = units
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		snapshotCollectionTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	snapshotCollectionTotal.WithLabelValues("success").Inc()

	slog.Debug("snapshot collection complete",
		"cpu", snap.System.CPU,
		"configurations", snap.Configurations,
		"services", len(snap.Services))
	return snap, nil
}

func observe(name string, start time.Time) {
	snapshotCollectorDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
