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

package systemd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/AndersSpringborg/chronus/pkg/errors"
)

// UnitStatus is the state of one systemd unit.
type UnitStatus struct {
	Name        string `json:"name" yaml:"name"`
	LoadState   string `json:"loadState" yaml:"loadState"`
	ActiveState string `json:"activeState" yaml:"activeState"`
	SubState    string `json:"subState" yaml:"subState"`
}

// Active reports whether the unit is running.
func (u UnitStatus) Active() bool {
	return u.ActiveState == "active"
}

// unitConn is the subset of *dbus.Conn the collector uses.
type unitConn interface {
	GetUnitPropertiesContext(ctx context.Context, unit string) (map[string]interface{}, error)
	Close()
}

// Collector reads unit states over D-Bus.
type Collector struct {
	Services []string

	connect func(ctx context.Context) (unitConn, error)
}

// DefaultServices are the units a slurm compute node needs.
func DefaultServices() []string {
	return []string{"slurmd.service", "munge.service"}
}

// Collect returns the state of every configured unit in order.
func (s *Collector) Collect(ctx context.Context) ([]UnitStatus, error) {
	services := s.Services
	if len(services) == 0 {
		services = DefaultServices()
	}

	connect := s.connect
	if connect == nil {
		connect = systemBus
	}
	conn, err := connect(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTelemetryUnavailable, "failed to connect to systemd", err)
	}
	defer conn.Close()

	res := make([]UnitStatus, 0, len(services))
	for _, service := range services {
		props, err := conn.GetUnitPropertiesContext(ctx, service)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeTelemetryUnavailable,
				fmt.Sprintf("failed to get properties of %s", service), err)
		}
		u := UnitStatus{
			Name:        service,
			LoadState:   stringProp(props, "LoadState"),
			ActiveState: stringProp(props, "ActiveState"),
			SubState:    stringProp(props, "SubState"),
		}
		slog.Debug("unit state", "unit", u.Name, "load", u.LoadState, "active", u.ActiveState, "sub", u.SubState)
		res = append(res, u)
	}
	return res, nil
}

func systemBus(ctx context.Context) (unitConn, error) {
	return dbus.NewSystemdConnectionContext(ctx)
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
