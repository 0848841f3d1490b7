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

package model

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/defaults"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/oci"
	"github.com/AndersSpringborg/chronus/pkg/optimizer"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

// Store is the persistence the model lifecycle needs.
type Store interface {
	GetAllSystemInfo(ctx context.Context) ([]system.SystemInfo, error)
	GetAllRunsFromSystem(ctx context.Context, info system.SystemInfo) ([]*benchmark.Run, error)
	SaveModel(ctx context.Context, m *Model) (int64, error)
	GetModel(ctx context.Context, id int64) (*Model, error)
	GetAllModels(ctx context.Context) ([]*Model, error)
}

// Settings is the machine-local settings store.
type Settings interface {
	GetSettings() (LocalSettings, error)
	SaveSettings(s LocalSettings) error
	FullPath(rel string) string
}

// Prober reports the current machine's capabilities.
type Prober interface {
	GetCPUInfo(ctx context.Context) (system.SystemInfo, error)
}

// Transport moves artifacts to and from registries.
type Transport interface {
	Push(ctx context.Context, path string, ref *oci.Reference, annotations map[string]string) (*oci.PushResult, error)
	Pull(ctx context.Context, ref *oci.Reference, dst string) error
}

// Service runs the model lifecycle.
type Service struct {
	store      Store
	settings   Settings
	probe      Prober
	transport  Transport
	optimizers func(name string) (optimizer.Optimizer, error)
	modelDir   string
	clock      clock.PassiveClock
	newID      func() string
}

// Option configures a Service.
type Option func(*Service)

// WithStore sets the repository.
func WithStore(s Store) Option {
	return func(svc *Service) {
		svc.store = s
	}
}

// WithSettings sets the local settings store.
func WithSettings(s Settings) Option {
	return func(svc *Service) {
		svc.settings = s
	}
}

// WithProbe sets the machine capability probe used by RunModel.
func WithProbe(p Prober) Option {
	return func(svc *Service) {
		svc.probe = p
	}
}

// WithTransport sets the registry transport. Defaults to oci.Registry.
func WithTransport(t Transport) Option {
	return func(svc *Service) {
		svc.transport = t
	}
}

// WithOptimizers replaces the optimizer lookup. Defaults to optimizer.New.
func WithOptimizers(f func(name string) (optimizer.Optimizer, error)) Option {
	return func(svc *Service) {
		svc.optimizers = f
	}
}

// WithModelDir sets where trained artifacts are written.
func WithModelDir(dir string) Option {
	return func(svc *Service) {
		svc.modelDir = dir
	}
}

// WithClock sets the clock used to stamp new models.
func WithClock(c clock.PassiveClock) Option {
	return func(svc *Service) {
		svc.clock = c
	}
}

// NewService returns a Service with the given options applied.
func NewService(opts ...Option) *Service {
	svc := &Service{
		transport:  &oci.Registry{},
		optimizers: optimizer.New,
		modelDir:   defaults.ModelDir,
		clock:      clock.RealClock{},
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// InitModel trains the named optimizer on the runs of the systemIndex-th
// known system and records the artifact. It returns the new model id.
func (s *Service) InitModel(ctx context.Context, systemIndex int, optimizerName string) (int64, error) {
	if err := s.require(s.store != nil, "store"); err != nil {
		return 0, err
	}

	systems, err := s.store.GetAllSystemInfo(ctx)
	if err != nil {
		return 0, err
	}
	if systemIndex < 0 || systemIndex >= len(systems) {
		return 0, errors.NewWithContext(errors.ErrCodeInvalidRequest, "system index out of range",
			map[string]any{"index": systemIndex, "systems": len(systems)})
	}
	info := systems[systemIndex]

	opt, err := s.optimizers(optimizerName)
	if err != nil {
		return 0, err
	}

	runs, err := s.store.GetAllRunsFromSystem(ctx, info)
	if err != nil {
		return 0, err
	}
	slog.Info("training model", "optimizer", opt.Name(), "system", info.String(), "runs", len(runs))

	if err := optimizer.Train(opt, runs); err != nil {
		return 0, err
	}

	path := filepath.Join(s.modelDir, fmt.Sprintf("%s-%s.json", opt.Name(), s.newID()))
	if err := opt.Save(path); err != nil {
		return 0, err
	}

	m := &Model{
		Name:        fmt.Sprintf("%s-%s", opt.Name(), info.CPU),
		SystemInfo:  info,
		PathToModel: path,
		Type:        opt.Name(),
		CreatedAt:   s.clock.Now(),
	}
	id, err := s.store.SaveModel(ctx, m)
	if err != nil {
		return 0, err
	}

	slog.Info("model initialized", "id", id, "name", m.Name, "path", path)
	return id, nil
}

// LoadModel activates the model with id on this machine.
func (s *Service) LoadModel(ctx context.Context, id int64) (*Model, error) {
	if err := s.require(s.store != nil && s.settings != nil, "store and settings"); err != nil {
		return nil, err
	}

	m, err := s.store.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}

	opt, err := s.optimizers(m.Type)
	if err != nil {
		return nil, err
	}

	// The active artifact is only replaced once the new one loads.
	dst := s.settings.FullPath(defaults.LocalModelName)
	staged, err := stageFile(dst)
	if err != nil {
		return nil, err
	}
	defer os.Remove(staged)

	if err := s.fetch(ctx, m.PathToModel, staged); err != nil {
		return nil, err
	}
	if err := opt.Load(staged); err != nil {
		return nil, err
	}
	if err := os.Rename(staged, dst); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to activate model at %s", dst), err)
	}

	if err := s.settings.SaveSettings(LocalSettings{LoadedModel: m}); err != nil {
		return nil, err
	}

	slog.Info("model loaded", "id", m.ID, "name", m.Name, "type", m.Type, "path", dst)
	return m, nil
}

// RunModel recommends a configuration for this machine with the active model.
func (s *Service) RunModel(ctx context.Context) (system.Configuration, error) {
	if err := s.require(s.settings != nil && s.probe != nil, "settings and probe"); err != nil {
		return system.Configuration{}, err
	}

	settings, err := s.settings.GetSettings()
	if err != nil {
		return system.Configuration{}, err
	}
	if settings.LoadedModel == nil {
		return system.Configuration{}, errors.New(errors.ErrCodeNotFound, "no model loaded, run load-model first")
	}

	opt, err := s.optimizers(settings.LoadedModel.Type)
	if err != nil {
		return system.Configuration{}, err
	}
	if err := opt.Load(s.settings.FullPath(defaults.LocalModelName)); err != nil {
		return system.Configuration{}, err
	}

	info, err := s.probe.GetCPUInfo(ctx)
	if err != nil {
		return system.Configuration{}, err
	}

	cfg, err := opt.Run(info)
	if err != nil {
		return system.Configuration{}, err
	}

	slog.Debug("configuration recommended", "model", settings.LoadedModel.Name, "configuration", cfg.String())
	return cfg, nil
}

// ListModels returns every recorded model.
func (s *Service) ListModels(ctx context.Context) ([]*Model, error) {
	if err := s.require(s.store != nil, "store"); err != nil {
		return nil, err
	}
	return s.store.GetAllModels(ctx)
}

// ListSystems returns every known system in index order.
func (s *Service) ListSystems(ctx context.Context) ([]system.SystemInfo, error) {
	if err := s.require(s.store != nil, "store"); err != nil {
		return nil, err
	}
	return s.store.GetAllSystemInfo(ctx)
}

// PublishModel pushes the artifact of model id to target, an oci:// reference.
// A reference without a tag is tagged "model-<id>".
func (s *Service) PublishModel(ctx context.Context, id int64, target string) (*oci.PushResult, error) {
	if err := s.require(s.store != nil, "store"); err != nil {
		return nil, err
	}

	ref, err := oci.ParseOutputTarget(target)
	if err != nil {
		return nil, err
	}
	if !ref.IsOCI {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "publish target must be an oci:// reference",
			map[string]any{"target": target})
	}
	if ref.Tag == "" {
		ref = ref.WithTag(fmt.Sprintf("model-%d", id))
	}

	m, err := s.store.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}
	if oci.IsURI(m.PathToModel) {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "model is already stored in a registry",
			map[string]any{"path": m.PathToModel})
	}

	return s.transport.Push(ctx, m.PathToModel, ref, map[string]string{
		oci.AnnotationModelType: m.Type,
		oci.AnnotationSystem:    m.SystemInfo.Key(),
		oci.AnnotationModelName: m.Name,
	})
}

func (s *Service) fetch(ctx context.Context, src, dst string) error {
	if !oci.IsURI(src) {
		return oci.CopyFile(src, dst)
	}
	ref, err := oci.ParseOutputTarget(src)
	if err != nil {
		return err
	}
	return s.transport.Pull(ctx, ref, dst)
}

// stageFile reserves an empty file next to dst so the final rename stays on
// one filesystem.
func stageFile(dst string) (string, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to create %s", dir), err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(dst)+"-*")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to stage model in %s", dir), err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to stage model", err)
	}
	return name, nil
}

func (s *Service) require(ok bool, what string) error {
	if ok {
		return nil
	}
	return errors.New(errors.ErrCodeInternal, fmt.Sprintf("model service is missing its %s", what))
}
