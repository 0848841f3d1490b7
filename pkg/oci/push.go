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

package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	apperrors "github.com/AndersSpringborg/chronus/pkg/errors"
)

const (
	// ArtifactType identifies chronus model artifacts.
	ArtifactType = "application/vnd.chronus.model.v1+json"

	// MediaTypeModel is the media type of the model layer.
	MediaTypeModel = "application/vnd.chronus.model.layer.v1+json"

	// AnnotationModelType records the optimizer that wrote the artifact.
	AnnotationModelType = "dev.chronus.model.type"

	// AnnotationSystem records the fingerprint the model was trained for.
	AnnotationSystem = "dev.chronus.model.system"

	// AnnotationModelName carries the model record name.
	AnnotationModelName = ociv1.AnnotationTitle
)

// PushOptions configures a model push.
type PushOptions struct {
	// Path is the model artifact file.
	Path string
	// Reference is the destination. It must be an OCI reference with a tag.
	Reference *Reference
	// Annotations are added to the manifest.
	Annotations map[string]string
	// PlainHTTP uses HTTP instead of HTTPS.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// PushResult describes a pushed artifact.
type PushResult struct {
	// Digest is the manifest digest.
	Digest string `json:"digest" yaml:"digest"`
	// Reference is registry/repository:tag.
	Reference string `json:"reference" yaml:"reference"`
}

// Push packs the artifact at opts.Path and pushes it to the registry.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	ref := opts.Reference
	if ref == nil || !ref.IsOCI {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference is required to push")
	}
	if ref.Tag == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required to push OCI artifact")
	}

	repo, err := newRepository(ref, opts.PlainHTTP, opts.InsecureTLS)
	if err != nil {
		return nil, err
	}

	slog.Info("pushing model artifact", "path", opts.Path, "reference", ref.ImageReference())

	digest, err := PushTo(ctx, opts.Path, ref.Tag, repo, opts.Annotations)
	if err != nil {
		return nil, err
	}

	res := &PushResult{Digest: digest, Reference: ref.ImageReference()}
	slog.Info("model artifact pushed", "reference", res.Reference, "digest", res.Digest)
	return res, nil
}

// PushTo packs the artifact at path, tags it, and copies it to dst.
// It returns the manifest digest.
func PushTo(ctx context.Context, path, tag string, dst oras.Target, annotations map[string]string) (string, error) {
	if tag == "" {
		return "", apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required to push OCI artifact")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to resolve artifact path", err)
	}

	fs, err := file.New(filepath.Dir(absPath))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()

	layer, err := fs.Add(ctx, filepath.Base(absPath), MediaTypeModel, absPath)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeNotFound, fmt.Sprintf("failed to add %s to store", absPath), err)
	}

	manifest, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              []ociv1.Descriptor{layer},
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to pack manifest", err)
	}

	if err := fs.Tag(ctx, manifest, tag); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to tag manifest in local store", err)
	}

	desc, err := oras.Copy(ctx, fs, tag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeServiceUnavailable, "failed to push artifact", err)
	}
	return desc.Digest.String(), nil
}

func newRepository(ref *Reference, plainHTTP, insecureTLS bool) (*remote.Repository, error) {
	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", stripProtocol(ref.Registry), ref.Repository))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = plainHTTP
	repo.Client = createAuthClient(plainHTTP, insecureTLS)
	return repo, nil
}

// createAuthClient builds a registry client using Docker credentials when
// they are available.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credentials unavailable", "error", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}
