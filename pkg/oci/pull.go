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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/file"

	apperrors "github.com/AndersSpringborg/chronus/pkg/errors"
)

// PullOptions configures a model pull.
type PullOptions struct {
	// Reference is the source. It must be an OCI reference.
	Reference *Reference
	// Destination is the file the model layer is written to.
	Destination string
	// PlainHTTP uses HTTP instead of HTTPS.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// Pull fetches the model artifact referenced by opts and writes its layer
// to opts.Destination. A missing tag resolves to "latest".
func Pull(ctx context.Context, opts PullOptions) error {
	ref := opts.Reference
	if ref == nil || !ref.IsOCI {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference is required to pull")
	}
	tag := ref.Tag
	if tag == "" {
		tag = "latest"
	}

	repo, err := newRepository(ref, opts.PlainHTTP, opts.InsecureTLS)
	if err != nil {
		return err
	}

	slog.Info("pulling model artifact", "reference", ref.WithTag(tag).ImageReference(), "destination", opts.Destination)
	return PullFrom(ctx, repo, tag, opts.Destination)
}

// PullFrom copies the artifact tagged tag out of src and writes its model
// layer to dst.
func PullFrom(ctx context.Context, src oras.ReadOnlyTarget, tag, dst string) error {
	staging, err := os.MkdirTemp("", "chronus-pull-*")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create staging directory", err)
	}
	defer os.RemoveAll(staging)

	fs, err := file.New(staging)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()

	desc, err := oras.Copy(ctx, src, tag, fs, tag, oras.DefaultCopyOptions)
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeNotFound, "failed to fetch artifact", err,
			map[string]any{"tag": tag})
	}

	name, err := modelLayerName(ctx, fs, desc)
	if err != nil {
		return err
	}

	if err := copyFile(filepath.Join(staging, name), dst); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, fmt.Sprintf("failed to write model to %s", dst), err)
	}
	slog.Debug("model artifact pulled", "digest", desc.Digest.String(), "destination", dst)
	return nil
}

// modelLayerName returns the file name recorded on the model layer.
func modelLayerName(ctx context.Context, fetcher content.Fetcher, desc ociv1.Descriptor) (string, error) {
	b, err := content.FetchAll(ctx, fetcher, desc)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to read manifest", err)
	}
	var manifest ociv1.Manifest
	if err := json.Unmarshal(b, &manifest); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "malformed manifest", err)
	}
	if manifest.ArtifactType != ArtifactType {
		return "", apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "artifact is not a chronus model",
			map[string]any{"artifactType": manifest.ArtifactType})
	}
	for _, l := range manifest.Layers {
		if l.MediaType != MediaTypeModel {
			continue
		}
		if name := l.Annotations[ociv1.AnnotationTitle]; name != "" {
			return filepath.Base(name), nil
		}
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidRequest, "artifact has no model layer")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// CopyFile copies a local artifact to dst, creating parent directories.
func CopyFile(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNotFound, fmt.Sprintf("failed to copy %s to %s", src, dst), err)
	}
	return nil
}
