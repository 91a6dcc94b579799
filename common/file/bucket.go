// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package file stores user uploads in a public Cloud Storage bucket.
package file

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
)

// immutableCacheControl is set on every object. Object paths are never reused.
const immutableCacheControl = "public, max-age=31536000, immutable"

// Bucket writes publicly readable files to a Cloud Storage bucket.
type Bucket struct {
	storage *storage.Client
	name    string
}

func NewBucket(storage *storage.Client, name string) *Bucket {
	return &Bucket{
		storage: storage,
		name:    name,
	}
}

// WriteFile writes data to path and returns its public URL. Paths must be unique.
func (b *Bucket) WriteFile(ctx context.Context, path string, contentType string, data []byte) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "", errors.New("file: empty object path")
	}

	wc := b.storage.Bucket(b.name).Object(path).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = immutableCacheControl
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("file: writing %s: %w", path, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("file: finalizing %s: %w", path, err)
	}
	return PublicURL(b.name, path), nil
}

// PublicURL returns the URL a public object is served at, escaping each path segment.
func PublicURL(bucket string, path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "https://storage.googleapis.com/" + bucket + "/" + strings.Join(segments, "/")
}
