// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package image

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"time"
)

// FileWriter stores a file and returns its public URL.
type FileWriter interface {
	WriteFile(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Writer stores recipe photos.
type Writer struct {
	io  FileWriter
	now func() time.Time
}

func NewWriter(io FileWriter) *Writer {
	return &Writer{
		io:  io,
		now: time.Now,
	}
}

// UploadPhoto stores a base64 encoded photo, optionally as a data URL, under the
// owner's folder and returns its public URL. Photos are stored as JPEG.
func (w *Writer) UploadPhoto(ctx context.Context, ownerID string, encoded string) (string, error) {
	data, err := decodeBase64(encoded)
	if err != nil {
		return "", err
	}

	photo, err := toJPEG(data)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/%d-%s.jpg", ownerID, w.now().UnixMilli(), strings.ToLower(rand.Text()[:8]))
	url, err := w.io.WriteFile(ctx, path, "image/jpeg", photo)
	if err != nil {
		return "", fmt.Errorf("image: writing photo to file io: %w", err)
	}
	return url, nil
}

func decodeBase64(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		ct, contents, ok := strings.Cut(rest, ";")
		if !ok {
			return nil, fmt.Errorf("image: invalid data URL")
		}
		if !strings.HasPrefix(ct, "image/") {
			return nil, fmt.Errorf("image: only image data URLs supported, got %q", ct)
		}
		b64, ok := strings.CutPrefix(contents, "base64,")
		if !ok {
			return nil, fmt.Errorf("image: only base64 data URL supported")
		}
		encoded = b64
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("image: decoding base64 photo: %w", err)
	}
	return data, nil
}

func toJPEG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	if format == "jpeg" {
		return data, nil
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("image: encoding %s to jpeg: %w", format, err)
	}
	return buf.Bytes(), nil
}
