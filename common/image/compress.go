// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	// Decoders for uploaded photos.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// TargetBytes is the size compression aims for.
	TargetBytes = 800 * 1024

	// MaxBytes is the largest photo accepted after compression.
	MaxBytes = 1000 * 1024

	startWidth   = 1200
	startQuality = 80
	widthStep    = 200
	qualityStep  = 10
	minWidth     = 600
	minQuality   = 40
	maxAttempts  = 5
)

var (
	// ErrTooLarge is returned when a photo cannot be compressed under MaxBytes.
	ErrTooLarge = errors.New("image: photo too large after compression")

	// ErrUnsupported is returned when a photo cannot be decoded.
	ErrUnsupported = errors.New("image: unsupported photo format")
)

// Compressed is a photo re-encoded as JPEG.
type Compressed struct {
	Data []byte

	// Width and Quality are the settings of the last attempt.
	Width   int
	Quality int

	Attempts int
}

// Compress downscales and re-encodes a photo as JPEG until it is under TargetBytes.
// Each attempt works on the output of the previous one with the width reduced by
// 200px and the quality by 10, stopping at a width of 600 or a quality of 40.
func Compress(data []byte) (*Compressed, error) {
	res := &Compressed{
		Data:    data,
		Width:   startWidth,
		Quality: startQuality,
	}

	width, quality := startWidth, startQuality
	for attempt := range maxAttempts {
		out, err := resizeJPEG(res.Data, width, quality)
		if err != nil {
			if attempt == 0 {
				return nil, err
			}
			break
		}
		res.Data = out
		res.Width = width
		res.Quality = quality
		res.Attempts = attempt + 1

		if len(out) < TargetBytes {
			break
		}

		quality -= qualityStep
		width -= widthStep
		if quality < minQuality || width < minWidth {
			break
		}
	}

	if len(res.Data) > MaxBytes {
		return nil, fmt.Errorf("%w: %d KB", ErrTooLarge, len(res.Data)/1024)
	}
	return res, nil
}

// resizeJPEG fits the image within width, never enlarging it, and encodes it as JPEG.
func resizeJPEG(data []byte, width int, quality int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	b := src.Bounds()
	var img image.Image = src
	if b.Dx() > width {
		height := max(b.Dy()*width/b.Dx(), 1)
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("image: encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
