// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package photo extracts recipes from photographed pages.
package photo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/curioswitch/recipegenie/common/extract"
	"github.com/curioswitch/recipegenie/common/genie"
	"github.com/curioswitch/recipegenie/common/image"
	"github.com/curioswitch/recipegenie/common/ocr"
)

// minTextLength is the shortest OCR output treated as a recipe.
const minTextLength = 20

const (
	reasonNoPhoto     = "No photo provided"
	reasonUnsupported = "Could not read that image. Please try a different format like JPEG or PNG."
	reasonTooLarge    = "Image is too large even after compression. Please try a smaller photo."
	reasonOCRFailed   = "Could not extract text from image. Please try a clearer photo."
	reasonTooLittle   = "Could not extract enough text from the image. Please try a clearer photo."
	reasonNoRecipe    = "Could not extract recipe information from the photo. Try typing the recipe instead."
)

// Extractor reads recipe photos with OCR and structures the text.
type Extractor struct {
	ocr     ocr.Recognizer
	adapter *extract.Adapter
	opts    ocr.Options
}

func NewExtractor(recognizer ocr.Recognizer, adapter *extract.Adapter, opts ocr.Options) *Extractor {
	return &Extractor{
		ocr:     recognizer,
		adapter: adapter,
		opts:    opts,
	}
}

// ExtractPhoto compresses the photo, recognizes its text and extracts a recipe from it.
func (e *Extractor) ExtractPhoto(ctx context.Context, data []byte) *genie.ExtractionResult {
	if len(data) == 0 {
		return genie.Failed(reasonNoPhoto, nil)
	}

	compressed, err := image.Compress(data)
	switch {
	case errors.Is(err, image.ErrTooLarge):
		return genie.Failed(reasonTooLarge, fmt.Errorf("photo: compressing: %w", err))
	case err != nil:
		return genie.Failed(reasonUnsupported, fmt.Errorf("photo: compressing: %w", err))
	}
	slog.DebugContext(ctx, "photo: compressed",
		"from", len(data), "to", len(compressed.Data), "attempts", compressed.Attempts)

	res, err := e.ocr.Recognize(ctx, compressed.Data, e.opts)
	if err != nil {
		slog.WarnContext(ctx, "photo: ocr request failed", "error", err)
		return genie.Failed(reasonOCRFailed, fmt.Errorf("photo: recognizing: %w", err))
	}
	if !res.OK {
		slog.WarnContext(ctx, "photo: ocr reported an error", "message", res.ErrorMessage)
		return genie.Failed(reasonOCRFailed, fmt.Errorf("photo: ocr: %s", res.ErrorMessage))
	}

	text := strings.TrimSpace(res.Text)
	if utf8.RuneCountInString(text) < minTextLength {
		return genie.Failed(reasonTooLittle, nil)
	}

	out := e.adapter.Extract(ctx, text)
	if out.Outcome == genie.OutcomeFailure {
		return genie.Failed(reasonNoRecipe, errors.Join(out.Err, errors.New(out.Reason)))
	}
	return out
}
