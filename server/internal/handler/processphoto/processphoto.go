// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package processphoto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/curioswitch/recipegenie/api"
	"github.com/curioswitch/recipegenie/common/genie"
	"github.com/curioswitch/recipegenie/common/respond"
)

// maxUploadBytes bounds the size of an uploaded photo before compression.
const maxUploadBytes = 32 << 20

// PhotoExtractor extracts a recipe from a photo.
type PhotoExtractor interface {
	ExtractPhoto(ctx context.Context, data []byte) *genie.ExtractionResult
}

func NewHandler(photos PhotoExtractor, timeout time.Duration) *Handler {
	return &Handler{
		photos:   photos,
		timeout:  timeout,
		maxBytes: maxUploadBytes,
	}
}

// Handler accepts a multipart form with the photo in the photo field.
type Handler struct {
	photos   PhotoExtractor
	timeout  time.Duration
	maxBytes int64
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(ctx, w, http.StatusMethodNotAllowed, &api.ExtractionResponse{Error: "Method not allowed"})
		return
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	var res *genie.ExtractionResult
	data, err := h.readPhoto(w, r)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		res = genie.Failed(fmt.Sprintf("Photo is too large. Please upload a photo under %dMB.", tooLarge.Limit>>20), err)
	case err != nil:
		res = genie.Failed("Invalid photo upload. Please send the photo as multipart form data.", err)
	default:
		res = h.photos.ExtractPhoto(ctx, data)
	}

	out := api.NewExtractionResponse(res, respond.PhotoExtraction(res))
	status := http.StatusOK
	if !out.Success {
		slog.WarnContext(ctx, "processphoto: extraction failed", "reason", res.Reason, "error", res.Err)
		status = http.StatusBadRequest
	}
	writeJSON(ctx, w, status, out)
}

// readPhoto returns the uploaded photo, or nil when the form has no photo field.
func (h *Handler) readPhoto(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	f, _, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("processphoto: reading upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("processphoto: reading photo: %w", err)
	}
	return data, nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "processphoto: writing response", "error", err)
	}
}
