// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extracttext

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/curioswitch/recipegenie/api"
	"github.com/curioswitch/recipegenie/common/genie"
	"github.com/curioswitch/recipegenie/common/respond"
	"github.com/curioswitch/recipegenie/common/router"
)

func NewHandler(text router.TextExtractor, timeout time.Duration) *Handler {
	return &Handler{
		text:    text,
		timeout: timeout,
	}
}

type Handler struct {
	text    router.TextExtractor
	timeout time.Duration
}

func (h *Handler) ExtractText(ctx context.Context, req *api.ExtractTextRequest) (*api.ExtractionResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("recipe text is required"))
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res := h.text.Reextract(ctx, req.Text, req.PendingRecipe)
	if res.Outcome == genie.OutcomeFailure {
		slog.WarnContext(ctx, "extracttext: extraction failed", "reason", res.Reason, "error", res.Err)
	}
	return api.NewExtractionResponse(res, respond.TextExtraction(res)), nil
}
