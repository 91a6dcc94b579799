// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package scrapeurl

import (
	"context"
	"errors"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/curioswitch/recipegenie/api"
	"github.com/curioswitch/recipegenie/common/extract"
	"github.com/curioswitch/recipegenie/common/respond"
	"github.com/curioswitch/recipegenie/common/router"
)

func NewHandler(urls router.URLExtractor, timeout time.Duration) *Handler {
	return &Handler{
		urls:    urls,
		timeout: timeout,
	}
}

type Handler struct {
	urls    router.URLExtractor
	timeout time.Duration
}

func (h *Handler) ScrapeURL(ctx context.Context, req *api.ScrapeURLRequest) (*api.ExtractionResponse, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("valid URL is required"))
	}
	u, err := extract.ParseURL(req.URL)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res := h.urls.ExtractURL(ctx, u.String())
	return api.NewExtractionResponse(res, respond.URLExtraction(res, u.String())), nil
}
