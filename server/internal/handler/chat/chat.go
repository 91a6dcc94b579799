// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/curioswitch/recipegenie/api"
	"github.com/curioswitch/recipegenie/common/router"
	"github.com/curioswitch/recipegenie/server/internal/connectjson"
	"github.com/curioswitch/recipegenie/server/internal/i18n"
)

// TurnHandler handles a chat turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, turn *router.Turn) (*router.Reply, error)
}

func NewHandler(turns TurnHandler, timeout time.Duration) *Handler {
	return &Handler{
		turns:   turns,
		timeout: timeout,
	}
}

type Handler struct {
	turns   TurnHandler
	timeout time.Duration
}

func (h *Handler) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	reply, err := h.turns.HandleTurn(ctx, &router.Turn{
		Message:       req.Message,
		History:       req.ConversationHistory,
		PendingRecipe: req.PendingRecipe,
		LastRecipes:   req.LastRecipes,
		Language:      i18n.UserLanguage(ctx),
	})
	if err != nil {
		return nil, connectjson.Error(fmt.Errorf("chat: handling turn: %w", err))
	}

	return &api.ChatResponse{
		Response:       reply.Response,
		RecipeData:     reply.RecipeData,
		PartialSuccess: reply.PartialSuccess,
		Recipes:        reply.Recipes,
		Filters:        reply.Filters,
		Debug:          reply.Debug,
	}, nil
}
