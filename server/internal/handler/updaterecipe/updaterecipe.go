// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package updaterecipe

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/curioswitch/recipegenie/api"
	"github.com/curioswitch/recipegenie/common/recipedb"
	"github.com/curioswitch/recipegenie/server/internal/auth"
	"github.com/curioswitch/recipegenie/server/internal/connectjson"
)

func NewHandler(store recipedb.Store) *Handler {
	return &Handler{
		store: store,
	}
}

type Handler struct {
	store recipedb.Store
}

func (h *Handler) UpdateRecipe(ctx context.Context, req *api.UpdateRecipeRequest) (*api.UpdateRecipeResponse, error) {
	if req.RecipeID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("recipe id is required"))
	}
	if req.Updates == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("updates are required"))
	}

	rec, err := h.store.UpdateRecipe(ctx, req.RecipeID, auth.OwnerID(ctx), req.Updates)
	if err != nil {
		return nil, connectjson.Error(fmt.Errorf("updaterecipe: updating recipe: %w", err))
	}
	return &api.UpdateRecipeResponse{
		Recipe: rec,
	}, nil
}
