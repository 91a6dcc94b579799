// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package deleterecipe

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

func (h *Handler) DeleteRecipe(ctx context.Context, req *api.DeleteRecipeRequest) (*api.DeleteRecipeResponse, error) {
	if req.RecipeID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("recipe id is required"))
	}

	if err := h.store.DeleteRecipe(ctx, req.RecipeID, auth.OwnerID(ctx)); err != nil {
		return nil, connectjson.Error(fmt.Errorf("deleterecipe: deleting recipe: %w", err))
	}
	return &api.DeleteRecipeResponse{}, nil
}
