// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package listrecipes

import (
	"context"
	"fmt"

	"github.com/curioswitch/recipegenie/api"
	"github.com/curioswitch/recipegenie/common/recipedb"
)

// Searcher finds recipes matching filters.
type Searcher interface {
	Search(ctx context.Context, filters recipedb.Filters) ([]*recipedb.Record, recipedb.Filters, error)
}

func NewHandler(search Searcher) *Handler {
	return &Handler{
		search: search,
	}
}

type Handler struct {
	search Searcher
}

func (h *Handler) ListRecipes(ctx context.Context, req *api.ListRecipesRequest) (*api.ListRecipesResponse, error) {
	filters := recipedb.Filters{SearchAll: true}
	if req.Filters != nil && req.Filters.Valid() {
		filters = *req.Filters
	}

	recipes, _, err := h.search.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("listrecipes: searching recipes: %w", err)
	}
	if recipes == nil {
		recipes = []*recipedb.Record{}
	}
	return &api.ListRecipesResponse{
		Recipes: recipes,
	}, nil
}
