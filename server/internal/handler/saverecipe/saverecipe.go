// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package saverecipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/curioswitch/recipegenie/api"
	"github.com/curioswitch/recipegenie/common/genie"
	"github.com/curioswitch/recipegenie/common/recipedb"
	"github.com/curioswitch/recipegenie/server/internal/auth"
)

// PhotoUploader stores a base64 encoded photo and returns its URL.
type PhotoUploader interface {
	UploadPhoto(ctx context.Context, ownerID string, encoded string) (string, error)
}

func NewHandler(store recipedb.Store, photos PhotoUploader) *Handler {
	return &Handler{
		store:  store,
		photos: photos,
	}
}

type Handler struct {
	store  recipedb.Store
	photos PhotoUploader
}

func (h *Handler) SaveRecipe(ctx context.Context, req *api.SaveRecipeRequest) (*api.SaveRecipeResponse, error) {
	if req.RecipeData == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("recipe data is required"))
	}
	owner := auth.OwnerID(ctx)

	recipe := *req.RecipeData
	if strings.TrimSpace(recipe.RecipeName) == "" {
		recipe.RecipeName = genie.NameFromIngredient(recipe.MainIngredient)
	}

	if req.PhotoBase64 != "" && recipe.PhotoURL == "" && h.photos != nil {
		// A recipe without its photo is better than no recipe.
		url, err := h.photos.UploadPhoto(ctx, owner, req.PhotoBase64)
		if err != nil {
			slog.WarnContext(ctx, "saverecipe: uploading photo, saving without it", "error", err)
		} else {
			recipe.PhotoURL = url
		}
	}

	rec, err := h.store.InsertRecipe(ctx, &recipe, owner)
	if err != nil {
		return nil, fmt.Errorf("saverecipe: inserting recipe: %w", err)
	}

	return &api.SaveRecipeResponse{
		Recipe:  rec,
		Message: "Recipe saved successfully!",
	}, nil
}
