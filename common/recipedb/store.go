// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/curioswitch/recipegenie/common/genie"
)

var (
	// ErrNotFound is returned when a recipe does not exist.
	ErrNotFound = errors.New("recipedb: recipe not found")

	// ErrForbidden is returned when a user modifies a recipe they do not own.
	ErrForbidden = errors.New("recipedb: recipe owned by another user")
)

// Store persists recipes and looks up household profiles.
type Store interface {
	// InsertRecipe saves a new recipe owned by ownerID.
	InsertRecipe(ctx context.Context, recipe *genie.Recipe, ownerID string) (*Record, error)

	// ListRecipes returns recipes matching the filters, newest first, with AddedBy filled in.
	ListRecipes(ctx context.Context, filters Filters) ([]*Record, error)

	// ListAllRecipes returns every recipe, newest first, with AddedBy filled in.
	ListAllRecipes(ctx context.Context) ([]*Record, error)

	// UpdateRecipe changes the fields set in update of a record owned by ownerID.
	UpdateRecipe(ctx context.Context, id string, ownerID string, update *RecipeUpdate) (*Record, error)

	// DeleteRecipe deletes a record owned by ownerID.
	DeleteRecipe(ctx context.Context, id string, ownerID string) error

	// FindUsersByDisplayName returns profiles whose display name contains name, ignoring case.
	FindUsersByDisplayName(ctx context.Context, name string) ([]*Profile, error)
}

// TextSearcher resolves a free-text search term to matching recipe IDs.
type TextSearcher interface {
	SearchRecipeIDs(ctx context.Context, term string) ([]string, error)
}

func sortNewestFirst(records []*Record) {
	slices.SortStableFunc(records, func(a, b *Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func filterProfiles(profiles []*Profile, name string) []*Profile {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	var res []*Profile
	for _, p := range profiles {
		if containsFold(p.DisplayName, name) {
			res = append(res, p)
		}
	}
	return res
}
