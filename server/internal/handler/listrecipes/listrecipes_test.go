// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package listrecipes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioswitch/recipegenie/api"
	"github.com/curioswitch/recipegenie/common/extract"
	"github.com/curioswitch/recipegenie/common/genie"
	"github.com/curioswitch/recipegenie/common/query"
	"github.com/curioswitch/recipegenie/common/recipedb"
	"github.com/curioswitch/recipegenie/common/router"
)

func newRouter(t *testing.T) (*router.Router, *recipedb.MemoryStore) {
	t.Helper()

	store := recipedb.NewMemoryStore(&recipedb.Profile{ID: "mom", DisplayName: "Mom"})
	r := router.New(&extract.URLExtractor{}, extract.NewAdapter(nil), query.NewResolver(nil), store, nil)
	return r, store
}

func TestListRecipes(t *testing.T) {
	r, store := newRouter(t)
	ctx := t.Context()
	for _, name := range []string{"Soup", "Stew", "Salad"} {
		_, err := store.InsertRecipe(ctx, &genie.Recipe{RecipeName: name, Cuisine: "French"}, "mom")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	_, err := store.InsertRecipe(ctx, &genie.Recipe{RecipeName: "Ramen", Cuisine: "Japanese"}, "dad")
	require.NoError(t, err)
	h := NewHandler(r)

	res, err := h.ListRecipes(ctx, &api.ListRecipesRequest{})
	require.NoError(t, err)
	require.Len(t, res.Recipes, 4)
	assert.Equal(t, "Ramen", res.Recipes[0].RecipeName)
	assert.Equal(t, "Soup", res.Recipes[3].RecipeName)
	assert.Equal(t, "Mom", res.Recipes[3].AddedBy)

	res, err = h.ListRecipes(ctx, &api.ListRecipesRequest{Filters: &recipedb.Filters{UserName: "MOM"}})
	require.NoError(t, err)
	assert.Len(t, res.Recipes, 3)

	res, err = h.ListRecipes(ctx, &api.ListRecipesRequest{Filters: &recipedb.Filters{Cuisine: "japan"}})
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	assert.Equal(t, "Ramen", res.Recipes[0].RecipeName)
}

func TestListRecipesEmpty(t *testing.T) {
	r, _ := newRouter(t)
	h := NewHandler(r)

	res, err := h.ListRecipes(t.Context(), &api.ListRecipesRequest{Filters: &recipedb.Filters{Cuisine: "Thai"}})
	require.NoError(t, err)
	assert.NotNil(t, res.Recipes)
	assert.Empty(t, res.Recipes)
}
