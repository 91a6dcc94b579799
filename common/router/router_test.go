// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package router

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioswitch/recipegenie/common/ai"
	"github.com/curioswitch/recipegenie/common/extract"
	"github.com/curioswitch/recipegenie/common/genie"
	"github.com/curioswitch/recipegenie/common/recipedb"
	"github.com/curioswitch/recipegenie/common/respond"
)

type fakeURLs struct {
	res *genie.ExtractionResult
	got []string
}

func (f *fakeURLs) ExtractURL(_ context.Context, rawURL string) *genie.ExtractionResult {
	f.got = append(f.got, rawURL)
	return f.res
}

type fakeFilters struct {
	filters *recipedb.Filters
	err     error
	panic   bool
	calls   int
}

func (f *fakeFilters) Resolve(context.Context, string) (*recipedb.Filters, error) {
	f.calls++
	if f.panic {
		panic("boom")
	}
	return f.filters, f.err
}

type fakeChat struct {
	reply string
	err   error
	got   []ai.Message
}

func (f *fakeChat) Chat(_ context.Context, messages []ai.Message) (string, error) {
	f.got = messages
	return f.reply, f.err
}

type fakeStructurer struct {
	payload string
}

func (f *fakeStructurer) StructuredExtract(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(f.payload), nil
}

type fixture struct {
	urls    *fakeURLs
	filters *fakeFilters
	chat    *fakeChat
	store   *recipedb.MemoryStore
	router  *Router
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		urls:    &fakeURLs{res: genie.Partial(&genie.Recipe{RecipeName: "example.com Recipe"}, "blocked")},
		filters: &fakeFilters{},
		chat:    &fakeChat{reply: "Happy cooking!"},
		store: recipedb.NewMemoryStore(
			&recipedb.Profile{ID: "mom", DisplayName: "Mom"},
			&recipedb.Profile{ID: "dad", DisplayName: "Dad"},
		),
	}
	adapter := extract.NewAdapter(&fakeStructurer{payload: `{"recipe_name": "Stir Fry", "main_ingredient": "chicken", "recipe_text": "chicken\nsoy sauce"}`})
	f.router = New(f.urls, adapter, f.filters, f.store, f.chat, opts...)
	return f
}

const longRecipe = "Chop the onions and garlic, then simmer with two cups of stock for twenty minutes until soft and fragrant."

func TestFindURL(t *testing.T) {
	assert.Equal(t, "https://a.com/x", FindURL("look https://a.com/x and http://b.com"))
	assert.Equal(t, "http://b.com/recipe?id=1", FindURL("http://b.com/recipe?id=1"))
	assert.Empty(t, FindURL("no links here, www.example.com"))
}

func TestLooksLikeRecipe(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{name: "long with keyword", message: longRecipe, want: true},
		{name: "sixteen words", message: "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen bake", want: true},
		{name: "fifteen words", message: "one two three four five six seven eight nine ten eleven twelve thirteen fourteen bake", want: false},
		{name: "short with keyword", message: "bake a cake", want: false},
		{name: "long without keyword", message: "I went to the market yesterday and bought some things for the family dinner on Sunday night", want: false},
		{name: "keyword case", message: "ONE TWO THREE FOUR FIVE SIX SEVEN EIGHT NINE TEN ELEVEN TWELVE THIRTEEN FOURTEEN FIFTEEN SAUTÉ", want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LooksLikeRecipe(tc.message))
		})
	}
}

func TestHandleTurnInvalid(t *testing.T) {
	f := newFixture(t)
	_, err := f.router.HandleTurn(t.Context(), &Turn{Message: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.router.HandleTurn(t.Context(), nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestHandleTurnURLFirst(t *testing.T) {
	f := newFixture(t)

	// Recipe keywords and a long message do not matter once there is a link.
	msg := longRecipe + " https://www.example.com/stew https://other.com/x"
	reply, err := f.router.HandleTurn(t.Context(), &Turn{Message: msg})
	require.NoError(t, err)

	assert.Equal(t, PathURL, reply.Path)
	assert.Equal(t, []string{"https://www.example.com/stew"}, f.urls.got)
	assert.True(t, reply.PartialSuccess)
	assert.Equal(t, "example.com Recipe", reply.RecipeData.RecipeName)
	assert.Contains(t, reply.Response, "Source: https://www.example.com/stew")
	assert.Zero(t, f.filters.calls)
}

func TestHandleTurnRecipeText(t *testing.T) {
	f := newFixture(t)

	reply, err := f.router.HandleTurn(t.Context(), &Turn{
		Message:       longRecipe,
		PendingRecipe: &genie.Recipe{RecipeName: "example.com Recipe", SourceLink: "https://example.com/stew"},
	})
	require.NoError(t, err)

	assert.Equal(t, PathRecipeText, reply.Path)
	assert.False(t, reply.PartialSuccess)
	require.NotNil(t, reply.RecipeData)
	assert.Equal(t, "Stir Fry", reply.RecipeData.RecipeName)
	assert.Equal(t, "https://example.com/stew", reply.RecipeData.SourceLink)
	assert.True(t, strings.HasPrefix(reply.Response, "Got it ✅"))
	assert.Zero(t, f.filters.calls)
}

func TestHandleTurnSearch(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	_, err := f.store.InsertRecipe(ctx, &genie.Recipe{RecipeName: "Curry", MainIngredient: "chicken"}, "mom")
	require.NoError(t, err)
	_, err = f.store.InsertRecipe(ctx, &genie.Recipe{RecipeName: "Roast", MainIngredient: "Chicken thighs"}, "dad")
	require.NoError(t, err)
	_, err = f.store.InsertRecipe(ctx, &genie.Recipe{RecipeName: "Salad", MainIngredient: "lettuce"}, "dad")
	require.NoError(t, err)

	t.Run("filters", func(t *testing.T) {
		f.filters.filters = &recipedb.Filters{MainIngredient: "chicken"}
		reply, err := f.router.HandleTurn(ctx, &Turn{Message: "show me chicken recipes"})
		require.NoError(t, err)

		assert.Equal(t, PathSearch, reply.Path)
		assert.Len(t, reply.Recipes, 2)
		assert.True(t, strings.HasPrefix(reply.Response, "I found 2 recipes for you!"))
		assert.Equal(t, &recipedb.Filters{MainIngredient: "chicken"}, reply.Filters)
	})

	t.Run("search all ignores other criteria", func(t *testing.T) {
		f.filters.filters = &recipedb.Filters{SearchAll: true, MainIngredient: "chicken", Difficulty: 5}
		reply, err := f.router.HandleTurn(ctx, &Turn{Message: "show me all recipes"})
		require.NoError(t, err)

		assert.Len(t, reply.Recipes, 3)
		assert.True(t, strings.HasPrefix(reply.Response, "You have 3 recipes saved!"))
	})

	t.Run("user name resolved", func(t *testing.T) {
		f.filters.filters = &recipedb.Filters{UserName: "mom"}
		reply, err := f.router.HandleTurn(ctx, &Turn{Message: "what did mom add"})
		require.NoError(t, err)

		require.Len(t, reply.Recipes, 1)
		assert.Equal(t, "Curry", reply.Recipes[0].RecipeName)
		assert.Contains(t, reply.Response, "Added by Mom")
		assert.Equal(t, &recipedb.Filters{UserID: "mom"}, reply.Filters)
	})

	t.Run("no results", func(t *testing.T) {
		f.filters.filters = &recipedb.Filters{Cuisine: "Ethiopian"}
		reply, err := f.router.HandleTurn(ctx, &Turn{Message: "ethiopian food"})
		require.NoError(t, err)

		assert.Equal(t, respond.NoResults, reply.Response)
		assert.Empty(t, reply.Recipes)
	})

	t.Run("degenerate filters chat", func(t *testing.T) {
		f.filters.filters = &recipedb.Filters{Difficulty: 0, SearchTerm: " "}
		reply, err := f.router.HandleTurn(ctx, &Turn{Message: "hmm"})
		require.NoError(t, err)
		assert.Equal(t, PathChat, reply.Path)
	})
}

func TestSearchUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.InsertRecipe(t.Context(), &genie.Recipe{RecipeName: "Curry"}, "mom")
	require.NoError(t, err)

	recipes, filters, err := f.router.Search(t.Context(), recipedb.Filters{UserName: "grandpa", Cuisine: " "})
	require.NoError(t, err)
	assert.Equal(t, recipedb.Filters{}, filters)
	assert.Len(t, recipes, 1)
}

type failingStore struct {
	*recipedb.MemoryStore
}

func (failingStore) ListRecipes(context.Context, recipedb.Filters) ([]*recipedb.Record, error) {
	return nil, errors.New("database unavailable")
}

func TestHandleTurnSearchFailure(t *testing.T) {
	f := newFixture(t)
	f.filters.filters = &recipedb.Filters{Cuisine: "thai"}
	r := New(f.urls, extract.NewAdapter(&fakeStructurer{}), f.filters, failingStore{f.store}, f.chat)

	reply, err := r.HandleTurn(t.Context(), &Turn{Message: "thai food"})
	require.NoError(t, err)
	assert.Equal(t, PathSearch, reply.Path)
	assert.Equal(t, respond.SearchFailure, reply.Response)
	assert.NotContains(t, reply.Response, "database unavailable")
	assert.Empty(t, reply.Recipes)
}

func TestHandleTurnEmptyCollection(t *testing.T) {
	f := newFixture(t)
	f.filters.filters = &recipedb.Filters{SearchAll: true}

	reply, err := f.router.HandleTurn(t.Context(), &Turn{Message: "what recipes do I have?"})
	require.NoError(t, err)
	assert.Equal(t, respond.EmptyCollection, reply.Response)
}

func TestHandleTurnChat(t *testing.T) {
	f := newFixture(t)

	reply, err := f.router.HandleTurn(t.Context(), &Turn{
		Message: "what did I just share?",
		History: []genie.ChatTurn{
			{Sender: genie.SenderUser, Text: "hi"},
			{Sender: genie.SenderAssistant, Text: "hello"},
		},
		PendingRecipe: &genie.Recipe{RecipeName: "Garlic Spaghetti"},
		Language:      "ja",
	})
	require.NoError(t, err)

	assert.Equal(t, PathChat, reply.Path)
	assert.Equal(t, "Happy cooking!", reply.Response)
	assert.Nil(t, reply.RecipeData)

	require.Len(t, f.chat.got, 4)
	system := f.chat.got[0]
	assert.Equal(t, ai.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "- Recipe Name: Garlic Spaghetti")
	assert.Contains(t, system.Content, `"ja"`)
	assert.Equal(t, ai.Message{Role: ai.RoleUser, Content: "what did I just share?"}, f.chat.got[3])
}

func TestHandleTurnChatFailures(t *testing.T) {
	tests := []struct {
		name  string
		chat  *fakeChat
		want  string
		resol *fakeFilters
	}{
		{name: "rate limited", chat: &fakeChat{err: ai.ErrRateLimited}, want: respond.RateLimited},
		{name: "rate limit text", chat: &fakeChat{err: errors.New("429 Too Many Requests")}, want: respond.RateLimited},
		{name: "failure", chat: &fakeChat{err: errors.New("connection reset")}, want: respond.ChatFailure},
		{name: "empty", chat: &fakeChat{reply: "  "}, want: respond.EmptyChat},
		{name: "resolver failure falls back", chat: &fakeChat{reply: "ok!"}, want: "ok!", resol: &fakeFilters{err: errors.New("bad json")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			filters := tc.resol
			if filters == nil {
				filters = f.filters
			}
			r := New(f.urls, nil, filters, f.store, tc.chat)

			reply, err := r.HandleTurn(t.Context(), &Turn{Message: "tell me a joke"})
			require.NoError(t, err)
			assert.Equal(t, PathChat, reply.Path)
			assert.Equal(t, tc.want, reply.Response)
		})
	}
}

func TestHandleTurnRecoversPanics(t *testing.T) {
	f := newFixture(t)
	r := New(f.urls, nil, &fakeFilters{panic: true}, f.store, f.chat)

	reply, err := r.HandleTurn(t.Context(), &Turn{Message: "show me soup"})
	require.NoError(t, err)
	assert.Equal(t, respond.ChatFailure, reply.Response)
}

func TestHandleTurnDebug(t *testing.T) {
	last := []*recipedb.Record{
		{Recipe: genie.Recipe{RecipeName: "Curry", RecipeText: genie.Ptr("rice"), SourceLink: "https://a.com"}},
		{Recipe: genie.Recipe{RecipeName: "Stew"}},
	}

	t.Run("enabled", func(t *testing.T) {
		f := newFixture(t, WithDebug(true))
		reply, err := f.router.HandleTurn(t.Context(), &Turn{Message: "Debug yes", LastRecipes: last})
		require.NoError(t, err)

		assert.Equal(t, PathDebug, reply.Path)
		assert.True(t, strings.HasPrefix(reply.Response, "DEBUG INFO:\n\n{"))
		assert.True(t, strings.HasSuffix(reply.Response, "\n\nThis shows me what data I have access to."))
		require.NotNil(t, reply.Debug)
		assert.Equal(t, 2, reply.Debug.LastRecipesCount)
		assert.Equal(t, DebugRecipe{Name: "Curry", HasRecipeText: true, RecipeTextLength: 4, HasSourceLink: true}, reply.Debug.LastRecipes[0])
		assert.False(t, reply.Debug.LastRecipes[1].HasRecipeText)
		assert.Nil(t, f.chat.got)
	})

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t)
		reply, err := f.router.HandleTurn(t.Context(), &Turn{Message: "debug yes", LastRecipes: last})
		require.NoError(t, err)
		assert.Equal(t, PathChat, reply.Path)
	})
}

func TestHandleTurnIdempotent(t *testing.T) {
	f := newFixture(t)
	f.filters.filters = &recipedb.Filters{Cuisine: "Thai"}

	first, err := f.router.HandleTurn(t.Context(), &Turn{Message: "thai food"})
	require.NoError(t, err)
	second, err := f.router.HandleTurn(t.Context(), &Turn{Message: "thai food"})
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, first.Filters, second.Filters)
}
