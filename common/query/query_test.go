// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package query

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioswitch/recipegenie/common/ai"
	"github.com/curioswitch/recipegenie/common/recipedb"
)

// fakeClassifier answers with a fixed payload per message.
type fakeClassifier struct {
	answers map[string]string
	err     error
	calls   int
}

func (f *fakeClassifier) ClassifyQuery(_ context.Context, text string) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.answers[text]; ok {
		return json.RawMessage(a), nil
	}
	return json.RawMessage(`{}`), nil
}

func TestResolve(t *testing.T) {
	classifier := &fakeClassifier{answers: map[string]string{
		"show me chicken recipes":     `{"main_ingredient": "chicken"}`,
		"show me all recipes":         `{"search_all": true}`,
		"everything, chicken too":     `{"search_all": true, "main_ingredient": "chicken", "difficulty": 3}`,
		"quick italian":               `{"cuisine": "Italian", "max_time": "30", "difficulty": null}`,
		"recipes mom added":           `{"user_name": "Mom"}`,
		"zero difficulty":             `{"difficulty": 0}`,
		"empty term":                  `{"search_term": ""}`,
		"blank term":                  `{"search_term": "   ", "cuisine": null}`,
		"all false":                   `{"search_all": false}`,
		"string flag":                 `{"search_all": "true"}`,
		"tell me about that recipe":   `{}`,
		"what pasta dishes are there": `{"search_term": "pasta"}`,
	}}
	r := NewResolver(classifier)

	tests := []struct {
		message string
		want    *recipedb.Filters
	}{
		{message: "show me chicken recipes", want: &recipedb.Filters{MainIngredient: "chicken"}},
		{message: "show me all recipes", want: &recipedb.Filters{SearchAll: true}},
		{message: "everything, chicken too", want: &recipedb.Filters{SearchAll: true}},
		{message: "quick italian", want: &recipedb.Filters{Cuisine: "Italian", MaxTime: 30}},
		{message: "recipes mom added", want: &recipedb.Filters{UserName: "Mom"}},
		{message: "what pasta dishes are there", want: &recipedb.Filters{SearchTerm: "pasta"}},
		{message: "string flag", want: &recipedb.Filters{SearchAll: true}},
		{message: "zero difficulty"},
		{message: "empty term"},
		{message: "blank term"},
		{message: "all false"},
		{message: "tell me about that recipe"},
	}
	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			got, err := r.Resolve(t.Context(), tc.message)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveSkipsModelForNonSearches(t *testing.T) {
	for _, m := range []string{
		"yes", "Yes!", "ok", "sure.", "nope", "hello", "",
		"Can you help me?", "What can you do?", "do you know any tricks",
		"save recipe", "I want to add a recipe", "let me add my lasagna",
	} {
		t.Run(m, func(t *testing.T) {
			classifier := &fakeClassifier{err: errors.New("should not be called")}
			got, err := NewResolver(classifier).Resolve(t.Context(), m)
			require.NoError(t, err)
			assert.Nil(t, got)
			assert.Zero(t, classifier.calls)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	t.Run("classifier error", func(t *testing.T) {
		r := NewResolver(&fakeClassifier{err: ai.ErrRateLimited})
		_, err := r.Resolve(t.Context(), "show me soups")
		require.ErrorIs(t, err, ai.ErrRateLimited)
	})

	t.Run("not an object", func(t *testing.T) {
		r := NewResolver(&fakeClassifier{answers: map[string]string{"show me soups": `["soup"]`}})
		_, err := r.Resolve(t.Context(), "show me soups")
		require.ErrorIs(t, err, ai.ErrNoStructuredPayload)
	})
}

func TestResolveIdempotent(t *testing.T) {
	r := NewResolver(&fakeClassifier{answers: map[string]string{
		"easy chicken": `{"main_ingredient": "chicken", "difficulty": 2}`,
	}})

	first, err := r.Resolve(t.Context(), "easy chicken")
	require.NoError(t, err)
	second, err := r.Resolve(t.Context(), "easy chicken")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, &recipedb.Filters{MainIngredient: "chicken", Difficulty: 2}, first)
}
