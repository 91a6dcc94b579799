// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/curioswitch/recipegenie/common/ai"
	"github.com/curioswitch/recipegenie/common/genie"
)

// structuredRecipe is the JSON object returned by the model.
type structuredRecipe struct {
	RecipeName     ai.String `json:"recipe_name"`
	MainIngredient ai.String `json:"main_ingredient"`
	Cuisine        ai.String `json:"cuisine"`
	Difficulty     ai.Int    `json:"difficulty"`
	TimeMinutes    ai.Int    `json:"time_minutes"`
	Notes          ai.String `json:"notes"`
	RecipeText     ai.String `json:"recipe_text"`
	SourceLink     ai.String `json:"source_link"`
}

// Adapter turns free text into a structured recipe using a model.
type Adapter struct {
	ai ai.Structurer
}

func NewAdapter(structurer ai.Structurer) *Adapter {
	return &Adapter{
		ai: structurer,
	}
}

// Extract structures text into a recipe.
func (a *Adapter) Extract(ctx context.Context, text string) *genie.ExtractionResult {
	text = strings.TrimSpace(text)
	if text == "" {
		return genie.Failed("There was no recipe text to extract.", nil)
	}

	payload, err := a.ai.StructuredExtract(ctx, text)
	if err != nil {
		slog.WarnContext(ctx, "extract: structured extraction failed", "error", err)
		return genie.Failed("I couldn't understand the recipe.", fmt.Errorf("extract: structured extraction: %w", err))
	}

	var res structuredRecipe
	if err := json.Unmarshal(payload, &res); err != nil {
		return genie.Failed("I couldn't understand the recipe.", fmt.Errorf("extract: %w: %w", ai.ErrNoStructuredPayload, err))
	}
	if res.RecipeName == "" && res.MainIngredient == "" && res.RecipeText == "" {
		return genie.Failed("I couldn't find a recipe in that text.", fmt.Errorf("extract: empty recipe: %w", ai.ErrNoStructuredPayload))
	}

	recipe := res.recipe()
	if !recipe.HasText() {
		return genie.Partial(recipe, "The recipe details were found but not its ingredients or instructions.")
	}
	return genie.Succeeded(recipe, text)
}

// Reextract structures text that corrects a pending recipe. The pending recipe's
// source link is kept when the new text does not carry one.
func (a *Adapter) Reextract(ctx context.Context, text string, pending *genie.Recipe) *genie.ExtractionResult {
	res := a.Extract(ctx, text)
	if res.Recipe != nil && pending != nil && res.Recipe.SourceLink == "" {
		res.Recipe.SourceLink = pending.SourceLink
	}
	return res
}

func (r *structuredRecipe) recipe() *genie.Recipe {
	recipe := &genie.Recipe{
		RecipeName:     string(r.RecipeName),
		MainIngredient: string(r.MainIngredient),
		Cuisine:        string(r.Cuisine),
		Notes:          string(r.Notes),
		SourceLink:     string(r.SourceLink),
	}
	if recipe.RecipeName == "" {
		recipe.RecipeName = genie.NameFromIngredient(recipe.MainIngredient)
	}
	if strings.EqualFold(recipe.Cuisine, "unknown") || strings.EqualFold(recipe.Cuisine, "null") {
		recipe.Cuisine = ""
	}
	if r.Difficulty.Valid && r.Difficulty.Value > 0 {
		recipe.Difficulty = genie.Ptr(min(r.Difficulty.Value, 5))
	}
	if r.TimeMinutes.Valid && r.TimeMinutes.Value > 0 {
		recipe.TimeMinutes = genie.Ptr(r.TimeMinutes.Value)
	}
	if r.RecipeText != "" {
		recipe.RecipeText = genie.Ptr(string(r.RecipeText))
	}
	return recipe
}
