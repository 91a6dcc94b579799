// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package genie

import (
	"strings"
	"unicode"
)

// Sender identifies who wrote a chat turn.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatTurn is a single message of a conversation. History is owned by the caller
// and only ever appended to.
type ChatTurn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Recipe is structured recipe data produced by extraction. It is the shape of the
// pending recipe carried between turns and the payload of a saved record.
type Recipe struct {
	// RecipeName is always populated for extracted recipes.
	RecipeName string `firestore:"recipeName" json:"recipe_name"`

	MainIngredient string `firestore:"mainIngredient" json:"main_ingredient,omitempty"`

	Cuisine string `firestore:"cuisine" json:"cuisine,omitempty"`

	// Difficulty is between 1 and 5 when known.
	Difficulty *int `firestore:"difficulty" json:"difficulty"`

	// TimeMinutes is only set when the source stated it.
	TimeMinutes *int `firestore:"timeMinutes" json:"time_minutes"`

	Notes string `firestore:"notes" json:"notes,omitempty"`

	// RecipeText is the cleaned ingredients and instructions. A nil RecipeText means
	// extraction was partial and must be reported as such, it is never the same as
	// an empty recipe.
	RecipeText *string `firestore:"recipeText" json:"recipe_text"`

	SourceLink string `firestore:"sourceLink" json:"source_link,omitempty"`

	PhotoURL string `firestore:"photoUrl" json:"photo_url,omitempty"`
}

// HasText returns whether the full recipe text is available.
func (r *Recipe) HasText() bool {
	return r != nil && r.RecipeText != nil && strings.TrimSpace(*r.RecipeText) != ""
}

// Text returns the recipe text or an empty string when it is not available.
func (r *Recipe) Text() string {
	if r == nil || r.RecipeText == nil {
		return ""
	}
	return *r.RecipeText
}

// NameFromIngredient synthesizes a recipe name for sources that did not name the dish.
func NameFromIngredient(ingredient string) string {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return "Untitled Recipe"
	}
	runes := []rune(ingredient)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes) + " Recipe"
}

// Outcome is the tagged state of an extraction.
type Outcome int

const (
	// OutcomeFailure means nothing usable was extracted.
	OutcomeFailure Outcome = iota
	// OutcomeSuccess means the full recipe including its text was extracted.
	OutcomeSuccess
	// OutcomePartial means identifying metadata was extracted but not the recipe text.
	OutcomePartial
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePartial:
		return "partialSuccess"
	case OutcomeFailure:
		return "failure"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ExtractionResult is the outcome of every extraction path. Use Succeeded, Partial
// and Failed to create one so the outcome and its data always agree.
type ExtractionResult struct {
	Outcome Outcome `json:"outcome"`

	// Recipe is nil on failure.
	Recipe *Recipe `json:"recipeData,omitempty"`

	// Reason explains a partial or failed extraction to the user.
	Reason string `json:"reason,omitempty"`

	// SourceText is the raw text the recipe was extracted from, if any.
	SourceText string `json:"-"`

	// Err is the underlying cause of a failure, for logging and rate limit detection.
	Err error `json:"-"`
}

// Succeeded returns a successful result. A recipe without text is demoted to a
// partial result.
func Succeeded(recipe *Recipe, sourceText string) *ExtractionResult {
	if !recipe.HasText() {
		return Partial(recipe, "The full recipe text could not be extracted.")
	}
	return &ExtractionResult{
		Outcome:    OutcomeSuccess,
		Recipe:     recipe,
		SourceText: sourceText,
	}
}

// Partial returns a partial result. Any recipe text is dropped.
func Partial(recipe *Recipe, reason string) *ExtractionResult {
	recipe.RecipeText = nil
	return &ExtractionResult{
		Outcome: OutcomePartial,
		Recipe:  recipe,
		Reason:  reason,
	}
}

// Failed returns a failed result.
func Failed(reason string, err error) *ExtractionResult {
	return &ExtractionResult{
		Outcome: OutcomeFailure,
		Reason:  reason,
		Err:     err,
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
