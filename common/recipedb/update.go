// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/curioswitch/recipegenie/common/genie"
)

// ErrInvalidUpdate is returned for updates that would leave a recipe invalid.
var ErrInvalidUpdate = errors.New("recipedb: invalid recipe update")

// RecipeUpdate is a partial update of a recipe. Only non-nil fields are changed.
type RecipeUpdate struct {
	RecipeName     *string `json:"recipe_name,omitempty"`
	MainIngredient *string `json:"main_ingredient,omitempty"`
	Cuisine        *string `json:"cuisine,omitempty"`
	Difficulty     *int    `json:"difficulty,omitempty"`
	TimeMinutes    *int    `json:"time_minutes,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	RecipeText     *string `json:"recipe_text,omitempty"`
	SourceLink     *string `json:"source_link,omitempty"`
	PhotoURL       *string `json:"photo_url,omitempty"`
}

// Validate checks the update can be applied to any recipe.
func (u *RecipeUpdate) Validate() error {
	if u.RecipeName != nil && strings.TrimSpace(*u.RecipeName) == "" {
		return fmt.Errorf("%w: recipe name cannot be blank", ErrInvalidUpdate)
	}
	if u.Difficulty != nil && (*u.Difficulty < 1 || *u.Difficulty > 5) {
		return fmt.Errorf("%w: difficulty must be between 1 and 5", ErrInvalidUpdate)
	}
	if u.TimeMinutes != nil && *u.TimeMinutes <= 0 {
		return fmt.Errorf("%w: time must be positive", ErrInvalidUpdate)
	}
	return nil
}

// Apply returns a copy of r with the set fields of the update.
func (u *RecipeUpdate) Apply(r genie.Recipe) genie.Recipe {
	setString(&r.RecipeName, u.RecipeName)
	setString(&r.MainIngredient, u.MainIngredient)
	setString(&r.Cuisine, u.Cuisine)
	setString(&r.Notes, u.Notes)
	setString(&r.SourceLink, u.SourceLink)
	setString(&r.PhotoURL, u.PhotoURL)
	if u.Difficulty != nil {
		r.Difficulty = genie.Ptr(*u.Difficulty)
	}
	if u.TimeMinutes != nil {
		r.TimeMinutes = genie.Ptr(*u.TimeMinutes)
	}
	if u.RecipeText != nil {
		r.RecipeText = genie.Ptr(*u.RecipeText)
	}
	return r
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
