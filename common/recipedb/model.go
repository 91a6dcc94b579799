// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"strings"
	"time"

	"github.com/curioswitch/recipegenie/common/genie"
)

// Record is a saved recipe.
type Record struct {
	// ID is the ID of the recipe.
	ID string `firestore:"id" json:"id"`

	// UserID is the ID of the user that saved the recipe.
	UserID string `firestore:"userId" json:"user_id"`

	genie.Recipe

	// CreatedAt is when the recipe was saved.
	CreatedAt time.Time `firestore:"createdAt" json:"created_at"`

	// AddedBy is the display name of the owner, filled in for search results.
	AddedBy string `firestore:"-" json:"added_by,omitempty"`
}

// Profile is the public profile of a household member.
type Profile struct {
	ID          string `firestore:"id" json:"id"`
	DisplayName string `firestore:"displayName" json:"display_name"`
}

// Filters are search criteria resolved from a natural language query. Zero values
// are unset.
type Filters struct {
	MainIngredient string `json:"main_ingredient,omitempty"`
	Cuisine        string `json:"cuisine,omitempty"`
	Difficulty     int    `json:"difficulty,omitempty"`
	MaxTime        int    `json:"max_time,omitempty"`
	SearchTerm     string `json:"search_term,omitempty"`
	UserName       string `json:"user_name,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	SearchAll      bool   `json:"search_all,omitempty"`
}

// Normalize trims string criteria, drops non-positive numbers, and discards every
// other criteria when SearchAll is set.
func (f Filters) Normalize() Filters {
	if f.SearchAll {
		return Filters{SearchAll: true}
	}
	f.MainIngredient = strings.TrimSpace(f.MainIngredient)
	f.Cuisine = strings.TrimSpace(f.Cuisine)
	f.SearchTerm = strings.TrimSpace(f.SearchTerm)
	f.UserName = strings.TrimSpace(f.UserName)
	f.UserID = strings.TrimSpace(f.UserID)
	f.Difficulty = max(f.Difficulty, 0)
	f.MaxTime = max(f.MaxTime, 0)
	return f
}

// Valid returns whether the filters request a search at all.
func (f Filters) Valid() bool {
	f = f.Normalize()
	return f != Filters{}
}

// Matches returns whether the record satisfies all set criteria. UserName is
// expected to have been resolved to UserID already and is ignored.
func (f Filters) Matches(r *Record) bool {
	f = f.Normalize()
	if f.SearchAll {
		return true
	}
	if f.MainIngredient != "" && !containsFold(r.MainIngredient, f.MainIngredient) {
		return false
	}
	if f.Cuisine != "" && !containsFold(r.Cuisine, f.Cuisine) {
		return false
	}
	if f.Difficulty > 0 && (r.Difficulty == nil || *r.Difficulty != f.Difficulty) {
		return false
	}
	if f.MaxTime > 0 && (r.TimeMinutes == nil || *r.TimeMinutes > f.MaxTime) {
		return false
	}
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.SearchTerm != "" && !containsFold(r.RecipeName, f.SearchTerm) && !containsFold(r.Text(), f.SearchTerm) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
