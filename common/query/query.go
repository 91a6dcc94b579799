// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package query resolves natural language messages into recipe search filters.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/curioswitch/recipegenie/common/ai"
	"github.com/curioswitch/recipegenie/common/recipedb"
)

// acknowledgements never start a search, whatever the model thinks of them.
var acknowledgements = map[string]struct{}{
	"yes": {}, "no": {}, "ok": {}, "okay": {}, "sure": {}, "yeah": {}, "yep": {}, "nope": {},
	"thanks": {}, "thank you": {}, "help": {}, "hello": {}, "hi": {}, "hey": {},
	"save recipe": {}, "save it": {}, "save this": {}, "add recipe": {},
}

var (
	capabilityQuestion = regexp.MustCompile(`^(can|could|will|would|do) you\b|^what can you do\b`)
	addRequest         = regexp.MustCompile(`^(i want to|i'd like to|let me|please)?\s*(add|save)\b`)
	trailingPunct      = regexp.MustCompile(`[\s.!?,]+$`)
)

// payload is the JSON object returned by the model.
type payload struct {
	MainIngredient ai.String `json:"main_ingredient"`
	Cuisine        ai.String `json:"cuisine"`
	Difficulty     ai.Int    `json:"difficulty"`
	MaxTime        ai.Int    `json:"max_time"`
	SearchTerm     ai.String `json:"search_term"`
	UserName       ai.String `json:"user_name"`
	SearchAll      ai.Bool   `json:"search_all"`
}

// Resolver decides whether a message is a recipe search.
type Resolver struct {
	ai ai.QueryClassifier
}

func NewResolver(classifier ai.QueryClassifier) *Resolver {
	return &Resolver{
		ai: classifier,
	}
}

// Resolve returns the filters requested by message, or nil when the message is
// not a search.
func (r *Resolver) Resolve(ctx context.Context, message string) (*recipedb.Filters, error) {
	if NotASearch(message) {
		return nil, nil
	}

	raw, err := r.ai.ClassifyQuery(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("query: classifying message: %w", err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("query: %w: %w", ai.ErrNoStructuredPayload, err)
	}

	return p.filters(), nil
}

// NotASearch reports messages that are known not to be searches without asking
// the model: acknowledgements, greetings, questions about the assistant and
// requests to save a recipe.
func NotASearch(message string) bool {
	m := strings.ToLower(strings.TrimSpace(message))
	m = trailingPunct.ReplaceAllString(m, "")
	if m == "" {
		return true
	}
	if _, ok := acknowledgements[m]; ok {
		return true
	}
	return capabilityQuestion.MatchString(m) || addRequest.MatchString(m)
}

func (p *payload) filters() *recipedb.Filters {
	var f recipedb.Filters
	if p.SearchAll {
		f.SearchAll = true
	} else {
		f = recipedb.Filters{
			MainIngredient: string(p.MainIngredient),
			Cuisine:        string(p.Cuisine),
			SearchTerm:     string(p.SearchTerm),
			UserName:       string(p.UserName),
		}
		if p.Difficulty.Valid {
			f.Difficulty = p.Difficulty.Value
		}
		if p.MaxTime.Valid {
			f.MaxTime = p.MaxTime.Value
		}
	}

	f = f.Normalize()
	if !f.Valid() {
		return nil
	}
	return &f
}
