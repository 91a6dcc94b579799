// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const pancakeNode = `{
	"@type": "Recipe",
	"name": "Pancakes",
	"description": "Fluffy.",
	"recipeIngredient": ["1 cup flour", "1 egg", ""],
	"recipeInstructions": [
		{"@type": "HowToStep", "text": "Mix."},
		{"@type": "HowToSection", "itemListElement": [{"@type": "HowToStep", "text": "Fry."}, "Serve."]}
	],
	"prepTime": "PT5M",
	"cookTime": "PT10M",
	"recipeYield": ["4", "4 servings"]
}`

const pancakeText = "Recipe: Pancakes\n" +
	"Description: Fluffy.\n\n" +
	"Ingredients:\n1 cup flour\n1 egg\n\n" +
	"Instructions:\nMix.\nFry.\nServe.\n\n" +
	"Prep Time: PT5M\n" +
	"Cook Time: PT10M\n" +
	"Total Time: N/A\n" +
	"Servings: 4, 4 servings"

func TestRecipeFromLDJSON(t *testing.T) {
	tests := []struct {
		name    string
		scripts []string
		want    string
	}{
		{
			name:    "direct",
			scripts: []string{pancakeNode},
			want:    pancakeText,
		},
		{
			name:    "graph",
			scripts: []string{`{"@context": "https://schema.org", "@graph": [{"@type": "WebPage"}, ` + pancakeNode + `]}`},
			want:    pancakeText,
		},
		{
			name:    "array",
			scripts: []string{`[{"@type": "Organization"}, ` + pancakeNode + `]`},
			want:    pancakeText,
		},
		{
			name:    "later script",
			scripts: []string{`{not json`, `{"@type": "BreadcrumbList"}`, pancakeNode},
			want:    pancakeText,
		},
		{
			name:    "type list and string instructions",
			scripts: []string{`{"@type": ["Recipe", "NewsArticle"], "name": "Toast", "recipeInstructions": "Toast the bread."}`},
			want: "Recipe: Toast\nDescription: \n\nIngredients:\n\nInstructions:\nToast the bread.\n\n" +
				"Prep Time: N/A\nCook Time: N/A\nTotal Time: N/A\nServings: N/A",
		},
		{
			name:    "none",
			scripts: []string{`{"@type": "Article"}`},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, recipeFromLDJSON(tc.scripts))
		})
	}
}
