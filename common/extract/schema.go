// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// findRecipeNode returns the schema.org Recipe object of an ld+json document, either
// the document itself, an element of a top level array, or an element of @graph.
func findRecipeNode(v any) map[string]any {
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	case map[string]any:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if node, ok := item.(map[string]any); ok && isRecipeType(node["@type"]) {
					return node
				}
			}
		}
	}
	return nil
}

func isRecipeType(t any) bool {
	switch t := t.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, s := range t {
			if s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// recipeFromLDJSON renders the first schema.org Recipe found in the ld+json scripts
// as a normalized text block. It returns an empty string if there is none.
func recipeFromLDJSON(scripts []string) string {
	for _, script := range scripts {
		var doc any
		if err := json.Unmarshal([]byte(script), &doc); err != nil {
			continue
		}
		if node := findRecipeNode(doc); node != nil {
			return renderRecipeNode(node)
		}
	}
	return ""
}

func renderRecipeNode(node map[string]any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Recipe: %s\n", textValue(node["name"]))
	fmt.Fprintf(&sb, "Description: %s\n\n", textValue(node["description"]))

	sb.WriteString("Ingredients:\n")
	if ingredients, ok := node["recipeIngredient"].([]any); ok {
		for _, ing := range ingredients {
			if s := textValue(ing); s != "" {
				sb.WriteString(s)
				sb.WriteString("\n")
			}
		}
	}

	sb.WriteString("\nInstructions:\n")
	for _, step := range instructionSteps(node["recipeInstructions"]) {
		sb.WriteString(step)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nPrep Time: %s\n", orNA(textValue(node["prepTime"])))
	fmt.Fprintf(&sb, "Cook Time: %s\n", orNA(textValue(node["cookTime"])))
	fmt.Fprintf(&sb, "Total Time: %s\n", orNA(textValue(node["totalTime"])))
	fmt.Fprintf(&sb, "Servings: %s", orNA(textValue(node["recipeYield"])))

	return strings.TrimSpace(sb.String())
}

// instructionSteps flattens recipeInstructions, which may be a string, a list of
// strings, a list of HowToStep objects, or HowToSections containing steps.
func instructionSteps(v any) []string {
	switch v := v.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []any:
		var steps []string
		for _, item := range v {
			steps = append(steps, instructionSteps(item)...)
		}
		return steps
	case map[string]any:
		if items, ok := v["itemListElement"]; ok {
			return instructionSteps(items)
		}
		if s := textValue(v["text"]); s != "" {
			return []string{s}
		}
	}
	return nil
}

// textValue stringifies scalar JSON values and joins lists of them.
func textValue(v any) string {
	switch v := v.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := textValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
