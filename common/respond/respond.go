// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package respond renders the outcome of each chat path into the reply shown to the user.
package respond

import (
	"fmt"
	"strings"

	"github.com/curioswitch/recipegenie/common/genie"
	"github.com/curioswitch/recipegenie/common/recipedb"
)

// MaxPreviews is how many search results are listed in a reply.
const MaxPreviews = 5

const (
	RateLimited = "⏱️ I'm getting too many requests right now. Please wait a moment and try again!"

	ChatFailure = "I'm having trouble thinking right now. Please try again in a moment!"

	EmptyChat = "I'm not sure how to respond to that."

	TextFailure = "I tried to extract the recipe but had trouble understanding it. Could you paste it again or try uploading a photo instead?"

	NoResults = "I couldn't find any recipes matching your criteria. Try adjusting your search or add some recipes first!"

	SearchFailure = "Sorry, I couldn't search your recipes right now. Please try again in a moment!"

	EmptyCollection = "You don't have any recipes saved yet! Try adding one by uploading a photo, pasting a URL, or typing recipe text."

	missingText = "⚠️ I only got the basic info - I couldn't find the full ingredients and instructions.\n"
)

// TextExtraction renders the reply to pasted recipe text.
func TextExtraction(res *genie.ExtractionResult) string {
	if res.Outcome == genie.OutcomeFailure || res.Recipe == nil {
		return TextFailure
	}

	var sb strings.Builder
	sb.WriteString("Got it ✅ Here's the recipe I extracted:\n\n")
	writeRecipe(&sb, res.Recipe, true)
	if res.Recipe.SourceLink != "" {
		fmt.Fprintf(&sb, "Source: %s\n", res.Recipe.SourceLink)
	}
	writeText(&sb, res)
	sb.WriteString("\nReply \"save recipe\" or \"yes\" to add it to your collection!")
	return sb.String()
}

// URLExtraction renders the reply to a submitted link.
func URLExtraction(res *genie.ExtractionResult, url string) string {
	switch res.Outcome {
	case genie.OutcomeSuccess:
		var sb strings.Builder
		sb.WriteString("✅ Extracted recipe from website! Here's what I got:\n\n")
		writeRecipe(&sb, res.Recipe, true)
		writeText(&sb, res)
		fmt.Fprintf(&sb, "\nSource: %s\n\n", url)
		sb.WriteString("Reply \"save recipe\" to add it to your collection, or tell me what needs to be changed!")
		return sb.String()
	case genie.OutcomePartial:
		var sb strings.Builder
		sb.WriteString("I got the recipe link and basic info, but couldn't extract the full ingredients and instructions (the website is blocking automatic extraction).\n\n")
		writeRecipe(&sb, res.Recipe, false)
		fmt.Fprintf(&sb, "\nSource: %s\n\n", url)
		sb.WriteString("⚠️ I only got the basic info - you'll need to click the link to see the full recipe.\n\n")
		sb.WriteString("Reply \"save recipe\" to save the link, or open the URL and copy/paste the recipe text for full extraction.")
		return sb.String()
	default:
		return fmt.Sprintf("I tried to extract the recipe from that URL, but encountered an error: %s\n\n"+
			"The website might be blocking automated access. You can still save the link manually!", res.Reason)
	}
}

// PhotoExtraction renders the reply to an uploaded photo.
func PhotoExtraction(res *genie.ExtractionResult) string {
	if res.Outcome == genie.OutcomeFailure || res.Recipe == nil {
		return fmt.Sprintf("I couldn't read a recipe from that photo. %s", res.Reason)
	}

	var sb strings.Builder
	sb.WriteString("📸 Got it ✅ Here's the recipe I read from your photo:\n\n")
	writeRecipe(&sb, res.Recipe, true)
	writeText(&sb, res)
	sb.WriteString("\nReply \"save recipe\" or \"yes\" to add it to your collection!")
	return sb.String()
}

// Search renders search results. all is set when the whole collection was requested,
// which changes the wording and the empty state.
func Search(recipes []*recipedb.Record, all bool) string {
	if len(recipes) == 0 {
		if all {
			return EmptyCollection
		}
		return NoResults
	}

	var sb strings.Builder
	if all {
		fmt.Fprintf(&sb, "You have %d %s saved!\n\n", len(recipes), plural(len(recipes)))
	} else {
		fmt.Fprintf(&sb, "I found %d %s for you!\n\n", len(recipes), plural(len(recipes)))
	}

	for i, r := range recipes[:min(len(recipes), MaxPreviews)] {
		fmt.Fprintf(&sb, "%d. **%s**\n", i+1, r.RecipeName)
		if r.AddedBy != "" {
			fmt.Fprintf(&sb, "   Added by %s\n", r.AddedBy)
		}
		if r.MainIngredient != "" {
			fmt.Fprintf(&sb, "   Main ingredient: %s\n", r.MainIngredient)
		}
		if r.TimeMinutes != nil && *r.TimeMinutes > 0 {
			fmt.Fprintf(&sb, "   Time: %d minutes\n", *r.TimeMinutes)
		}
		sb.WriteString("\n")
	}

	more := len(recipes) - MaxPreviews
	if all {
		if more > 0 {
			fmt.Fprintf(&sb, "...and %d more! Click \"Browse Recipes\" to see all of them.\n\n", more)
		} else {
			sb.WriteString("Click \"Browse Recipes\" to see them all!\n\n")
		}
		sb.WriteString("Want me to show you the full instructions and ingredients for any of these? Just ask!")
		return sb.String()
	}

	if more > 0 {
		fmt.Fprintf(&sb, "...and %d more! Click \"Browse Recipes\" to see all results.\n\n", more)
	}
	sb.WriteString("\nWant me to show you the full instructions and ingredients? Just ask!")
	return sb.String()
}

func writeRecipe(sb *strings.Builder, r *genie.Recipe, withTime bool) {
	name := r.RecipeName
	if name == "" {
		name = "Recipe"
	}
	fmt.Fprintf(sb, "**%s**\n\n", name)
	if r.MainIngredient != "" {
		fmt.Fprintf(sb, "Main Ingredient: %s\n", r.MainIngredient)
	}
	if r.Cuisine != "" {
		fmt.Fprintf(sb, "Cuisine: %s\n", r.Cuisine)
	}
	if r.Difficulty != nil && *r.Difficulty > 0 {
		fmt.Fprintf(sb, "Difficulty: %d/5\n", *r.Difficulty)
	}
	if withTime && r.TimeMinutes != nil && *r.TimeMinutes > 0 {
		fmt.Fprintf(sb, "Time: %d minutes\n", *r.TimeMinutes)
	}
}

func writeText(sb *strings.Builder, res *genie.ExtractionResult) {
	if res.Recipe.HasText() {
		fmt.Fprintf(sb, "\n---\n\n%s\n\n---\n", res.Recipe.Text())
		return
	}
	sb.WriteString("\n")
	sb.WriteString(missingText)
}

func plural(n int) string {
	if n == 1 {
		return "recipe"
	}
	return "recipes"
}
