// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package chatctx renders the conversation state carried by the caller, the pending
// recipe and the recently shown recipes, into model context.
package chatctx

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/curioswitch/recipegenie/common/ai"
	"github.com/curioswitch/recipegenie/common/genie"
	"github.com/curioswitch/recipegenie/common/recipedb"
)

const (
	// MaxContextRecipes is how many recently shown recipes are described to the model.
	MaxContextRecipes = 3

	// PreviewLength is the number of characters of recipe text included per shown recipe.
	PreviewLength = 800
)

const missingPendingText = "⚠️ Full recipe text NOT available - only basic metadata was extracted. The website blocked automatic extraction."

// Build describes the pending recipe and up to MaxContextRecipes recently shown
// recipes, labeling for each whether its full text is available. It returns an
// empty string when there is nothing to describe.
func Build(pending *genie.Recipe, last []*recipedb.Record) string {
	var sb strings.Builder

	if pending != nil {
		sb.WriteString("**CURRENT CONTEXT**: The user just shared a recipe that's pending save:\n")
		fmt.Fprintf(&sb, "- Recipe Name: %s\n", orDefault(pending.RecipeName, "Unknown"))
		fmt.Fprintf(&sb, "- Main Ingredient: %s\n", orDefault(pending.MainIngredient, "Unknown"))
		fmt.Fprintf(&sb, "- Cuisine: %s\n", orDefault(pending.Cuisine, "Unknown"))
		fmt.Fprintf(&sb, "- Difficulty: %s/5\n", intOrUnknown(pending.Difficulty))
		fmt.Fprintf(&sb, "- Time: %s minutes\n", intOrUnknown(pending.TimeMinutes))
		fmt.Fprintf(&sb, "- Notes: %s\n", orDefault(pending.Notes, "None"))
		sb.WriteString("\n**FULL RECIPE TEXT:**\n")
		if pending.HasText() {
			sb.WriteString(pending.Text())
		} else {
			sb.WriteString(missingPendingText)
		}
		sb.WriteString("\n")
	}

	if len(last) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("**RECENTLY SHOWN RECIPES**: The user just searched and I showed them these recipes:\n")
		for i, r := range last[:min(len(last), MaxContextRecipes)] {
			fmt.Fprintf(&sb, "\n%d. **%s**\n", i+1, r.RecipeName)
			if r.MainIngredient != "" {
				fmt.Fprintf(&sb, "   - Main Ingredient: %s\n", r.MainIngredient)
			}
			if r.Cuisine != "" {
				fmt.Fprintf(&sb, "   - Cuisine: %s\n", r.Cuisine)
			}
			if r.TimeMinutes != nil && *r.TimeMinutes > 0 {
				fmt.Fprintf(&sb, "   - Time: %d minutes\n", *r.TimeMinutes)
			}
			if r.HasText() {
				text := r.Text()
				fmt.Fprintf(&sb, "   - ✅ HAS FULL RECIPE TEXT (%d chars)\n", utf8.RuneCountInString(text))
				fmt.Fprintf(&sb, "   - Full Recipe Preview:\n%s\n", Preview(text, PreviewLength))
			} else {
				sb.WriteString("   - ❌ NO FULL RECIPE TEXT - only basic metadata saved\n")
			}
			if r.SourceLink != "" {
				fmt.Fprintf(&sb, "   - Source Link: %s\n", r.SourceLink)
			}
		}
	}

	return sb.String()
}

// Preview returns at most n characters of text.
func Preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}

// Messages assembles the conversation sent to the model: the system prompt, the
// history and the new user message.
func Messages(system string, history []genie.ChatTurn, message string) []ai.Message {
	msgs := make([]ai.Message, 0, len(history)+2)
	msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: system})
	for _, turn := range history {
		role := ai.RoleAssistant
		if turn.Sender == genie.SenderUser {
			role = ai.RoleUser
		}
		msgs = append(msgs, ai.Message{Role: role, Content: turn.Text})
	}
	msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: message})
	return msgs
}

func orDefault(s string, def string) string {
	if s == "" {
		return def
	}
	return s
}

func intOrUnknown(v *int) string {
	if v == nil || *v == 0 {
		return "Unknown"
	}
	return strconv.Itoa(*v)
}
