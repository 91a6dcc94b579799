// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChat(t *testing.T) {
	bare := Chat("", "")
	assert.True(t, strings.HasPrefix(bare, chatPersona))
	assert.NotContains(t, bare, "preferred language")

	withContext := Chat("CURRENT CONTEXT:\nPending recipe: Dal", "ja")
	assert.Contains(t, withContext, "CURRENT CONTEXT:\nPending recipe: Dal")
	assert.Contains(t, withContext, `The user's preferred language is "ja".`)
	assert.Less(t, strings.Index(withContext, "Pending recipe: Dal"), strings.Index(withContext, strings.TrimSpace(chatRules)))
}

func TestExtractRecipeInput(t *testing.T) {
	assert.Equal(t, "Extract recipe information from this text:\n\nchicken, rice", ExtractRecipeInput("chicken, rice"))
	assert.NotEmpty(t, ExtractRecipe())
	assert.NotEmpty(t, ParseQuery())
}
