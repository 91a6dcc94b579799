// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package api defines the messages of the recipe genie service. Procedures are
// served with the Connect protocol using plain JSON.
package api

import (
	"github.com/curioswitch/recipegenie/common/genie"
	"github.com/curioswitch/recipegenie/common/recipedb"
	"github.com/curioswitch/recipegenie/common/router"
)

// ServiceName is the fully-qualified name of the recipe genie service.
const ServiceName = "recipegenie.v1.RecipeGenieService"

const (
	ChatProcedure         = "/" + ServiceName + "/Chat"
	ScrapeURLProcedure    = "/" + ServiceName + "/ScrapeURL"
	ExtractTextProcedure  = "/" + ServiceName + "/ExtractText"
	SaveRecipeProcedure   = "/" + ServiceName + "/SaveRecipe"
	UpdateRecipeProcedure = "/" + ServiceName + "/UpdateRecipe"
	DeleteRecipeProcedure = "/" + ServiceName + "/DeleteRecipe"
	ListRecipesProcedure  = "/" + ServiceName + "/ListRecipes"
)

// ProcessPhotoPath accepts multipart uploads, which Connect does not support.
const ProcessPhotoPath = "/api/process-photo"

type ChatRequest struct {
	Message string `json:"message"`

	ConversationHistory []genie.ChatTurn `json:"conversationHistory,omitempty"`

	PendingRecipe *genie.Recipe `json:"pendingRecipe,omitempty"`

	LastRecipes []*recipedb.Record `json:"lastRecipes,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`

	// RecipeData is the new pending recipe, if the message yielded one.
	RecipeData *genie.Recipe `json:"recipeData,omitempty"`

	PartialSuccess bool `json:"partialSuccess,omitempty"`

	// Recipes are search results, which become the last shown recipes.
	Recipes []*recipedb.Record `json:"recipes,omitempty"`

	Filters *recipedb.Filters `json:"filters,omitempty"`

	Debug *router.DebugInfo `json:"debug,omitempty"`
}

type ScrapeURLRequest struct {
	URL string `json:"url"`
}

type ExtractTextRequest struct {
	Text string `json:"text"`

	// PendingRecipe is the recipe the text corrects, if any.
	PendingRecipe *genie.Recipe `json:"pendingRecipe,omitempty"`
}

// ExtractionResponse is the result of extracting a recipe from a link, text or photo.
type ExtractionResponse struct {
	Success bool `json:"success"`

	// PartialSuccess is set when RecipeData has no recipe text.
	PartialSuccess bool `json:"partialSuccess,omitempty"`

	RecipeData *genie.Recipe `json:"recipeData,omitempty"`

	ExtractedText string `json:"extractedText,omitempty"`

	// Response is the chat reply describing the result.
	Response string `json:"response,omitempty"`

	Error string `json:"error,omitempty"`
}

type SaveRecipeRequest struct {
	RecipeData *genie.Recipe `json:"recipeData"`

	// PhotoBase64 is uploaded when RecipeData has no photo URL.
	PhotoBase64 string `json:"photoBase64,omitempty"`
}

type SaveRecipeResponse struct {
	Recipe *recipedb.Record `json:"recipe"`

	Message string `json:"message"`
}

type UpdateRecipeRequest struct {
	RecipeID string `json:"recipeId"`

	// Updates holds the fields to change, absent fields are kept.
	Updates *recipedb.RecipeUpdate `json:"updates"`
}

type UpdateRecipeResponse struct {
	Recipe *recipedb.Record `json:"recipe"`
}

type DeleteRecipeRequest struct {
	RecipeID string `json:"recipeId"`
}

type DeleteRecipeResponse struct{}

type ListRecipesRequest struct {
	// Filters narrow the results, all recipes are returned when unset.
	Filters *recipedb.Filters `json:"filters,omitempty"`
}

type ListRecipesResponse struct {
	Recipes []*recipedb.Record `json:"recipes"`
}

// NewExtractionResponse describes an extraction result along with its chat reply.
func NewExtractionResponse(res *genie.ExtractionResult, response string) *ExtractionResponse {
	out := &ExtractionResponse{
		Success:        res.Outcome != genie.OutcomeFailure,
		PartialSuccess: res.Outcome == genie.OutcomePartial,
		RecipeData:     res.Recipe,
		ExtractedText:  res.SourceText,
		Response:       response,
	}
	if !out.Success {
		out.Error = res.Reason
	}
	return out
}
