// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/curioswitch/recipegenie/common/prompts"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini is a Provider backed by the Gemini API with structured output.
type Gemini struct {
	genAI  *genai.Client
	models Models
}

// NewGemini returns a Gemini provider. Models default to gemini-2.5-flash.
func NewGemini(genAI *genai.Client, models Models) *Gemini {
	return &Gemini{
		genAI:  genAI,
		models: models.withDefault(defaultGeminiModel),
	}
}

func (g *Gemini) Chat(ctx context.Context, messages []Message) (string, error) {
	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	conf := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 2000,
	}
	if len(system) > 0 {
		conf.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleModel)
	}
	return g.generate(ctx, g.models.Chat, contents, conf)
}

func (g *Gemini) StructuredExtract(ctx context.Context, text string) (json.RawMessage, error) {
	res, err := g.generate(ctx, g.models.Extract, []*genai.Content{
		genai.NewContentFromText(prompts.ExtractRecipeInput(text), genai.RoleUser),
	}, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompts.ExtractRecipe(), genai.RoleModel),
		Temperature:       genai.Ptr[float32](0.3),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    recipeSchema,
	})
	if err != nil {
		return nil, err
	}
	return jsonObject(res)
}

func (g *Gemini) ClassifyQuery(ctx context.Context, text string) (json.RawMessage, error) {
	res, err := g.generate(ctx, g.models.Query, []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompts.ParseQuery(), genai.RoleModel),
		Temperature:       genai.Ptr[float32](0.1),
		MaxOutputTokens:   500,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    querySchema,
	})
	if err != nil {
		return nil, err
	}
	return jsonObject(res)
}

func (g *Gemini) generate(ctx context.Context, model string, contents []*genai.Content, conf *genai.GenerateContentConfig) (string, error) {
	res, err := g.genAI.Models.GenerateContent(ctx, model, contents, conf)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED") {
			return "", fmt.Errorf("ai: gemini generate content: %w: %w", ErrRateLimited, err)
		}
		return "", fmt.Errorf("ai: gemini generate content: %w", err)
	}
	return res.Text(), nil
}

var recipeSchema = &genai.Schema{
	Type:        "object",
	Description: "A recipe extracted from free text.",
	Properties: map[string]*genai.Schema{
		"recipe_name": {
			Type:        "string",
			Description: "The title of the recipe, or one created from the main ingredient.",
		},
		"main_ingredient": {
			Type:        "string",
			Description: "The primary ingredient.",
		},
		"cuisine": {
			Type:        "string",
			Description: "The cuisine, only when clear from the ingredients.",
			Nullable:    genai.Ptr(true),
		},
		"difficulty": {
			Type:        "integer",
			Description: "Difficulty from 1 (easy) to 5 (expert).",
		},
		"time_minutes": {
			Type:        "integer",
			Description: "Total cooking time in minutes, null when not mentioned.",
			Nullable:    genai.Ptr(true),
		},
		"notes": {
			Type:        "string",
			Description: "Tips or substitutions.",
		},
		"recipe_text": {
			Type:        "string",
			Description: "The cleaned ingredients and instructions, or only the ingredients.",
		},
	},
	Required: []string{"recipe_name", "main_ingredient", "difficulty", "time_minutes", "recipe_text"},
}

var querySchema = &genai.Schema{
	Type:        "object",
	Description: "Search criteria. Empty when the message is not a search.",
	Properties: map[string]*genai.Schema{
		"main_ingredient": {Type: "string"},
		"cuisine":         {Type: "string"},
		"difficulty":      {Type: "integer"},
		"max_time":        {Type: "integer"},
		"search_term":     {Type: "string"},
		"user_name":       {Type: "string"},
		"search_all":      {Type: "boolean"},
	},
}
