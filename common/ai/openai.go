// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"github.com/curioswitch/recipegenie/common/prompts"
)

// OpenAI is a Provider backed by the OpenAI chat completions API.
type OpenAI struct {
	client *openai.Client
	models Models
}

// NewOpenAI returns an OpenAI provider. Models default to gpt-4o.
func NewOpenAI(client *openai.Client, models Models) *OpenAI {
	return &OpenAI{
		client: client,
		models: models.withDefault(openai.ChatModelGPT4o),
	}
}

func (o *OpenAI) Chat(ctx context.Context, messages []Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		case RoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	res, err := o.complete(ctx, openai.ChatCompletionNewParams{
		Model:               o.models.Chat,
		Messages:            msgs,
		Temperature:         openai.Float(0.7),
		MaxCompletionTokens: openai.Int(2000),
	})
	if err != nil {
		return "", err
	}
	return res, nil
}

func (o *OpenAI) StructuredExtract(ctx context.Context, text string) (json.RawMessage, error) {
	res, err := o.complete(ctx, openai.ChatCompletionNewParams{
		Model: o.models.Extract,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompts.ExtractRecipe()),
			openai.UserMessage(prompts.ExtractRecipeInput(text)),
		},
		Temperature:         openai.Float(0.3),
		MaxCompletionTokens: openai.Int(2000),
		ResponseFormat:      jsonObjectFormat(),
	})
	if err != nil {
		return nil, err
	}
	return jsonObject(res)
}

func (o *OpenAI) ClassifyQuery(ctx context.Context, text string) (json.RawMessage, error) {
	res, err := o.complete(ctx, openai.ChatCompletionNewParams{
		Model: o.models.Query,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompts.ParseQuery()),
			openai.UserMessage(text),
		},
		Temperature:         openai.Float(0.1),
		MaxCompletionTokens: openai.Int(500),
		ResponseFormat:      jsonObjectFormat(),
	})
	if err != nil {
		return nil, err
	}
	return jsonObject(res)
}

func (o *OpenAI) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	res, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("ai: openai chat completion: %w: %w", ErrRateLimited, err)
		}
		return "", fmt.Errorf("ai: openai chat completion: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("ai: openai returned no choices for %s", res.Model)
	}
	return res.Choices[0].Message.Content, nil
}

func jsonObjectFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
	}
}
