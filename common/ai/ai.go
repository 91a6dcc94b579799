// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package ai provides the language model capabilities used for recipe extraction,
// query parsing and conversation, behind narrow interfaces so providers can be swapped.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrRateLimited is returned when the provider is throttling requests.
	ErrRateLimited = errors.New("ai: rate limited")

	// ErrNoStructuredPayload is returned when the provider did not return a JSON object.
	ErrNoStructuredPayload = errors.New("ai: no structured payload in response")
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a message of a conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Chatter generates a conversational reply.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Structurer extracts structured recipe fields from free text as a JSON object.
type Structurer interface {
	StructuredExtract(ctx context.Context, text string) (json.RawMessage, error)
}

// QueryClassifier turns a natural language message into search criteria as a JSON object.
type QueryClassifier interface {
	ClassifyQuery(ctx context.Context, text string) (json.RawMessage, error)
}

// Provider is a model backend implementing every capability.
type Provider interface {
	Chatter
	Structurer
	QueryClassifier
}

// Models selects the model used for each capability. Empty fields use the provider default.
type Models struct {
	Chat    string
	Extract string
	Query   string
}

func (m Models) withDefault(def string) Models {
	if m.Chat == "" {
		m.Chat = def
	}
	if m.Extract == "" {
		m.Extract = def
	}
	if m.Query == "" {
		m.Query = def
	}
	return m
}

// IsRateLimited returns whether err signals upstream throttling. Errors of unknown
// providers are matched on their text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	return rateLimitText.MatchString(err.Error())
}

// rateLimitText matches throttling indicators as whole phrases, so that words like
// "generate" or "limit" alone do not count.
var rateLimitText = regexp.MustCompile(`(?i)\brate[ _-]?limit|\brate exceeded\b|\btoo many requests\b|\b429\b|\bquota\b|\bresource_exhausted\b`)

// jsonObject validates that text holds a JSON object. Models occasionally wrap the
// object in a markdown code fence, which is stripped.
func jsonObject(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if s, ok := strings.CutPrefix(text, "```"); ok {
		s = strings.TrimPrefix(s, "json")
		s, _ = strings.CutSuffix(strings.TrimSpace(s), "```")
		text = strings.TrimSpace(s)
	}
	if text == "" {
		return nil, ErrNoStructuredPayload
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoStructuredPayload, err)
	}
	return json.RawMessage(text), nil
}
