// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package router handles a chat turn, deciding whether the message is a link, pasted
// recipe text, a search or conversation, and delegating to the matching path.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/curioswitch/recipegenie/common/ai"
	"github.com/curioswitch/recipegenie/common/chatctx"
	"github.com/curioswitch/recipegenie/common/genie"
	"github.com/curioswitch/recipegenie/common/prompts"
	"github.com/curioswitch/recipegenie/common/recipedb"
	"github.com/curioswitch/recipegenie/common/respond"
)

// ErrInvalidInput is returned for turns without a message.
var ErrInvalidInput = errors.New("router: invalid input")

// minRecipeWords is the number of words a message must exceed to be treated as
// pasted recipe text.
const minRecipeWords = 15

var urlPattern = regexp.MustCompile(`https?://\S+`)

var recipeKeywords = []string{
	"ingredient", "cup", "tablespoon", "teaspoon",
	"boil", "bake", "cook", "mix", "sauté", "simmer", "chop", "dice",
	"serves", "servings",
}

// Path is the way a turn was handled.
type Path int

const (
	PathChat Path = iota
	PathURL
	PathRecipeText
	PathSearch
	PathDebug
)

func (p Path) String() string {
	switch p {
	case PathURL:
		return "url"
	case PathRecipeText:
		return "recipeText"
	case PathSearch:
		return "search"
	case PathDebug:
		return "debug"
	default:
		return "chat"
	}
}

// Turn is an incoming message with the conversation state carried by the caller.
type Turn struct {
	Message string

	History []genie.ChatTurn

	// PendingRecipe is the last extracted recipe that has not been saved.
	PendingRecipe *genie.Recipe

	// LastRecipes are the results of the last search shown to the user.
	LastRecipes []*recipedb.Record

	// Language is a BCP 47 tag of the language to reply in, if known.
	Language string
}

// Reply is the outcome of a turn. RecipeData and Recipes replace the caller's
// pending recipe and last recipes when set.
type Reply struct {
	Response string

	Path Path

	RecipeData *genie.Recipe

	// PartialSuccess is set when RecipeData lacks the recipe text.
	PartialSuccess bool

	Recipes []*recipedb.Record

	// Filters are the criteria applied for a search.
	Filters *recipedb.Filters

	Debug *DebugInfo
}

// DebugInfo describes what the router knows about a turn.
type DebugInfo struct {
	Filters          *recipedb.Filters `json:"filters"`
	HasValidFilters  bool              `json:"hasValidFilters"`
	LastRecipesCount int               `json:"lastRecipesCount"`
	LastRecipes      []DebugRecipe     `json:"lastRecipes"`
}

type DebugRecipe struct {
	Name             string `json:"name"`
	HasRecipeText    bool   `json:"hasRecipeText"`
	RecipeTextLength int    `json:"recipeTextLength"`
	HasSourceLink    bool   `json:"hasSourceLink"`
}

// URLExtractor extracts a recipe from a web page.
type URLExtractor interface {
	ExtractURL(ctx context.Context, rawURL string) *genie.ExtractionResult
}

// TextExtractor extracts a recipe from pasted text, keeping the link of the recipe
// it corrects.
type TextExtractor interface {
	Reextract(ctx context.Context, text string, pending *genie.Recipe) *genie.ExtractionResult
}

// FilterResolver resolves a message into search filters, nil when it is not a search.
type FilterResolver interface {
	Resolve(ctx context.Context, message string) (*recipedb.Filters, error)
}

// RecipeSearcher is the part of the recipe store used by searches.
type RecipeSearcher interface {
	ListRecipes(ctx context.Context, filters recipedb.Filters) ([]*recipedb.Record, error)
	ListAllRecipes(ctx context.Context) ([]*recipedb.Record, error)
	FindUsersByDisplayName(ctx context.Context, name string) ([]*recipedb.Profile, error)
}

// Router handles chat turns.
type Router struct {
	urls    URLExtractor
	text    TextExtractor
	filters FilterResolver
	recipes RecipeSearcher
	chat    ai.Chatter
	debug   bool
}

// Option configures a Router.
type Option func(r *Router)

// WithDebug enables the "debug yes" message, which replies with what the router
// knows about the conversation instead of chatting.
func WithDebug(debug bool) Option {
	return func(r *Router) {
		r.debug = debug
	}
}

func New(urls URLExtractor, text TextExtractor, filters FilterResolver, recipes RecipeSearcher, chat ai.Chatter, opts ...Option) *Router {
	r := &Router{
		urls:    urls,
		text:    text,
		filters: filters,
		recipes: recipes,
		chat:    chat,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// HandleTurn classifies the message of the turn and handles it. Only invalid input
// is returned as an error, failures of delegated work become apologetic replies.
func (r *Router) HandleTurn(ctx context.Context, turn *Turn) (reply *Reply, err error) {
	if turn == nil || strings.TrimSpace(turn.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "router: recovered from panic handling turn", "panic", p)
			reply = &Reply{Response: respond.ChatFailure}
			err = nil
		}
	}()

	msg := turn.Message

	if u := FindURL(msg); u != "" {
		slog.DebugContext(ctx, "router: handling link", "url", u)
		return r.handleURL(ctx, u), nil
	}

	if LooksLikeRecipe(msg) {
		slog.DebugContext(ctx, "router: handling recipe text")
		return r.handleText(ctx, msg, turn.PendingRecipe), nil
	}

	filters, err := r.filters.Resolve(ctx, msg)
	if err != nil {
		slog.WarnContext(ctx, "router: resolving filters failed, continuing as conversation", "error", err)
		filters = nil
	}
	if filters != nil && filters.Valid() {
		slog.DebugContext(ctx, "router: handling search", "filters", filters)
		return r.handleSearch(ctx, *filters), nil
	}

	if r.debug && strings.EqualFold(strings.TrimSpace(msg), "debug yes") {
		return debugReply(filters, turn.LastRecipes), nil
	}

	slog.DebugContext(ctx, "router: handling conversation")
	return r.handleChat(ctx, turn), nil
}

// FindURL returns the first link in the message or an empty string.
func FindURL(message string) string {
	return urlPattern.FindString(message)
}

// LooksLikeRecipe returns whether the message reads as pasted recipe text: it has
// more than 15 words and mentions cooking.
func LooksLikeRecipe(message string) bool {
	if len(strings.Fields(message)) <= minRecipeWords {
		return false
	}
	lower := strings.ToLower(message)
	for _, k := range recipeKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (r *Router) handleURL(ctx context.Context, u string) *Reply {
	res := r.urls.ExtractURL(ctx, u)
	logOutcome(ctx, res)
	return &Reply{
		Response:       respond.URLExtraction(res, u),
		Path:           PathURL,
		RecipeData:     res.Recipe,
		PartialSuccess: res.Outcome == genie.OutcomePartial,
	}
}

func (r *Router) handleText(ctx context.Context, msg string, pending *genie.Recipe) *Reply {
	res := r.text.Reextract(ctx, msg, pending)
	logOutcome(ctx, res)
	return &Reply{
		Response:       respond.TextExtraction(res),
		Path:           PathRecipeText,
		RecipeData:     res.Recipe,
		PartialSuccess: res.Outcome == genie.OutcomePartial,
	}
}

func (r *Router) handleSearch(ctx context.Context, filters recipedb.Filters) *Reply {
	recipes, filters, err := r.Search(ctx, filters)
	if err != nil {
		slog.ErrorContext(ctx, "router: searching recipes", "error", err)
		return &Reply{Response: respond.SearchFailure, Path: PathSearch}
	}
	if filters.SearchAll {
		return &Reply{
			Response: respond.Search(recipes, true),
			Path:     PathSearch,
			Recipes:  recipes,
		}
	}
	return &Reply{
		Response: respond.Search(recipes, false),
		Path:     PathSearch,
		Recipes:  recipes,
		Filters:  &filters,
	}
}

// Search returns the recipes matching filters, newest first, along with the
// filters applied. A user name is replaced by the ID of the first profile whose
// display name contains it, and dropped when no profile does.
func (r *Router) Search(ctx context.Context, filters recipedb.Filters) ([]*recipedb.Record, recipedb.Filters, error) {
	filters = filters.Normalize()

	if filters.SearchAll {
		recipes, err := r.recipes.ListAllRecipes(ctx)
		if err != nil {
			return nil, filters, fmt.Errorf("router: listing all recipes: %w", err)
		}
		return recipes, filters, nil
	}

	if filters.UserName != "" {
		profiles, err := r.recipes.FindUsersByDisplayName(ctx, filters.UserName)
		if err != nil {
			slog.WarnContext(ctx, "router: finding user by name", "error", err, "name", filters.UserName)
		} else if len(profiles) > 0 {
			filters.UserID = profiles[0].ID
		}
		filters.UserName = ""
	}

	recipes, err := r.recipes.ListRecipes(ctx, filters)
	if err != nil {
		return nil, filters, fmt.Errorf("router: listing recipes: %w", err)
	}
	return recipes, filters, nil
}

func (r *Router) handleChat(ctx context.Context, turn *Turn) *Reply {
	system := prompts.Chat(chatctx.Build(turn.PendingRecipe, turn.LastRecipes), turn.Language)
	text, err := r.chat.Chat(ctx, chatctx.Messages(system, turn.History, turn.Message))
	if err != nil {
		if ai.IsRateLimited(err) {
			slog.WarnContext(ctx, "router: chat rate limited", "error", err)
			return &Reply{Response: respond.RateLimited, Path: PathChat}
		}
		slog.ErrorContext(ctx, "router: chat failed", "error", err)
		return &Reply{Response: respond.ChatFailure, Path: PathChat}
	}
	if strings.TrimSpace(text) == "" {
		text = respond.EmptyChat
	}
	return &Reply{Response: text, Path: PathChat}
}

func debugReply(filters *recipedb.Filters, last []*recipedb.Record) *Reply {
	info := &DebugInfo{
		Filters:          filters,
		HasValidFilters:  filters != nil && filters.Valid(),
		LastRecipesCount: len(last),
		LastRecipes:      make([]DebugRecipe, 0, len(last)),
	}
	for _, rec := range last {
		info.LastRecipes = append(info.LastRecipes, DebugRecipe{
			Name:             rec.RecipeName,
			HasRecipeText:    rec.HasText(),
			RecipeTextLength: len([]rune(rec.Text())),
			HasSourceLink:    rec.SourceLink != "",
		})
	}

	// Marshaling plain structs cannot fail.
	b, _ := json.MarshalIndent(info, "", "  ")
	return &Reply{
		Response: "DEBUG INFO:\n\n" + string(b) + "\n\nThis shows me what data I have access to.",
		Path:     PathDebug,
		Debug:    info,
	}
}

func logOutcome(ctx context.Context, res *genie.ExtractionResult) {
	switch res.Outcome {
	case genie.OutcomeSuccess:
		return
	case genie.OutcomePartial:
		slog.WarnContext(ctx, "router: partial extraction", "reason", res.Reason)
	default:
		slog.WarnContext(ctx, "router: extraction failed", "reason", res.Reason, "error", res.Err)
	}
}
