// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/curioswitch/recipegenie/common/genie"
)

const (
	noteFetchFailed = "Could not fetch recipe content (%s). Visit the link to view the full recipe."
	noteLowContent  = "Could not extract recipe text automatically. Click the source link to view the full recipe, or add details manually."
	noteAIFailed    = "AI extraction failed. Review and edit as needed."
)

// URLExtractor extracts recipes from web pages.
type URLExtractor struct {
	pages   *PageFetcher
	adapter *Adapter
}

func NewURLExtractor(pages *PageFetcher, adapter *Adapter) *URLExtractor {
	return &URLExtractor{
		pages:   pages,
		adapter: adapter,
	}
}

// ParseURL validates a user supplied recipe URL.
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("extract: invalid URL format: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("extract: invalid URL format: %q", rawURL)
	}
	return u, nil
}

// ExtractURL extracts the recipe at rawURL. Pages that cannot be fetched or have
// too little content still yield a partial recipe carrying the link.
func (e *URLExtractor) ExtractURL(ctx context.Context, rawURL string) *genie.ExtractionResult {
	u, err := ParseURL(rawURL)
	if err != nil {
		return genie.Failed("Invalid URL format", err)
	}
	link := u.String()

	page, err := e.pages.Fetch(ctx, u)
	if err != nil {
		slog.WarnContext(ctx, "extract: fetch failed, keeping link only", "url", link, "error", err)
		cause := "network error"
		if page.Status > 0 {
			cause = fmt.Sprintf("HTTP %d", page.Status)
		}
		note := fmt.Sprintf(noteFetchFailed, cause)
		return genie.Partial(&genie.Recipe{
			RecipeName: siteRecipeName(u),
			SourceLink: link,
			Notes:      note,
		}, note)
	}

	if charCount(page.Text) < minContentChars {
		slog.WarnContext(ctx, "extract: not enough content on page", "url", link, "chars", charCount(page.Text))
		return genie.Partial(&genie.Recipe{
			RecipeName: page.Title,
			SourceLink: link,
			Notes:      noteLowContent,
		}, noteLowContent)
	}

	res := e.adapter.Extract(ctx, page.Text)
	if res.Outcome != genie.OutcomeSuccess {
		// The page text stands in for the ingredients and instructions, along with
		// whatever details the model did find.
		slog.WarnContext(ctx, "extract: structuring page text failed", "url", link, "outcome", res.Outcome, "error", res.Err)
		recipe := &genie.Recipe{}
		if res.Recipe != nil {
			*recipe = *res.Recipe
		}
		recipe.RecipeName = cmp.Or(recipe.RecipeName, page.Title)
		recipe.SourceLink = link
		recipe.RecipeText = genie.Ptr(page.Text)
		recipe.Notes = noteAIFailed
		return genie.Succeeded(recipe, page.Text)
	}

	res.Recipe.SourceLink = link
	res.SourceText = page.Text
	return res
}

// siteRecipeName names a recipe after the site it came from.
func siteRecipeName(u *url.URL) string {
	return strings.TrimPrefix(u.Hostname(), "www.") + " Recipe"
}
