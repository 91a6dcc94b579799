// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
)

// DefaultUserAgent identifies as a desktop browser, many recipe sites block other agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	enoughContentChars = 500
	minContentChars    = 50
)

var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Upgrade-Insecure-Requests": "1",
}

// contentSelectors are tried in order, recipe specific containers first.
var contentSelectors = []string{
	".recipe-content",
	".recipe-instructions",
	".recipe",
	`[itemprop="recipeInstructions"]`,
	".recipe-body",
	".entry-content",
	".post-content",
	`[class*="recipe"]`,
	`[class*="Recipe"]`,
	`[id*="recipe"]`,
	"article",
	"main",
}

// Page is the recipe content found on a web page.
type Page struct {
	URL *url.URL

	// Status is the HTTP status of the fetch, or 0 if the request failed.
	Status int

	// Title is the page title, never empty for a fetched page.
	Title string

	// Text is the recipe shaped text of the page. It may be empty.
	Text string

	// Structured is whether Text came from schema.org Recipe markup.
	Structured bool
}

// PageFetcher fetches web pages with a browser-like header set.
type PageFetcher struct {
	userAgent   string
	readability bool
}

// FetcherOption configures a PageFetcher.
type FetcherOption func(f *PageFetcher)

// WithUserAgent sets the user agent sent with requests.
func WithUserAgent(ua string) FetcherOption {
	return func(f *PageFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithReadabilityFallback runs a readability extractor when selectors find too little content.
func WithReadabilityFallback(enabled bool) FetcherOption {
	return func(f *PageFetcher) {
		f.readability = enabled
	}
}

func NewPageFetcher(opts ...FetcherOption) *PageFetcher {
	f := &PageFetcher{
		userAgent: DefaultUserAgent,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch fetches the page and extracts its recipe text. A non-nil error is only
// returned when the page could not be fetched, in which case the returned page
// still carries the URL and status.
func (f *PageFetcher) Fetch(ctx context.Context, u *url.URL) (*Page, error) {
	// Avoid clone since we don't want to share visited URLs between requests.
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.StdlibContext(ctx),
	)

	page := &Page{URL: u}
	var body []byte
	var doc *goquery.Selection

	c.OnRequest(func(r *colly.Request) {
		for k, v := range browserHeaders {
			r.Headers.Set(k, v)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		page.Status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, _ error) {
		page.Status = r.StatusCode
	})
	c.OnHTML("html", func(e *colly.HTMLElement) {
		if doc == nil {
			doc = e.DOM
		}
	})

	if err := c.Visit(u.String()); err != nil {
		if page.Status > 0 {
			return page, fmt.Errorf("extract: fetching page: HTTP %d", page.Status)
		}
		return page, fmt.Errorf("extract: fetching page: %w", err)
	}

	if doc == nil {
		// Served without an HTML content type.
		d, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return page, fmt.Errorf("extract: parsing page: %w", err)
		}
		doc = d.Selection
	}

	page.Title = pageTitle(doc, u)
	page.Text, page.Structured = recipeText(doc)
	if f.readability && charCount(page.Text) < minContentChars {
		if text := readabilityText(body, u); charCount(text) > charCount(page.Text) {
			page.Text = text
		}
	}
	return page, nil
}

func recipeText(doc *goquery.Selection) (string, bool) {
	var scripts []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		scripts = append(scripts, s.Text())
	})
	if text := recipeFromLDJSON(scripts); text != "" {
		return text, true
	}

	best := ""
	for _, sel := range contentSelectors {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(found.Text())
		if charCount(text) > charCount(best) {
			best = text
		}
		if charCount(best) > enoughContentChars {
			break
		}
	}
	return best, false
}

func pageTitle(doc *goquery.Selection, u *url.URL) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return "Recipe from " + u.Hostname()
}

func readabilityText(body []byte, u *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func charCount(s string) int {
	return utf8.RuneCountInString(s)
}
