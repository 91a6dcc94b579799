// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"time"

	"github.com/curioswitch/go-curiostack/config"
)

type AI struct {
	// Provider is the AI provider to use, openai or gemini.
	Provider string `koanf:"provider"`

	// ChatModel is the model for conversation, the provider default when empty.
	ChatModel string `koanf:"chatModel"`

	// ExtractModel is the model for recipe extraction.
	ExtractModel string `koanf:"extractModel"`

	// QueryModel is the model for parsing search queries.
	QueryModel string `koanf:"queryModel"`
}

type OCR struct {
	Endpoint string `koanf:"endpoint"`

	// APIKey is the OCR.space API key.
	APIKey string `koanf:"apiKey"`

	Language string `koanf:"language"`

	Engine int `koanf:"engine"`

	// Timeout bounds each call to the OCR provider.
	Timeout time.Duration `koanf:"timeout"`
}

type Scrape struct {
	// UserAgent overrides the browser user agent sent when fetching recipe pages.
	UserAgent string `koanf:"userAgent"`

	// ReadabilityFallback extracts the main article of pages no selector matches.
	ReadabilityFallback bool `koanf:"readabilityFallback"`
}

type Search struct {
	// Engine is the name of the search engine to use, e.g. projects/408496405753/locations/global/collections/default_collection/engines/recipegenie-recipes.
	// Free-text search falls back to substring matching when empty.
	Engine string `koanf:"engine"`
}

type Chat struct {
	// Timeout bounds the handling of a single chat, URL, text or photo request.
	Timeout time.Duration `koanf:"timeout"`

	// Debug enables the "debug yes" probe.
	Debug bool `koanf:"debug"`
}

type Storage struct {
	// Bucket is the public bucket for recipe photos, <project>-public when empty.
	Bucket string `koanf:"bucket"`
}

type Store struct {
	// Backend is firestore or memory.
	Backend string `koanf:"backend"`
}

type Auth struct {
	// DevUser authenticates every request as this user instead of verifying
	// Firebase ID tokens. Only for local development.
	DevUser string `koanf:"devUser"`
}

type Config struct {
	config.Common

	AI AI `koanf:"ai"`

	OCR OCR `koanf:"ocr"`

	Scrape Scrape `koanf:"scrape"`

	// Search is the configuration for search.
	Search Search `koanf:"search"`

	Chat Chat `koanf:"chat"`

	Storage Storage `koanf:"storage"`

	Store Store `koanf:"store"`

	Auth Auth `koanf:"auth"`
}
