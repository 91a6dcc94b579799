// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"context"
	"errors"
	"fmt"

	discoveryengine "cloud.google.com/go/discoveryengine/apiv1"
	"cloud.google.com/go/discoveryengine/apiv1/discoveryenginepb"
	"google.golang.org/api/iterator"
)

const maxEngineResults = 50

// EngineSearcher is a TextSearcher backed by a Discovery Engine data store that
// indexes the recipes collection.
type EngineSearcher struct {
	search *discoveryengine.SearchClient
	engine string
}

// NewEngineSearcher returns an EngineSearcher for the engine, e.g.
// projects/123/locations/global/collections/default_collection/engines/recipes.
func NewEngineSearcher(search *discoveryengine.SearchClient, engine string) *EngineSearcher {
	return &EngineSearcher{
		search: search,
		engine: engine,
	}
}

func (e *EngineSearcher) SearchRecipeIDs(ctx context.Context, term string) ([]string, error) {
	it := e.search.Search(ctx, &discoveryenginepb.SearchRequest{
		ServingConfig: e.engine + "/servingConfigs/default_search",
		Query:         term,
		PageSize:      maxEngineResults,
	})

	ids := []string{}
	for len(ids) < maxEngineResults {
		res, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("recipedb: searching recipes: %w", err)
		}
		ids = append(ids, res.GetId())
	}
	return ids, nil
}
