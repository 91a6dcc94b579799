// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/curioswitch/recipegenie/common/genie"
)

const (
	recipesCollection  = "recipes"
	profilesCollection = "profiles"
)

// FirestoreStore is a Store backed by Firestore. Recipes live in the recipes
// collection keyed by ID and profiles in the profiles collection keyed by user ID.
type FirestoreStore struct {
	store  *firestore.Client
	search TextSearcher
}

// NewFirestoreStore returns a FirestoreStore. search is optional, when set free-text
// search terms are resolved by it instead of substring matching.
func NewFirestoreStore(store *firestore.Client, search TextSearcher) *FirestoreStore {
	return &FirestoreStore{
		store:  store,
		search: search,
	}
}

func (s *FirestoreStore) InsertRecipe(ctx context.Context, recipe *genie.Recipe, ownerID string) (*Record, error) {
	doc := s.store.Collection(recipesCollection).NewDoc()
	rec := &Record{
		ID:        doc.ID,
		UserID:    ownerID,
		Recipe:    *recipe,
		CreatedAt: time.Now(),
	}
	if _, err := doc.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("recipedb: creating recipe in firestore: %w", err)
	}
	// Attribution is best effort once the recipe is saved.
	if err := s.attribute(ctx, []*Record{rec}); err != nil {
		slog.WarnContext(ctx, "recipedb: attributing saved recipe", "id", rec.ID, "error", err)
	}
	return rec, nil
}

func (s *FirestoreStore) ListRecipes(ctx context.Context, filters Filters) ([]*Record, error) {
	filters = filters.Normalize()

	q := s.store.Collection(recipesCollection).Query
	if filters.UserID != "" {
		q = q.Where("userId", "==", filters.UserID)
	}
	if filters.Difficulty > 0 {
		q = q.Where("difficulty", "==", filters.Difficulty)
	}

	var ids []string
	if filters.SearchTerm != "" && s.search != nil {
		var err error
		ids, err = s.search.SearchRecipeIDs(ctx, filters.SearchTerm)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		// The engine matches more loosely than substring search.
		filters.SearchTerm = ""
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("recipedb: listing recipes from firestore: %w", err)
	}

	var res []*Record
	for _, doc := range docs {
		var rec Record
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("recipedb: unmarshalling recipe: %w", err)
		}
		if ids != nil && !slices.Contains(ids, rec.ID) {
			continue
		}
		if filters.Matches(&rec) {
			res = append(res, &rec)
		}
	}
	sortNewestFirst(res)

	if err := s.attribute(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *FirestoreStore) ListAllRecipes(ctx context.Context) ([]*Record, error) {
	docs, err := s.store.Collection(recipesCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("recipedb: listing recipes from firestore: %w", err)
	}

	res := make([]*Record, len(docs))
	for i, doc := range docs {
		var rec Record
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("recipedb: unmarshalling recipe: %w", err)
		}
		res[i] = &rec
	}

	if err := s.attribute(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *FirestoreStore) UpdateRecipe(ctx context.Context, id string, ownerID string, update *RecipeUpdate) (*Record, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	doc := s.store.Collection(recipesCollection).Doc(id)

	var updated Record
	if err := s.store.RunTransaction(ctx, func(_ context.Context, t *firestore.Transaction) error {
		rec, err := ownedRecord(t, doc, ownerID)
		if err != nil {
			return err
		}
		rec.Recipe = update.Apply(rec.Recipe)
		if err := t.Set(doc, rec); err != nil {
			return fmt.Errorf("recipedb: updating recipe: %w", err)
		}
		updated = *rec
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.attribute(ctx, []*Record{&updated}); err != nil {
		slog.WarnContext(ctx, "recipedb: attributing updated recipe", "id", updated.ID, "error", err)
	}
	return &updated, nil
}

func (s *FirestoreStore) DeleteRecipe(ctx context.Context, id string, ownerID string) error {
	doc := s.store.Collection(recipesCollection).Doc(id)

	return s.store.RunTransaction(ctx, func(_ context.Context, t *firestore.Transaction) error {
		if _, err := ownedRecord(t, doc, ownerID); err != nil {
			return err
		}
		if err := t.Delete(doc); err != nil {
			return fmt.Errorf("recipedb: deleting recipe: %w", err)
		}
		return nil
	})
}

// FindUsersByDisplayName scans all profiles. Firestore has no case-insensitive
// substring queries and a household only has a handful of members.
func (s *FirestoreStore) FindUsersByDisplayName(ctx context.Context, name string) ([]*Profile, error) {
	docs, err := s.store.Collection(profilesCollection).OrderBy("displayName", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("recipedb: listing profiles from firestore: %w", err)
	}
	profiles := make([]*Profile, len(docs))
	for i, doc := range docs {
		var p Profile
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("recipedb: unmarshalling profile: %w", err)
		}
		if p.ID == "" {
			p.ID = doc.Ref.ID
		}
		profiles[i] = &p
	}
	return filterProfiles(profiles, name), nil
}

func ownedRecord(t *firestore.Transaction, doc *firestore.DocumentRef, ownerID string) (*Record, error) {
	snap, err := t.Get(doc)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("recipedb: recipe %s: %w", doc.ID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("recipedb: getting recipe: %w", err)
	}
	var rec Record
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("recipedb: unmarshalling recipe: %w", err)
	}
	if rec.UserID != ownerID {
		return nil, fmt.Errorf("recipedb: recipe %s: %w", doc.ID, ErrForbidden)
	}
	return &rec, nil
}

// attribute fills in AddedBy for the records by looking up each distinct owner's profile.
func (s *FirestoreStore) attribute(ctx context.Context, records []*Record) error {
	var owners []string
	for _, rec := range records {
		if rec.UserID != "" && !slices.Contains(owners, rec.UserID) {
			owners = append(owners, rec.UserID)
		}
	}
	if len(owners) == 0 {
		return nil
	}

	var mu sync.Mutex
	names := make(map[string]string, len(owners))

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(8)
	for _, uid := range owners {
		grp.Go(func() error {
			snap, err := s.store.Collection(profilesCollection).Doc(uid).Get(ctx)
			if status.Code(err) == codes.NotFound {
				return nil
			}
			if err != nil {
				return fmt.Errorf("recipedb: getting profile %s: %w", uid, err)
			}
			var p Profile
			if err := snap.DataTo(&p); err != nil {
				return fmt.Errorf("recipedb: unmarshalling profile: %w", err)
			}
			mu.Lock()
			names[uid] = p.DisplayName
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	for _, rec := range records {
		rec.AddedBy = names[rec.UserID]
	}
	return nil
}
