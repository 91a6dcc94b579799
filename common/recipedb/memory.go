// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/curioswitch/recipegenie/common/genie"
)

// MemoryStore is a Store kept in process memory, used for local development.
type MemoryStore struct {
	mu       sync.RWMutex
	recipes  map[string]*Record
	profiles []*Profile

	now func() time.Time
}

// NewMemoryStore returns an empty MemoryStore knowing about profiles.
func NewMemoryStore(profiles ...*Profile) *MemoryStore {
	return &MemoryStore{
		recipes:  map[string]*Record{},
		profiles: profiles,
		now:      time.Now,
	}
}

func (s *MemoryStore) InsertRecipe(_ context.Context, recipe *genie.Recipe, ownerID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &Record{
		ID:        rand.Text(),
		UserID:    ownerID,
		Recipe:    *recipe,
		CreatedAt: s.now(),
	}
	s.recipes[rec.ID] = rec
	return s.attributed(rec), nil
}

func (s *MemoryStore) ListRecipes(_ context.Context, filters Filters) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []*Record
	for _, rec := range s.recipes {
		if filters.Matches(rec) {
			res = append(res, s.attributed(rec))
		}
	}
	sortNewestFirst(res)
	return res, nil
}

func (s *MemoryStore) ListAllRecipes(ctx context.Context) ([]*Record, error) {
	return s.ListRecipes(ctx, Filters{SearchAll: true})
}

func (s *MemoryStore) UpdateRecipe(_ context.Context, id string, ownerID string, update *RecipeUpdate) (*Record, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	rec.Recipe = update.Apply(rec.Recipe)
	return s.attributed(rec), nil
}

func (s *MemoryStore) DeleteRecipe(_ context.Context, id string, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.owned(id, ownerID); err != nil {
		return err
	}
	delete(s.recipes, id)
	return nil
}

func (s *MemoryStore) FindUsersByDisplayName(_ context.Context, name string) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filterProfiles(s.profiles, name), nil
}

func (s *MemoryStore) owned(id string, ownerID string) (*Record, error) {
	rec, ok := s.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipedb: recipe %s: %w", id, ErrNotFound)
	}
	if rec.UserID != ownerID {
		return nil, fmt.Errorf("recipedb: recipe %s: %w", id, ErrForbidden)
	}
	return rec, nil
}

// attributed returns a copy of rec with AddedBy filled in.
func (s *MemoryStore) attributed(rec *Record) *Record {
	cp := *rec
	for _, p := range s.profiles {
		if p.ID == rec.UserID {
			cp.AddedBy = p.DisplayName
			break
		}
	}
	return &cp
}
