// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/qafariamirhossein/pwa-travel/domain"
	"github.com/qafariamirhossein/pwa-travel/localstore"
	"github.com/qafariamirhossein/pwa-travel/syncer"
)

// ItineraryStore owns the ItineraryItem entity kind.
type ItineraryStore struct {
	local *localstore.Store
	sync  *syncer.Manager
}

// NewItineraryStore constructs the store around its injected dependencies.
func NewItineraryStore(local *localstore.Store, sync *syncer.Manager) *ItineraryStore {
	return &ItineraryStore{local: local, sync: sync}
}

// ListByTrip returns a trip's items in stored order.
func (s *ItineraryStore) ListByTrip(ctx context.Context, tripID string) ([]domain.ItineraryItem, error) {
	return s.local.ItineraryByTrip(ctx, tripID)
}

// Create stamps id and timestamps, writes locally, and queues the create.
func (s *ItineraryStore) Create(ctx context.Context, item domain.ItineraryItem) (domain.ItineraryItem, error) {
	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := item.Validate(); err != nil {
		return domain.ItineraryItem{}, err
	}

	if err := s.local.PutItineraryItem(ctx, item); err != nil {
		return domain.ItineraryItem{}, err
	}
	if _, err := s.sync.Queue(ctx, domain.KindItinerary, domain.ActionCreate, item); err != nil {
		return domain.ItineraryItem{}, err
	}
	s.sync.Kick()
	return item, nil
}

// Update replaces the item snapshot and queues the update.
func (s *ItineraryStore) Update(ctx context.Context, item domain.ItineraryItem) (domain.ItineraryItem, error) {
	existing, err := s.local.GetItineraryItem(ctx, item.ID)
	if err != nil {
		return domain.ItineraryItem{}, err
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now().UTC()
	if err := item.Validate(); err != nil {
		return domain.ItineraryItem{}, err
	}

	if err := s.local.PutItineraryItem(ctx, item); err != nil {
		return domain.ItineraryItem{}, err
	}
	if _, err := s.sync.Queue(ctx, domain.KindItinerary, domain.ActionUpdate, item); err != nil {
		return domain.ItineraryItem{}, err
	}
	s.sync.Kick()
	return item, nil
}

// Delete removes the item locally and queues the remote delete.
func (s *ItineraryStore) Delete(ctx context.Context, id string) error {
	if err := s.local.DeleteItineraryItem(ctx, id); err != nil {
		return err
	}
	if _, err := s.sync.Queue(ctx, domain.KindItinerary, domain.ActionDelete, domain.DeleteRef{ID: id}); err != nil {
		return err
	}
	s.sync.Kick()
	return nil
}

// Reorder rewrites each item's order to its slice position, so ties are
// broken by position at write time, and queues one update per item.
func (s *ItineraryStore) Reorder(ctx context.Context, items []domain.ItineraryItem) error {
	now := time.Now().UTC()
	for i, item := range items {
		item.Order = i
		item.UpdatedAt = now
		if err := s.local.PutItineraryItem(ctx, item); err != nil {
			return err
		}
		if _, err := s.sync.Queue(ctx, domain.KindItinerary, domain.ActionUpdate, item); err != nil {
			return err
		}
	}
	s.sync.Kick()
	return nil
}
