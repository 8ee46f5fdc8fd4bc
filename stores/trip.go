// Package stores holds the domain stores, one per entity kind. Every
// mutation writes through the local store first (optimistic, so callers
// never wait on the network), then enqueues the matching outbox entry, then
// kicks an opportunistic sync. UI code goes through these stores and never
// touches the local store directly.
//
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

// TripStore owns the Trip entity kind.
type TripStore struct {
	local *localstore.Store
	sync  *syncer.Manager
}

// NewTripStore constructs the store around its injected dependencies.
func NewTripStore(local *localstore.Store, sync *syncer.Manager) *TripStore {
	return &TripStore{local: local, sync: sync}
}

// List returns all trips, most recently updated first.
func (s *TripStore) List(ctx context.Context) ([]domain.Trip, error) {
	return s.local.Trips(ctx)
}

// Get returns one trip, or localstore.ErrNotFound.
func (s *TripStore) Get(ctx context.Context, id string) (domain.Trip, error) {
	return s.local.GetTrip(ctx, id)
}

// Create stamps id and timestamps, writes locally, and queues the create.
func (s *TripStore) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := t.Validate(); err != nil {
		return domain.Trip{}, err
	}

	if err := s.local.PutTrip(ctx, t); err != nil {
		return domain.Trip{}, err
	}
	if _, err := s.sync.Queue(ctx, domain.KindTrip, domain.ActionCreate, t); err != nil {
		return domain.Trip{}, err
	}
	s.sync.Kick()
	return t, nil
}

// Update replaces the trip snapshot, refreshing updatedAt and preserving the
// original createdAt, and queues the update.
func (s *TripStore) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	existing, err := s.local.GetTrip(ctx, t.ID)
	if err != nil {
		return domain.Trip{}, err
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	if err := t.Validate(); err != nil {
		return domain.Trip{}, err
	}

	if err := s.local.PutTrip(ctx, t); err != nil {
		return domain.Trip{}, err
	}
	if _, err := s.sync.Queue(ctx, domain.KindTrip, domain.ActionUpdate, t); err != nil {
		return domain.Trip{}, err
	}
	s.sync.Kick()
	return t, nil
}

// Delete removes the trip and explicitly cascades to its itinerary items,
// expenses, and notes before queueing the remote delete. The remote side
// cascades on its own via foreign keys, so only the trip delete is queued.
func (s *TripStore) Delete(ctx context.Context, id string) error {
	if err := s.local.DeleteTrip(ctx, id); err != nil {
		return err
	}
	if err := s.local.DeleteItineraryByTrip(ctx, id); err != nil {
		return err
	}
	if err := s.local.DeleteExpensesByTrip(ctx, id); err != nil {
		return err
	}
	if err := s.local.DeleteNotesByTrip(ctx, id); err != nil {
		return err
	}

	if _, err := s.sync.Queue(ctx, domain.KindTrip, domain.ActionDelete, domain.DeleteRef{ID: id}); err != nil {
		return err
	}
	s.sync.Kick()
	return nil
}
