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

// NoteStore owns the Note entity kind.
type NoteStore struct {
	local *localstore.Store
	sync  *syncer.Manager
}

// NewNoteStore constructs the store around its injected dependencies.
func NewNoteStore(local *localstore.Store, sync *syncer.Manager) *NoteStore {
	return &NoteStore{local: local, sync: sync}
}

// ListByTrip returns a trip's notes, most recently updated first.
func (s *NoteStore) ListByTrip(ctx context.Context, tripID string) ([]domain.Note, error) {
	return s.local.NotesByTrip(ctx, tripID)
}

// Create stamps id and timestamps, writes locally, and queues the create.
func (s *NoteStore) Create(ctx context.Context, n domain.Note) (domain.Note, error) {
	now := time.Now().UTC()
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := n.Validate(); err != nil {
		return domain.Note{}, err
	}

	if err := s.local.PutNote(ctx, n); err != nil {
		return domain.Note{}, err
	}
	if _, err := s.sync.Queue(ctx, domain.KindNote, domain.ActionCreate, n); err != nil {
		return domain.Note{}, err
	}
	s.sync.Kick()
	return n, nil
}

// Update replaces the note snapshot and queues the update.
func (s *NoteStore) Update(ctx context.Context, n domain.Note) (domain.Note, error) {
	existing, err := s.local.GetNote(ctx, n.ID)
	if err != nil {
		return domain.Note{}, err
	}
	n.CreatedAt = existing.CreatedAt
	n.UpdatedAt = time.Now().UTC()
	if err := n.Validate(); err != nil {
		return domain.Note{}, err
	}

	if err := s.local.PutNote(ctx, n); err != nil {
		return domain.Note{}, err
	}
	if _, err := s.sync.Queue(ctx, domain.KindNote, domain.ActionUpdate, n); err != nil {
		return domain.Note{}, err
	}
	s.sync.Kick()
	return n, nil
}

// Delete removes the note locally and queues the remote delete.
func (s *NoteStore) Delete(ctx context.Context, id string) error {
	if err := s.local.DeleteNote(ctx, id); err != nil {
		return err
	}
	if _, err := s.sync.Queue(ctx, domain.KindNote, domain.ActionDelete, domain.DeleteRef{ID: id}); err != nil {
		return err
	}
	s.sync.Kick()
	return nil
}
