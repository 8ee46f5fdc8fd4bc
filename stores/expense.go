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

// ExpenseStore owns the Expense entity kind.
type ExpenseStore struct {
	local *localstore.Store
	sync  *syncer.Manager
}

// NewExpenseStore constructs the store around its injected dependencies.
func NewExpenseStore(local *localstore.Store, sync *syncer.Manager) *ExpenseStore {
	return &ExpenseStore{local: local, sync: sync}
}

// ListByTrip returns a trip's expenses, most recently created first.
func (s *ExpenseStore) ListByTrip(ctx context.Context, tripID string) ([]domain.Expense, error) {
	return s.local.ExpensesByTrip(ctx, tripID)
}

// Create stamps id and timestamps, writes locally, and queues the create.
// An empty currency defaults to USD, matching the remote schema default.
func (s *ExpenseStore) Create(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Currency == "" {
		e.Currency = "USD"
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := e.Validate(); err != nil {
		return domain.Expense{}, err
	}

	if err := s.local.PutExpense(ctx, e); err != nil {
		return domain.Expense{}, err
	}
	if _, err := s.sync.Queue(ctx, domain.KindExpense, domain.ActionCreate, e); err != nil {
		return domain.Expense{}, err
	}
	s.sync.Kick()
	return e, nil
}

// Update replaces the expense snapshot and queues the update.
func (s *ExpenseStore) Update(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	existing, err := s.local.GetExpense(ctx, e.ID)
	if err != nil {
		return domain.Expense{}, err
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	if e.Currency == "" {
		e.Currency = existing.Currency
	}
	if err := e.Validate(); err != nil {
		return domain.Expense{}, err
	}

	if err := s.local.PutExpense(ctx, e); err != nil {
		return domain.Expense{}, err
	}
	if _, err := s.sync.Queue(ctx, domain.KindExpense, domain.ActionUpdate, e); err != nil {
		return domain.Expense{}, err
	}
	s.sync.Kick()
	return e, nil
}

// Delete removes the expense locally and queues the remote delete.
func (s *ExpenseStore) Delete(ctx context.Context, id string) error {
	if err := s.local.DeleteExpense(ctx, id); err != nil {
		return err
	}
	if _, err := s.sync.Queue(ctx, domain.KindExpense, domain.ActionDelete, domain.DeleteRef{ID: id}); err != nil {
		return err
	}
	s.sync.Kick()
	return nil
}
