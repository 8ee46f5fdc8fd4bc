// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/qafariamirhossein/pwa-travel/domain"
)

// The remote surface is uniform per entity kind: a list endpoint (optionally
// parent-scoped), an id-keyed upsert, and a delete that treats a missing id
// as success. Upserts return the stored record, possibly with
// server-adjusted timestamps, which the sync manager writes back locally.

// Trips

func (c *Client) Trips(ctx context.Context) ([]domain.Trip, error) {
	var trips []domain.Trip
	if err := c.do(ctx, http.MethodGet, "/api/trips", nil, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (c *Client) UpsertTrip(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	var stored domain.Trip
	if err := c.do(ctx, http.MethodPost, "/api/trips", t, &stored); err != nil {
		return domain.Trip{}, err
	}
	return stored, nil
}

func (c *Client) DeleteTrip(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/trips/"+url.PathEscape(id), nil, nil)
}

// Itinerary items

func (c *Client) ItineraryItems(ctx context.Context, tripID string) ([]domain.ItineraryItem, error) {
	var items []domain.ItineraryItem
	path := "/api/trips/" + url.PathEscape(tripID) + "/itinerary"
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) UpsertItineraryItem(ctx context.Context, item domain.ItineraryItem) (domain.ItineraryItem, error) {
	var stored domain.ItineraryItem
	if err := c.do(ctx, http.MethodPost, "/api/itinerary", item, &stored); err != nil {
		return domain.ItineraryItem{}, err
	}
	return stored, nil
}

func (c *Client) DeleteItineraryItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/itinerary/"+url.PathEscape(id), nil, nil)
}

// Expenses

func (c *Client) Expenses(ctx context.Context, tripID string) ([]domain.Expense, error) {
	var expenses []domain.Expense
	path := "/api/trips/" + url.PathEscape(tripID) + "/expenses"
	if err := c.do(ctx, http.MethodGet, path, nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (c *Client) UpsertExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	var stored domain.Expense
	if err := c.do(ctx, http.MethodPost, "/api/expenses", e, &stored); err != nil {
		return domain.Expense{}, err
	}
	return stored, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/expenses/"+url.PathEscape(id), nil, nil)
}

// Notes

func (c *Client) Notes(ctx context.Context, tripID string) ([]domain.Note, error) {
	var notes []domain.Note
	path := "/api/trips/" + url.PathEscape(tripID) + "/notes"
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) UpsertNote(ctx context.Context, n domain.Note) (domain.Note, error) {
	var stored domain.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", n, &stored); err != nil {
		return domain.Note{}, err
	}
	return stored, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}
