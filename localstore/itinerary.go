// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qafariamirhossein/pwa-travel/domain"
)

// ItineraryByTrip returns a trip's itinerary items in stored order.
func (s *Store) ItineraryByTrip(ctx context.Context, tripID string) ([]domain.ItineraryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trip_id, date, time, title, location, notes, "order", created_at, updated_at
		FROM itinerary_items
		WHERE trip_id = ?
		ORDER BY "order" ASC
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary items: %w", err)
	}
	defer rows.Close()

	var items []domain.ItineraryItem
	for rows.Next() {
		item, err := scanItineraryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItineraryItem returns the item with the given id, or ErrNotFound.
func (s *Store) GetItineraryItem(ctx context.Context, id string) (domain.ItineraryItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, trip_id, date, time, title, location, notes, "order", created_at, updated_at
		FROM itinerary_items WHERE id = ?
	`, id)
	item, err := scanItineraryItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ItineraryItem{}, ErrNotFound
	}
	return item, err
}

// PutItineraryItem unconditionally upserts the item.
func (s *Store) PutItineraryItem(ctx context.Context, item domain.ItineraryItem) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO itinerary_items (id, trip_id, date, time, title, location, notes, "order", created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.TripID, item.Date, nullable(item.Time), item.Title,
		nullable(item.Location), nullable(item.Notes), item.Order,
		nullable(fmtTime(item.CreatedAt)), nullable(fmtTime(item.UpdatedAt)))
	if err != nil {
		return fmt.Errorf("failed to upsert itinerary item %s: %w", item.ID, err)
	}
	return nil
}

// DeleteItineraryItem removes the item; deleting a missing id is a no-op.
func (s *Store) DeleteItineraryItem(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM itinerary_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete itinerary item %s: %w", id, err)
	}
	return nil
}

// DeleteItineraryByTrip lists then deletes each of the trip's items. Not
// atomic: a crash mid-cascade can leave orphans, which stay invisible
// because items are only ever queried through the parent filter.
func (s *Store) DeleteItineraryByTrip(ctx context.Context, tripID string) error {
	items, err := s.ItineraryByTrip(ctx, tripID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.DeleteItineraryItem(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

func scanItineraryItem(row rowScanner) (domain.ItineraryItem, error) {
	var item domain.ItineraryItem
	var tm, location, notes, createdAt, updatedAt sql.NullString
	err := row.Scan(&item.ID, &item.TripID, &item.Date, &tm, &item.Title,
		&location, &notes, &item.Order, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ItineraryItem{}, err
		}
		return domain.ItineraryItem{}, fmt.Errorf("failed to scan itinerary item: %w", err)
	}
	item.Time = fromNull(tm)
	item.Location = fromNull(location)
	item.Notes = fromNull(notes)
	item.CreatedAt = parseTime(fromNull(createdAt))
	item.UpdatedAt = parseTime(fromNull(updatedAt))
	return item, nil
}
