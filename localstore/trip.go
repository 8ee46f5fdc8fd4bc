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

// Trips returns all trips, most recently updated first.
func (s *Store) Trips(ctx context.Context) ([]domain.Trip, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, destination, start_date, end_date, cover_photo, created_at, updated_at, user_id
		FROM trips
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// GetTrip returns the trip with the given id, or ErrNotFound.
func (s *Store) GetTrip(ctx context.Context, id string) (domain.Trip, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, destination, start_date, end_date, cover_photo, created_at, updated_at, user_id
		FROM trips WHERE id = ?
	`, id)
	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trip{}, ErrNotFound
	}
	return t, err
}

// PutTrip unconditionally upserts the trip, replacing any existing snapshot.
func (s *Store) PutTrip(ctx context.Context, t domain.Trip) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trips (id, name, destination, start_date, end_date, cover_photo, created_at, updated_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Destination, t.StartDate, t.EndDate, nullable(t.CoverPhoto),
		fmtTime(t.CreatedAt), fmtTime(t.UpdatedAt), nullable(t.UserID))
	if err != nil {
		return fmt.Errorf("failed to upsert trip %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTrip removes the trip row alone. Child rows are cascaded explicitly
// by the trip domain store, not here.
func (s *Store) DeleteTrip(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete trip %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (domain.Trip, error) {
	var t domain.Trip
	var coverPhoto, userID sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&t.ID, &t.Name, &t.Destination, &t.StartDate, &t.EndDate,
		&coverPhoto, &createdAt, &updatedAt, &userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Trip{}, err
		}
		return domain.Trip{}, fmt.Errorf("failed to scan trip: %w", err)
	}
	t.CoverPhoto = fromNull(coverPhoto)
	t.UserID = fromNull(userID)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}
