// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qafariamirhossein/pwa-travel/domain"
)

// Store defines the persistence operations the handlers depend on. Defining
// it on the consumer side lets handler tests inject an in-memory fake
// without a database.
type Store interface {
	Trips(ctx context.Context) ([]domain.Trip, error)
	UpsertTrip(ctx context.Context, t domain.Trip) (domain.Trip, error)
	DeleteTrip(ctx context.Context, id string) error

	ItineraryItems(ctx context.Context, tripID string) ([]domain.ItineraryItem, error)
	UpsertItineraryItem(ctx context.Context, item domain.ItineraryItem) (domain.ItineraryItem, error)
	DeleteItineraryItem(ctx context.Context, id string) error

	Expenses(ctx context.Context, tripID string) ([]domain.Expense, error)
	UpsertExpense(ctx context.Context, e domain.Expense) (domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	Notes(ctx context.Context, tripID string) ([]domain.Note, error)
	UpsertNote(ctx context.Context, n domain.Note) (domain.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// PgStore implements Store on a Postgres pool. Every upsert is an
// insert-or-replace-all-columns keyed by id; that is the property that makes
// client-side outbox replay idempotent.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore wraps an existing pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Trips(ctx context.Context) ([]domain.Trip, error) {
	rows, err := s.pool.Query(ctx, `
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
		var t domain.Trip
		var coverPhoto, userID *string
		if err := rows.Scan(&t.ID, &t.Name, &t.Destination, &t.StartDate, &t.EndDate,
			&coverPhoto, &t.CreatedAt, &t.UpdatedAt, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		t.CoverPhoto = deref(coverPhoto)
		t.UserID = deref(userID)
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (s *PgStore) UpsertTrip(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO trips (id, name, destination, start_date, end_date, cover_photo, created_at, updated_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name        = EXCLUDED.name,
			destination = EXCLUDED.destination,
			start_date  = EXCLUDED.start_date,
			end_date    = EXCLUDED.end_date,
			cover_photo = EXCLUDED.cover_photo,
			updated_at  = EXCLUDED.updated_at,
			user_id     = EXCLUDED.user_id
		RETURNING id, name, destination, start_date, end_date, cover_photo, created_at, updated_at, user_id
	`, t.ID, t.Name, t.Destination, t.StartDate, t.EndDate, toNull(t.CoverPhoto),
		t.CreatedAt, t.UpdatedAt, toNull(t.UserID))

	var stored domain.Trip
	var coverPhoto, userID *string
	if err := row.Scan(&stored.ID, &stored.Name, &stored.Destination, &stored.StartDate,
		&stored.EndDate, &coverPhoto, &stored.CreatedAt, &stored.UpdatedAt, &userID); err != nil {
		return domain.Trip{}, fmt.Errorf("failed to upsert trip %s: %w", t.ID, err)
	}
	stored.CoverPhoto = deref(coverPhoto)
	stored.UserID = deref(userID)
	return stored, nil
}

func (s *PgStore) DeleteTrip(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete trip %s: %w", id, err)
	}
	return nil
}

func (s *PgStore) ItineraryItems(ctx context.Context, tripID string) ([]domain.ItineraryItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, trip_id, date, time, title, location, notes, "order", created_at, updated_at
		FROM itinerary_items
		WHERE trip_id = $1
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

func (s *PgStore) UpsertItineraryItem(ctx context.Context, item domain.ItineraryItem) (domain.ItineraryItem, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO itinerary_items (id, trip_id, date, time, title, location, notes, "order", created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			trip_id    = EXCLUDED.trip_id,
			date       = EXCLUDED.date,
			time       = EXCLUDED.time,
			title      = EXCLUDED.title,
			location   = EXCLUDED.location,
			notes      = EXCLUDED.notes,
			"order"    = EXCLUDED."order",
			updated_at = EXCLUDED.updated_at
		RETURNING id, trip_id, date, time, title, location, notes, "order", created_at, updated_at
	`, item.ID, item.TripID, item.Date, toNull(item.Time), item.Title,
		toNull(item.Location), toNull(item.Notes), item.Order, item.CreatedAt, item.UpdatedAt)

	stored, err := scanItineraryItem(row)
	if err != nil {
		return domain.ItineraryItem{}, fmt.Errorf("failed to upsert itinerary item %s: %w", item.ID, err)
	}
	return stored, nil
}

func (s *PgStore) DeleteItineraryItem(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM itinerary_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete itinerary item %s: %w", id, err)
	}
	return nil
}

func (s *PgStore) Expenses(ctx context.Context, tripID string) ([]domain.Expense, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, trip_id, category, amount, currency, note, created_at, updated_at
		FROM expenses
		WHERE trip_id = $1
		ORDER BY created_at DESC
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *PgStore) UpsertExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO expenses (id, trip_id, category, amount, currency, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			trip_id    = EXCLUDED.trip_id,
			category   = EXCLUDED.category,
			amount     = EXCLUDED.amount,
			currency   = EXCLUDED.currency,
			note       = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at
		RETURNING id, trip_id, category, amount, currency, note, created_at, updated_at
	`, e.ID, e.TripID, e.Category, e.Amount, e.Currency, toNull(e.Note), e.CreatedAt, e.UpdatedAt)

	stored, err := scanExpense(row)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("failed to upsert expense %s: %w", e.ID, err)
	}
	return stored, nil
}

func (s *PgStore) DeleteExpense(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", id, err)
	}
	return nil
}

func (s *PgStore) Notes(ctx context.Context, tripID string) ([]domain.Note, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, trip_id, date, content, created_at, updated_at
		FROM notes
		WHERE trip_id = $1
		ORDER BY updated_at DESC
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *PgStore) UpsertNote(ctx context.Context, n domain.Note) (domain.Note, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO notes (id, trip_id, date, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			trip_id    = EXCLUDED.trip_id,
			date       = EXCLUDED.date,
			content    = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
		RETURNING id, trip_id, date, content, created_at, updated_at
	`, n.ID, n.TripID, toNull(n.Date), n.Content, n.CreatedAt, n.UpdatedAt)

	stored, err := scanNote(row)
	if err != nil {
		return domain.Note{}, fmt.Errorf("failed to upsert note %s: %w", n.ID, err)
	}
	return stored, nil
}

func (s *PgStore) DeleteNote(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	return nil
}

func scanItineraryItem(row pgx.Row) (domain.ItineraryItem, error) {
	var item domain.ItineraryItem
	var tm, location, notes *string
	err := row.Scan(&item.ID, &item.TripID, &item.Date, &tm, &item.Title,
		&location, &notes, &item.Order, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.ItineraryItem{}, err
	}
	item.Time = deref(tm)
	item.Location = deref(location)
	item.Notes = deref(notes)
	return item, nil
}

func scanExpense(row pgx.Row) (domain.Expense, error) {
	var e domain.Expense
	var note *string
	err := row.Scan(&e.ID, &e.TripID, &e.Category, &e.Amount, &e.Currency,
		&note, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Expense{}, err
	}
	e.Note = deref(note)
	return e, nil
}

func scanNote(row pgx.Row) (domain.Note, error) {
	var n domain.Note
	var date *string
	err := row.Scan(&n.ID, &n.TripID, &date, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return domain.Note{}, err
	}
	n.Date = deref(date)
	return n, nil
}

func toNull(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
