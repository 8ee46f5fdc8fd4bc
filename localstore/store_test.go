// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qafariamirhossein/pwa-travel/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchema(t *testing.T) {
	s := newTestStore(t)

	expected := []string{"trips", "itinerary_items", "expenses", "notes", "_sync_outbox"}
	for _, table := range expected {
		var count int
		err := s.DB().QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestTripRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	trip := domain.Trip{
		ID:          "t1",
		Name:        "Japan",
		Destination: "Tokyo",
		StartDate:   "2026-04-01",
		EndDate:     "2026-04-14",
		CoverPhoto:  "p.jpg",
		CreatedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.PutTrip(ctx, trip))

	got, err := s.GetTrip(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, trip, got)

	_, err = s.GetTrip(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPutTripReplacesWholeSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	trip := domain.Trip{ID: "t1", Name: "Japan", Destination: "Tokyo",
		StartDate: "2026-04-01", EndDate: "2026-04-14", CoverPhoto: "p.jpg",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	require.NoError(t, s.PutTrip(ctx, trip))

	// Rewrite without the cover photo: last write wins field by field too.
	trip.CoverPhoto = ""
	trip.Name = "Japan 2026"
	require.NoError(t, s.PutTrip(ctx, trip))

	got, err := s.GetTrip(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "Japan 2026", got.Name)
	require.Empty(t, got.CoverPhoto)
}

func TestTripsOrderedByUpdatedAtDesc(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.PutTrip(ctx, domain.Trip{
			ID: id, Name: id, Destination: "x",
			StartDate: "2026-04-01", EndDate: "2026-04-02",
			CreatedAt: base, UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	trips, err := s.Trips(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 3)
	require.Equal(t, "c", trips[0].ID)
	require.Equal(t, "b", trips[1].ID)
	require.Equal(t, "a", trips[2].ID)
}

func TestItineraryOrderedByOrderAsc(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, item := range []domain.ItineraryItem{
		{ID: "i2", TripID: "t1", Date: "2026-04-02", Title: "Lunch", Order: 1},
		{ID: "i3", TripID: "t1", Date: "2026-04-02", Title: "Temple", Order: 2},
		{ID: "i1", TripID: "t1", Date: "2026-04-02", Title: "Museum", Order: 0},
		{ID: "x1", TripID: "other", Date: "2026-05-01", Title: "Elsewhere", Order: 0},
	} {
		require.NoError(t, s.PutItineraryItem(ctx, item))
	}

	items, err := s.ItineraryByTrip(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, []string{"i1", "i2", "i3"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestExpensesOrderedByCreatedAtDesc(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, s.PutExpense(ctx, domain.Expense{
			ID: id, TripID: "t1", Category: "food", Amount: 10, Currency: "USD",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	expenses, err := s.ExpensesByTrip(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, expenses, 3)
	require.Equal(t, "e3", expenses[0].ID)
	require.Equal(t, "e1", expenses[2].ID)
}

func TestNotesOrderedByUpdatedAtDesc(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 4, 3, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"n1", "n2"} {
		require.NoError(t, s.PutNote(ctx, domain.Note{
			ID: id, TripID: "t1", Content: "c",
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	notes, err := s.NotesByTrip(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, "n2", notes[0].ID)
}

func TestDeleteByTripCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutItineraryItem(ctx, domain.ItineraryItem{ID: "i1", TripID: "t1", Date: "d", Title: "a"}))
	require.NoError(t, s.PutItineraryItem(ctx, domain.ItineraryItem{ID: "i2", TripID: "t1", Date: "d", Title: "b"}))
	require.NoError(t, s.PutItineraryItem(ctx, domain.ItineraryItem{ID: "i3", TripID: "t2", Date: "d", Title: "c"}))
	require.NoError(t, s.PutExpense(ctx, domain.Expense{ID: "e1", TripID: "t1", Category: "food", Currency: "USD", CreatedAt: time.Now()}))
	require.NoError(t, s.PutNote(ctx, domain.Note{ID: "n1", TripID: "t1", Content: "x", UpdatedAt: time.Now()}))

	require.NoError(t, s.DeleteItineraryByTrip(ctx, "t1"))
	require.NoError(t, s.DeleteExpensesByTrip(ctx, "t1"))
	require.NoError(t, s.DeleteNotesByTrip(ctx, "t1"))

	items, err := s.ItineraryByTrip(ctx, "t1")
	require.NoError(t, err)
	require.Empty(t, items)

	expenses, err := s.ExpensesByTrip(ctx, "t1")
	require.NoError(t, err)
	require.Empty(t, expenses)

	notes, err := s.NotesByTrip(ctx, "t1")
	require.NoError(t, err)
	require.Empty(t, notes)

	// Unrelated trip untouched.
	items, err = s.ItineraryByTrip(ctx, "t2")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.DeleteTrip(ctx, "missing"))
	require.NoError(t, s.DeleteItineraryItem(ctx, "missing"))
	require.NoError(t, s.DeleteExpense(ctx, "missing"))
	require.NoError(t, s.DeleteNote(ctx, "missing"))
}
