// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qafariamirhossein/pwa-travel/domain"
)

func TestUpsertTripDecodesSnakeCaseResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/trips", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var sent domain.Trip
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		require.Equal(t, "t1", sent.ID)

		// A Postgres-backed server answers in snake_case.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"t1","name":"Japan","destination":"Tokyo","start_date":"2026-04-01","end_date":"2026-04-14","created_at":"2026-03-01T10:00:00Z","updated_at":"2026-03-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	stored, err := c.UpsertTrip(context.Background(), domain.Trip{
		ID: "t1", Name: "Japan", Destination: "Tokyo",
		StartDate: "2026-04-01", EndDate: "2026-04-14",
	})
	require.NoError(t, err)
	require.Equal(t, "Japan", stored.Name)
	require.Equal(t, "2026-04-01", stored.StartDate)
	require.False(t, stored.CreatedAt.IsZero())
}

func TestListByParentPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/trips/t1/expenses", r.URL.Path)
		w.Write([]byte(`[{"id":"e1","trip_id":"t1","category":"food","amount":"12.00","currency":"USD","created_at":"2026-04-02T12:00:00Z"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	expenses, err := c.Expenses(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	require.Equal(t, 12.00, expenses[0].Amount)
	require.Equal(t, "t1", expenses[0].TripID)
}

func TestErrorEnvelopeSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"name is required"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.UpsertTrip(context.Background(), domain.Trip{ID: "t1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "name is required")
}

func TestNonJSONErrorBodyFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Trips(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestDeleteMissingIDSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/notes/never-existed", r.URL.Path)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.DeleteNote(context.Background(), "never-existed"))
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/trips", r.URL.Path)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	trips, err := c.Trips(context.Background())
	require.NoError(t, err)
	require.Empty(t, trips)
}
