// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// The remote store is a fixed external contract with two field spellings in
// the wild: the app writes camelCase, the relational backend returns
// snake_case column names. Decoding is first-match-wins across both
// spellings, which is what the backend itself does on input.

type rawRecord map[string]json.RawMessage

func decodeRecord(data []byte) (rawRecord, error) {
	var r rawRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrValidation, err)
	}
	return r, nil
}

// str returns the first present string value among keys, or "".
func (r rawRecord) str(keys ...string) string {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return ""
}

// num returns the first present numeric value among keys, accepting both
// JSON numbers and numeric strings (Postgres NUMERIC columns arrive as
// strings through the backend).
func (r rawRecord) num(keys ...string) float64 {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// when returns the first present timestamp among keys, or the zero time.
func (r rawRecord) when(keys ...string) time.Time {
	s := r.str(keys...)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// UnmarshalJSON decodes a trip from either field spelling.
func (t *Trip) UnmarshalJSON(data []byte) error {
	r, err := decodeRecord(data)
	if err != nil {
		return err
	}
	*t = Trip{
		ID:          r.str("id"),
		Name:        r.str("name"),
		Destination: r.str("destination"),
		StartDate:   r.str("startDate", "start_date"),
		EndDate:     r.str("endDate", "end_date"),
		CoverPhoto:  r.str("coverPhoto", "cover_photo"),
		CreatedAt:   r.when("createdAt", "created_at"),
		UpdatedAt:   r.when("updatedAt", "updated_at"),
		UserID:      r.str("userId", "user_id"),
	}
	return nil
}

// UnmarshalJSON decodes an itinerary item from either field spelling.
func (i *ItineraryItem) UnmarshalJSON(data []byte) error {
	r, err := decodeRecord(data)
	if err != nil {
		return err
	}
	*i = ItineraryItem{
		ID:        r.str("id"),
		TripID:    r.str("tripId", "trip_id"),
		Date:      r.str("date"),
		Time:      r.str("time"),
		Title:     r.str("title"),
		Location:  r.str("location"),
		Notes:     r.str("notes"),
		Order:     int(r.num("order")),
		CreatedAt: r.when("createdAt", "created_at"),
		UpdatedAt: r.when("updatedAt", "updated_at"),
	}
	return nil
}

// UnmarshalJSON decodes an expense from either field spelling.
func (e *Expense) UnmarshalJSON(data []byte) error {
	r, err := decodeRecord(data)
	if err != nil {
		return err
	}
	*e = Expense{
		ID:        r.str("id"),
		TripID:    r.str("tripId", "trip_id"),
		Category:  r.str("category"),
		Amount:    r.num("amount"),
		Currency:  r.str("currency"),
		Note:      r.str("note"),
		CreatedAt: r.when("createdAt", "created_at"),
		UpdatedAt: r.when("updatedAt", "updated_at"),
	}
	return nil
}

// UnmarshalJSON decodes a note from either field spelling.
func (n *Note) UnmarshalJSON(data []byte) error {
	r, err := decodeRecord(data)
	if err != nil {
		return err
	}
	*n = Note{
		ID:        r.str("id"),
		TripID:    r.str("tripId", "trip_id"),
		Date:      r.str("date"),
		Content:   r.str("content"),
		CreatedAt: r.when("createdAt", "created_at"),
		UpdatedAt: r.when("updatedAt", "updated_at"),
	}
	return nil
}
