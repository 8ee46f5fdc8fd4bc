// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"fmt"
	"time"
)

// Trip is the root entity. Every other kind hangs off a trip via TripID.
type Trip struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	CoverPhoto  string    `json:"coverPhoto,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
	UserID      string    `json:"userId,omitempty"`
}

// ItineraryItem is one scheduled entry of a trip. Order establishes a dense
// per-(trip, date) ordering; ties are broken by slice position at write time.
type ItineraryItem struct {
	ID        string    `json:"id"`
	TripID    string    `json:"tripId"`
	Date      string    `json:"date"`
	Time      string    `json:"time,omitempty"`
	Title     string    `json:"title"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Expense records a single spend against a trip.
type Expense struct {
	ID        string    `json:"id"`
	TripID    string    `json:"tripId"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Note is a free-form note attached to a trip, optionally pinned to a date.
type Note struct {
	ID        string    `json:"id"`
	TripID    string    `json:"tripId"`
	Date      string    `json:"date,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Validate checks the fields the remote schema declares NOT NULL.
func (t Trip) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: trip id is required", ErrValidation)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: trip name is required", ErrValidation)
	}
	if t.Destination == "" {
		return fmt.Errorf("%w: trip destination is required", ErrValidation)
	}
	if t.StartDate == "" || t.EndDate == "" {
		return fmt.Errorf("%w: trip start and end dates are required", ErrValidation)
	}
	return nil
}

// Validate checks the fields the remote schema declares NOT NULL.
func (i ItineraryItem) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: itinerary item id is required", ErrValidation)
	}
	if i.TripID == "" {
		return fmt.Errorf("%w: itinerary item tripId is required", ErrValidation)
	}
	if i.Date == "" {
		return fmt.Errorf("%w: itinerary item date is required", ErrValidation)
	}
	if i.Title == "" {
		return fmt.Errorf("%w: itinerary item title is required", ErrValidation)
	}
	return nil
}

// Validate checks the fields the remote schema declares NOT NULL.
func (e Expense) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: expense id is required", ErrValidation)
	}
	if e.TripID == "" {
		return fmt.Errorf("%w: expense tripId is required", ErrValidation)
	}
	if e.Category == "" {
		return fmt.Errorf("%w: expense category is required", ErrValidation)
	}
	return nil
}

// Validate checks the fields the remote schema declares NOT NULL.
func (n Note) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("%w: note id is required", ErrValidation)
	}
	if n.TripID == "" {
		return fmt.Errorf("%w: note tripId is required", ErrValidation)
	}
	if n.Content == "" {
		return fmt.Errorf("%w: note content is required", ErrValidation)
	}
	return nil
}
