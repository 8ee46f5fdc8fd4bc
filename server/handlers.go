// Package server is the reference implementation of the remote store wire
// contract: a REST surface over Postgres with id-keyed upserts. List
// responses are plain arrays, failures use the {"error": message} envelope,
// and deleting an id that does not exist is success.
//
// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/qafariamirhossein/pwa-travel/domain"
)

// Server holds the HTTP handlers for all entity kinds.
type Server struct {
	store  Store
	logger *slog.Logger
}

// New constructs the server around its store.
func New(store Store) *Server {
	return &Server{store: store, logger: slog.Default()}
}

// SetLogger replaces the default logger.
func (s *Server) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Router returns the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/trips", s.handleListTrips)
		r.Post("/trips", s.handleUpsertTrip)
		r.Delete("/trips/{id}", s.handleDeleteTrip)

		r.Get("/trips/{tripID}/itinerary", s.handleListItinerary)
		r.Post("/itinerary", s.handleUpsertItineraryItem)
		r.Delete("/itinerary/{id}", s.handleDeleteItineraryItem)

		r.Get("/trips/{tripID}/expenses", s.handleListExpenses)
		r.Post("/expenses", s.handleUpsertExpense)
		r.Delete("/expenses/{id}", s.handleDeleteExpense)

		r.Get("/trips/{tripID}/notes", s.handleListNotes)
		r.Post("/notes", s.handleUpsertNote)
		r.Delete("/notes/{id}", s.handleDeleteNote)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Trips

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.store.Trips(r.Context())
	if err != nil {
		s.logger.Error("failed to fetch trips", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch trips")
		return
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	writeJSON(w, http.StatusOK, trips)
}

func (s *Server) handleUpsertTrip(w http.ResponseWriter, r *http.Request) {
	var t domain.Trip
	if !decodeBody(w, r, &t) {
		return
	}
	t.CreatedAt, t.UpdatedAt = defaultTimes(t.CreatedAt, t.UpdatedAt)
	if err := t.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	stored, err := s.store.UpsertTrip(r.Context(), t)
	if err != nil {
		s.logger.Error("failed to upsert trip", "id", t.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save trip")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteTrip(r.Context(), id); err != nil {
		s.logger.Error("failed to delete trip", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete trip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Itinerary items

func (s *Server) handleListItinerary(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ItineraryItems(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		s.logger.Error("failed to fetch itinerary items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch itinerary items")
		return
	}
	if items == nil {
		items = []domain.ItineraryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleUpsertItineraryItem(w http.ResponseWriter, r *http.Request) {
	var item domain.ItineraryItem
	if !decodeBody(w, r, &item) {
		return
	}
	item.CreatedAt, item.UpdatedAt = defaultTimes(item.CreatedAt, item.UpdatedAt)
	if err := item.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	stored, err := s.store.UpsertItineraryItem(r.Context(), item)
	if err != nil {
		s.logger.Error("failed to upsert itinerary item", "id", item.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save itinerary item")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteItineraryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteItineraryItem(r.Context(), id); err != nil {
		s.logger.Error("failed to delete itinerary item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete itinerary item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Expenses

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.Expenses(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		s.logger.Error("failed to fetch expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch expenses")
		return
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleUpsertExpense(w http.ResponseWriter, r *http.Request) {
	var e domain.Expense
	if !decodeBody(w, r, &e) {
		return
	}
	if e.Currency == "" {
		e.Currency = "USD"
	}
	e.CreatedAt, e.UpdatedAt = defaultTimes(e.CreatedAt, e.UpdatedAt)
	if err := e.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	stored, err := s.store.UpsertExpense(r.Context(), e)
	if err != nil {
		s.logger.Error("failed to upsert expense", "id", e.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteExpense(r.Context(), id); err != nil {
		s.logger.Error("failed to delete expense", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Notes

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.store.Notes(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		s.logger.Error("failed to fetch notes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch notes")
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleUpsertNote(w http.ResponseWriter, r *http.Request) {
	var n domain.Note
	if !decodeBody(w, r, &n) {
		return
	}
	n.CreatedAt, n.UpdatedAt = defaultTimes(n.CreatedAt, n.UpdatedAt)
	if err := n.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	stored, err := s.store.UpsertNote(r.Context(), n)
	if err != nil {
		s.logger.Error("failed to upsert note", "id", n.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save note")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteNote(r.Context(), id); err != nil {
		s.logger.Error("failed to delete note", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete note")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Helpers

// defaultTimes fills absent timestamps with a server-assigned now.
func defaultTimes(created, updated time.Time) (time.Time, time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	return created, updated
}

// decodeBody decodes the JSON request body into v. On failure it writes the
// error envelope and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
