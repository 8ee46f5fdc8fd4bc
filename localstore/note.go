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

// NotesByTrip returns a trip's notes, most recently updated first.
func (s *Store) NotesByTrip(ctx context.Context, tripID string) ([]domain.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trip_id, date, content, created_at, updated_at
		FROM notes
		WHERE trip_id = ?
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

// GetNote returns the note with the given id, or ErrNotFound.
func (s *Store) GetNote(ctx context.Context, id string) (domain.Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, trip_id, date, content, created_at, updated_at
		FROM notes WHERE id = ?
	`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Note{}, ErrNotFound
	}
	return n, err
}

// PutNote unconditionally upserts the note.
func (s *Store) PutNote(ctx context.Context, n domain.Note) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notes (id, trip_id, date, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.TripID, nullable(n.Date), n.Content,
		nullable(fmtTime(n.CreatedAt)), fmtTime(n.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert note %s: %w", n.ID, err)
	}
	return nil
}

// DeleteNote removes the note; deleting a missing id is a no-op.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	return nil
}

// DeleteNotesByTrip lists then deletes each of the trip's notes.
func (s *Store) DeleteNotesByTrip(ctx context.Context, tripID string) error {
	notes, err := s.NotesByTrip(ctx, tripID)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if err := s.DeleteNote(ctx, n.ID); err != nil {
			return err
		}
	}
	return nil
}

func scanNote(row rowScanner) (domain.Note, error) {
	var n domain.Note
	var date, createdAt sql.NullString
	var updatedAt string
	err := row.Scan(&n.ID, &n.TripID, &date, &n.Content, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Note{}, err
		}
		return domain.Note{}, fmt.Errorf("failed to scan note: %w", err)
	}
	n.Date = fromNull(date)
	n.CreatedAt = parseTime(fromNull(createdAt))
	n.UpdatedAt = parseTime(updatedAt)
	return n, nil
}
