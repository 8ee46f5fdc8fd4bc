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

// ExpensesByTrip returns a trip's expenses, most recently created first.
func (s *Store) ExpensesByTrip(ctx context.Context, tripID string) ([]domain.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trip_id, category, amount, currency, note, created_at, updated_at
		FROM expenses
		WHERE trip_id = ?
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

// GetExpense returns the expense with the given id, or ErrNotFound.
func (s *Store) GetExpense(ctx context.Context, id string) (domain.Expense, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, trip_id, category, amount, currency, note, created_at, updated_at
		FROM expenses WHERE id = ?
	`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Expense{}, ErrNotFound
	}
	return e, err
}

// PutExpense unconditionally upserts the expense.
func (s *Store) PutExpense(ctx context.Context, e domain.Expense) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO expenses (id, trip_id, category, amount, currency, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.TripID, e.Category, e.Amount, e.Currency, nullable(e.Note),
		fmtTime(e.CreatedAt), nullable(fmtTime(e.UpdatedAt)))
	if err != nil {
		return fmt.Errorf("failed to upsert expense %s: %w", e.ID, err)
	}
	return nil
}

// DeleteExpense removes the expense; deleting a missing id is a no-op.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", id, err)
	}
	return nil
}

// DeleteExpensesByTrip lists then deletes each of the trip's expenses.
func (s *Store) DeleteExpensesByTrip(ctx context.Context, tripID string) error {
	expenses, err := s.ExpensesByTrip(ctx, tripID)
	if err != nil {
		return err
	}
	for _, e := range expenses {
		if err := s.DeleteExpense(ctx, e.ID); err != nil {
			return err
		}
	}
	return nil
}

func scanExpense(row rowScanner) (domain.Expense, error) {
	var e domain.Expense
	var note, updatedAt sql.NullString
	var createdAt string
	err := row.Scan(&e.ID, &e.TripID, &e.Category, &e.Amount, &e.Currency,
		&note, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Expense{}, err
		}
		return domain.Expense{}, fmt.Errorf("failed to scan expense: %w", err)
	}
	e.Note = fromNull(note)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(fromNull(updatedAt))
	return e, nil
}
