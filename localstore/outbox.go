// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package localstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qafariamirhossein/pwa-travel/domain"
)

// Outbox is the durable, timestamp-ordered log of mutations not yet
// confirmed at the remote. Entries stay until explicitly removed, so a crash
// between remote success and removal yields at-least-once delivery; replay
// is safe because remote applies are id-keyed upserts.
type Outbox struct {
	store *Store

	mu     sync.Mutex
	lastTS int64 // last assigned enqueue timestamp, 0 until seeded
}

// NewOutbox returns the outbox backed by the store's database file.
func NewOutbox(s *Store) *Outbox {
	return &Outbox{store: s}
}

// Add assigns a fresh id and a strictly monotonic enqueue timestamp to m and
// persists it. The kind and action tags are validated here so a malformed
// mutation never reaches the wire.
func (o *Outbox) Add(ctx context.Context, m domain.Mutation) (domain.Mutation, error) {
	if err := m.Validate(); err != nil {
		return domain.Mutation{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.lastTS == 0 {
		// Seed from any entries persisted by a previous run so restarts
		// cannot reissue an already-used timestamp.
		var maxTS int64
		err := o.store.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(queued_at), 0) FROM _sync_outbox`).Scan(&maxTS)
		if err != nil {
			return domain.Mutation{}, fmt.Errorf("failed to seed outbox clock: %w", err)
		}
		o.lastTS = maxTS
	}

	ts := time.Now().UnixNano()
	if ts <= o.lastTS {
		ts = o.lastTS + 1
	}
	o.lastTS = ts

	m.ID = uuid.New().String()
	m.Timestamp = ts

	_, err := o.store.db.ExecContext(ctx, `
		INSERT INTO _sync_outbox (id, kind, action, payload, queued_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, string(m.Kind), string(m.Action), string(m.Data), m.Timestamp)
	if err != nil {
		return domain.Mutation{}, fmt.Errorf("failed to enqueue mutation: %w", err)
	}
	return m, nil
}

// All returns every pending mutation in ascending enqueue order, the only
// order the drain phase is allowed to process them in.
func (o *Outbox) All(ctx context.Context) ([]domain.Mutation, error) {
	rows, err := o.store.db.QueryContext(ctx, `
		SELECT id, kind, action, payload, queued_at
		FROM _sync_outbox
		ORDER BY queued_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var pending []domain.Mutation
	for rows.Next() {
		var m domain.Mutation
		var kind, action, payload string
		if err := rows.Scan(&m.ID, &kind, &action, &payload, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		m.Kind = domain.Kind(kind)
		m.Action = domain.Action(action)
		m.Data = []byte(payload)
		pending = append(pending, m)
	}
	return pending, rows.Err()
}

// Remove deletes one entry; called only after the remote confirmed the
// corresponding call.
func (o *Outbox) Remove(ctx context.Context, id string) error {
	if _, err := o.store.db.ExecContext(ctx, `DELETE FROM _sync_outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove outbox entry %s: %w", id, err)
	}
	return nil
}

// Clear wipes the queue. Administrative/test use only.
func (o *Outbox) Clear(ctx context.Context) error {
	if _, err := o.store.db.ExecContext(ctx, `DELETE FROM _sync_outbox`); err != nil {
		return fmt.Errorf("failed to clear outbox: %w", err)
	}
	return nil
}

// Len reports the number of pending entries.
func (o *Outbox) Len(ctx context.Context) (int, error) {
	var n int
	if err := o.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM _sync_outbox`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count outbox: %w", err)
	}
	return n, nil
}
