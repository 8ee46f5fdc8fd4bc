// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qafariamirhossein/pwa-travel/domain"
)

// drainOutbox replays pending mutations against the remote in enqueue
// order. A failed entry is logged and left in place for the next round;
// processing continues so one bad entry cannot block the rest. Returns the
// number of entries that failed.
func (m *Manager) drainOutbox(ctx context.Context) int {
	pending, err := m.outbox.All(ctx)
	if err != nil {
		m.logger.Error("failed to read outbox", "error", err)
		return 1
	}

	failed := 0
	for _, entry := range pending {
		if err := m.applyMutation(ctx, entry); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				// A payload that cannot decode will never succeed; dropping it
				// is the only way the queue can make progress.
				m.logger.Error("dropping malformed outbox entry",
					"id", entry.ID, "kind", entry.Kind, "action", entry.Action, "error", err)
				if err := m.outbox.Remove(ctx, entry.ID); err != nil {
					m.logger.Error("failed to drop malformed outbox entry", "id", entry.ID, "error", err)
					failed++
				}
				continue
			}
			m.logger.Warn("failed to sync outbox entry, will retry",
				"id", entry.ID, "kind", entry.Kind, "action", entry.Action, "error", err)
			failed++
			continue
		}
		if err := m.outbox.Remove(ctx, entry.ID); err != nil {
			// The remote apply succeeded; leaving the entry means a harmless
			// idempotent replay next round.
			m.logger.Error("failed to remove confirmed outbox entry", "id", entry.ID, "error", err)
			failed++
		}
	}
	return failed
}

// applyMutation dispatches one outbox entry to the gateway call matching its
// (kind, action) pair and, on success, writes the acknowledged state into
// the local store.
func (m *Manager) applyMutation(ctx context.Context, mut domain.Mutation) error {
	if mut.Action == domain.ActionDelete {
		return m.applyDelete(ctx, mut)
	}

	switch mut.Kind {
	case domain.KindTrip:
		var t domain.Trip
		if err := json.Unmarshal(mut.Data, &t); err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return err
		}
		stored, err := m.gw.UpsertTrip(ctx, t)
		if err != nil {
			return err
		}
		return m.local.PutTrip(ctx, stored)

	case domain.KindItinerary:
		var item domain.ItineraryItem
		if err := json.Unmarshal(mut.Data, &item); err != nil {
			return err
		}
		if err := item.Validate(); err != nil {
			return err
		}
		stored, err := m.gw.UpsertItineraryItem(ctx, item)
		if err != nil {
			return err
		}
		return m.local.PutItineraryItem(ctx, stored)

	case domain.KindExpense:
		var e domain.Expense
		if err := json.Unmarshal(mut.Data, &e); err != nil {
			return err
		}
		if err := e.Validate(); err != nil {
			return err
		}
		stored, err := m.gw.UpsertExpense(ctx, e)
		if err != nil {
			return err
		}
		return m.local.PutExpense(ctx, stored)

	case domain.KindNote:
		var n domain.Note
		if err := json.Unmarshal(mut.Data, &n); err != nil {
			return err
		}
		if err := n.Validate(); err != nil {
			return err
		}
		stored, err := m.gw.UpsertNote(ctx, n)
		if err != nil {
			return err
		}
		return m.local.PutNote(ctx, stored)
	}

	return fmt.Errorf("%w: unknown entity kind %q", domain.ErrValidation, string(mut.Kind))
}

// applyDelete replays a delete. The remote treats deleting an absent id as
// success, which is what makes delete replay idempotent.
func (m *Manager) applyDelete(ctx context.Context, mut domain.Mutation) error {
	var ref domain.DeleteRef
	if err := json.Unmarshal(mut.Data, &ref); err != nil {
		return fmt.Errorf("%w: malformed delete payload: %v", domain.ErrValidation, err)
	}
	if ref.ID == "" {
		return fmt.Errorf("%w: delete payload has no id", domain.ErrValidation)
	}

	switch mut.Kind {
	case domain.KindTrip:
		if err := m.gw.DeleteTrip(ctx, ref.ID); err != nil {
			return err
		}
		return m.local.DeleteTrip(ctx, ref.ID)
	case domain.KindItinerary:
		if err := m.gw.DeleteItineraryItem(ctx, ref.ID); err != nil {
			return err
		}
		return m.local.DeleteItineraryItem(ctx, ref.ID)
	case domain.KindExpense:
		if err := m.gw.DeleteExpense(ctx, ref.ID); err != nil {
			return err
		}
		return m.local.DeleteExpense(ctx, ref.ID)
	case domain.KindNote:
		if err := m.gw.DeleteNote(ctx, ref.ID); err != nil {
			return err
		}
		return m.local.DeleteNote(ctx, ref.ID)
	}

	return fmt.Errorf("%w: unknown entity kind %q", domain.ErrValidation, string(mut.Kind))
}
