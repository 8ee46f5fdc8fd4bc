// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
)

// pullAll overwrites the local store with authoritative remote state:
// trips first, then each known trip's children. Runs after the drain so the
// device's own pending writes are pushed before the local view is replaced.
// One trip's failed child fetch is logged and skipped; other trips still
// pull. Returns the number of failed fetches.
func (m *Manager) pullAll(ctx context.Context) int {
	failed := 0

	trips, err := m.gw.Trips(ctx)
	if err != nil {
		m.logger.Warn("failed to pull trips", "error", err)
		return 1
	}
	for _, t := range trips {
		if err := m.local.PutTrip(ctx, t); err != nil {
			m.logger.Error("failed to store pulled trip", "id", t.ID, "error", err)
			failed++
		}
	}

	// Children are pulled per known trip, including trips that only exist
	// locally so far; the remote just returns empty lists for those.
	known, err := m.local.Trips(ctx)
	if err != nil {
		m.logger.Error("failed to list local trips", "error", err)
		return failed + 1
	}

	for _, trip := range known {
		items, err := m.gw.ItineraryItems(ctx, trip.ID)
		if err != nil {
			m.logger.Warn("failed to pull itinerary items", "tripId", trip.ID, "error", err)
			failed++
		} else {
			for _, item := range items {
				if err := m.local.PutItineraryItem(ctx, item); err != nil {
					m.logger.Error("failed to store pulled itinerary item", "id", item.ID, "error", err)
					failed++
				}
			}
		}

		expenses, err := m.gw.Expenses(ctx, trip.ID)
		if err != nil {
			m.logger.Warn("failed to pull expenses", "tripId", trip.ID, "error", err)
			failed++
		} else {
			for _, e := range expenses {
				if err := m.local.PutExpense(ctx, e); err != nil {
					m.logger.Error("failed to store pulled expense", "id", e.ID, "error", err)
					failed++
				}
			}
		}

		notes, err := m.gw.Notes(ctx, trip.ID)
		if err != nil {
			m.logger.Warn("failed to pull notes", "tripId", trip.ID, "error", err)
			failed++
		} else {
			for _, n := range notes {
				if err := m.local.PutNote(ctx, n); err != nil {
					m.logger.Error("failed to store pulled note", "id", n.ID, "error", err)
					failed++
				}
			}
		}
	}

	return failed
}
