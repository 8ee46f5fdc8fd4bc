// Package syncer drives synchronization between the local store and the
// remote store: it drains the outbox in enqueue order, then pulls
// authoritative state back down. At most one sync runs per manager at a
// time; redundant calls return immediately.
//
// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qafariamirhossein/pwa-travel/domain"
	"github.com/qafariamirhossein/pwa-travel/localstore"
)

// Gateway is the remote store surface the manager drains into and pulls
// from. *gateway.Client satisfies it; tests inject fakes.
type Gateway interface {
	Trips(ctx context.Context) ([]domain.Trip, error)
	UpsertTrip(ctx context.Context, t domain.Trip) (domain.Trip, error)
	DeleteTrip(ctx context.Context, id string) error

	ItineraryItems(ctx context.Context, tripID string) ([]domain.ItineraryItem, error)
	UpsertItineraryItem(ctx context.Context, item domain.ItineraryItem) (domain.ItineraryItem, error)
	DeleteItineraryItem(ctx context.Context, id string) error

	Expenses(ctx context.Context, tripID string) ([]domain.Expense, error)
	UpsertExpense(ctx context.Context, e domain.Expense) (domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	Notes(ctx context.Context, tripID string) ([]domain.Note, error)
	UpsertNote(ctx context.Context, n domain.Note) (domain.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// Config holds tuning knobs for the background loop.
type Config struct {
	Interval   time.Duration // delay between successful rounds
	BackoffMin time.Duration // first retry delay after a failed round
	BackoffMax time.Duration // retry delay ceiling
}

// DefaultConfig returns the stock loop timing.
func DefaultConfig() *Config {
	return &Config{
		Interval:   30 * time.Second,
		BackoffMin: 1 * time.Second,
		BackoffMax: 60 * time.Second,
	}
}

// Manager owns the drain/pull cycle. Construct one per process and hand it
// to the domain stores; all state lives in fields, never in globals, so
// tests can build fresh instances.
type Manager struct {
	local  *localstore.Store
	outbox *localstore.Outbox
	gw     Gateway // nil = no endpoint configured, permanent offline-only mode
	config *Config
	logger *slog.Logger

	syncing  atomic.Bool
	online   atomic.Bool
	lastSync atomic.Int64 // unix nanos of the last fully clean round

	kick        chan struct{}
	offlineOnce sync.Once
}

// Status is the engine state the UI's online/syncing indicators consume.
type Status struct {
	Online   bool
	Syncing  bool
	LastSync time.Time
	Pending  int
}

// New constructs a manager. gw may be nil, which puts the engine into
// offline-only mode: queueing still works, SyncAll is a silent no-op.
func New(local *localstore.Store, outbox *localstore.Outbox, gw Gateway, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	m := &Manager{
		local:  local,
		outbox: outbox,
		gw:     gw,
		config: config,
		logger: slog.Default(),
		kick:   make(chan struct{}, 1),
	}
	m.online.Store(true)
	return m
}

// SetLogger replaces the default logger.
func (m *Manager) SetLogger(l *slog.Logger) {
	if l != nil {
		m.logger = l
	}
}

// SetOnline records the device's connectivity. Coming back online kicks a
// sync round, the analogue of the browser's online event.
func (m *Manager) SetOnline(online bool) {
	was := m.online.Swap(online)
	if online && !was {
		m.Kick()
	}
}

// Online reports the last connectivity state set by the host.
func (m *Manager) Online() bool { return m.online.Load() }

// Queue appends a mutation to the outbox, assigning its id and enqueue
// timestamp. It is called synchronously by every domain store mutation,
// unconditionally — the outbox is the durable intent log whether or not the
// device is online.
func (m *Manager) Queue(ctx context.Context, kind domain.Kind, action domain.Action, data any) (domain.Mutation, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return domain.Mutation{}, fmt.Errorf("failed to marshal mutation payload: %w", err)
	}
	return m.outbox.Add(ctx, domain.Mutation{Kind: kind, Action: action, Data: payload})
}

// SyncAll performs one drain+pull cycle. It is a no-op when the device is
// offline, when no endpoint is configured, or when another sync is already
// in flight; in all three cases it returns immediately having made zero
// gateway calls. The syncing flag is always cleared on exit, so a failure
// can never wedge the manager.
func (m *Manager) SyncAll(ctx context.Context) error {
	if m.gw == nil {
		m.offlineOnce.Do(func() {
			m.logger.Info("remote endpoint not configured, running in offline-only mode")
		})
		return nil
	}
	if !m.online.Load() {
		return nil
	}
	if !m.syncing.CompareAndSwap(false, true) {
		return nil
	}
	defer m.syncing.Store(false)

	failed := m.drainOutbox(ctx)
	failed += m.pullAll(ctx)

	if failed > 0 {
		return fmt.Errorf("sync completed with %d failed operations", failed)
	}
	m.lastSync.Store(time.Now().UnixNano())
	return nil
}

// Kick schedules an opportunistic sync round without blocking. It is what
// domain stores call after a mutation; if no Run loop is active the signal
// stays buffered until one starts.
func (m *Manager) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// Syncing reports whether a drain+pull cycle is currently in flight.
func (m *Manager) Syncing() bool { return m.syncing.Load() }

// Status returns the current engine state.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	pending, err := m.outbox.Len(ctx)
	if err != nil {
		return Status{}, err
	}
	var last time.Time
	if ns := m.lastSync.Load(); ns > 0 {
		last = time.Unix(0, ns)
	}
	return Status{
		Online:   m.online.Load(),
		Syncing:  m.syncing.Load(),
		LastSync: last,
		Pending:  pending,
	}, nil
}

// Run loops until ctx is cancelled: sync on the configured interval, sooner
// when kicked, with exponential backoff between failed rounds.
func (m *Manager) Run(ctx context.Context) {
	backoff := m.config.BackoffMin
	delay := m.config.Interval
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.kick:
		case <-time.After(delay):
		}

		if err := m.SyncAll(ctx); err != nil {
			m.logger.Warn("sync round failed, backing off", "error", err, "retry_in", backoff)
			delay = backoff
			backoff *= 2
			if backoff > m.config.BackoffMax {
				backoff = m.config.BackoffMax
			}
		} else {
			backoff = m.config.BackoffMin
			delay = m.config.Interval
		}
	}
}
