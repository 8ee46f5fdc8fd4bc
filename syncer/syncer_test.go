// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qafariamirhossein/pwa-travel/domain"
	"github.com/qafariamirhossein/pwa-travel/localstore"
)

// fakeGateway is an in-memory remote store. Failures are programmed per
// method name and consumed one call at a time; calls records every gateway
// invocation in order.
type fakeGateway struct {
	mu       sync.Mutex
	trips    map[string]domain.Trip
	items    map[string]domain.ItineraryItem
	expenses map[string]domain.Expense
	notes    map[string]domain.Note

	failures map[string]int // method name -> remaining calls to fail
	calls    []string

	blockUpsertTrip chan struct{} // when non-nil, UpsertTrip waits on it
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		trips:    make(map[string]domain.Trip),
		items:    make(map[string]domain.ItineraryItem),
		expenses: make(map[string]domain.Expense),
		notes:    make(map[string]domain.Note),
		failures: make(map[string]int),
	}
}

func (f *fakeGateway) failNext(method string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = n
}

// record logs the call and consumes one programmed failure if present.
func (f *fakeGateway) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	if f.failures[method] > 0 {
		f.failures[method]--
		return errors.New("injected failure")
	}
	return nil
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGateway) Trips(ctx context.Context) ([]domain.Trip, error) {
	if err := f.record("Trips"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Trip, 0, len(f.trips))
	for _, t := range f.trips {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeGateway) UpsertTrip(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	if f.blockUpsertTrip != nil {
		<-f.blockUpsertTrip
	}
	if err := f.record("UpsertTrip"); err != nil {
		return domain.Trip{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trips[t.ID] = t
	return t, nil
}

func (f *fakeGateway) DeleteTrip(ctx context.Context, id string) error {
	if err := f.record("DeleteTrip"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.trips, id)
	return nil
}

func (f *fakeGateway) ItineraryItems(ctx context.Context, tripID string) ([]domain.ItineraryItem, error) {
	if err := f.record("ItineraryItems"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ItineraryItem
	for _, item := range f.items {
		if item.TripID == tripID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeGateway) UpsertItineraryItem(ctx context.Context, item domain.ItineraryItem) (domain.ItineraryItem, error) {
	if err := f.record("UpsertItineraryItem"); err != nil {
		return domain.ItineraryItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeGateway) DeleteItineraryItem(ctx context.Context, id string) error {
	if err := f.record("DeleteItineraryItem"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeGateway) Expenses(ctx context.Context, tripID string) ([]domain.Expense, error) {
	if err := f.record("Expenses"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Expense
	for _, e := range f.expenses {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeGateway) UpsertExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	if err := f.record("UpsertExpense"); err != nil {
		return domain.Expense{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expenses[e.ID] = e
	return e, nil
}

func (f *fakeGateway) DeleteExpense(ctx context.Context, id string) error {
	if err := f.record("DeleteExpense"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.expenses, id)
	return nil
}

func (f *fakeGateway) Notes(ctx context.Context, tripID string) ([]domain.Note, error) {
	if err := f.record("Notes"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Note
	for _, n := range f.notes {
		if n.TripID == tripID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeGateway) UpsertNote(ctx context.Context, n domain.Note) (domain.Note, error) {
	if err := f.record("UpsertNote"); err != nil {
		return domain.Note{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[n.ID] = n
	return n, nil
}

func (f *fakeGateway) DeleteNote(ctx context.Context, id string) error {
	if err := f.record("DeleteNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notes, id)
	return nil
}

func newTestManager(t *testing.T, gw Gateway) (*Manager, *localstore.Store, *localstore.Outbox) {
	t.Helper()
	local, err := localstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })
	outbox := localstore.NewOutbox(local)
	return New(local, outbox, gw, nil), local, outbox
}

func testTrip(id string) domain.Trip {
	return domain.Trip{
		ID: id, Name: "Japan", Destination: "Tokyo",
		StartDate: "2026-04-01", EndDate: "2026-04-14",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSyncAllDrainsAndPulls(t *testing.T) {
	gw := newFakeGateway()
	m, local, outbox := newTestManager(t, gw)
	ctx := context.Background()

	trip := testTrip("t1")
	require.NoError(t, local.PutTrip(ctx, trip))
	_, err := m.Queue(ctx, domain.KindTrip, domain.ActionCreate, trip)
	require.NoError(t, err)

	require.NoError(t, m.SyncAll(ctx))

	n, err := outbox.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Contains(t, gw.trips, "t1")

	got, err := local.GetTrip(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, trip, got)
}

func TestReplayIsIdempotent(t *testing.T) {
	gw := newFakeGateway()
	m, _, outbox := newTestManager(t, gw)
	ctx := context.Background()

	trip := testTrip("t1")
	_, err := m.Queue(ctx, domain.KindTrip, domain.ActionCreate, trip)
	require.NoError(t, err)
	require.NoError(t, m.SyncAll(ctx))

	// A crash between remote apply and removal replays the same mutation.
	_, err = m.Queue(ctx, domain.KindTrip, domain.ActionCreate, trip)
	require.NoError(t, err)
	require.NoError(t, m.SyncAll(ctx))

	require.Len(t, gw.trips, 1)
	require.Equal(t, trip.Name, gw.trips["t1"].Name)

	n, err := outbox.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestTransientFailureRetriesUntilDelivered(t *testing.T) {
	gw := newFakeGateway()
	m, _, outbox := newTestManager(t, gw)
	ctx := context.Background()

	_, err := m.Queue(ctx, domain.KindTrip, domain.ActionCreate, testTrip("t1"))
	require.NoError(t, err)

	gw.failNext("UpsertTrip", 1)
	err = m.SyncAll(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed operations")

	// The entry survived the failed round.
	n, err := outbox.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, m.SyncAll(ctx))
	n, err = outbox.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Contains(t, gw.trips, "t1")
}

func TestDrainPreservesEnqueueOrder(t *testing.T) {
	gw := newFakeGateway()
	m, _, _ := newTestManager(t, gw)
	ctx := context.Background()

	trip := testTrip("t1")
	_, err := m.Queue(ctx, domain.KindTrip, domain.ActionCreate, trip)
	require.NoError(t, err)

	trip.Name = "Japan, revised"
	_, err = m.Queue(ctx, domain.KindTrip, domain.ActionUpdate, trip)
	require.NoError(t, err)

	require.NoError(t, m.SyncAll(ctx))

	// The update was applied after the create, so the revision wins.
	require.Equal(t, "Japan, revised", gw.trips["t1"].Name)
}

func TestDeleteDrain(t *testing.T) {
	gw := newFakeGateway()
	m, local, _ := newTestManager(t, gw)
	ctx := context.Background()

	trip := testTrip("t1")
	gw.trips["t1"] = trip
	require.NoError(t, local.PutTrip(ctx, trip))

	_, err := m.Queue(ctx, domain.KindTrip, domain.ActionDelete, domain.DeleteRef{ID: "t1"})
	require.NoError(t, err)
	require.NoError(t, m.SyncAll(ctx))

	require.NotContains(t, gw.trips, "t1")
	_, err = local.GetTrip(ctx, "t1")
	require.ErrorIs(t, err, localstore.ErrNotFound)
}

func TestOnlyOneSyncInFlight(t *testing.T) {
	gw := newFakeGateway()
	gw.blockUpsertTrip = make(chan struct{})
	m, _, _ := newTestManager(t, gw)
	ctx := context.Background()

	_, err := m.Queue(ctx, domain.KindTrip, domain.ActionCreate, testTrip("t1"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.SyncAll(ctx) }()

	// Wait until the first round is parked inside the gateway call.
	require.Eventually(t, m.Syncing, time.Second, time.Millisecond)
	before := gw.callCount()

	// A second call must return immediately without touching the gateway.
	require.NoError(t, m.SyncAll(ctx))
	require.Equal(t, before, gw.callCount())

	close(gw.blockUpsertTrip)
	require.NoError(t, <-done)
	require.False(t, m.Syncing())
}

func TestOfflineSyncIsNoop(t *testing.T) {
	gw := newFakeGateway()
	m, _, outbox := newTestManager(t, gw)
	ctx := context.Background()

	m.SetOnline(false)
	_, err := m.Queue(ctx, domain.KindNote, domain.ActionCreate,
		domain.Note{ID: "n1", TripID: "t1", Content: "pack adapters", UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)

	require.NoError(t, m.SyncAll(ctx))
	require.Zero(t, gw.callCount())

	// Queueing while offline still persisted the intent.
	n, err := outbox.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	m.SetOnline(true)
	require.NoError(t, m.SyncAll(ctx))
	n, err = outbox.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Contains(t, gw.notes, "n1")
}

func TestNilGatewayIsOfflineOnly(t *testing.T) {
	m, _, outbox := newTestManager(t, nil)
	ctx := context.Background()

	_, err := m.Queue(ctx, domain.KindTrip, domain.ActionCreate, testTrip("t1"))
	require.NoError(t, err)

	require.NoError(t, m.SyncAll(ctx))

	// Nothing drained: there is nowhere to drain to.
	n, err := outbox.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestMalformedEntryDropped(t *testing.T) {
	gw := newFakeGateway()
	m, _, outbox := newTestManager(t, gw)
	ctx := context.Background()

	_, err := outbox.Add(ctx, domain.Mutation{
		Kind:   domain.KindTrip,
		Action: domain.ActionCreate,
		Data:   []byte(`[1,2,3]`),
	})
	require.NoError(t, err)
	_, err = m.Queue(ctx, domain.KindTrip, domain.ActionCreate, testTrip("t2"))
	require.NoError(t, err)

	require.NoError(t, m.SyncAll(ctx))

	// The undecodable entry is gone and the one behind it still delivered.
	n, err := outbox.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Contains(t, gw.trips, "t2")
	require.Len(t, gw.trips, 1)
}

func TestPartialDrainContinuesPastFailure(t *testing.T) {
	gw := newFakeGateway()
	m, _, outbox := newTestManager(t, gw)
	ctx := context.Background()

	_, err := m.Queue(ctx, domain.KindTrip, domain.ActionCreate, testTrip("t1"))
	require.NoError(t, err)
	_, err = m.Queue(ctx, domain.KindNote, domain.ActionCreate,
		domain.Note{ID: "n1", TripID: "t1", Content: "x", UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)

	gw.failNext("UpsertTrip", 1)
	err = m.SyncAll(ctx)
	require.Error(t, err)

	// The note behind the failed trip still went through.
	require.Contains(t, gw.notes, "n1")
	pending, err := outbox.All(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, domain.KindTrip, pending[0].Kind)
}

func TestPullOverwritesLocalState(t *testing.T) {
	gw := newFakeGateway()
	m, local, _ := newTestManager(t, gw)
	ctx := context.Background()

	stale := testTrip("t1")
	stale.Name = "old name"
	require.NoError(t, local.PutTrip(ctx, stale))

	fresh := testTrip("t1")
	fresh.Name = "new name"
	gw.trips["t1"] = fresh
	gw.notes["n1"] = domain.Note{ID: "n1", TripID: "t1", Content: "from remote",
		UpdatedAt: time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)}

	require.NoError(t, m.SyncAll(ctx))

	got, err := local.GetTrip(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "new name", got.Name)

	notes, err := local.NotesByTrip(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "from remote", notes[0].Content)
}

func TestStatusReflectsEngineState(t *testing.T) {
	gw := newFakeGateway()
	m, _, _ := newTestManager(t, gw)
	ctx := context.Background()

	st, err := m.Status(ctx)
	require.NoError(t, err)
	require.True(t, st.Online)
	require.False(t, st.Syncing)
	require.True(t, st.LastSync.IsZero())
	require.Zero(t, st.Pending)

	_, err = m.Queue(ctx, domain.KindTrip, domain.ActionCreate, testTrip("t1"))
	require.NoError(t, err)
	st, err = m.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.Pending)

	require.NoError(t, m.SyncAll(ctx))
	st, err = m.Status(ctx)
	require.NoError(t, err)
	require.Zero(t, st.Pending)
	require.False(t, st.LastSync.IsZero())
}

func TestRunSyncsOnKick(t *testing.T) {
	gw := newFakeGateway()
	m, _, outbox := newTestManager(t, gw)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := m.Queue(ctx, domain.KindTrip, domain.ActionCreate, testTrip("t1"))
	require.NoError(t, err)

	go m.Run(ctx)
	m.Kick()

	require.Eventually(t, func() bool {
		n, err := outbox.Len(context.Background())
		return err == nil && n == 0
	}, 2*time.Second, 5*time.Millisecond)
	require.Contains(t, gw.trips, "t1")
}
