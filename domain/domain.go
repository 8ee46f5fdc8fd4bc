// Package domain defines the entity records synchronized by the engine and
// the mutation envelope carried through the outbox.
//
// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies an entity kind on the wire and in the outbox.
type Kind string

const (
	KindTrip      Kind = "trip"
	KindItinerary Kind = "itinerary"
	KindExpense   Kind = "expense"
	KindNote      Kind = "note"
)

// Action identifies what a queued mutation does to its entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ErrValidation marks a payload rejected at a boundary. Callers match it
// with errors.Is.
var ErrValidation = errors.New("validation error")

// Valid reports whether k is one of the four synchronized kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindTrip, KindItinerary, KindExpense, KindNote:
		return true
	}
	return false
}

// Valid reports whether a is a recognized mutation action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Mutation is one outbox entry: a locally made change awaiting confirmation
// at the remote store. Data holds the full entity snapshot for create/update
// and an id-only object for delete. Timestamp is the monotonic enqueue time
// in nanoseconds; entries drain in ascending Timestamp order.
type Mutation struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"type"`
	Action    Action          `json:"action"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Validate rejects mutations with an unknown kind/action tag or no payload.
func (m Mutation) Validate() error {
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: unknown entity kind %q", ErrValidation, string(m.Kind))
	}
	if !m.Action.Valid() {
		return fmt.Errorf("%w: unknown action %q", ErrValidation, string(m.Action))
	}
	if len(m.Data) == 0 {
		return fmt.Errorf("%w: mutation has no payload", ErrValidation)
	}
	return nil
}

// DeleteRef is the payload of a delete mutation: the id alone.
type DeleteRef struct {
	ID string `json:"id"`
}
