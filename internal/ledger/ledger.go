// Package ledger defines the key-addressed record store the registry runs
// on. The store does not interpret record bytes and enforces no field-level
// access control; it guarantees create-exactly-once per address and that
// every Execute is one serialized, all-or-nothing unit.
package ledger

import (
	"context"
	"errors"

	"registryd/internal/addr"
)

var (
	// ErrAddressOccupied is the create-exactly-once conflict: a record
	// already exists at the derived address. Non-retriable for the same key.
	ErrAddressOccupied = errors.New("address already occupied")

	// ErrNoRecord is returned by reads and updates of an empty slot.
	ErrNoRecord = errors.New("no record at address")
)

// Tx is the view of the store inside one operation. All writes staged
// through a Tx become visible together when the operation returns nil, and
// not at all otherwise.
type Tx interface {
	// CreateExclusive writes a new record, failing with ErrAddressOccupied
	// if the slot already holds one.
	CreateExclusive(a addr.Address, value []byte) error

	// Get returns the record bytes at a slot, or ErrNoRecord.
	Get(a addr.Address) ([]byte, error)

	// Put replaces an existing record in place, or fails with ErrNoRecord.
	Put(a addr.Address, value []byte) error
}

// Ledger serializes operations touching the store. Operations never observe
// each other's partial writes.
type Ledger interface {
	Execute(ctx context.Context, op func(tx Tx) error) error

	// Read fetches a single record outside any operation.
	Read(ctx context.Context, a addr.Address) ([]byte, error)
}
