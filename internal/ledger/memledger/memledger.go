// Package memledger is the in-memory record store: a mutex-serialized map
// of slots with overlay staging, so a failed operation leaves no trace.
package memledger

import (
	"context"
	"sync"

	"registryd/internal/addr"
	"registryd/internal/ledger"
)

type Ledger struct {
	mu    sync.Mutex
	slots map[addr.Address][]byte
}

func New() *Ledger {
	return &Ledger{slots: make(map[addr.Address][]byte)}
}

func (l *Ledger) Execute(ctx context.Context, op func(tx ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &memTx{base: l.slots, stage: make(map[addr.Address][]byte)}
	if err := op(tx); err != nil {
		return err
	}
	for a, v := range tx.stage {
		l.slots[a] = v
	}
	return nil
}

func (l *Ledger) Read(ctx context.Context, a addr.Address) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	value, ok := l.slots[a]
	if !ok {
		return nil, ledger.ErrNoRecord
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Len reports the number of occupied slots.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

type memTx struct {
	base  map[addr.Address][]byte
	stage map[addr.Address][]byte
}

func (tx *memTx) CreateExclusive(a addr.Address, value []byte) error {
	if _, ok := tx.stage[a]; ok {
		return ledger.ErrAddressOccupied
	}
	if _, ok := tx.base[a]; ok {
		return ledger.ErrAddressOccupied
	}
	tx.stage[a] = clone(value)
	return nil
}

func (tx *memTx) Get(a addr.Address) ([]byte, error) {
	if value, ok := tx.stage[a]; ok {
		return clone(value), nil
	}
	if value, ok := tx.base[a]; ok {
		return clone(value), nil
	}
	return nil, ledger.ErrNoRecord
}

func (tx *memTx) Put(a addr.Address, value []byte) error {
	if _, ok := tx.stage[a]; !ok {
		if _, ok := tx.base[a]; !ok {
			return ledger.ErrNoRecord
		}
	}
	tx.stage[a] = clone(value)
	return nil
}

func clone(value []byte) []byte {
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
