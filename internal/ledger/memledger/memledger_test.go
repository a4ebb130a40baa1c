package memledger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"registryd/internal/addr"
	"registryd/internal/ledger"
)

func mustDerive(t *testing.T, seeds ...[]byte) addr.Address {
	t.Helper()
	a, _, err := addr.Derive(seeds...)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	return a
}

func TestCreateExclusiveOnce(t *testing.T) {
	l := New()
	ctx := context.Background()
	a := mustDerive(t, []byte("slot"), []byte("one"))

	err := l.Execute(ctx, func(tx ledger.Tx) error {
		return tx.CreateExclusive(a, []byte("first"))
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	err = l.Execute(ctx, func(tx ledger.Tx) error {
		return tx.CreateExclusive(a, []byte("second"))
	})
	if !errors.Is(err, ledger.ErrAddressOccupied) {
		t.Fatalf("want ErrAddressOccupied, got %v", err)
	}

	value, err := l.Read(ctx, a)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(value, []byte("first")) {
		t.Fatalf("loser overwrote the slot: %q", value)
	}
}

func TestExecuteRollsBackOnError(t *testing.T) {
	l := New()
	ctx := context.Background()
	a := mustDerive(t, []byte("slot"), []byte("a"))
	b := mustDerive(t, []byte("slot"), []byte("b"))

	if err := l.Execute(ctx, func(tx ledger.Tx) error {
		return tx.CreateExclusive(a, []byte("kept"))
	}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	boom := errors.New("boom")
	err := l.Execute(ctx, func(tx ledger.Tx) error {
		if err := tx.Put(a, []byte("mutated")); err != nil {
			return err
		}
		if err := tx.CreateExclusive(b, []byte("new")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want op error back, got %v", err)
	}

	value, err := l.Read(ctx, a)
	if err != nil {
		t.Fatalf("read a: %v", err)
	}
	if !bytes.Equal(value, []byte("kept")) {
		t.Fatalf("failed op leaked a write: %q", value)
	}
	if _, err := l.Read(ctx, b); !errors.Is(err, ledger.ErrNoRecord) {
		t.Fatalf("failed op leaked a create: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("slot count = %d, want 1", l.Len())
	}
}

func TestGetSeesStagedWrites(t *testing.T) {
	l := New()
	ctx := context.Background()
	a := mustDerive(t, []byte("slot"), []byte("staged"))

	err := l.Execute(ctx, func(tx ledger.Tx) error {
		if err := tx.CreateExclusive(a, []byte("v1")); err != nil {
			return err
		}
		value, err := tx.Get(a)
		if err != nil {
			return err
		}
		if !bytes.Equal(value, []byte("v1")) {
			t.Fatalf("staged create invisible: %q", value)
		}
		if err := tx.Put(a, []byte("v2")); err != nil {
			return err
		}
		value, err = tx.Get(a)
		if err != nil {
			return err
		}
		if !bytes.Equal(value, []byte("v2")) {
			t.Fatalf("staged put invisible: %q", value)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestPutUnknownAddress(t *testing.T) {
	l := New()
	a := mustDerive(t, []byte("slot"), []byte("missing"))
	err := l.Execute(context.Background(), func(tx ledger.Tx) error {
		return tx.Put(a, []byte("x"))
	})
	if !errors.Is(err, ledger.ErrNoRecord) {
		t.Fatalf("want ErrNoRecord, got %v", err)
	}
}

func TestReadReturnsCopy(t *testing.T) {
	l := New()
	ctx := context.Background()
	a := mustDerive(t, []byte("slot"), []byte("copy"))
	if err := l.Execute(ctx, func(tx ledger.Tx) error {
		return tx.CreateExclusive(a, []byte("stable"))
	}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	value, err := l.Read(ctx, a)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	value[0] = 'X'
	again, err := l.Read(ctx, a)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(again, []byte("stable")) {
		t.Fatalf("caller mutation reached the store: %q", again)
	}
}
