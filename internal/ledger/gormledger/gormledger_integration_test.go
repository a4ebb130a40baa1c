//go:build integration
// +build integration

package gormledger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"registryd/internal/addr"
	"registryd/internal/domain"
	"registryd/internal/ledger"
	"registryd/internal/usecase"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	l, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.db.Exec("TRUNCATE TABLE slots").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return l
}

func TestCreateExclusiveOnce(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	a, _, err := addr.Derive([]byte("slot"), []byte("one"))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	if err := l.Execute(ctx, func(tx ledger.Tx) error {
		return tx.CreateExclusive(a, []byte("first"))
	}); err != nil {
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

func TestExecuteRollsBack(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	a, _, err := addr.Derive([]byte("slot"), []byte("rollback"))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	boom := errors.New("boom")
	err = l.Execute(ctx, func(tx ledger.Tx) error {
		if err := tx.CreateExclusive(a, []byte("staged")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want op error back, got %v", err)
	}
	if _, err := l.Read(ctx, a); !errors.Is(err, ledger.ErrNoRecord) {
		t.Fatalf("aborted create leaked: %v", err)
	}
}

func TestProgramAgainstPostgres(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	p := usecase.New(l)
	p.Clock = func() time.Time { return time.Unix(1767225600, 0) }

	authority := domain.Identity{1}
	if err := p.InitializeRegistry(ctx, authority); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := p.InitializeRegistry(ctx, authority); !errors.Is(err, domain.ErrAlreadyInitialized) {
		t.Fatalf("want ErrAlreadyInitialized, got %v", err)
	}

	owner := domain.Identity{2}
	id, err := p.RegisterAgent(ctx, usecase.RegisterAgentRequest{Owner: owner, Name: "pg-agent"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id != 0 {
		t.Fatalf("first id = %d", id)
	}

	reviewer := domain.Identity{3}
	ref := domain.RefByID(id)
	if err := p.PostFeedback(ctx, reviewer, ref, 75, domain.TagQuality); err != nil {
		t.Fatalf("post feedback: %v", err)
	}
	if err := p.PostFeedback(ctx, reviewer, ref, 25, domain.TagSafety); err != nil {
		t.Fatalf("upsert feedback: %v", err)
	}
	feedback, err := p.GetFeedback(ctx, ref, reviewer)
	if err != nil {
		t.Fatalf("get feedback: %v", err)
	}
	if feedback.Rating != 25 || feedback.Tag != domain.TagSafety {
		t.Fatalf("upsert did not win: %+v", feedback)
	}
}
