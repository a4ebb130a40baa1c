// Package eventlog keeps a hash-chained, append-only journal of committed
// registry events. Each entry binds its payload hash and the previous entry
// hash into its own hash, so any rewrite of history is detectable.
package eventlog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"registryd/internal/domain"
)

const chainVersion = "v1"

type Entry struct {
	Seq         int64            `json:"seq"`
	Kind        domain.EventKind `json:"kind"`
	At          int64            `json:"at"`
	Payload     json.RawMessage  `json:"payload"`
	PayloadHash string           `json:"payload_hash"`
	PrevHash    string           `json:"prev_hash"`
	Hash        string           `json:"hash"`
	CreatedAt   time.Time        `json:"created_at"`
}

type Journal struct {
	mu      sync.Mutex
	entries []Entry
	clock   func() time.Time
}

func New() *Journal {
	return &Journal{clock: time.Now}
}

func NewWithClock(clock func() time.Time) *Journal {
	if clock == nil {
		clock = time.Now
	}
	return &Journal{clock: clock}
}

// Publish appends the event to the chain. Journal implements
// domain.Publisher.
func (j *Journal) Publish(_ context.Context, event domain.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	prev := zeroHash()
	if n := len(j.entries); n > 0 {
		prev = j.entries[n-1].Hash
	}
	entry := Entry{
		Seq:         int64(len(j.entries)) + 1,
		Kind:        event.Kind,
		At:          event.At,
		Payload:     payload,
		PayloadHash: sha256Hex(payload),
		PrevHash:    prev,
		CreatedAt:   j.clock().UTC(),
	}
	entry.Hash = entryHash(entry)
	j.entries = append(j.entries, entry)
	return nil
}

// Entries returns a snapshot of the journal.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// VerifyChain walks a journal snapshot and reports the first break in the
// hash chain.
func VerifyChain(entries []Entry) error {
	expectedSeq := int64(1)
	prev := zeroHash()
	for _, entry := range entries {
		if entry.Seq != expectedSeq {
			return fmt.Errorf("event chain seq mismatch: expected %d got %d", expectedSeq, entry.Seq)
		}
		if entry.PrevHash != prev {
			return fmt.Errorf("event chain prev hash mismatch at seq %d", entry.Seq)
		}
		if sha256Hex(entry.Payload) != entry.PayloadHash {
			return fmt.Errorf("event chain payload hash mismatch at seq %d", entry.Seq)
		}
		if entryHash(entry) != entry.Hash {
			return fmt.Errorf("event chain hash mismatch at seq %d", entry.Seq)
		}
		prev = entry.Hash
		expectedSeq++
	}
	return nil
}

type chainPreimage struct {
	Version     string `json:"version"`
	Seq         int64  `json:"seq"`
	Kind        string `json:"kind"`
	At          int64  `json:"at"`
	PayloadHash string `json:"payload_hash"`
	PrevHash    string `json:"prev_hash"`
}

func entryHash(entry Entry) string {
	preimage, _ := json.Marshal(chainPreimage{
		Version:     chainVersion,
		Seq:         entry.Seq,
		Kind:        string(entry.Kind),
		At:          entry.At,
		PayloadHash: entry.PayloadHash,
		PrevHash:    entry.PrevHash,
	})
	return sha256Hex(preimage)
}

func sha256Hex(input []byte) string {
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:])
}

func zeroHash() string {
	return hex.EncodeToString(make([]byte, sha256.Size))
}

// Fanout delivers each event to every publisher, keeping the first error.
type Fanout []domain.Publisher

func (f Fanout) Publish(ctx context.Context, event domain.Event) error {
	var first error
	for _, pub := range f {
		if pub == nil {
			continue
		}
		if err := pub.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
