package domain

import (
	"encoding/hex"
	"errors"
)

// RootSize is the byte length of an anchored digest.
const RootSize = 32

// Root is an opaque integrity digest. The registry anchors it and never
// interprets it.
type Root [RootSize]byte

func ParseRoot(s string) (Root, error) {
	var r Root
	raw, err := hex.DecodeString(s)
	if err != nil {
		return r, errors.New("root must be hex")
	}
	if len(raw) != RootSize {
		return r, errors.New("root must be 32 bytes")
	}
	copy(r[:], raw)
	return r, nil
}

func (r Root) String() string {
	return hex.EncodeToString(r[:])
}

// Validation is a write-once daily integrity record for one agent. At most
// one exists per (identity, day); a second post for the same pair fails.
type Validation struct {
	Identity   Identity
	Validator  Identity
	Day        uint32
	MerkleRoot Root
	Timestamp  int64
	Bump       byte
}

// MerkleAnchor is a write-once digest bound to a plan id. Once anchored the
// root is immutable.
type MerkleAnchor struct {
	PlanID     string
	Root       Root
	AnchoredAt int64
	Authority  Identity
	Bump       byte
}
