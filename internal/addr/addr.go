// Package addr derives storage slot addresses from namespace tags and key
// seeds. Derivation is deterministic and injective per namespace: the seed
// tuple is hashed with every segment length-delimited, so distinct tuples
// can never produce the same preimage.
package addr

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// Size is the byte length of a slot address.
const Size = 32

type Address [Size]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Namespace tags. The tag is always the first seed segment, so records of
// different kinds live in disjoint address spaces.
const (
	TagRegistry   = "registry"
	TagAgent      = "agent"
	TagValidation = "validation"
	TagFeedback   = "feedback"
	TagMerkle     = "merkle"
)

const derivePrefix = "registryd:slot:v1"

// ErrNoBump is returned when no bump in 255..0 yields a usable address.
// With a 1/256 rejection rate per candidate this cannot happen in practice.
var ErrNoBump = errors.New("no usable bump for seed tuple")

// Derive finds the highest bump in 255..0 whose candidate address is not
// reserved, and returns the address together with that bump. The bump is the
// derivation proof: it is stored in the record and re-checked on every
// access via Verify.
func Derive(seeds ...[]byte) (Address, byte, error) {
	for bump := 255; bump >= 0; bump-- {
		a, ok := At(byte(bump), seeds...)
		if ok {
			return a, byte(bump), nil
		}
	}
	return Address{}, 0, ErrNoBump
}

// At computes the candidate address for an explicit bump. The second return
// is false when the candidate falls in the reserved range (leading zero
// byte) and must not be used as a slot.
func At(bump byte, seeds ...[]byte) (Address, bool) {
	h := sha256.New()
	h.Write([]byte(derivePrefix))
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(seeds)))
	h.Write(n[:])
	for _, seed := range seeds {
		binary.LittleEndian.PutUint32(n[:], uint32(len(seed)))
		h.Write(n[:])
		h.Write(seed)
	}
	h.Write([]byte{bump})

	var a Address
	h.Sum(a[:0])
	return a, a[0] != 0x00
}

// Verify recomputes the address for a stored bump and checks it against the
// slot actually being accessed. A mismatch means the caller supplied a
// record whose derivation proof points somewhere else.
func Verify(a Address, bump byte, seeds ...[]byte) bool {
	derived, ok := At(bump, seeds...)
	return ok && derived == a
}
