package domain

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
)

// IdentitySize is the byte length of a caller identity (an ed25519 public key).
const IdentitySize = 32

// Identity is a caller or agent public key. It is the only credential the
// registry knows about: write access to a record is decided by comparing the
// caller's identity against the identity stored at creation time.
type Identity [IdentitySize]byte

func ParseIdentity(s string) (Identity, error) {
	var id Identity
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, errors.New("identity must be hex")
	}
	if len(raw) != IdentitySize {
		return id, errors.New("identity must be 32 bytes")
	}
	copy(id[:], raw)
	return id, nil
}

func IdentityFromPublicKey(pub ed25519.PublicKey) (Identity, error) {
	var id Identity
	if len(pub) != ed25519.PublicKeySize {
		return id, errors.New("invalid ed25519 public key length")
	}
	copy(id[:], pub)
	return id, nil
}

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}
