package addr

import (
	"bytes"
	"testing"
)

func TestDeriveIsDeterministic(t *testing.T) {
	seeds := AgentSeqSeeds(7)
	a1, bump1, err := Derive(seeds...)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	a2, bump2, err := Derive(seeds...)
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}
	if a1 != a2 || bump1 != bump2 {
		t.Fatalf("derivation not stable: %v/%d vs %v/%d", a1, bump1, a2, bump2)
	}
}

func TestDeriveDistinctTuples(t *testing.T) {
	seen := make(map[Address]string)
	var identity [32]byte
	identity[0] = 0xAA

	tuples := map[string][][]byte{
		"registry":     RegistrySeeds(),
		"agent-0":      AgentSeqSeeds(0),
		"agent-1":      AgentSeqSeeds(1),
		"agent-ident":  AgentIdentitySeeds(identity),
		"validation":   ValidationSeeds(identity, 20260830),
		"validation-2": ValidationSeeds(identity, 20260831),
		"feedback":     FeedbackSeeds(identity, [32]byte{1}),
		"merkle":       MerkleSeeds("plan-1"),
	}
	for name, seeds := range tuples {
		a, _, err := Derive(seeds...)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if prev, ok := seen[a]; ok {
			t.Fatalf("address collision between %s and %s", name, prev)
		}
		seen[a] = name
	}
}

func TestSegmentBoundariesMatter(t *testing.T) {
	a1, _, err := Derive([]byte("ab"), []byte("c"))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	a2, _, err := Derive([]byte("a"), []byte("bc"))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if a1 == a2 {
		t.Fatal("shifting bytes across segment boundaries must change the address")
	}
}

func TestVerify(t *testing.T) {
	seeds := MerkleSeeds("plan-42")
	a, bump, err := Derive(seeds...)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !Verify(a, bump, seeds...) {
		t.Fatal("stored bump did not verify against its own slot")
	}
	if Verify(a, bump, MerkleSeeds("plan-43")...) {
		t.Fatal("verify accepted foreign seeds")
	}
	if Verify(a, bump^0x01, seeds...) {
		t.Fatal("verify accepted a wrong bump")
	}
}

func TestDeriveSkipsReservedCandidates(t *testing.T) {
	seeds := AgentSeqSeeds(3)
	a, bump, err := Derive(seeds...)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if a[0] == 0x00 {
		t.Fatal("derive returned a reserved address")
	}
	// Every bump above the returned one was rejected as reserved.
	for b := 255; b > int(bump); b-- {
		if _, ok := At(byte(b), seeds...); ok {
			t.Fatalf("bump %d is usable but derive returned %d", b, bump)
		}
	}
}

func TestAtReservedRangeIsConsistent(t *testing.T) {
	seeds := [][]byte{[]byte("probe")}
	for b := 0; b < 256; b++ {
		a, ok := At(byte(b), seeds...)
		if ok == (a[0] == 0x00) {
			t.Fatalf("bump %d: usable=%v disagrees with leading byte %#x", b, ok, a[0])
		}
	}
	if !bytes.Equal(seeds[0], []byte("probe")) {
		t.Fatal("At mutated its seeds")
	}
}
