package addr

import "encoding/binary"

// Seed tuple layouts, one per record kind. These are the only tuples the
// registry ever derives; keeping them in one place keeps the address space
// auditable.

func RegistrySeeds() [][]byte {
	return [][]byte{[]byte(TagRegistry)}
}

// AgentSeqSeeds keys an agent slot by its sequential id (little-endian u64),
// taken from the registry counter at creation time.
func AgentSeqSeeds(id uint64) [][]byte {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], id)
	return [][]byte{[]byte(TagAgent), le[:]}
}

// AgentIdentitySeeds keys an agent slot by an externally supplied identity.
func AgentIdentitySeeds(identity [32]byte) [][]byte {
	return [][]byte{[]byte(TagAgent), identity[:]}
}

// ValidationSeeds keys a daily validation by agent key and calendar day
// (YYYYMMDD as little-endian u32).
func ValidationSeeds(agentKey [32]byte, day uint32) [][]byte {
	var le [4]byte
	binary.LittleEndian.PutUint32(le[:], day)
	return [][]byte{[]byte(TagValidation), agentKey[:], le[:]}
}

func FeedbackSeeds(agentKey, reviewer [32]byte) [][]byte {
	return [][]byte{[]byte(TagFeedback), agentKey[:], reviewer[:]}
}

func MerkleSeeds(planID string) [][]byte {
	return [][]byte{[]byte(TagMerkle), []byte(planID)}
}
