package codec

import (
	"errors"
	"reflect"
	"testing"

	"registryd/internal/domain"
)

func TestAgentRoundTrip(t *testing.T) {
	in := domain.Agent{
		ID:          41,
		Name:        "translator",
		Description: "translates natural language task plans",
		Version:     "1.4.0",
		Skills:      []string{"translate", "summarize"},
		Owner:       domain.Identity{0x01, 0x02},
		CreatedAt:   1767225600,
		UpdatedAt:   1767312000,
		IsActive:    true,
		Bump:        254,
	}
	out, err := DecodeAgent(EncodeAgent(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in  %+v\n out %+v", in, out)
	}
}

func TestAgentRoundTripIdentityVariant(t *testing.T) {
	in := domain.Agent{
		Identity:    domain.Identity{0xAA, 0xBB},
		MetadataURI: "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		Owner:       domain.Identity{0x07},
		CreatedAt:   1767225600,
		UpdatedAt:   1767225600,
		IsActive:    true,
		Bump:        251,
	}
	out, err := DecodeAgent(EncodeAgent(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in  %+v\n out %+v", in, out)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	in := domain.Registry{Authority: domain.Identity{0xFF}, TotalAgents: 12, Bump: 255}
	out, err := DecodeRegistry(EncodeRegistry(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", in, out)
	}
}

func TestValidationRoundTrip(t *testing.T) {
	in := domain.Validation{
		Identity:   domain.Identity{0x11},
		Validator:  domain.Identity{0x22},
		Day:        20260830,
		MerkleRoot: domain.Root{0x33},
		Timestamp:  1767225600,
		Bump:       250,
	}
	out, err := DecodeValidation(EncodeValidation(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", in, out)
	}
}

func TestWrongKindRejected(t *testing.T) {
	buf := EncodeFeedback(domain.Feedback{Reviewer: domain.Identity{1}, Rating: 50})
	if _, err := DecodeValidation(buf); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("want ErrWrongKind, got %v", err)
	}
	if _, err := DecodeRegistry(buf); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("want ErrWrongKind, got %v", err)
	}
}

func TestTruncatedRejected(t *testing.T) {
	buf := EncodeMerkleAnchor(domain.MerkleAnchor{PlanID: "p-1", Root: domain.Root{9}, AnchoredAt: 1})
	for _, cut := range []int{len(buf) - 1, len(buf) / 2, headerSize, 3} {
		if _, err := DecodeMerkleAnchor(buf[:cut]); err == nil {
			t.Fatalf("decode of %d/%d bytes succeeded", cut, len(buf))
		}
	}
}

func TestTrailingBytesRejected(t *testing.T) {
	buf := EncodeFeedback(domain.Feedback{Rating: 10, Tag: domain.TagQuality})
	buf = append(buf, 0x00)
	if _, err := DecodeFeedback(buf); err == nil {
		t.Fatal("decode accepted trailing bytes")
	}
}

func TestKindHeadersAreDistinct(t *testing.T) {
	headers := [][8]byte{registryHeader, agentHeader, validationHeader, feedbackHeader, merkleHeader}
	for i := range headers {
		for j := i + 1; j < len(headers); j++ {
			if headers[i] == headers[j] {
				t.Fatalf("headers %d and %d collide", i, j)
			}
		}
	}
}
