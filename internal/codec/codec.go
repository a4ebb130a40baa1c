// Package codec serializes registry records into their fixed slot layout:
// an 8-byte kind discriminator header, little-endian integers, and
// u32-length-prefixed text and list fields. The header belongs to the
// storage engine, not the domain model; decoding a slot under the wrong
// kind fails instead of misreading fields.
package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"registryd/internal/domain"
)

var (
	ErrTruncated = errors.New("record truncated")
	ErrWrongKind = errors.New("record kind mismatch")
)

// headerSize is the fixed per-record bookkeeping header.
const headerSize = 8

var (
	registryHeader   = kindHeader("registry")
	agentHeader      = kindHeader("agent")
	validationHeader = kindHeader("validation")
	feedbackHeader   = kindHeader("feedback")
	merkleHeader     = kindHeader("merkle_anchor")
)

func kindHeader(kind string) [headerSize]byte {
	sum := sha256.Sum256([]byte("registryd:record:" + kind))
	var h [headerSize]byte
	copy(h[:], sum[:headerSize])
	return h
}

type writer struct {
	buf []byte
}

func newWriter(header [headerSize]byte) *writer {
	w := &writer{buf: make([]byte, 0, 128)}
	w.buf = append(w.buf, header[:]...)
	return w
}

func (w *writer) u8(v byte) { w.buf = append(w.buf, v) }
func (w *writer) u32(v uint32) {
	var le [4]byte
	binary.LittleEndian.PutUint32(le[:], v)
	w.buf = append(w.buf, le[:]...)
}
func (w *writer) u64(v uint64) {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], v)
	w.buf = append(w.buf, le[:]...)
}
func (w *writer) i64(v int64) { w.u64(uint64(v)) }
func (w *writer) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}
func (w *writer) bytes32(v [32]byte) { w.buf = append(w.buf, v[:]...) }
func (w *writer) str(v string) {
	w.u32(uint32(len(v)))
	w.buf = append(w.buf, v...)
}
func (w *writer) strs(v []string) {
	w.u32(uint32(len(v)))
	for _, s := range v {
		w.str(s)
	}
}

type reader struct {
	buf []byte
	off int
	err error
}

func newReader(buf []byte, header [headerSize]byte) *reader {
	r := &reader{buf: buf}
	if len(buf) < headerSize {
		r.err = ErrTruncated
		return r
	}
	var got [headerSize]byte
	copy(got[:], buf[:headerSize])
	if got != header {
		r.err = ErrWrongKind
		return r
	}
	r.off = headerSize
	return r
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = ErrTruncated
		return nil
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out
}

func (r *reader) u8() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}
func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}
func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}
func (r *reader) i64() int64 { return int64(r.u64()) }
func (r *reader) boolean() bool {
	return r.u8() != 0
}
func (r *reader) bytes32() [32]byte {
	var out [32]byte
	b := r.take(32)
	if b != nil {
		copy(out[:], b)
	}
	return out
}
func (r *reader) str() string {
	n := r.u32()
	if r.err == nil && int(n) > len(r.buf)-r.off {
		r.err = ErrTruncated
		return ""
	}
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}
func (r *reader) strs() []string {
	n := r.u32()
	if r.err != nil || n == 0 {
		return nil
	}
	if int(n) > len(r.buf)-r.off {
		r.err = ErrTruncated
		return nil
	}
	out := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		out = append(out, r.str())
		if r.err != nil {
			return nil
		}
	}
	return out
}

func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.buf) {
		return errors.New("record has trailing bytes")
	}
	return nil
}

func EncodeRegistry(rec domain.Registry) []byte {
	w := newWriter(registryHeader)
	w.bytes32(rec.Authority)
	w.u64(rec.TotalAgents)
	w.u8(rec.Bump)
	return w.buf
}

func DecodeRegistry(buf []byte) (domain.Registry, error) {
	r := newReader(buf, registryHeader)
	rec := domain.Registry{
		Authority:   r.bytes32(),
		TotalAgents: r.u64(),
		Bump:        r.u8(),
	}
	return rec, r.finish()
}

func EncodeAgent(rec domain.Agent) []byte {
	w := newWriter(agentHeader)
	w.u64(rec.ID)
	w.bytes32(rec.Identity)
	w.str(rec.Name)
	w.str(rec.Description)
	w.str(rec.Version)
	w.strs(rec.Skills)
	w.str(rec.MetadataURI)
	w.bytes32(rec.Owner)
	w.i64(rec.CreatedAt)
	w.i64(rec.UpdatedAt)
	w.boolean(rec.IsActive)
	w.u8(rec.Bump)
	return w.buf
}

func DecodeAgent(buf []byte) (domain.Agent, error) {
	r := newReader(buf, agentHeader)
	rec := domain.Agent{
		ID:          r.u64(),
		Identity:    r.bytes32(),
		Name:        r.str(),
		Description: r.str(),
		Version:     r.str(),
		Skills:      r.strs(),
		MetadataURI: r.str(),
		Owner:       r.bytes32(),
		CreatedAt:   r.i64(),
		UpdatedAt:   r.i64(),
		IsActive:    r.boolean(),
		Bump:        r.u8(),
	}
	return rec, r.finish()
}

func EncodeValidation(rec domain.Validation) []byte {
	w := newWriter(validationHeader)
	w.bytes32(rec.Identity)
	w.bytes32(rec.Validator)
	w.u32(rec.Day)
	w.bytes32(rec.MerkleRoot)
	w.i64(rec.Timestamp)
	w.u8(rec.Bump)
	return w.buf
}

func DecodeValidation(buf []byte) (domain.Validation, error) {
	r := newReader(buf, validationHeader)
	rec := domain.Validation{
		Identity:   r.bytes32(),
		Validator:  r.bytes32(),
		Day:        r.u32(),
		MerkleRoot: r.bytes32(),
		Timestamp:  r.i64(),
		Bump:       r.u8(),
	}
	return rec, r.finish()
}

func EncodeFeedback(rec domain.Feedback) []byte {
	w := newWriter(feedbackHeader)
	w.bytes32(rec.Identity)
	w.bytes32(rec.Reviewer)
	w.u8(rec.Rating)
	w.u8(rec.Tag)
	w.i64(rec.Timestamp)
	w.u8(rec.Bump)
	return w.buf
}

func DecodeFeedback(buf []byte) (domain.Feedback, error) {
	r := newReader(buf, feedbackHeader)
	rec := domain.Feedback{
		Identity:  r.bytes32(),
		Reviewer:  r.bytes32(),
		Rating:    r.u8(),
		Tag:       r.u8(),
		Timestamp: r.i64(),
		Bump:      r.u8(),
	}
	return rec, r.finish()
}

func EncodeMerkleAnchor(rec domain.MerkleAnchor) []byte {
	w := newWriter(merkleHeader)
	w.str(rec.PlanID)
	w.bytes32(rec.Root)
	w.i64(rec.AnchoredAt)
	w.bytes32(rec.Authority)
	w.u8(rec.Bump)
	return w.buf
}

func DecodeMerkleAnchor(buf []byte) (domain.MerkleAnchor, error) {
	r := newReader(buf, merkleHeader)
	rec := domain.MerkleAnchor{
		PlanID:     r.str(),
		Root:       r.bytes32(),
		AnchoredAt: r.i64(),
		Authority:  r.bytes32(),
		Bump:       r.u8(),
	}
	return rec, r.finish()
}
