package domain

// MaxRating is the inclusive upper bound for a feedback rating.
const MaxRating = 100

// Well-known feedback category codes. The registry stores whatever code the
// reviewer supplies; these are conventions, not an enforced enum.
const (
	TagGeneral     byte = 0
	TagQuality     byte = 1
	TagReliability byte = 2
	TagSafety      byte = 3
)

// Feedback is one reviewer's rating of one agent. Unlike every other record
// it is an upsert: a second post from the same reviewer overwrites rating,
// tag and timestamp in place.
type Feedback struct {
	Identity  Identity
	Reviewer  Identity
	Rating    uint8
	Tag       byte
	Timestamp int64
	Bump      byte
}
