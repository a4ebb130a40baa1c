package usecase

import (
	"context"
	"errors"

	"registryd/internal/addr"
	"registryd/internal/codec"
	"registryd/internal/domain"
	"registryd/internal/ledger"
)

// PostFeedback records one reviewer's rating of one agent. This is the only
// upsert in the system: the first post creates the record, later posts from
// the same reviewer overwrite rating, tag and timestamp in place.
func (p *Program) PostFeedback(ctx context.Context, reviewer domain.Identity, ref domain.AgentRef, rating uint8, tag byte) error {
	if rating > domain.MaxRating {
		return domain.ErrBadRating
	}
	var posted domain.Event
	err := p.Ledger.Execute(ctx, func(tx ledger.Tx) error {
		agent, agentAddr, err := loadAgent(tx, ref)
		if err != nil {
			return err
		}
		key := agentKey(agent, agentAddr)
		seeds := addr.FeedbackSeeds(key, reviewer)
		feedbackAddr, bump, err := addr.Derive(seeds...)
		if err != nil {
			return err
		}
		now := p.now()
		existing, err := tx.Get(feedbackAddr)
		switch {
		case errors.Is(err, ledger.ErrNoRecord):
			rec := domain.Feedback{
				Identity:  key,
				Reviewer:  reviewer,
				Rating:    rating,
				Tag:       tag,
				Timestamp: now,
				Bump:      bump,
			}
			if err := tx.CreateExclusive(feedbackAddr, codec.EncodeFeedback(rec)); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			rec, err := codec.DecodeFeedback(existing)
			if err != nil {
				return err
			}
			if !addr.Verify(feedbackAddr, rec.Bump, seeds...) {
				return domain.ErrBadDerivation
			}
			rec.Rating = rating
			rec.Tag = tag
			rec.Timestamp = now
			if err := tx.Put(feedbackAddr, codec.EncodeFeedback(rec)); err != nil {
				return err
			}
		}
		posted = domain.NewFeedbackPosted(now, reviewer, ref, rating, tag)
		return nil
	})
	if err != nil {
		return err
	}
	p.publish(ctx, posted)
	return nil
}
