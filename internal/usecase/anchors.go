package usecase

import (
	"context"
	"errors"

	"registryd/internal/addr"
	"registryd/internal/codec"
	"registryd/internal/domain"
	"registryd/internal/ledger"
)

// PostValidation anchors a daily integrity digest for an agent. Any caller
// may validate; trust in the validator is deferred to off-ledger reputation.
// The (agent, day) address is fixed, so a second post for the same day
// fails instead of replacing the audit trail.
func (p *Program) PostValidation(ctx context.Context, validator domain.Identity, ref domain.AgentRef, day uint32, root domain.Root) error {
	var posted domain.Event
	err := p.Ledger.Execute(ctx, func(tx ledger.Tx) error {
		agent, agentAddr, err := loadAgent(tx, ref)
		if err != nil {
			return err
		}
		key := agentKey(agent, agentAddr)
		seeds := addr.ValidationSeeds(key, day)
		validationAddr, bump, err := addr.Derive(seeds...)
		if err != nil {
			return err
		}
		rec := domain.Validation{
			Identity:   key,
			Validator:  validator,
			Day:        day,
			MerkleRoot: root,
			Timestamp:  p.now(),
			Bump:       bump,
		}
		if err := tx.CreateExclusive(validationAddr, codec.EncodeValidation(rec)); err != nil {
			if errors.Is(err, ledger.ErrAddressOccupied) {
				return domain.ErrDuplicateValidation
			}
			return err
		}
		posted = domain.NewValidationPosted(rec.Timestamp, validator, ref, day, root)
		return nil
	})
	if err != nil {
		return err
	}
	p.publish(ctx, posted)
	return nil
}

// AnchorMerkleRoot binds an opaque digest to a plan id, exactly once. This
// is the tamper-evidence primitive: whatever computed the root can later
// prove it was anchored, and nothing can silently replace it.
func (p *Program) AnchorMerkleRoot(ctx context.Context, authority domain.Identity, planID string, root domain.Root) error {
	if planID == "" {
		return errors.New("plan id is required")
	}
	if err := checkLen(planID, domain.MaxPlanIDLen); err != nil {
		return err
	}
	seeds := addr.MerkleSeeds(planID)
	anchorAddr, bump, err := addr.Derive(seeds...)
	if err != nil {
		return err
	}
	var anchored domain.Event
	err = p.Ledger.Execute(ctx, func(tx ledger.Tx) error {
		rec := domain.MerkleAnchor{
			PlanID:     planID,
			Root:       root,
			AnchoredAt: p.now(),
			Authority:  authority,
			Bump:       bump,
		}
		if err := tx.CreateExclusive(anchorAddr, codec.EncodeMerkleAnchor(rec)); err != nil {
			if errors.Is(err, ledger.ErrAddressOccupied) {
				return domain.ErrDuplicateAnchor
			}
			return err
		}
		anchored = domain.NewMerkleRootAnchored(rec.AnchoredAt, authority, planID, root)
		return nil
	})
	if err != nil {
		return err
	}
	p.publish(ctx, anchored)
	return nil
}
