package usecase

import (
	"context"
	"errors"

	"registryd/internal/addr"
	"registryd/internal/codec"
	"registryd/internal/domain"
	"registryd/internal/ledger"
)

// Read-side lookups. Each fetch re-verifies the stored derivation proof
// against the slot actually read.

func (p *Program) GetRegistry(ctx context.Context) (domain.Registry, error) {
	seeds := addr.RegistrySeeds()
	value, a, err := p.readSlot(ctx, seeds)
	if err != nil {
		return domain.Registry{}, err
	}
	rec, err := codec.DecodeRegistry(value)
	if err != nil {
		return domain.Registry{}, err
	}
	if !addr.Verify(a, rec.Bump, seeds...) {
		return domain.Registry{}, domain.ErrBadDerivation
	}
	return rec, nil
}

func (p *Program) GetAgent(ctx context.Context, ref domain.AgentRef) (domain.Agent, error) {
	agent, _, err := p.readAgent(ctx, ref)
	return agent, err
}

func (p *Program) GetValidation(ctx context.Context, ref domain.AgentRef, day uint32) (domain.Validation, error) {
	agent, agentAddr, err := p.readAgent(ctx, ref)
	if err != nil {
		return domain.Validation{}, err
	}
	seeds := addr.ValidationSeeds(agentKey(agent, agentAddr), day)
	value, a, err := p.readSlot(ctx, seeds)
	if err != nil {
		return domain.Validation{}, err
	}
	rec, err := codec.DecodeValidation(value)
	if err != nil {
		return domain.Validation{}, err
	}
	if !addr.Verify(a, rec.Bump, seeds...) {
		return domain.Validation{}, domain.ErrBadDerivation
	}
	return rec, nil
}

func (p *Program) GetFeedback(ctx context.Context, ref domain.AgentRef, reviewer domain.Identity) (domain.Feedback, error) {
	agent, agentAddr, err := p.readAgent(ctx, ref)
	if err != nil {
		return domain.Feedback{}, err
	}
	seeds := addr.FeedbackSeeds(agentKey(agent, agentAddr), reviewer)
	value, a, err := p.readSlot(ctx, seeds)
	if err != nil {
		return domain.Feedback{}, err
	}
	rec, err := codec.DecodeFeedback(value)
	if err != nil {
		return domain.Feedback{}, err
	}
	if !addr.Verify(a, rec.Bump, seeds...) {
		return domain.Feedback{}, domain.ErrBadDerivation
	}
	return rec, nil
}

func (p *Program) GetMerkleAnchor(ctx context.Context, planID string) (domain.MerkleAnchor, error) {
	seeds := addr.MerkleSeeds(planID)
	value, a, err := p.readSlot(ctx, seeds)
	if err != nil {
		return domain.MerkleAnchor{}, err
	}
	rec, err := codec.DecodeMerkleAnchor(value)
	if err != nil {
		return domain.MerkleAnchor{}, err
	}
	if !addr.Verify(a, rec.Bump, seeds...) {
		return domain.MerkleAnchor{}, domain.ErrBadDerivation
	}
	return rec, nil
}

func (p *Program) readAgent(ctx context.Context, ref domain.AgentRef) (domain.Agent, addr.Address, error) {
	seeds := agentSeeds(ref)
	value, a, err := p.readSlot(ctx, seeds)
	if err != nil {
		return domain.Agent{}, addr.Address{}, err
	}
	rec, err := codec.DecodeAgent(value)
	if err != nil {
		return domain.Agent{}, addr.Address{}, err
	}
	if !addr.Verify(a, rec.Bump, seeds...) {
		return domain.Agent{}, addr.Address{}, domain.ErrBadDerivation
	}
	return rec, a, nil
}

func (p *Program) readSlot(ctx context.Context, seeds [][]byte) ([]byte, addr.Address, error) {
	a, _, err := addr.Derive(seeds...)
	if err != nil {
		return nil, addr.Address{}, err
	}
	value, err := p.Ledger.Read(ctx, a)
	if err != nil {
		if errors.Is(err, ledger.ErrNoRecord) {
			return nil, addr.Address{}, domain.ErrNotFound
		}
		return nil, addr.Address{}, err
	}
	return value, a, nil
}
