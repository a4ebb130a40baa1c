package usecase

import (
	"context"
	"errors"

	"registryd/internal/addr"
	"registryd/internal/codec"
	"registryd/internal/domain"
	"registryd/internal/ledger"
)

type RegisterAgentRequest struct {
	Owner       domain.Identity
	Name        string
	Description string
	Version     string
	Skills      []string
}

// RegisterAgent creates an agent under the sequential-id scheme. The counter
// read, the agent create at the id-derived address, and the counter
// increment are one ledger operation, so two racing registrations are
// resolved by the ledger's total order: the loser observes either the next
// counter value (and lands on a different address) or an occupied slot.
func (p *Program) RegisterAgent(ctx context.Context, req RegisterAgentRequest) (uint64, error) {
	if err := checkLen(req.Name, domain.MaxNameLen); err != nil {
		return 0, err
	}
	if err := checkLen(req.Description, domain.MaxDescriptionLen); err != nil {
		return 0, err
	}
	if err := checkLen(req.Version, domain.MaxVersionLen); err != nil {
		return 0, err
	}
	if err := checkSkills(req.Skills); err != nil {
		return 0, err
	}
	if err := p.admit(ctx, domain.PolicyInput{
		Operation: "register_agent",
		Owner:     req.Owner.String(),
		Name:      req.Name,
		Version:   req.Version,
		Skills:    req.Skills,
	}); err != nil {
		return 0, err
	}

	var registered domain.Event
	var id uint64
	err := p.Ledger.Execute(ctx, func(tx ledger.Tx) error {
		registry, registryAddr, err := loadRegistry(tx)
		if err != nil {
			return err
		}
		id = registry.TotalAgents

		seeds := addr.AgentSeqSeeds(id)
		agentAddr, bump, err := addr.Derive(seeds...)
		if err != nil {
			return err
		}
		now := p.now()
		agent := domain.Agent{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Version:     req.Version,
			Skills:      req.Skills,
			Owner:       req.Owner,
			CreatedAt:   now,
			UpdatedAt:   now,
			IsActive:    true,
			Bump:        bump,
		}
		if err := tx.CreateExclusive(agentAddr, codec.EncodeAgent(agent)); err != nil {
			if errors.Is(err, ledger.ErrAddressOccupied) {
				return domain.ErrDuplicateAgent
			}
			return err
		}

		registry.TotalAgents++
		if err := tx.Put(registryAddr, codec.EncodeRegistry(registry)); err != nil {
			return err
		}
		registered = domain.NewAgentRegistered(now, req.Owner, id, domain.Identity{}, req.Name)
		return nil
	})
	if err != nil {
		return 0, err
	}
	p.publish(ctx, registered)
	return id, nil
}

type RegisterIdentityRequest struct {
	Owner       domain.Identity
	Identity    domain.Identity
	MetadataURI string
}

// RegisterIdentity creates an agent under the identity-keyed scheme. The
// identity is the dedup key: registering it twice fails on the occupied
// address. The registry counter is not involved.
func (p *Program) RegisterIdentity(ctx context.Context, req RegisterIdentityRequest) error {
	if req.Identity.IsZero() {
		return errors.New("identity is required")
	}
	if err := checkLen(req.MetadataURI, domain.MaxMetadataURILen); err != nil {
		return err
	}
	if err := p.admit(ctx, domain.PolicyInput{
		Operation:   "register_identity",
		Owner:       req.Owner.String(),
		Identity:    req.Identity.String(),
		MetadataURI: req.MetadataURI,
	}); err != nil {
		return err
	}

	seeds := addr.AgentIdentitySeeds(req.Identity)
	agentAddr, bump, err := addr.Derive(seeds...)
	if err != nil {
		return err
	}
	var registered domain.Event
	err = p.Ledger.Execute(ctx, func(tx ledger.Tx) error {
		now := p.now()
		agent := domain.Agent{
			Identity:    req.Identity,
			MetadataURI: req.MetadataURI,
			Owner:       req.Owner,
			CreatedAt:   now,
			UpdatedAt:   now,
			IsActive:    true,
			Bump:        bump,
		}
		if err := tx.CreateExclusive(agentAddr, codec.EncodeAgent(agent)); err != nil {
			if errors.Is(err, ledger.ErrAddressOccupied) {
				return domain.ErrDuplicateAgent
			}
			return err
		}
		registered = domain.NewAgentRegistered(now, req.Owner, 0, req.Identity, "")
		return nil
	})
	if err != nil {
		return err
	}
	p.publish(ctx, registered)
	return nil
}

// UpdateAgent applies a sparse patch to the caller's agent. Fields absent
// from the patch are untouched; key fields, owner and activity state are not
// patchable at all.
func (p *Program) UpdateAgent(ctx context.Context, caller domain.Identity, ref domain.AgentRef, patch domain.AgentPatch) error {
	if patch.Name != nil {
		if err := checkLen(*patch.Name, domain.MaxNameLen); err != nil {
			return err
		}
	}
	if patch.Description != nil {
		if err := checkLen(*patch.Description, domain.MaxDescriptionLen); err != nil {
			return err
		}
	}
	if patch.Version != nil {
		if err := checkLen(*patch.Version, domain.MaxVersionLen); err != nil {
			return err
		}
	}
	if patch.Skills != nil {
		if err := checkSkills(*patch.Skills); err != nil {
			return err
		}
	}
	if patch.MetadataURI != nil {
		if err := checkLen(*patch.MetadataURI, domain.MaxMetadataURILen); err != nil {
			return err
		}
	}

	var updated domain.Event
	err := p.Ledger.Execute(ctx, func(tx ledger.Tx) error {
		agent, agentAddr, err := loadAgent(tx, ref)
		if err != nil {
			return err
		}
		if agent.Owner != caller {
			return domain.ErrUnauthorized
		}
		if patch.Name != nil {
			agent.Name = *patch.Name
		}
		if patch.Description != nil {
			agent.Description = *patch.Description
		}
		if patch.Version != nil {
			agent.Version = *patch.Version
		}
		if patch.Skills != nil {
			agent.Skills = *patch.Skills
		}
		if patch.MetadataURI != nil {
			agent.MetadataURI = *patch.MetadataURI
		}
		agent.UpdatedAt = p.now()
		if err := tx.Put(agentAddr, codec.EncodeAgent(agent)); err != nil {
			return err
		}
		updated = domain.NewAgentUpdated(agent.UpdatedAt, agent.Owner, ref)
		return nil
	})
	if err != nil {
		return err
	}
	p.publish(ctx, updated)
	return nil
}

// DeactivateAgent is the one-way Active -> Inactive transition. There is no
// reactivation operation.
func (p *Program) DeactivateAgent(ctx context.Context, caller domain.Identity, ref domain.AgentRef) error {
	var deactivated domain.Event
	err := p.Ledger.Execute(ctx, func(tx ledger.Tx) error {
		agent, agentAddr, err := loadAgent(tx, ref)
		if err != nil {
			return err
		}
		if agent.Owner != caller {
			return domain.ErrUnauthorized
		}
		agent.IsActive = false
		agent.UpdatedAt = p.now()
		if err := tx.Put(agentAddr, codec.EncodeAgent(agent)); err != nil {
			return err
		}
		deactivated = domain.NewAgentDeactivated(agent.UpdatedAt, agent.Owner, ref)
		return nil
	})
	if err != nil {
		return err
	}
	p.publish(ctx, deactivated)
	return nil
}
