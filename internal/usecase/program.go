// Package usecase implements the registry operations. Every operation is a
// single atomic unit submitted to the ledger: the ledger's Execute boundary
// serializes operations on shared addresses, and an operation that fails any
// check commits nothing. Ownership is enforced here, by comparing the
// caller's identity against the stored owner; the storage layer itself has
// no field-level access control.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"registryd/internal/addr"
	"registryd/internal/codec"
	"registryd/internal/domain"
	"registryd/internal/ledger"
)

type Program struct {
	Ledger ledger.Ledger
	Events domain.Publisher
	Policy domain.RegistrationPolicy
	Clock  func() time.Time
}

func New(l ledger.Ledger) *Program {
	return &Program{Ledger: l}
}

func (p *Program) now() int64 {
	if p.Clock != nil {
		return p.Clock().Unix()
	}
	return time.Now().Unix()
}

// publish delivers notifications for a committed operation. Events carry no
// delivery guarantee; a publish failure cannot undo the commit.
func (p *Program) publish(ctx context.Context, events ...domain.Event) {
	if p.Events == nil {
		return
	}
	for _, event := range events {
		_ = p.Events.Publish(ctx, event)
	}
}

func (p *Program) admit(ctx context.Context, input domain.PolicyInput) error {
	if p.Policy == nil {
		return nil
	}
	decision, err := p.Policy.Evaluate(ctx, input)
	if err != nil {
		return fmt.Errorf("evaluate registration policy: %w", err)
	}
	if decision.Allow {
		return nil
	}
	if len(decision.Deny) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrPolicyDenied, decision.Deny[0].Code)
	}
	return domain.ErrPolicyDenied
}

// InitializeRegistry creates the singleton counter record. The derived
// registry address is fixed, so a second call collides and fails.
func (p *Program) InitializeRegistry(ctx context.Context, authority domain.Identity) error {
	a, bump, err := addr.Derive(addr.RegistrySeeds()...)
	if err != nil {
		return err
	}
	return p.Ledger.Execute(ctx, func(tx ledger.Tx) error {
		rec := domain.Registry{Authority: authority, TotalAgents: 0, Bump: bump}
		if err := tx.CreateExclusive(a, codec.EncodeRegistry(rec)); err != nil {
			if errors.Is(err, ledger.ErrAddressOccupied) {
				return domain.ErrAlreadyInitialized
			}
			return err
		}
		return nil
	})
}

func loadRegistry(tx ledger.Tx) (domain.Registry, addr.Address, error) {
	seeds := addr.RegistrySeeds()
	a, _, err := addr.Derive(seeds...)
	if err != nil {
		return domain.Registry{}, addr.Address{}, err
	}
	value, err := tx.Get(a)
	if err != nil {
		if errors.Is(err, ledger.ErrNoRecord) {
			return domain.Registry{}, addr.Address{}, domain.ErrNotFound
		}
		return domain.Registry{}, addr.Address{}, err
	}
	rec, err := codec.DecodeRegistry(value)
	if err != nil {
		return domain.Registry{}, addr.Address{}, err
	}
	if !addr.Verify(a, rec.Bump, seeds...) {
		return domain.Registry{}, addr.Address{}, domain.ErrBadDerivation
	}
	return rec, a, nil
}

func agentSeeds(ref domain.AgentRef) [][]byte {
	if ref.ByIdentity {
		return addr.AgentIdentitySeeds(ref.Identity)
	}
	return addr.AgentSeqSeeds(ref.ID)
}

func loadAgent(tx ledger.Tx, ref domain.AgentRef) (domain.Agent, addr.Address, error) {
	seeds := agentSeeds(ref)
	a, _, err := addr.Derive(seeds...)
	if err != nil {
		return domain.Agent{}, addr.Address{}, err
	}
	value, err := tx.Get(a)
	if err != nil {
		if errors.Is(err, ledger.ErrNoRecord) {
			return domain.Agent{}, addr.Address{}, domain.ErrNotFound
		}
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

// agentKey is the 32-byte segment keying an agent's validations and
// feedback: the external identity when the agent is identity-keyed,
// otherwise the agent's own slot address, which is equally unique.
func agentKey(agent domain.Agent, slot addr.Address) [32]byte {
	if !agent.Identity.IsZero() {
		return agent.Identity
	}
	return slot
}

func checkLen(value string, bound int) error {
	if len(value) > bound {
		return domain.ErrMetadataTooLong
	}
	return nil
}

func checkSkills(skills []string) error {
	if len(skills) > domain.MaxSkills {
		return domain.ErrMetadataTooLong
	}
	for _, skill := range skills {
		if len(skill) > domain.MaxSkillLen {
			return domain.ErrMetadataTooLong
		}
	}
	return nil
}
