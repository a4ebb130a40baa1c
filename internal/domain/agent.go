package domain

// Length bounds for agent text fields. Oversized input is rejected with
// ErrMetadataTooLong before anything is written.
const (
	MaxNameLen        = 64
	MaxDescriptionLen = 256
	MaxVersionLen     = 32
	MaxSkillLen       = 32
	MaxSkills         = 16
	MaxMetadataURILen = 200
	MaxPlanIDLen      = 64
)

// Registry is the singleton counter record. TotalAgents only grows, by one
// per successful sequential-id registration.
type Registry struct {
	Authority   Identity
	TotalAgents uint64
	Bump        byte
}

// Agent is a registered agent record. Exactly one of the two key fields is
// meaningful: ID for the sequential-id addressing variant, Identity for the
// identity-keyed variant. Owner and the key fields never change after
// creation; IsActive only ever transitions true -> false.
type Agent struct {
	ID          uint64
	Identity    Identity
	Name        string
	Description string
	Version     string
	Skills      []string
	MetadataURI string
	Owner       Identity
	CreatedAt   int64
	UpdatedAt   int64
	IsActive    bool
	Bump        byte
}

// AgentPatch is a sparse update: only non-nil fields are applied.
type AgentPatch struct {
	Name        *string
	Description *string
	Version     *string
	Skills      *[]string
	MetadataURI *string
}

// Empty reports whether the patch changes nothing.
func (p AgentPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Version == nil &&
		p.Skills == nil && p.MetadataURI == nil
}

// AgentRef names an agent by whichever key its addressing variant uses.
type AgentRef struct {
	ByIdentity bool
	ID         uint64
	Identity   Identity
}

func RefByID(id uint64) AgentRef {
	return AgentRef{ID: id}
}

func RefByIdentity(identity Identity) AgentRef {
	return AgentRef{ByIdentity: true, Identity: identity}
}
