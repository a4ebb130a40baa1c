package domain

import "context"

// PolicyInput is what a registration admission policy sees. It describes the
// attempted registration, never the content behind the metadata URI.
type PolicyInput struct {
	Operation   string   `json:"operation"`
	Owner       string   `json:"owner"`
	Identity    string   `json:"identity,omitempty"`
	Name        string   `json:"name,omitempty"`
	Version     string   `json:"version,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	MetadataURI string   `json:"metadata_uri,omitempty"`
}

type PolicyDenial struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type PolicyDecision struct {
	Allow bool           `json:"allow"`
	Deny  []PolicyDenial `json:"deny,omitempty"`
}

// RegistrationPolicy gates who may claim a registry slot. A nil policy
// admits everything.
type RegistrationPolicy interface {
	Evaluate(ctx context.Context, input PolicyInput) (PolicyDecision, error)
}
