package policyopa

import (
	"context"
	"testing"

	"registryd/internal/domain"
)

const testPolicy = `
package registryd.policy

default result = {"allow": false, "deny": [{"code": "NO_RULE", "message": "no rule matched"}]}

result = {"allow": true, "deny": []} {
	allow
}

result = {"allow": false, "deny": deny} {
	not allow
	count(deny) > 0
}

allow {
	count(deny) == 0
}

deny[entry] {
	input.operation == "register_agent"
	input.name == ""
	entry := {"code": "NAME_REQUIRED", "message": "name must not be empty"}
}

deny[entry] {
	startswith(input.metadata_uri, "http://")
	entry := {"code": "PLAINTEXT_URI", "message": "metadata uri must not be plaintext http"}
}
`

func newEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewFromSource(context.Background(), testPolicy)
	if err != nil {
		t.Fatalf("compile policy: %v", err)
	}
	return engine
}

func TestEvaluateAllows(t *testing.T) {
	engine := newEngine(t)
	decision, err := engine.Evaluate(context.Background(), domain.PolicyInput{
		Operation: "register_agent",
		Owner:     "aa",
		Name:      "translator",
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("want allow, got %+v", decision)
	}
}

func TestEvaluateDenies(t *testing.T) {
	engine := newEngine(t)
	decision, err := engine.Evaluate(context.Background(), domain.PolicyInput{
		Operation:   "register_agent",
		Owner:       "aa",
		Name:        "",
		MetadataURI: "http://plaintext.example",
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Allow {
		t.Fatal("want deny")
	}
	if len(decision.Deny) != 2 {
		t.Fatalf("deny entries = %d, want 2", len(decision.Deny))
	}
	// Denials come back sorted by code.
	if decision.Deny[0].Code != "NAME_REQUIRED" || decision.Deny[1].Code != "PLAINTEXT_URI" {
		t.Fatalf("unexpected deny order: %+v", decision.Deny)
	}
}

func TestEvaluateIdentityOperation(t *testing.T) {
	engine := newEngine(t)
	decision, err := engine.Evaluate(context.Background(), domain.PolicyInput{
		Operation:   "register_identity",
		Owner:       "aa",
		MetadataURI: "ipfs://bafy",
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("want allow, got %+v", decision)
	}
}

func TestBlockedBuiltinFailsCompile(t *testing.T) {
	blocked := `
package registryd.policy

result = {"allow": true, "deny": []} {
	resp := http.send({"method": "GET", "url": "http://169.254.169.254"})
	resp.status_code == 200
}
`
	if _, err := NewFromSource(context.Background(), blocked); err == nil {
		t.Fatal("policy using http.send compiled")
	}
}
