package domain

import "context"

type EventKind string

const (
	EventAgentRegistered    EventKind = "agent.registered"
	EventAgentUpdated       EventKind = "agent.updated"
	EventAgentDeactivated   EventKind = "agent.deactivated"
	EventValidationPosted   EventKind = "validation.posted"
	EventFeedbackPosted     EventKind = "feedback.posted"
	EventMerkleRootAnchored EventKind = "merkle.anchored"
)

// Event is a structured notification of a committed operation. Events are
// emitted if and only if the operation committed; they carry no delivery
// guarantee and are never used for control flow.
type Event struct {
	Kind    EventKind      `json:"kind"`
	At      int64          `json:"at"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

func NewAgentRegistered(at int64, owner Identity, agentID uint64, identity Identity, name string) Event {
	payload := map[string]any{
		"owner": owner.String(),
		"name":  name,
	}
	if identity.IsZero() {
		payload["agent_id"] = agentID
	} else {
		payload["identity"] = identity.String()
	}
	return Event{Kind: EventAgentRegistered, At: at, Payload: payload}
}

func NewAgentUpdated(at int64, owner Identity, ref AgentRef) Event {
	return Event{Kind: EventAgentUpdated, At: at, Payload: refPayload(ref, map[string]any{
		"owner": owner.String(),
	})}
}

func NewAgentDeactivated(at int64, owner Identity, ref AgentRef) Event {
	return Event{Kind: EventAgentDeactivated, At: at, Payload: refPayload(ref, map[string]any{
		"owner": owner.String(),
	})}
}

func NewValidationPosted(at int64, validator Identity, ref AgentRef, day uint32, root Root) Event {
	return Event{Kind: EventValidationPosted, At: at, Payload: refPayload(ref, map[string]any{
		"validator": validator.String(),
		"day":       day,
		"root":      root.String(),
	})}
}

func NewFeedbackPosted(at int64, reviewer Identity, ref AgentRef, rating uint8, tag byte) Event {
	return Event{Kind: EventFeedbackPosted, At: at, Payload: refPayload(ref, map[string]any{
		"reviewer": reviewer.String(),
		"rating":   rating,
		"tag":      tag,
	})}
}

func NewMerkleRootAnchored(at int64, authority Identity, planID string, root Root) Event {
	return Event{Kind: EventMerkleRootAnchored, At: at, Payload: map[string]any{
		"plan_id":   planID,
		"root":      root.String(),
		"authority": authority.String(),
	}}
}

func refPayload(ref AgentRef, payload map[string]any) map[string]any {
	if ref.ByIdentity {
		payload["identity"] = ref.Identity.String()
	} else {
		payload["agent_id"] = ref.ID
	}
	return payload
}
