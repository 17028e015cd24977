// Package a2a implements the Agent-to-Agent (A2A) conversational protocol:
// agent discovery via agent cards, JSON-RPC message exchange over HTTP, and
// server-sent-event streaming of incremental responses correlated by
// contextId.
package a2a

import "fmt"

// ============================================================================
// AGENT CARD - Agent Discovery & Capability Advertisement
// ============================================================================

// WellKnownCardPath is the relative path at which every agent serves its card.
const WellKnownCardPath = "/.well-known/agent.json"

// AgentCard describes an agent's identity, capabilities, and skills. It is
// constructed once at startup from static configuration, is immutable, and
// may be cached indefinitely by clients.
type AgentCard struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	URL         string `json:"url"`

	Capabilities AgentCapabilities `json:"capabilities"`

	DefaultInputModes  []string `json:"defaultInputModes"`
	DefaultOutputModes []string `json:"defaultOutputModes"`

	Skills []AgentSkill `json:"skills"`
}

// AgentCapabilities advertises optional protocol features.
type AgentCapabilities struct {
	Streaming         bool `json:"streaming"`
	PushNotifications bool `json:"pushNotifications"`
}

// AgentSkill advertises one capability of an agent for discovery and UI
// purposes. Skills are not enforced at runtime.
type AgentSkill struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples,omitempty"`
}

// Validate checks that the card carries the fields clients depend on.
func (c *AgentCard) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("agent card missing name")
	}
	if c.URL == "" {
		return fmt.Errorf("agent card missing url")
	}
	if c.Version == "" {
		return fmt.Errorf("agent card missing version")
	}
	return nil
}
