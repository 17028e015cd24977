// Copyright 2026 The AlpineAI Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package agenttool wraps a remote A2A agent as a tool, so an orchestrating
// agent's model can invoke specialists the same way it invokes local tools.
package agenttool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alpineai/alpine/pkg/a2a"
	"github.com/alpineai/alpine/pkg/tool"
)

// AgentTool exposes one remote agent as a (query string) -> string tool.
// The blocking send reuses the orchestrator's own conversation id (carried
// on the call context) so a specialist's session state for one end user
// stays addressable across turns.
type AgentTool struct {
	client *a2a.Client
	card   *a2a.AgentCard
	name   string
}

// New wraps the agent described by card. The shared client is owned by the
// composition root; the card has already been resolved.
func New(client *a2a.Client, card *a2a.AgentCard) *AgentTool {
	return &AgentTool{
		client: client,
		card:   card,
		name:   toolName(card.Name),
	}
}

// toolName normalizes an agent display name into a model-safe identifier.
func toolName(agentName string) string {
	name := strings.ToLower(strings.TrimSpace(agentName))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

func (t *AgentTool) Name() string { return t.name }

func (t *AgentTool) Description() string {
	return fmt.Sprintf("Ask the %s. %s", t.card.Name, t.card.Description)
}

func (t *AgentTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": fmt.Sprintf("The question or request to send to the %s", t.card.Name),
			},
		},
		"required": []string{"query"},
	}
}

// Call sends the query to the remote agent and returns its reply. A failed
// or unreachable specialist is reported as readable text in the tool output,
// never as an error: one broken specialist must not abort the orchestrator's
// whole turn.
func (t *AgentTool) Call(ctx context.Context, args map[string]any) (string, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return "", fmt.Errorf("agent tool %s: query argument is required", t.name)
	}

	contextID := a2a.ContextIDFrom(ctx)

	reply, err := t.client.SendBlocking(ctx, t.card, query, contextID)
	if err != nil {
		slog.Warn("specialist call failed", "agent", t.card.Name, "error", err)
		return fmt.Sprintf("%s unavailable: %v", t.card.Name, err), nil
	}
	if reply.Text == "" {
		return fmt.Sprintf("%s returned no answer.", t.card.Name), nil
	}
	return reply.Text, nil
}

var _ tool.Tool = (*AgentTool)(nil)
