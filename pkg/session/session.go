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

// Package session maps (agent identity, conversation identifier) pairs to
// durable conversation state. A live in-process cache fronts a durable
// repository so repeated turns of one conversation skip (de)serialization
// while state still survives process restarts.
package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// Turn roles.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleTool  = "tool"
)

// Turn is one completed exchange entry in a conversation.
type Turn struct {
	Role     string    `json:"role"`
	Content  string    `json:"content"`
	ToolName string    `json:"toolName,omitempty"`
	At       time.Time `json:"at"`
}

// Session is the accumulated exchange state for one (agent, contextId) pair.
// The transport layer treats its serialized form as an opaque blob; this
// package owns the (de)serialization semantics.
type Session struct {
	AgentName string    `json:"agentName"`
	ContextID string    `json:"contextId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Turns     []Turn    `json:"turns"`
}

// New creates an empty session for the given key pair.
func New(agentName, contextID string) *Session {
	now := time.Now().UTC()
	return &Session{
		AgentName: agentName,
		ContextID: contextID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append records one turn and bumps the update time.
func (s *Session) Append(role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, At: time.Now().UTC()})
	s.UpdatedAt = time.Now().UTC()
}

// AppendToolResult records a tool invocation result.
func (s *Session) AppendToolResult(toolName, content string) {
	s.Turns = append(s.Turns, Turn{Role: RoleTool, ToolName: toolName, Content: content, At: time.Now().UTC()})
	s.UpdatedAt = time.Now().UTC()
}

// Serialize renders the session as its durable blob form.
func (s *Session) Serialize() ([]byte, error) {
	blob, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("serializing session %s: %w", Key(s.AgentName, s.ContextID), err)
	}
	return blob, nil
}

// Deserialize reconstructs a session from its blob form.
func Deserialize(blob []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("deserializing session: %w", err)
	}
	return &s, nil
}

// Key builds the composite store key for an (agent, contextId) pair.
func Key(agentName, contextID string) string {
	return agentName + ":" + contextID
}
