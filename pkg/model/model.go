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

// Package model abstracts the language-model capability: given a prompt and
// tool declarations, produce text or tool-invocation requests, optionally
// incrementally.
package model

import (
	"context"
	"iter"

	"github.com/alpineai/alpine/pkg/tool"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string
	Content string

	// ToolCalls carries the calls an assistant turn requested.
	ToolCalls []tool.ToolCall
	// ToolCallID links a tool-role turn back to the call it answers.
	ToolCallID string
	// Name is the tool name on tool-role turns.
	Name string
}

// Request is one generation request.
type Request struct {
	System   string
	Messages []Message
	Tools    []tool.Definition

	Temperature float64
	MaxTokens   int
}

// Usage reports token accounting when the provider supplies it.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is one unit of model output. In streaming mode Text carries an
// increment; the final response has Done set and carries any tool calls the
// model requested.
type Response struct {
	Text      string
	ToolCalls []tool.ToolCall
	Done      bool
	Usage     *Usage
}

// LLM is an opaque language-model capability.
type LLM interface {
	// Name identifies the configured model.
	Name() string
	// GenerateContent runs one generation. With stream true, responses are
	// yielded incrementally and the last one has Done set; with stream
	// false, a single Done response is yielded.
	GenerateContent(ctx context.Context, req *Request, stream bool) iter.Seq2[*Response, error]
	// Close releases provider resources.
	Close() error
}
