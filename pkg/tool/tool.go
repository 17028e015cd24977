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

// Package tool defines the capability abstraction agents invoke.
//
// A Tool is a name, a description, a JSON-schema parameter contract, and a
// string-returning call. Local domain tools and remote-agent wrappers
// satisfy the same interface, so the model-invocation loop stays agnostic to
// whether a call crosses a process boundary.
package tool

import "context"

// Tool is one callable capability.
type Tool interface {
	Name() string
	Description() string
	// Schema returns the JSON schema of the tool's arguments object.
	Schema() map[string]any
	// Call invokes the tool with decoded arguments and returns its textual
	// result. Errors are reported to the caller, which decides whether to
	// surface them to the model as text or abort.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// Definition is the model-facing description of a tool.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Define builds the model-facing definition of a tool.
func Define(t Tool) Definition {
	return Definition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Schema(),
	}
}

// ToolCall is one invocation request produced by a model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}
