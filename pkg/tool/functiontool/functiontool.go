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

// Package functiontool turns a plain Go function with a typed argument
// struct into a tool.Tool. The argument schema is generated from struct
// tags, so tools declare their contract once, in Go.
//
// Supported tags:
//   - json:"name" - parameter name
//   - json:",omitempty" - optional parameter
//   - jsonschema:"required" - explicitly required
//   - jsonschema:"description=..." - parameter description
//   - jsonschema:"enum=a|b" - allowed values
//   - jsonschema:"minimum=N,maximum=M" - numeric constraints
package functiontool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alpineai/alpine/pkg/tool"
)

// Func is the implementation signature of a typed tool.
type Func[Args any] func(ctx context.Context, args Args) (string, error)

// New builds a tool from a typed function. The schema is derived from the
// Args struct tags.
func New[Args any](name, description string, fn Func[Args]) (tool.Tool, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if fn == nil {
		return nil, fmt.Errorf("tool %s: function is required", name)
	}

	schema, err := generateSchema[Args]()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for %s: %w", name, err)
	}

	return &functionTool[Args]{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}, nil
}

// MustNew is New for static tool tables where a schema failure is a
// programming error.
func MustNew[Args any](name, description string, fn Func[Args]) tool.Tool {
	t, err := New(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t
}

type functionTool[Args any] struct {
	name        string
	description string
	schema      map[string]any
	fn          Func[Args]
}

func (t *functionTool[Args]) Name() string           { return t.name }
func (t *functionTool[Args]) Description() string    { return t.description }
func (t *functionTool[Args]) Schema() map[string]any { return t.schema }

func (t *functionTool[Args]) Call(ctx context.Context, args map[string]any) (string, error) {
	// Round-trip through JSON so the map decodes into the typed struct with
	// the same coercion rules the wire format uses.
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("tool %s: encoding arguments: %w", t.name, err)
	}
	var typed Args
	if err := json.Unmarshal(data, &typed); err != nil {
		return "", fmt.Errorf("tool %s: invalid arguments: %w", t.name, err)
	}
	return t.fn(ctx, typed)
}

var _ tool.Tool = (*functionTool[struct{}])(nil)
