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

// Package agent runs the model-plus-tools loop behind one A2A agent. The
// model decides which tools to invoke per turn — zero, one, or many; there
// is no fixed pipeline.
package agent

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/alpineai/alpine/pkg/a2a"
	"github.com/alpineai/alpine/pkg/model"
	"github.com/alpineai/alpine/pkg/observability"
	"github.com/alpineai/alpine/pkg/session"
	"github.com/alpineai/alpine/pkg/tool"
)

// DefaultMaxIterations bounds tool-call rounds per turn so a confused model
// cannot loop forever.
const DefaultMaxIterations = 8

// Config describes one agent.
type Config struct {
	Name          string
	Instructions  string
	MaxIterations int
	Temperature   float64
	MaxTokens     int
}

// Agent is an executor: an LLM, its tool set, and its instructions.
type Agent struct {
	cfg   Config
	llm   model.LLM
	tools map[string]tool.Tool
	defs  []tool.Definition
}

// New builds an agent over the given model and tools.
func New(cfg Config, llm model.LLM, tools []tool.Tool) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}

	byName := make(map[string]tool.Tool, len(tools))
	defs := make([]tool.Definition, 0, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
		defs = append(defs, tool.Define(t))
	}

	return &Agent{cfg: cfg, llm: llm, tools: byName, defs: defs}
}

// Name returns the agent's configured name.
func (a *Agent) Name() string { return a.cfg.Name }

// Execute runs one conversational turn: prior session turns plus the new
// input go to the model; text increments are yielded as they stream; tool
// calls are dispatched and their results fed back until the model answers
// without requesting tools. On success the completed exchange is appended
// to the session; the caller owns persistence.
func (a *Agent) Execute(ctx context.Context, input string, sess *session.Session) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		// Downstream agent tools reuse this conversation's key.
		ctx := a2a.WithContextID(ctx, sess.ContextID)

		started := time.Now()
		var turnErr error
		defer func() {
			observability.GetGlobalMetrics().RecordAgentCall(ctx, a.cfg.Name, time.Since(started), turnErr)
		}()

		messages := a.historyMessages(sess)
		messages = append(messages, model.Message{Role: model.RoleUser, Content: input})

		var reply strings.Builder
		var toolTurns []session.Turn

		for iteration := 0; iteration < a.cfg.MaxIterations; iteration++ {
			var roundText strings.Builder
			var calls []tool.ToolCall

			for resp, err := range a.llm.GenerateContent(ctx, a.request(messages), true) {
				if err != nil {
					turnErr = err
					yield("", fmt.Errorf("model generation failed: %w", err))
					return
				}
				if resp.Text != "" {
					roundText.WriteString(resp.Text)
					reply.WriteString(resp.Text)
					if !yield(resp.Text, nil) {
						return
					}
				}
				if resp.Done {
					calls = resp.ToolCalls
				}
			}

			if len(calls) == 0 {
				break
			}

			messages = append(messages, model.Message{
				Role:      model.RoleAssistant,
				Content:   roundText.String(),
				ToolCalls: calls,
			})

			for _, call := range calls {
				result := a.dispatch(ctx, call)
				toolTurns = append(toolTurns, session.Turn{
					Role:     session.RoleTool,
					ToolName: call.Name,
					Content:  result,
				})
				messages = append(messages, model.Message{
					Role:       model.RoleTool,
					Content:    result,
					ToolCallID: call.ID,
					Name:       call.Name,
				})
			}
		}

		if ctx.Err() != nil {
			turnErr = ctx.Err()
			yield("", ctx.Err())
			return
		}

		sess.Append(session.RoleUser, input)
		for _, t := range toolTurns {
			sess.AppendToolResult(t.ToolName, t.Content)
		}
		sess.Append(session.RoleAgent, reply.String())
	}
}

// dispatch invokes one tool call. Failures become readable text for the
// model to incorporate; they never abort the turn.
func (a *Agent) dispatch(ctx context.Context, call tool.ToolCall) string {
	t, ok := a.tools[call.Name]
	if !ok {
		slog.Warn("model requested unknown tool", "agent", a.cfg.Name, "tool", call.Name)
		return fmt.Sprintf("Error: no tool named %q is available.", call.Name)
	}

	slog.Debug("dispatching tool call", "agent", a.cfg.Name, "tool", call.Name)
	started := time.Now()
	result, err := t.Call(ctx, call.Arguments)
	observability.GetGlobalMetrics().RecordToolExecution(ctx, call.Name, time.Since(started), err)
	if err != nil {
		slog.Warn("tool call failed", "agent", a.cfg.Name, "tool", call.Name, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	return result
}

func (a *Agent) request(messages []model.Message) *model.Request {
	return &model.Request{
		System:      a.cfg.Instructions,
		Messages:    messages,
		Tools:       a.defs,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	}
}

// historyMessages replays prior session turns as chat context. Tool turns
// are kept as assistant notes so the model remembers what it already looked
// up without re-sending tool-call framing.
func (a *Agent) historyMessages(sess *session.Session) []model.Message {
	messages := make([]model.Message, 0, len(sess.Turns)+1)
	for _, turn := range sess.Turns {
		switch turn.Role {
		case session.RoleUser:
			messages = append(messages, model.Message{Role: model.RoleUser, Content: turn.Content})
		case session.RoleAgent:
			messages = append(messages, model.Message{Role: model.RoleAssistant, Content: turn.Content})
		case session.RoleTool:
			messages = append(messages, model.Message{
				Role:    model.RoleAssistant,
				Content: fmt.Sprintf("[%s] %s", turn.ToolName, turn.Content),
			})
		}
	}
	return messages
}

var _ a2a.Executor = (*Agent)(nil)
