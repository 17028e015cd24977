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

// Package openai implements model.LLM over the OpenAI chat-completions API
// (and any endpoint speaking the same dialect, via WithBaseURL).
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alpineai/alpine/pkg/model"
	"github.com/alpineai/alpine/pkg/observability"
	"github.com/alpineai/alpine/pkg/tool"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 120 * time.Second
)

// Client is an OpenAI chat-completions client.
type Client struct {
	baseURL    string
	apiKey     string
	modelName  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternate chat-completions endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithModel selects the model name.
func WithModel(m string) Option {
	return func(c *Client) { c.modelName = m }
}

// WithAPIKey sets the API key explicitly (default: OPENAI_API_KEY).
func WithAPIKey(k string) Option {
	return func(c *Client) { c.apiKey = k }
}

// WithHTTPClient substitutes the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a chat-completions client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     os.Getenv("OPENAI_API_KEY"),
		modelName:  defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return c.modelName }

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// ============================================================================
// WIRE TYPES - chat completions request/response
// ============================================================================

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []chatTool    `json:"tools,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type chatToolCall struct {
	Index    int    `json:"index,omitempty"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage"`
	Error *apiError  `json:"error"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta        chatMessage `json:"delta"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage"`
	Error *apiError  `json:"error"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ============================================================================
// GENERATION
// ============================================================================

// GenerateContent implements model.LLM.
func (c *Client) GenerateContent(ctx context.Context, req *model.Request, stream bool) iter.Seq2[*model.Response, error] {
	return func(yield func(*model.Response, error) bool) {
		started := time.Now()
		var usage *model.Usage
		var genErr error
		defer func() {
			in, out := 0, 0
			if usage != nil {
				in, out = usage.InputTokens, usage.OutputTokens
			}
			observability.GetGlobalMetrics().RecordLLMCall(ctx, c.modelName, time.Since(started), in, out, genErr)
		}()
		yield = instrumented(yield, &usage, &genErr)

		body, err := c.encodeRequest(req, stream)
		if err != nil {
			yield(nil, err)
			return
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			yield(nil, fmt.Errorf("building request: %w", err))
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			yield(nil, fmt.Errorf("calling model endpoint: %w", err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			yield(nil, decodeAPIError(resp))
			return
		}

		if stream {
			c.consumeStream(resp.Body, yield)
			return
		}
		c.consumeSingle(resp.Body, yield)
	}
}

func (c *Client) encodeRequest(req *model.Request, stream bool) ([]byte, error) {
	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: model.RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		cm := chatMessage{
			Role:       m.Role,
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			args, err := json.Marshal(tc.Arguments)
			if err != nil {
				return nil, fmt.Errorf("encoding tool call arguments: %w", err)
			}
			call := chatToolCall{ID: tc.ID, Type: "function"}
			call.Function.Name = tc.Name
			call.Function.Arguments = string(args)
			cm.ToolCalls = append(cm.ToolCalls, call)
		}
		messages = append(messages, cm)
	}

	tools := make([]chatTool, 0, len(req.Tools))
	for _, def := range req.Tools {
		tools = append(tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}

	return json.Marshal(&chatRequest{
		Model:       c.modelName,
		Messages:    messages,
		Tools:       tools,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	})
}

func (c *Client) consumeSingle(body io.Reader, yield func(*model.Response, error) bool) {
	var cr chatResponse
	if err := json.NewDecoder(body).Decode(&cr); err != nil {
		yield(nil, fmt.Errorf("decoding completion: %w", err))
		return
	}
	if cr.Error != nil {
		yield(nil, fmt.Errorf("model error: %s", cr.Error.Message))
		return
	}
	if len(cr.Choices) == 0 {
		yield(nil, fmt.Errorf("completion carries no choices"))
		return
	}

	choice := cr.Choices[0]
	out := &model.Response{Text: choice.Message.Content, Done: true}
	for _, call := range choice.Message.ToolCalls {
		tc, err := decodeToolCall(call.ID, call.Function.Name, call.Function.Arguments)
		if err != nil {
			yield(nil, err)
			return
		}
		out.ToolCalls = append(out.ToolCalls, tc)
	}
	if cr.Usage != nil {
		out.Usage = &model.Usage{InputTokens: cr.Usage.PromptTokens, OutputTokens: cr.Usage.CompletionTokens}
	}
	yield(out, nil)
}

// consumeStream parses SSE chunks, yielding text increments as they arrive
// and accumulating tool-call argument deltas (keyed by index) into the final
// Done response.
func (c *Client) consumeStream(body io.Reader, yield func(*model.Response, error) bool) {
	type pendingCall struct {
		id   string
		name string
		args strings.Builder
	}
	pending := make(map[int]*pendingCall)
	var order []int
	var usage *model.Usage

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if payload == "[DONE]" {
			break
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			yield(nil, fmt.Errorf("decoding stream chunk: %w", err))
			return
		}
		if chunk.Error != nil {
			yield(nil, fmt.Errorf("model error: %s", chunk.Error.Message))
			return
		}
		if chunk.Usage != nil {
			usage = &model.Usage{InputTokens: chunk.Usage.PromptTokens, OutputTokens: chunk.Usage.CompletionTokens}
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			if !yield(&model.Response{Text: delta.Content}, nil) {
				return
			}
		}
		for _, call := range delta.ToolCalls {
			pc, ok := pending[call.Index]
			if !ok {
				pc = &pendingCall{}
				pending[call.Index] = pc
				order = append(order, call.Index)
			}
			if call.ID != "" {
				pc.id = call.ID
			}
			if call.Function.Name != "" {
				pc.name = call.Function.Name
			}
			pc.args.WriteString(call.Function.Arguments)
		}
	}
	if err := scanner.Err(); err != nil {
		yield(nil, fmt.Errorf("reading model stream: %w", err))
		return
	}

	final := &model.Response{Done: true, Usage: usage}
	for _, idx := range order {
		pc := pending[idx]
		tc, err := decodeToolCall(pc.id, pc.name, pc.args.String())
		if err != nil {
			yield(nil, err)
			return
		}
		final.ToolCalls = append(final.ToolCalls, tc)
	}
	yield(final, nil)
}

// instrumented observes yielded responses so the surrounding metrics capture
// token usage and errors without each consume path reporting separately.
func instrumented(yield func(*model.Response, error) bool, usage **model.Usage, genErr *error) func(*model.Response, error) bool {
	return func(resp *model.Response, err error) bool {
		if err != nil {
			*genErr = err
		}
		if resp != nil && resp.Usage != nil {
			*usage = resp.Usage
		}
		return yield(resp, err)
	}
}

func decodeToolCall(id, name, rawArgs string) (tool.ToolCall, error) {
	args := make(map[string]any)
	if strings.TrimSpace(rawArgs) != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return tool.ToolCall{}, fmt.Errorf("tool call %s: invalid arguments %q: %w", name, rawArgs, err)
		}
	}
	return tool.ToolCall{ID: id, Name: name, Arguments: args}, nil
}

func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error *apiError `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != nil {
		return fmt.Errorf("model endpoint returned %s: %s", resp.Status, envelope.Error.Message)
	}
	return fmt.Errorf("model endpoint returned %s", resp.Status)
}

var _ model.LLM = (*Client)(nil)
