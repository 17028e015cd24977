package a2a

import "encoding/json"

// ============================================================================
// JSON-RPC 2.0 ENVELOPE
// ============================================================================

// JSONRPCVersion is the only protocol version this package speaks.
const JSONRPCVersion = "2.0"

// MethodMessageStream is the conversation method: send one message, receive
// a streamed sequence of events.
const MethodMessageStream = "message/stream"

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeServerError    = -32000
)

// JSONRPCRequest is the request envelope posted to an agent's conversation
// endpoint.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse is the response envelope, used both for the non-streaming
// single-object shape and for each SSE data payload (where Result holds one
// stream event).
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError is the error member of a response envelope.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *JSONRPCError) Error() string { return e.Message }

// MessageSendParams are the params of a message/stream request.
type MessageSendParams struct {
	Message       *Message           `json:"message"`
	Configuration *SendConfiguration `json:"configuration,omitempty"`
}

// SendConfiguration carries optional per-request settings.
type SendConfiguration struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
	Blocking            bool     `json:"blocking,omitempty"`
}

// BlockingResult is the result member of the non-streaming short-circuit
// response shape.
type BlockingResult struct {
	ContextID string   `json:"contextId,omitempty"`
	Parts     PartList `json:"parts"`
}
