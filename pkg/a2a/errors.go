package a2a

import "fmt"

// ============================================================================
// ERROR TAXONOMY
// ============================================================================

// UnreachableAgentError indicates the remote agent could not be reached:
// network failure, DNS failure, timeout, or a non-success discovery response.
type UnreachableAgentError struct {
	URL string
	Err error
}

func (e *UnreachableAgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("agent unreachable at %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("agent unreachable at %s", e.URL)
}

func (e *UnreachableAgentError) Unwrap() error { return e.Err }

// MalformedCardError indicates a discovered agent card is missing required
// fields or is not valid JSON.
type MalformedCardError struct {
	URL string
	Err error
}

func (e *MalformedCardError) Error() string {
	return fmt.Sprintf("malformed agent card from %s: %v", e.URL, e.Err)
}

func (e *MalformedCardError) Unwrap() error { return e.Err }

// InvalidRequestError indicates an incoming message failed validation, e.g.
// a missing messageId or zero parts.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// ProtocolError indicates the remote side sent something the client could
// not parse: a broken SSE chunk, an invalid JSON-RPC envelope, or an
// unusable event payload.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// RemoteError is a failure the remote agent reported inside the stream as a
// terminal failed status-update. It is surfaced this way rather than as an
// HTTP error so partial output already streamed is preserved.
type RemoteError struct {
	AgentName string
	Message   string
}

func (e *RemoteError) Error() string {
	if e.AgentName != "" {
		return fmt.Sprintf("remote agent %s failed: %s", e.AgentName, e.Message)
	}
	return fmt.Sprintf("remote agent failed: %s", e.Message)
}
