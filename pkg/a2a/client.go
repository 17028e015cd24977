package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// A2A CLIENT - discovery, streaming send, blocking send
// ============================================================================

// DefaultClientTimeout bounds every remote call so a downstream failure can
// never hang a caller indefinitely.
const DefaultClientTimeout = 60 * time.Second

// Delta is one normalized increment of a streamed response. Content is the
// text of one text part, in arrival order; ContextID is the conversation key
// carried by the originating event. Events that assign a contextId but carry
// no text yield a Delta with empty Content so callers can adopt the key.
type Delta struct {
	Content   string
	ContextID string
}

// Reply is the accumulated result of a blocking send.
type Reply struct {
	Text      string
	ContextID string
}

// ClientConfig configures an A2A client.
type ClientConfig struct {
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks the A2A protocol to remote agents. It is owned by the
// composition root, constructed once, and shared: resolved cards are cached
// per base URL so repeated sends skip re-discovery. Safe for concurrent use.
type Client struct {
	httpClient *http.Client

	mu    sync.RWMutex
	cards map[string]*AgentCard // base URL -> resolved card
}

// NewClient creates a new A2A client. A nil config gets the default timeout.
func NewClient(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultClientTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: httpClient,
		cards:      make(map[string]*AgentCard),
	}
}

// Resolve fetches the agent card from the well-known path under baseURL.
// Resolution is cached per base URL; the card is immutable, so the cache
// never expires. Network failures and non-success statuses yield
// *UnreachableAgentError; a card missing required fields yields
// *MalformedCardError.
func (c *Client) Resolve(ctx context.Context, baseURL string) (*AgentCard, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")

	c.mu.RLock()
	card, ok := c.cards[baseURL]
	c.mu.RUnlock()
	if ok {
		return card, nil
	}

	cardURL := baseURL + WellKnownCardPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cardURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building card request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnreachableAgentError{URL: baseURL, Err: err}
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &UnreachableAgentError{
			URL: baseURL,
			Err: fmt.Errorf("card endpoint returned %s", resp.Status),
		}
	}

	card = &AgentCard{}
	if err := json.NewDecoder(resp.Body).Decode(card); err != nil {
		return nil, &MalformedCardError{URL: baseURL, Err: err}
	}
	if err := card.Validate(); err != nil {
		return nil, &MalformedCardError{URL: baseURL, Err: err}
	}

	c.mu.Lock()
	c.cards[baseURL] = card
	c.mu.Unlock()

	return card, nil
}

// SendStreaming sends text to the agent described by card within the
// conversation identified by contextID (empty on a first turn) and yields
// one Delta per text part as events arrive. The sequence is finite and not
// restartable; issue a new call to retry.
//
// Parts the client does not recognize are skipped. Malformed events are
// skipped with a warning rather than aborting the stream; a terminal failed
// status yields *RemoteError.
func (c *Client) SendStreaming(ctx context.Context, card *AgentCard, text, contextID string) iter.Seq2[Delta, error] {
	return func(yield func(Delta, error) bool) {
		msg := NewUserMessage(text, contextID)
		resp, err := c.postMessageStream(ctx, card, msg)
		if err != nil {
			yield(Delta{}, err)
			return
		}
		defer drainAndClose(resp.Body)

		if !isEventStream(resp) {
			// Non-streaming short-circuit: a single {result:{parts, contextId}}.
			c.yieldBlockingShape(card, resp.Body, yield)
			return
		}

		for payload, err := range parseDataStream(resp.Body) {
			if err != nil {
				yield(Delta{}, err)
				return
			}
			var envelope JSONRPCResponse
			if err := json.Unmarshal(payload, &envelope); err != nil {
				yield(Delta{}, &ProtocolError{Reason: "unparseable stream payload", Err: err})
				return
			}
			if envelope.Error != nil {
				yield(Delta{}, &RemoteError{AgentName: card.Name, Message: envelope.Error.Message})
				return
			}
			if len(envelope.Result) == 0 {
				continue
			}

			event, err := UnmarshalEvent(envelope.Result)
			if err != nil {
				// A single bad event is not fatal to the rest of the stream.
				slog.Warn("skipping malformed stream event", "agent", card.Name, "error", err)
				continue
			}

			if !c.yieldEvent(card, event, yield) {
				return
			}
		}
	}
}

// yieldEvent normalizes one event into zero or more deltas. Returns false
// when the consumer stopped or the stream ended.
func (c *Client) yieldEvent(card *AgentCard, event Event, yield func(Delta, error) bool) bool {
	switch ev := event.(type) {
	case *Message:
		return yieldParts(ev.Parts, ev.ContextID, yield)
	case *Task:
		// Acknowledgement only: surface the contextId so the caller can
		// adopt the conversation key even without content.
		if ev.ContextID == "" {
			return true
		}
		return yield(Delta{ContextID: ev.ContextID}, nil)
	case *TaskStatusUpdate:
		if ev.Status.State == TaskStateFailed {
			reason := "unspecified failure"
			if ev.Status.Message != nil {
				reason = ev.Status.Message.Text()
			}
			yield(Delta{}, &RemoteError{AgentName: card.Name, Message: reason})
			return false
		}
		if ev.Status.Message != nil && len(ev.Status.Message.Parts) > 0 {
			if !yieldParts(ev.Status.Message.Parts, ev.ContextID, yield) {
				return false
			}
		} else if ev.ContextID != "" {
			if !yield(Delta{ContextID: ev.ContextID}, nil) {
				return false
			}
		}
		return !(ev.Final || ev.Status.State.Terminal())
	default:
		return true
	}
}

func yieldParts(parts PartList, contextID string, yield func(Delta, error) bool) bool {
	yielded := false
	for _, p := range parts {
		tp, ok := p.(TextPart)
		if !ok {
			continue
		}
		yielded = true
		if !yield(Delta{Content: tp.Text, ContextID: contextID}, nil) {
			return false
		}
	}
	if !yielded && contextID != "" {
		return yield(Delta{ContextID: contextID}, nil)
	}
	return true
}

// yieldBlockingShape handles the single-object response a non-streaming
// server may return.
func (c *Client) yieldBlockingShape(card *AgentCard, body io.Reader, yield func(Delta, error) bool) {
	var envelope struct {
		Result *BlockingResult `json:"result"`
		Error  *JSONRPCError   `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		yield(Delta{}, &ProtocolError{Reason: "unparseable response body", Err: err})
		return
	}
	if envelope.Error != nil {
		yield(Delta{}, &RemoteError{AgentName: card.Name, Message: envelope.Error.Message})
		return
	}
	if envelope.Result == nil {
		yield(Delta{}, &ProtocolError{Reason: "response carries neither result nor error"})
		return
	}
	yieldParts(envelope.Result.Parts, envelope.Result.ContextID, yield)
}

// SendBlocking sends text and accumulates the streamed reply into a single
// concatenated string, in arrival order, adopting the first non-empty
// contextId observed.
func (c *Client) SendBlocking(ctx context.Context, card *AgentCard, text, contextID string) (*Reply, error) {
	var sb strings.Builder
	adopted := contextID

	for delta, err := range c.SendStreaming(ctx, card, text, contextID) {
		if err != nil {
			return nil, err
		}
		sb.WriteString(delta.Content)
		if adopted == "" && delta.ContextID != "" {
			adopted = delta.ContextID
		}
	}

	return &Reply{Text: sb.String(), ContextID: adopted}, nil
}

// postMessageStream issues the message/stream JSON-RPC request against the
// card's conversation endpoint.
func (c *Client) postMessageStream(ctx context.Context, card *AgentCard, msg *Message) (*http.Response, error) {
	params, err := json.Marshal(&MessageSendParams{Message: msg})
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}
	reqBody, err := json.Marshal(&JSONRPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      uuid.NewString(),
		Method:  MethodMessageStream,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, card.URL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", contentTypeEventStream+", application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnreachableAgentError{URL: card.URL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		defer drainAndClose(resp.Body)
		return nil, &UnreachableAgentError{
			URL: card.URL,
			Err: fmt.Errorf("conversation endpoint returned %s", resp.Status),
		}
	}
	return resp, nil
}
