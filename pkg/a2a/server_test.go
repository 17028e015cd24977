package a2a

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alpineai/alpine/pkg/session"
)

// ============================================================================
// A2A SERVER TESTS - JSON-RPC dispatch, streaming lifecycle, persistence
// ============================================================================

// scriptedExecutor yields fixed increments, optionally failing, and records
// the input and session it saw.
type scriptedExecutor struct {
	chunks []string
	err    error

	gotInput string
	gotSess  *session.Session
}

func (e *scriptedExecutor) Execute(ctx context.Context, input string, sess *session.Session) iter.Seq2[string, error] {
	e.gotInput = input
	e.gotSess = sess
	return func(yield func(string, error) bool) {
		for _, chunk := range e.chunks {
			if !yield(chunk, nil) {
				return
			}
		}
		if e.err != nil {
			yield("", e.err)
			return
		}
		sess.Append(session.RoleUser, input)
		sess.Append(session.RoleAgent, strings.Join(e.chunks, ""))
	}
}

// failingRepository reads like an empty store but refuses every write.
type failingRepository struct{}

func (failingRepository) Read(ctx context.Context, key string) ([]byte, error) {
	return nil, session.ErrNotFound
}

func (failingRepository) Write(ctx context.Context, key string, blob []byte) error {
	return errors.New("disk full")
}

func (failingRepository) Close() error { return nil }

func newTestServer(executor Executor, repo session.Repository) *Server {
	if repo == nil {
		repo = session.NewMemoryRepository()
	}
	card := &AgentCard{Name: "Test Agent", URL: "http://localhost:8001", Version: "1.0.0"}
	return NewServer(card, executor, session.NewStore(repo))
}

func rpcBody(t *testing.T, msg *Message) []byte {
	t.Helper()
	params, err := json.Marshal(&MessageSendParams{Message: msg})
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	body, err := json.Marshal(&JSONRPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      "req-1",
		Method:  MethodMessageStream,
		Params:  params,
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return body
}

// postStream posts a message/stream request with an SSE accept header and
// returns the decoded events.
func postStream(t *testing.T, url string, body []byte) []Event {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", contentTypeEventStream)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if !isEventStream(resp) {
		t.Fatalf("expected event stream, got %q", resp.Header.Get("Content-Type"))
	}

	var events []Event
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var envelope JSONRPCResponse
		if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		if envelope.Error != nil {
			t.Fatalf("unexpected stream error: %v", envelope.Error.Message)
		}
		event, err := UnmarshalEvent(envelope.Result)
		if err != nil {
			t.Fatalf("bad event: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestServer_ServesCardAtWellKnownPath(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&scriptedExecutor{}, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + WellKnownCardPath)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	defer resp.Body.Close()

	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		t.Fatalf("decode card: %v", err)
	}
	if card.Name != "Test Agent" {
		t.Errorf("expected 'Test Agent', got %q", card.Name)
	}
}

func TestServer_Health(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&scriptedExecutor{}, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func postRPC(t *testing.T, url string, body []byte) *JSONRPCResponse {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var envelope JSONRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return &envelope
}

func TestServer_ParseError(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&scriptedExecutor{}, nil))
	defer srv.Close()

	envelope := postRPC(t, srv.URL, []byte("{not json"))
	if envelope.Error == nil || envelope.Error.Code != CodeParseError {
		t.Fatalf("expected %d, got %+v", CodeParseError, envelope.Error)
	}
}

func TestServer_WrongVersion(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&scriptedExecutor{}, nil))
	defer srv.Close()

	envelope := postRPC(t, srv.URL, []byte(`{"jsonrpc":"1.0","id":1,"method":"message/stream"}`))
	if envelope.Error == nil || envelope.Error.Code != CodeInvalidRequest {
		t.Fatalf("expected %d, got %+v", CodeInvalidRequest, envelope.Error)
	}
}

func TestServer_MethodNotFound(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&scriptedExecutor{}, nil))
	defer srv.Close()

	envelope := postRPC(t, srv.URL, []byte(`{"jsonrpc":"2.0","id":1,"method":"tasks/cancel","params":{}}`))
	if envelope.Error == nil || envelope.Error.Code != CodeMethodNotFound {
		t.Fatalf("expected %d, got %+v", CodeMethodNotFound, envelope.Error)
	}
}

func TestServer_MissingMessageID(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&scriptedExecutor{}, nil))
	defer srv.Close()

	msg := &Message{Role: RoleUser, Parts: PartList{TextPart{Text: "hi"}}}
	envelope := postRPC(t, srv.URL, rpcBody(t, msg))
	if envelope.Error == nil || envelope.Error.Code != CodeInvalidParams {
		t.Fatalf("expected %d, got %+v", CodeInvalidParams, envelope.Error)
	}
}

func TestServer_EmptyParts(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&scriptedExecutor{}, nil))
	defer srv.Close()

	msg := &Message{MessageID: "m1", Role: RoleUser}
	envelope := postRPC(t, srv.URL, rpcBody(t, msg))
	if envelope.Error == nil || envelope.Error.Code != CodeInvalidParams {
		t.Fatalf("expected %d, got %+v", CodeInvalidParams, envelope.Error)
	}
}

func TestServer_StreamLifecycle(t *testing.T) {
	executor := &scriptedExecutor{chunks: []string{"fresh ", "powder"}}
	srv := httptest.NewServer(newTestServer(executor, nil))
	defer srv.Close()

	events := postStream(t, srv.URL, rpcBody(t, NewUserMessage("conditions?", "ctx-42")))

	if len(events) != 4 {
		t.Fatalf("expected ack + 2 messages + completion, got %d events", len(events))
	}

	ack, ok := events[0].(*Task)
	if !ok || ack.Status.State != TaskStateSubmitted {
		t.Fatalf("first event must be a submitted task ack, got %#v", events[0])
	}

	var text strings.Builder
	for _, event := range events[1:3] {
		msg, ok := event.(*Message)
		if !ok {
			t.Fatalf("expected message event, got %T", event)
		}
		text.WriteString(msg.Text())
	}
	if text.String() != "fresh powder" {
		t.Errorf("expected 'fresh powder', got %q", text.String())
	}

	final, ok := events[3].(*TaskStatusUpdate)
	if !ok || final.Status.State != TaskStateCompleted || !final.Final {
		t.Fatalf("last event must be a final completed update, got %#v", events[3])
	}

	// Every event carries the caller's contextId.
	for i, event := range events {
		if event.EventContextID() != "ctx-42" {
			t.Errorf("event %d carries contextId %q, want ctx-42", i, event.EventContextID())
		}
	}

	if executor.gotInput != "conditions?" {
		t.Errorf("executor saw input %q", executor.gotInput)
	}
}

func TestServer_MintsContextIDWhenAbsent(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&scriptedExecutor{chunks: []string{"hi"}}, nil))
	defer srv.Close()

	events := postStream(t, srv.URL, rpcBody(t, NewUserMessage("hello", "")))

	minted := events[0].EventContextID()
	if minted == "" {
		t.Fatal("server must mint a contextId")
	}
	for i, event := range events {
		if event.EventContextID() != minted {
			t.Errorf("event %d carries contextId %q, want %q", i, event.EventContextID(), minted)
		}
	}
}

func TestServer_ExecutorFailureEmitsTerminalFailed(t *testing.T) {
	executor := &scriptedExecutor{chunks: []string{"partial "}, err: fmt.Errorf("upstream model down")}
	srv := httptest.NewServer(newTestServer(executor, nil))
	defer srv.Close()

	events := postStream(t, srv.URL, rpcBody(t, NewUserMessage("hello", "ctx-f")))

	last, ok := events[len(events)-1].(*TaskStatusUpdate)
	if !ok {
		t.Fatalf("last event must be a status update, got %T", events[len(events)-1])
	}
	if last.Status.State != TaskStateFailed || !last.Final {
		t.Fatalf("expected final failed update, got %+v", last)
	}
	if last.Status.Message == nil || !strings.Contains(last.Status.Message.Text(), "upstream model down") {
		t.Errorf("failure update should carry a readable reason, got %+v", last.Status.Message)
	}
}

func TestServer_SaveFailureEmitsFailedNotCompleted(t *testing.T) {
	executor := &scriptedExecutor{chunks: []string{"done"}}
	srv := httptest.NewServer(newTestServer(executor, failingRepository{}))
	defer srv.Close()

	events := postStream(t, srv.URL, rpcBody(t, NewUserMessage("hello", "ctx-s")))

	last, ok := events[len(events)-1].(*TaskStatusUpdate)
	if !ok {
		t.Fatalf("last event must be a status update, got %T", events[len(events)-1])
	}
	if last.Status.State != TaskStateFailed {
		t.Fatalf("a failed save must never be acknowledged as completed, got %s", last.Status.State)
	}
}

func TestServer_SessionPersistsAcrossTurns(t *testing.T) {
	repo := session.NewMemoryRepository()
	executor := &scriptedExecutor{chunks: []string{"first answer"}}
	srv := httptest.NewServer(newTestServer(executor, repo))
	defer srv.Close()

	postStream(t, srv.URL, rpcBody(t, NewUserMessage("first question", "ctx-persist")))

	// Second turn on the same contextId sees the saved history.
	postStream(t, srv.URL, rpcBody(t, NewUserMessage("second question", "ctx-persist")))

	if executor.gotSess == nil {
		t.Fatal("executor never received a session")
	}
	if len(executor.gotSess.Turns) < 2 {
		t.Errorf("second turn should see prior history, got %d turns", len(executor.gotSess.Turns))
	}
}

func TestServer_BlockingResponseShape(t *testing.T) {
	executor := &scriptedExecutor{chunks: []string{"all ", "lifts ", "open"}}
	srv := httptest.NewServer(newTestServer(executor, nil))
	defer srv.Close()

	// No SSE accept header: single-object response.
	envelope := postRPC(t, srv.URL, rpcBody(t, NewUserMessage("lifts?", "ctx-b")))
	if envelope.Error != nil {
		t.Fatalf("unexpected error: %+v", envelope.Error)
	}

	var result BlockingResult
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.ContextID != "ctx-b" {
		t.Errorf("expected contextId ctx-b, got %q", result.ContextID)
	}

	var text strings.Builder
	for _, p := range result.Parts {
		if tp, ok := p.(TextPart); ok {
			text.WriteString(tp.Text)
		}
	}
	if text.String() != "all lifts open" {
		t.Errorf("expected 'all lifts open', got %q", text.String())
	}
}

func TestServer_BlockingExecutorFailure(t *testing.T) {
	executor := &scriptedExecutor{err: fmt.Errorf("boom")}
	srv := httptest.NewServer(newTestServer(executor, nil))
	defer srv.Close()

	envelope := postRPC(t, srv.URL, rpcBody(t, NewUserMessage("hello", "ctx-e")))
	if envelope.Error == nil || envelope.Error.Code != CodeServerError {
		t.Fatalf("expected %d, got %+v", CodeServerError, envelope.Error)
	}
}
