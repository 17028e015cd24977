package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alpineai/alpine/pkg/session"
)

// ============================================================================
// A2A SERVER / DISPATCHER - card serving and message/stream handling
// ============================================================================

// Executor is the local agent invoked by the dispatcher: given the incoming
// text and the conversation's session, it yields incremental output. The
// executor owns session mutation; the dispatcher owns persistence. The
// context is canceled when the caller disconnects.
type Executor interface {
	Execute(ctx context.Context, input string, sess *session.Session) iter.Seq2[string, error]
}

// Server exposes one agent over the A2A protocol: its card at the well-known
// path, a liveness check, and the JSON-RPC conversation endpoint with
// streamed responses.
type Server struct {
	card     *AgentCard
	executor Executor
	sessions *session.Store
	router   chi.Router
}

// NewServer wires a dispatcher for the given card, executor, and session
// store.
func NewServer(card *AgentCard, executor Executor, sessions *session.Store) *Server {
	s := &Server{
		card:     card,
		executor: executor,
		sessions: sessions,
	}

	r := chi.NewRouter()
	r.Get(WellKnownCardPath, s.handleCard)
	r.Get("/health", s.handleHealth)
	r.Post("/", s.handleRPC)
	s.router = r

	return s
}

// Card returns the served agent card.
func (s *Server) Card() *AgentCard { return s.card }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.card); err != nil {
		slog.Error("encoding agent card", "agent", s.card.Name, "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"healthy","agent":%q}`, s.card.Name)
}

// handleRPC drives one request through the lifecycle
// Received -> Validated -> SessionLoaded -> Executing -> Streaming ->
// {Completed | Failed}.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPCError(w, nil, CodeParseError, "invalid JSON payload")
		return
	}
	if req.JSONRPC != JSONRPCVersion {
		writeRPCError(w, req.ID, CodeInvalidRequest, "unsupported jsonrpc version")
		return
	}
	if req.Method != MethodMessageStream {
		writeRPCError(w, req.ID, CodeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method))
		return
	}

	var params MessageSendParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Message == nil {
		writeRPCError(w, req.ID, CodeInvalidParams, "params must carry a message")
		return
	}

	msg := params.Message
	if err := validateIncoming(msg); err != nil {
		writeRPCError(w, req.ID, CodeInvalidParams, err.Error())
		return
	}

	// Adopt the caller's contextId, or mint one so every emitted event
	// carries the conversation key from the first event on.
	contextID := msg.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}

	sess, err := s.sessions.Get(r.Context(), s.card.Name, contextID)
	if err != nil {
		slog.Error("loading session", "agent", s.card.Name, "contextId", contextID, "error", err)
		writeRPCError(w, req.ID, CodeInternalError, "session load failed")
		return
	}

	if wantsEventStream(r) {
		s.streamResponse(w, r, req.ID, msg, contextID, sess)
		return
	}
	s.blockingResponse(w, r, req.ID, msg, contextID, sess)
}

func validateIncoming(msg *Message) error {
	if msg.MessageID == "" {
		return &InvalidRequestError{Reason: "message missing messageId"}
	}
	if len(msg.Parts) == 0 {
		return &InvalidRequestError{Reason: "message carries no parts"}
	}
	return nil
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), contentTypeEventStream)
}

// streamResponse runs the executor and streams its increments as
// message-kind events over SSE. Completion order is save-then-acknowledge:
// the terminal completed status-update is only emitted after the session has
// been persisted, so a crash in between cannot lose state the caller
// believes durable. Executor failure yields one terminal failed
// status-update and no session write.
func (s *Server) streamResponse(w http.ResponseWriter, r *http.Request, id any, msg *Message, contextID string, sess *session.Session) {
	sse, err := newSSEWriter(w)
	if err != nil {
		writeRPCError(w, id, CodeInternalError, "streaming unsupported")
		return
	}
	sse.writeHeaders()

	taskID := uuid.NewString()
	emit := func(event Event) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		envelope, err := json.Marshal(&JSONRPCResponse{
			JSONRPC: JSONRPCVersion,
			ID:      id,
			Result:  payload,
		})
		if err != nil {
			return err
		}
		return sse.writeData(envelope)
	}

	// Acknowledge before executing so the caller learns the contextId even
	// if the executor produces nothing.
	ack := &Task{
		ID:        taskID,
		ContextID: contextID,
		Status:    TaskStatus{State: TaskStateSubmitted},
	}
	if err := emit(ack); err != nil {
		slog.Warn("caller disconnected before first event", "agent", s.card.Name, "contextId", contextID)
		return
	}

	fail := func(reason string) {
		failMsg := NewAgentMessage(reason, contextID)
		if err := emit(NewStatusUpdate(taskID, contextID, TaskStateFailed, true, failMsg)); err != nil {
			slog.Warn("emitting failure event", "agent", s.card.Name, "error", err)
		}
	}

	for increment, err := range s.executor.Execute(r.Context(), msg.Text(), sess) {
		if err != nil {
			slog.Error("executor failed", "agent", s.card.Name, "contextId", contextID, "error", err)
			fail(fmt.Sprintf("%s failed: %v", s.card.Name, err))
			return
		}
		out := NewAgentMessage(increment, contextID)
		out.TaskID = taskID
		if err := emit(out); err != nil {
			// Caller disconnect cancels the executor via the request context.
			slog.Debug("stream write failed, treating as cancellation", "agent", s.card.Name, "error", err)
			return
		}
	}

	if r.Context().Err() != nil {
		return
	}

	// Persist with a context detached from the request so a disconnect at
	// this instant cannot abort a save the executor already earned.
	if err := s.sessions.Save(context.WithoutCancel(r.Context()), s.card.Name, contextID, sess); err != nil {
		slog.Error("persisting session", "agent", s.card.Name, "contextId", contextID, "error", err)
		fail("session persistence failed")
		return
	}

	if err := emit(NewStatusUpdate(taskID, contextID, TaskStateCompleted, true, nil)); err != nil {
		slog.Debug("emitting completion event", "agent", s.card.Name, "error", err)
	}
}

// blockingResponse accumulates the executor's increments and returns the
// single-object {result:{parts, contextId}} shape.
func (s *Server) blockingResponse(w http.ResponseWriter, r *http.Request, id any, msg *Message, contextID string, sess *session.Session) {
	var sb strings.Builder
	for increment, err := range s.executor.Execute(r.Context(), msg.Text(), sess) {
		if err != nil {
			slog.Error("executor failed", "agent", s.card.Name, "contextId", contextID, "error", err)
			writeRPCError(w, id, CodeServerError, fmt.Sprintf("%s failed: %v", s.card.Name, err))
			return
		}
		sb.WriteString(increment)
	}

	if err := s.sessions.Save(context.WithoutCancel(r.Context()), s.card.Name, contextID, sess); err != nil {
		slog.Error("persisting session", "agent", s.card.Name, "contextId", contextID, "error", err)
		writeRPCError(w, id, CodeInternalError, "session persistence failed")
		return
	}

	result, err := json.Marshal(&BlockingResult{
		ContextID: contextID,
		Parts:     PartList{TextPart{Text: sb.String()}},
	})
	if err != nil {
		writeRPCError(w, id, CodeInternalError, "encoding result")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(&JSONRPCResponse{JSONRPC: JSONRPCVersion, ID: id, Result: result}); err != nil {
		slog.Error("writing response", "agent", s.card.Name, "error", err)
	}
}

func writeRPCError(w http.ResponseWriter, id any, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	// JSON-RPC errors travel in the envelope, not the HTTP status.
	if err := json.NewEncoder(w).Encode(&JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	}); err != nil {
		slog.Error("writing rpc error", "error", err)
	}
}

var _ http.Handler = (*Server)(nil)
