package a2a

import (
	"encoding/json"
	"strings"
	"testing"
)

// ============================================================================
// WIRE MODEL TESTS - kind discriminators, part decoding, event decoding
// ============================================================================

func TestMessage_MarshalCarriesKind(t *testing.T) {
	msg := NewUserMessage("hello", "ctx-1")

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if raw["kind"] != "message" {
		t.Errorf("expected kind 'message', got %v", raw["kind"])
	}
	if raw["contextId"] != "ctx-1" {
		t.Errorf("expected contextId 'ctx-1', got %v", raw["contextId"])
	}
	if raw["messageId"] == "" || raw["messageId"] == nil {
		t.Error("messageId must be set")
	}

	parts, ok := raw["parts"].([]any)
	if !ok || len(parts) != 1 {
		t.Fatalf("expected one part, got %v", raw["parts"])
	}
	part := parts[0].(map[string]any)
	if part["kind"] != "text" {
		t.Errorf("expected part kind 'text', got %v", part["kind"])
	}
	if part["text"] != "hello" {
		t.Errorf("expected text 'hello', got %v", part["text"])
	}
}

func TestPartList_UnmarshalSkipsUnknownKinds(t *testing.T) {
	payload := `[
		{"kind": "text", "text": "keep me"},
		{"kind": "video", "uri": "rtsp://example/stream"},
		{"kind": "data", "data": {"k": "v"}}
	]`

	var parts PartList
	if err := json.Unmarshal([]byte(payload), &parts); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(parts) != 2 {
		t.Fatalf("expected 2 parts (unknown dropped), got %d", len(parts))
	}
	if tp, ok := parts[0].(TextPart); !ok || tp.Text != "keep me" {
		t.Errorf("expected first part text 'keep me', got %#v", parts[0])
	}
	if _, ok := parts[1].(DataPart); !ok {
		t.Errorf("expected second part to be DataPart, got %#v", parts[1])
	}
}

func TestPartList_UnmarshalRejectsMalformedKnownKind(t *testing.T) {
	// A text part whose text field has the wrong type is an error, not a skip.
	payload := `[{"kind": "text", "text": 42}]`

	var parts PartList
	if err := json.Unmarshal([]byte(payload), &parts); err == nil {
		t.Fatal("expected error for malformed text part")
	}
}

func TestPartList_UnmarshalRejectsNonArray(t *testing.T) {
	var parts PartList
	if err := json.Unmarshal([]byte(`{"kind":"text"}`), &parts); err == nil {
		t.Fatal("expected error for non-array parts")
	}
}

func TestMessage_TextConcatenatesInOrder(t *testing.T) {
	msg := &Message{
		MessageID: "m1",
		Role:      RoleAgent,
		Parts: PartList{
			TextPart{Text: "Hello, "},
			FilePart{Name: "map.pdf"},
			TextPart{Text: "world"},
			DataPart{Data: map[string]any{"x": 1}},
			TextPart{Text: "!"},
		},
	}

	if got := msg.Text(); got != "Hello, world!" {
		t.Errorf("expected 'Hello, world!', got %q", got)
	}
}

func TestUnmarshalEvent_Message(t *testing.T) {
	payload := `{"kind":"message","messageId":"m1","contextId":"c1","role":"agent","parts":[{"kind":"text","text":"hi"}]}`

	event, err := UnmarshalEvent([]byte(payload))
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	msg, ok := event.(*Message)
	if !ok {
		t.Fatalf("expected *Message, got %T", event)
	}
	if msg.EventKind() != EventKindMessage {
		t.Errorf("expected kind message, got %s", msg.EventKind())
	}
	if msg.EventContextID() != "c1" {
		t.Errorf("expected contextId c1, got %s", msg.EventContextID())
	}
	if msg.Text() != "hi" {
		t.Errorf("expected text 'hi', got %q", msg.Text())
	}
}

func TestUnmarshalEvent_Task(t *testing.T) {
	payload := `{"kind":"task","id":"t1","contextId":"c1","status":{"state":"submitted"}}`

	event, err := UnmarshalEvent([]byte(payload))
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	task, ok := event.(*Task)
	if !ok {
		t.Fatalf("expected *Task, got %T", event)
	}
	if task.Status.State != TaskStateSubmitted {
		t.Errorf("expected submitted, got %s", task.Status.State)
	}
}

func TestUnmarshalEvent_StatusUpdate(t *testing.T) {
	payload := `{"kind":"status-update","taskId":"t1","contextId":"c1","final":true,"status":{"state":"completed"}}`

	event, err := UnmarshalEvent([]byte(payload))
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	update, ok := event.(*TaskStatusUpdate)
	if !ok {
		t.Fatalf("expected *TaskStatusUpdate, got %T", event)
	}
	if !update.Final {
		t.Error("expected final=true")
	}
	if update.Status.State != TaskStateCompleted {
		t.Errorf("expected completed, got %s", update.Status.State)
	}
}

func TestUnmarshalEvent_UnknownKind(t *testing.T) {
	if _, err := UnmarshalEvent([]byte(`{"kind":"artifact-update"}`)); err == nil {
		t.Fatal("expected error for unknown event kind")
	}
}

func TestTaskState_Terminal(t *testing.T) {
	terminal := []TaskState{TaskStateCompleted, TaskStateFailed, TaskStateCanceled}
	for _, state := range terminal {
		if !state.Terminal() {
			t.Errorf("%s should be terminal", state)
		}
	}
	for _, state := range []TaskState{TaskStateSubmitted, TaskStateWorking} {
		if state.Terminal() {
			t.Errorf("%s should not be terminal", state)
		}
	}
}

func TestAgentCard_Validate(t *testing.T) {
	card := AgentCard{Name: "Weather Agent", URL: "http://localhost:8001", Version: "1.0.0"}
	if err := card.Validate(); err != nil {
		t.Errorf("valid card rejected: %v", err)
	}

	for _, broken := range []AgentCard{
		{URL: "http://localhost:8001", Version: "1.0.0"},
		{Name: "Weather Agent", Version: "1.0.0"},
		{Name: "Weather Agent", URL: "http://localhost:8001"},
	} {
		if err := broken.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", broken)
		}
	}
}

func TestNewStatusUpdate_StampsTimestamp(t *testing.T) {
	update := NewStatusUpdate("t1", "c1", TaskStateCompleted, true, nil)

	if update.Status.Timestamp == "" {
		t.Error("timestamp must be stamped")
	}
	if !strings.Contains(update.Status.Timestamp, "T") {
		t.Errorf("timestamp is not RFC3339: %q", update.Status.Timestamp)
	}
}
