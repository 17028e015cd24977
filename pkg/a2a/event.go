package a2a

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// STREAM EVENTS - Tagged union over message / task / status-update
// ============================================================================

// Event kind discriminators.
const (
	EventKindMessage      = "message"
	EventKindTask         = "task"
	EventKindStatusUpdate = "status-update"
)

// Event is one unit of a server's streamed response. The closed set of
// variants is *Message, *Task, and *TaskStatusUpdate; consumers dispatch with
// an exhaustive type switch, never by inspecting untyped maps.
type Event interface {
	EventKind() string
	// EventContextID returns the conversation correlation key carried by the
	// event, or "" if none has been assigned yet.
	EventContextID() string
}

func (m *Message) EventKind() string      { return EventKindMessage }
func (m *Message) EventContextID() string { return m.ContextID }

// TaskState is the lifecycle state of an asynchronous task.
type TaskState string

const (
	TaskStateSubmitted TaskState = "submitted"
	TaskStateWorking   TaskState = "working"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
	TaskStateCanceled  TaskState = "canceled"
)

// Terminal reports whether no further events follow this state.
func (s TaskState) Terminal() bool {
	return s == TaskStateCompleted || s == TaskStateFailed || s == TaskStateCanceled
}

// TaskStatus is the current state of a task, optionally carrying a nested
// message whose parts are extracted exactly like a message event's parts.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Task acknowledges that asynchronous processing has started. It carries the
// contextId but no content.
type Task struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId,omitempty"`
	Status    TaskStatus `json:"status"`
	History   []*Message `json:"history,omitempty"`
}

func (t *Task) EventKind() string      { return EventKindTask }
func (t *Task) EventContextID() string { return t.ContextID }

func (t Task) MarshalJSON() ([]byte, error) {
	type wrapped Task
	return json.Marshal(struct {
		Kind string `json:"kind"`
		wrapped
	}{Kind: EventKindTask, wrapped: wrapped(t)})
}

// TaskStatusUpdate is a lifecycle notification for a task. Final marks the
// last event of a stream.
type TaskStatusUpdate struct {
	TaskID    string     `json:"taskId,omitempty"`
	ContextID string     `json:"contextId,omitempty"`
	Final     bool       `json:"final"`
	Status    TaskStatus `json:"status"`
}

func (u *TaskStatusUpdate) EventKind() string      { return EventKindStatusUpdate }
func (u *TaskStatusUpdate) EventContextID() string { return u.ContextID }

func (u TaskStatusUpdate) MarshalJSON() ([]byte, error) {
	type wrapped TaskStatusUpdate
	return json.Marshal(struct {
		Kind string `json:"kind"`
		wrapped
	}{Kind: EventKindStatusUpdate, wrapped: wrapped(u)})
}

// NewStatusUpdate builds a status-update event stamped with the current time.
func NewStatusUpdate(taskID, contextID string, state TaskState, final bool, msg *Message) *TaskStatusUpdate {
	return &TaskStatusUpdate{
		TaskID:    taskID,
		ContextID: contextID,
		Final:     final,
		Status: TaskStatus{
			State:     state,
			Message:   msg,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// UnmarshalEvent decodes a stream event by its kind discriminator. Unknown
// event kinds are an error at this level; the client decides whether to skip
// or abort.
func UnmarshalEvent(data []byte) (Event, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("event missing kind discriminator: %w", err)
	}

	switch probe.Kind {
	case EventKindMessage:
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("malformed message event: %w", err)
		}
		return &m, nil
	case EventKindTask:
		var t Task
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("malformed task event: %w", err)
		}
		return &t, nil
	case EventKindStatusUpdate:
		var u TaskStatusUpdate
		if err := json.Unmarshal(data, &u); err != nil {
			return nil, fmt.Errorf("malformed status-update event: %w", err)
		}
		return &u, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", probe.Kind)
	}
}
