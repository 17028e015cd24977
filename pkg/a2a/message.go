package a2a

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// ============================================================================
// MESSAGE & PARTS - Wire-level conversational turn model
// ============================================================================

// Role identifies the originator of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Part is one typed content fragment of a message. The closed set of kinds
// is text, file, and data; consumers must skip kinds they do not understand
// rather than fail, so the set can grow without breaking existing clients.
type Part interface {
	PartKind() string
	isPart()
}

const (
	PartKindText = "text"
	PartKindFile = "file"
	PartKindData = "data"
)

// TextPart carries plain text content.
type TextPart struct {
	Text string `json:"text"`
}

func (TextPart) PartKind() string { return PartKindText }
func (TextPart) isPart()          {}

// MarshalJSON injects the kind discriminator.
func (p TextPart) MarshalJSON() ([]byte, error) {
	type wrapped TextPart
	return json.Marshal(struct {
		Kind string `json:"kind"`
		wrapped
	}{Kind: PartKindText, wrapped: wrapped(p)})
}

// FilePart references file content either inline (base64 bytes) or by URI.
type FilePart struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Bytes    string `json:"bytes,omitempty"`
	URI      string `json:"uri,omitempty"`
}

func (FilePart) PartKind() string { return PartKindFile }
func (FilePart) isPart()          {}

func (p FilePart) MarshalJSON() ([]byte, error) {
	type wrapped FilePart
	return json.Marshal(struct {
		Kind string `json:"kind"`
		wrapped
	}{Kind: PartKindFile, wrapped: wrapped(p)})
}

// DataPart carries structured data.
type DataPart struct {
	Data map[string]any `json:"data"`
}

func (DataPart) PartKind() string { return PartKindData }
func (DataPart) isPart()          {}

func (p DataPart) MarshalJSON() ([]byte, error) {
	type wrapped DataPart
	return json.Marshal(struct {
		Kind string `json:"kind"`
		wrapped
	}{Kind: PartKindData, wrapped: wrapped(p)})
}

// PartList is the ordered sequence of parts in a message. Its unmarshaler
// dispatches on the kind discriminator and silently skips unknown kinds.
type PartList []Part

// UnmarshalJSON decodes each element by its kind tag. Elements with an
// unrecognized kind are skipped with a debug log, never an error.
func (l *PartList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("parts is not an array: %w", err)
	}

	parts := make([]Part, 0, len(raws))
	for _, raw := range raws {
		var probe struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("part missing kind discriminator: %w", err)
		}

		switch probe.Kind {
		case PartKindText:
			var p TextPart
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("malformed text part: %w", err)
			}
			parts = append(parts, p)
		case PartKindFile:
			var p FilePart
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("malformed file part: %w", err)
			}
			parts = append(parts, p)
		case PartKindData:
			var p DataPart
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("malformed data part: %w", err)
			}
			parts = append(parts, p)
		default:
			slog.Debug("skipping unknown part kind", "kind", probe.Kind)
		}
	}

	*l = parts
	return nil
}

// Message is one conversational turn from either party.
//
// MessageID is unique per message and never reused. ContextID is the stable
// correlation key for one logical conversation; it may be empty on the first
// message of a conversation, in which case the server mints one and echoes
// it back on every emitted event.
type Message struct {
	MessageID string   `json:"messageId"`
	ContextID string   `json:"contextId,omitempty"`
	TaskID    string   `json:"taskId,omitempty"`
	Role      Role     `json:"role"`
	Parts     PartList `json:"parts"`
}

// MarshalJSON injects the kind discriminator.
func (m Message) MarshalJSON() ([]byte, error) {
	type wrapped Message
	return json.Marshal(struct {
		Kind string `json:"kind"`
		wrapped
	}{Kind: EventKindMessage, wrapped: wrapped(m)})
}

// NewUserMessage builds a user-role message with a fresh messageId and the
// given text as its single text part. contextID may be empty on the first
// turn of a conversation.
func NewUserMessage(text, contextID string) *Message {
	return &Message{
		MessageID: uuid.NewString(),
		ContextID: contextID,
		Role:      RoleUser,
		Parts:     PartList{TextPart{Text: text}},
	}
}

// NewAgentMessage builds an agent-role message carrying one text part.
func NewAgentMessage(text, contextID string) *Message {
	return &Message{
		MessageID: uuid.NewString(),
		ContextID: contextID,
		Role:      RoleAgent,
		Parts:     PartList{TextPart{Text: text}},
	}
}

// Text concatenates the message's text parts in order, skipping other kinds.
func (m *Message) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}
