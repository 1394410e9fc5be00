// Package collab defines, but does not transport, the collaboration wire
// contract of spec.md §6.4: the message types a realtime editing session
// exchanges with a server that rebases concurrent operations via
// internal/ot. Grounded on the teacher's internal/net/ws clientMessage /
// commandAckMessage discriminated-by-"type" envelope shape.
package collab

import (
	"encoding/json"
	"fmt"

	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ot"
)

// MessageType discriminates the wire envelope's payload, mirroring the
// teacher's string-typed message.Type field convention.
type MessageType string

const (
	TypeOperationSubmit    MessageType = "operationSubmit"
	TypeOperationAck       MessageType = "operationAck"
	TypeOperationBroadcast MessageType = "operationBroadcast"
	TypePresence           MessageType = "presence"
	TypeResync             MessageType = "resync"
	TypeError              MessageType = "error"
)

// OperationSubmit is sent client -> server: "apply my operation, which I
// computed against baseServerSequence".
type OperationSubmit struct {
	Op                 ot.Operation `json:"op"`
	ClientSequence     int64        `json:"clientSequence"`
	BaseServerSequence int64        `json:"baseServerSequence"`
}

// OperationAck is sent server -> submitting client: "your operation was
// assigned this server sequence".
type OperationAck struct {
	OpID           string `json:"opId"`
	ServerSequence int64  `json:"serverSequence"`
}

// OperationBroadcast is sent server -> all other clients: the operation,
// already transformed against the log tail via internal/ot.Transform, at
// its assigned server sequence.
type OperationBroadcast struct {
	Op             ot.Operation `json:"op"`
	ServerSequence int64        `json:"serverSequence"`
}

// Presence reports a session's live cursor/selection state.
type Presence struct {
	Cursor    *geometry.Point `json:"cursor,omitempty"`
	Selection []string        `json:"selection,omitempty"`
	UserID    string          `json:"userId"`
	SessionID string          `json:"sessionId"`
	Timestamp int64           `json:"ts"`
}

// Resync asks the client to discard its local state and reload from the
// server (sent when a client falls too far behind the log tail).
type Resync struct {
	Reason string `json:"reason,omitempty"`
}

// Error carries a user-visible, non-fatal protocol error (spec.md §7).
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the outer wire frame: exactly one of the typed fields is
// non-nil, selected by Type, following the same discriminated-union shape
// used by internal/events.Event.
type Envelope struct {
	Type MessageType `json:"type"`

	OperationSubmit    *OperationSubmit    `json:"operationSubmit,omitempty"`
	OperationAck       *OperationAck       `json:"operationAck,omitempty"`
	OperationBroadcast *OperationBroadcast `json:"operationBroadcast,omitempty"`
	Presence           *Presence           `json:"presence,omitempty"`
	Resync             *Resync             `json:"resync,omitempty"`
	Error              *Error              `json:"error,omitempty"`
}

// Validate reports whether exactly the field matching Type is populated.
func (e Envelope) Validate() error {
	count := 0
	for _, present := range []bool{
		e.OperationSubmit != nil,
		e.OperationAck != nil,
		e.OperationBroadcast != nil,
		e.Presence != nil,
		e.Resync != nil,
		e.Error != nil,
	} {
		if present {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("collab: envelope must carry exactly one payload, got %d", count)
	}
	switch e.Type {
	case TypeOperationSubmit:
		if e.OperationSubmit == nil {
			return fmt.Errorf("collab: type %q requires operationSubmit payload", e.Type)
		}
	case TypeOperationAck:
		if e.OperationAck == nil {
			return fmt.Errorf("collab: type %q requires operationAck payload", e.Type)
		}
	case TypeOperationBroadcast:
		if e.OperationBroadcast == nil {
			return fmt.Errorf("collab: type %q requires operationBroadcast payload", e.Type)
		}
	case TypePresence:
		if e.Presence == nil {
			return fmt.Errorf("collab: type %q requires presence payload", e.Type)
		}
	case TypeResync:
		if e.Resync == nil {
			return fmt.Errorf("collab: type %q requires resync payload", e.Type)
		}
	case TypeError:
		if e.Error == nil {
			return fmt.Errorf("collab: type %q requires error payload", e.Type)
		}
	default:
		return fmt.Errorf("collab: unknown message type %q", e.Type)
	}
	return nil
}

// Marshal encodes e as canonical JSON.
func Marshal(e Envelope) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// Unmarshal decodes and validates a wire frame.
func Unmarshal(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("collab: decode envelope: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}
