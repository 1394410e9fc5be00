// Package events defines the closed discriminated union of domain events,
// their envelope metadata, and the canonical JSON codec that round-trips
// every event value byte-identically (spec.md §4.1).
package events

import (
	"wiretuner/engine/internal/ids"
)

// Type identifies an event's payload kind.
type Type string

const (
	TypeCreatePath            Type = "CreatePath"
	TypeAddAnchor             Type = "AddAnchor"
	TypeMoveAnchor            Type = "MoveAnchor"
	TypeDeleteAnchor          Type = "DeleteAnchor"
	TypeUpdateHandle          Type = "UpdateHandle"
	TypeFinishPath            Type = "FinishPath"
	TypeCreateShape           Type = "CreateShape"
	TypeUpdateShapeParameters Type = "UpdateShapeParameters"
	TypeDeleteObject          Type = "DeleteObject"
	TypeMoveObject            Type = "MoveObject"
	TypeRotateObject          Type = "RotateObject"
	TypeScaleObject           Type = "ScaleObject"
	TypeSelectObjects         Type = "SelectObjects"
	TypeClearSelection        Type = "ClearSelection"
	TypeSelectAnchors         Type = "SelectAnchors"
	TypeCreateLayer           Type = "CreateLayer"
	TypeReorderLayers         Type = "ReorderLayers"
	TypeSetLayerProperties    Type = "SetLayerProperties"
	TypeCreateArtboard        Type = "CreateArtboard"
	TypeUpdateArtboardBounds  Type = "UpdateArtboardBounds"
	TypeStartGroup            Type = "StartGroup"
	TypeEndGroup              Type = "EndGroup"
)

// SamplingIntervalMs is the only permitted value of Envelope.SamplingIntervalMs
// when set (spec.md §3 invariant 7).
const SamplingIntervalMs = 50

// Envelope carries the metadata every event has independently of its
// payload.
type Envelope struct {
	EventID            ids.EventID    `json:"eventId"`
	Timestamp          int64          `json:"timestamp"`
	EventType          Type           `json:"eventType"`
	EventSequence      int64          `json:"eventSequence"`
	DocumentID         ids.DocumentID `json:"documentId"`
	UserID             *ids.UserID    `json:"userId,omitempty"`
	SessionID          *ids.SessionID `json:"sessionId,omitempty"`
	UndoGroupID        *ids.GroupID   `json:"undoGroupId,omitempty"`
	SamplingIntervalMs *int           `json:"samplingIntervalMs,omitempty"`
	Abandoned          bool           `json:"abandoned,omitempty"`
}

// ValidSampling reports whether SamplingIntervalMs, when set, equals the
// fixed sampling window (spec.md §3 invariant 7).
func (e Envelope) ValidSampling() bool {
	return e.SamplingIntervalMs == nil || *e.SamplingIntervalMs == SamplingIntervalMs
}
