// Package ids defines the UUIDv4-backed identifier types shared by the
// document model, event envelopes, and storage layers.
package ids

import "github.com/google/uuid"

// DocumentID identifies a Document.
type DocumentID string

// ArtboardID identifies an Artboard within a Document.
type ArtboardID string

// LayerID identifies a Layer within an Artboard.
type LayerID string

// ObjectID identifies a VectorObject within a Layer.
type ObjectID string

// EventID uniquely identifies a single event across all documents.
type EventID string

// GroupID identifies an undo/redo operation group.
type GroupID string

// SessionID identifies a connected editing session.
type SessionID string

// UserID identifies an authenticated user.
type UserID string

// NewDocumentID generates a fresh random DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.NewString()) }

// NewArtboardID generates a fresh random ArtboardID.
func NewArtboardID() ArtboardID { return ArtboardID(uuid.NewString()) }

// NewLayerID generates a fresh random LayerID.
func NewLayerID() LayerID { return LayerID(uuid.NewString()) }

// NewObjectID generates a fresh random ObjectID.
func NewObjectID() ObjectID { return ObjectID(uuid.NewString()) }

// NewEventID generates a fresh random EventID.
func NewEventID() EventID { return EventID(uuid.NewString()) }

// NewGroupID generates a fresh random GroupID.
func NewGroupID() GroupID { return GroupID(uuid.NewString()) }

// Valid reports whether id parses as a UUID in any of the id types above.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
