// Package session tracks the per-window lifecycle state spec.md §3 and §7
// call out as explicitly NOT event-sourced: a session's last local
// viewport, when it last had focus, and whether it has unsaved changes.
// This is bookkeeping about who has a document's artboards open right now,
// distinct from docmodel.Artboard.Viewport (the persisted, collaborative
// viewport every session sees). Grounded on the teacher's Hub.subscribers
// map (a single mutex guarding a map[id]*entry of ephemeral per-connection
// state, separate from the deterministic World it's observing).
package session

import (
	"sync"
	"time"

	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/ids"
)

// Window is one session's view onto one artboard: its own local viewport
// (which may lag or lead the artboard's persisted viewport while panning),
// when it was last focused, and whether edits since the last Save are
// still unflushed from this window's perspective.
type Window struct {
	SessionID  ids.SessionID
	ArtboardID ids.ArtboardID
	Viewport   docmodel.Viewport
	FocusedAt  time.Time
	Dirty      bool
}

// Manager tracks every open window across every document a process has
// loaded. One Manager is shared process-wide; documents and sessions are
// both just keys into its map, mirroring the teacher's single
// Hub.subscribers map rather than one manager per document.
type Manager struct {
	mu      sync.Mutex
	windows map[ids.DocumentID]map[ids.SessionID]*Window
}

// NewManager constructs an empty session manager.
func NewManager() *Manager {
	return &Manager{windows: make(map[ids.DocumentID]map[ids.SessionID]*Window)}
}

// Open registers sessionID as having artboardID of documentID open,
// focused as of now. Calling Open again for the same (documentID,
// sessionID) replaces the prior window (e.g. switching artboards within
// the same session).
func (m *Manager) Open(documentID ids.DocumentID, sessionID ids.SessionID, artboardID ids.ArtboardID, viewport docmodel.Viewport, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bySession, ok := m.windows[documentID]
	if !ok {
		bySession = make(map[ids.SessionID]*Window)
		m.windows[documentID] = bySession
	}
	bySession[sessionID] = &Window{
		SessionID:  sessionID,
		ArtboardID: artboardID,
		Viewport:   viewport,
		FocusedAt:  now,
	}
}

// Close removes sessionID's window on documentID. It reports whether
// documentID now has zero open sessions, the signal spec.md §3 uses to
// decide a document may be freed ("freed when all sessions referencing it
// close").
func (m *Manager) Close(documentID ids.DocumentID, sessionID ids.SessionID) (noSessionsRemain bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bySession, ok := m.windows[documentID]
	if !ok {
		return true
	}
	delete(bySession, sessionID)
	if len(bySession) == 0 {
		delete(m.windows, documentID)
		return true
	}
	return false
}

// Focus updates a window's FocusedAt timestamp, called when a window
// regains UI focus.
func (m *Manager) Focus(documentID ids.DocumentID, sessionID ids.SessionID, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w := m.window(documentID, sessionID); w != nil {
		w.FocusedAt = now
	}
}

// SetViewport records a session's local viewport, e.g. after a pan or zoom
// that hasn't (yet) been broadcast as a persisted artboard viewport change.
func (m *Manager) SetViewport(documentID ids.DocumentID, sessionID ids.SessionID, viewport docmodel.Viewport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w := m.window(documentID, sessionID); w != nil {
		w.Viewport = viewport
	}
}

// MarkDirty flags sessionID's window as having unflushed edits.
func (m *Manager) MarkDirty(documentID ids.DocumentID, sessionID ids.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w := m.window(documentID, sessionID); w != nil {
		w.Dirty = true
	}
}

// ClearDirty clears the dirty bit, called after a successful Save.
func (m *Manager) ClearDirty(documentID ids.DocumentID, sessionID ids.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w := m.window(documentID, sessionID); w != nil {
		w.Dirty = false
	}
}

// AnyDirty reports whether any session currently holding documentID open
// has unflushed edits.
func (m *Manager) AnyDirty(documentID ids.DocumentID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.windows[documentID] {
		if w.Dirty {
			return true
		}
	}
	return false
}

// SessionCount reports how many sessions currently have documentID open.
func (m *Manager) SessionCount(documentID ids.DocumentID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows[documentID])
}

// Window returns a copy of sessionID's window state on documentID, or
// false if no such window is open.
func (m *Manager) Window(documentID ids.DocumentID, sessionID ids.SessionID) (Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.window(documentID, sessionID)
	if w == nil {
		return Window{}, false
	}
	return *w, true
}

// window looks up the live *Window under the caller's held lock.
func (m *Manager) window(documentID ids.DocumentID, sessionID ids.SessionID) *Window {
	bySession, ok := m.windows[documentID]
	if !ok {
		return nil
	}
	return bySession[sessionID]
}
