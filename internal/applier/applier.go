// Package applier implements the command applier / handler registry of
// spec.md §4.4: one pure function (Document, Event) -> Document per event
// type, looked up in a map built at package-init time and checked for
// exhaustive coverage by a registry self-test. This is the sole place
// domain invariants are enforced. The lookup-table shape is grounded on
// the teacher's per-PatchKind switch in internal/sim/patches/apply.go,
// widened from a switch into a map for O(1) dispatch.
package applier

import (
	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/events"
)

// Handler is a pure state transition function for one event type. Handlers
// never mutate their input Document; they return a new value built through
// docmodel's With* builder helpers, which deep-copy the document before
// replacing the modified part.
type Handler func(doc docmodel.Document, e events.Event) (docmodel.Document, error)

// Mode controls how invariant violations are handled: Live rejects the
// event outright; Replay records it as a skip-with-warning instead
// (spec.md §4.4, §4.6).
type Mode int

const (
	Live Mode = iota
	Replay
)

var registry = map[events.Type]Handler{
	events.TypeCreatePath:            applyCreatePath,
	events.TypeAddAnchor:             applyAddAnchor,
	events.TypeMoveAnchor:            applyMoveAnchor,
	events.TypeDeleteAnchor:          applyDeleteAnchor,
	events.TypeUpdateHandle:          applyUpdateHandle,
	events.TypeFinishPath:            applyFinishPath,
	events.TypeCreateShape:           applyCreateShape,
	events.TypeUpdateShapeParameters: applyUpdateShapeParameters,
	events.TypeDeleteObject:          applyDeleteObject,
	events.TypeMoveObject:            applyMoveObject,
	events.TypeRotateObject:          applyRotateObject,
	events.TypeScaleObject:           applyScaleObject,
	events.TypeSelectObjects:         applySelectObjects,
	events.TypeClearSelection:        applyClearSelection,
	events.TypeSelectAnchors:         applySelectAnchors,
	events.TypeCreateLayer:           applyCreateLayer,
	events.TypeReorderLayers:         applyReorderLayers,
	events.TypeSetLayerProperties:    applySetLayerProperties,
	events.TypeCreateArtboard:        applyCreateArtboard,
	events.TypeUpdateArtboardBounds:  applyUpdateArtboardBounds,
	events.TypeStartGroup:            applyNoop,
	events.TypeEndGroup:              applyNoop,
}

// Registered reports whether a handler exists for t.
func Registered(t events.Type) bool {
	_, ok := registry[t]
	return ok
}

// MissingHandlers returns every event type in the closed union that has no
// registered handler; used by the exhaustiveness self-test.
func MissingHandlers() []events.Type {
	var missing []events.Type
	for _, t := range events.AllTypes() {
		if !Registered(t) {
			missing = append(missing, t)
		}
	}
	return missing
}

// Apply looks up the handler for e.EventType and runs it against doc. In
// Live mode an invariant violation is returned as an error. In Replay mode,
// the caller (internal/replay) is expected to catch the error and record a
// skip rather than abort; Apply itself behaves identically in both modes —
// Mode only documents intent at call sites.
func Apply(doc docmodel.Document, e events.Event, mode Mode) (docmodel.Document, error) {
	if !e.Validate() {
		return doc, engineerr.New("applier.Apply", engineerr.CorruptEvent)
	}
	handler, ok := registry[e.EventType]
	if !ok {
		return doc, engineerr.New("applier.Apply", engineerr.CorruptEvent)
	}
	return handler(doc, e)
}

func applyNoop(doc docmodel.Document, _ events.Event) (docmodel.Document, error) {
	return doc, nil
}
