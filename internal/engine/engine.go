// Package engine is the composition root spec.md §9 calls for in place of
// the source's "mixed global state / provider pattern": a single Engine
// value injects the event store, snapshot store, recorder, and navigator
// into every public entry point, rather than any of those being reached
// for as ambient globals. Grounded on the teacher's internal/app.Run
// composition root, generalized from a one-shot process bootstrap into a
// value that can open many documents over its lifetime.
package engine

import (
	"context"
	"os"
	"sync"

	"wiretuner/engine/internal/applier"
	"wiretuner/engine/internal/debugexport"
	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/hittest"
	"wiretuner/engine/internal/ids"
	"wiretuner/engine/internal/orchestrator"
	"wiretuner/engine/internal/replay"
	"wiretuner/engine/internal/session"
	"wiretuner/engine/internal/telemetry"
	"wiretuner/engine/internal/undo"
	"wiretuner/engine/logging"
	"wiretuner/engine/logging/sinks"
)

// Engine is the process-wide context every document handle is opened
// through. One Engine is typically constructed per process and shared by
// every open document and session.
type Engine struct {
	Publisher logging.Publisher
	Clock     logging.Clock
	Sessions  *session.Manager

	router  *logging.Router
	metrics telemetry.Metrics
}

// Option configures a new Engine.
type Option func(*Engine)

// WithPublisher attaches a telemetry publisher used by every opened
// document's recorder and orchestrator calls, overriding the default
// console-backed router New builds.
func WithPublisher(pub logging.Publisher) Option {
	return func(e *Engine) { e.Publisher = pub }
}

// WithClock overrides the engine's time source (tests).
func WithClock(clock logging.Clock) Option {
	return func(e *Engine) { e.Clock = clock }
}

// New constructs an Engine. With no WithPublisher option, it builds a
// logging.Router fanning out to a console sink on stderr, so the
// slow-append and degraded-recorder telemetry the ambient stack emits
// (internal/eventstore/boltstore, internal/recorder) actually reaches
// somewhere; callers that want silence or a different sink pass
// WithPublisher explicitly (tests pass logging.NopPublisher{}).
func New(opts ...Option) *Engine {
	e := &Engine{
		Clock:    logging.SystemClock{},
		Sessions: session.NewManager(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.Publisher == nil {
		console := sinks.NewConsoleSink(os.Stderr, logging.ConsoleConfig{Prefix: "wiretuner: "})
		router, err := logging.NewRouter(logging.DefaultConfig(), e.Clock, nil, map[string]logging.Sink{
			"console": console,
		})
		if err != nil {
			e.Publisher = logging.NopPublisher{}
		} else {
			e.router = router
			e.Publisher = router
			e.metrics = telemetry.WrapMetrics(router.Metrics())
		}
	}

	return e
}

// countDocumentEvent increments key on the engine's metrics if it owns one,
// a no-op when the caller supplied its own Publisher via WithPublisher.
func (e *Engine) countDocumentEvent(key string) {
	if e.metrics != nil {
		e.metrics.Add(key, 1)
	}
}

// Close stops the engine's own telemetry router, flushing its console sink.
// It is a no-op on an Engine built with WithPublisher, which owns no router.
func (e *Engine) Close(ctx context.Context) error {
	if e.router == nil {
		return nil
	}
	return e.router.Close(ctx)
}

// Document is one open document: its durable handle, the live
// reconstructed state, the implicit-grouping state machine, and a
// lazily-built, per-artboard hit-test index cache. Every exported method
// serializes against Document.mu, matching the single-writer-per-document
// discipline of spec.md §5.
type Document struct {
	engine *Engine
	handle *orchestrator.Handle

	mu         sync.Mutex
	state      docmodel.Document
	grouper    *undo.Grouper
	hitIndexes map[ids.ArtboardID]*hittest.Index
}

// Open loads an existing document at path, replaying it to its latest
// sequence, and returns a ready-to-use Document handle (spec.md §4.9 load
// flow).
func (e *Engine) Open(ctx context.Context, documentID ids.DocumentID, path string) (*Document, orchestrator.LoadResult, error) {
	handle, result, err := orchestrator.Load(ctx, documentID, path, e.Publisher, e.Clock)
	if err != nil {
		return nil, orchestrator.LoadResult{}, err
	}
	e.countDocumentEvent("engine.documents_opened")
	return &Document{
		engine:     e,
		handle:     handle,
		state:      result.Document,
		grouper:    undo.NewGrouper(),
		hitIndexes: make(map[ids.ArtboardID]*hittest.Index),
	}, result, nil
}

// Create opens a brand-new, empty document at path (spec.md §4.9's "if new
// document" branch).
func (e *Engine) Create(ctx context.Context, documentID ids.DocumentID, path, title string) (*Document, error) {
	handle, err := orchestrator.NewDocument(ctx, documentID, path, e.Publisher, e.Clock)
	if err != nil {
		return nil, err
	}
	e.countDocumentEvent("engine.documents_created")
	return &Document{
		engine:     e,
		handle:     handle,
		state:      docmodel.New(documentID, title),
		grouper:    undo.NewGrouper(),
		hitIndexes: make(map[ids.ArtboardID]*hittest.Index),
	}, nil
}

// Snapshot returns a deep copy of the document's current in-memory state.
// Callers must not mutate the returned value's slices in place; docmodel's
// Clone already guarantees no aliasing with the live state.
func (d *Document) Snapshot() docmodel.Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Clone()
}

// DocumentID returns the handle's document id.
func (d *Document) DocumentID() ids.DocumentID { return d.handle.DocumentID }

// ApplyLive applies a single live-originated event: it enforces every
// domain invariant via internal/applier in Live mode (spec.md §4.4 — "any
// invariant violation rejects the event live"), opens an implicit
// operation-grouping boundary first if the idle/tool-switch rules of
// spec.md §4.7 call for one, records the event durably, and advances the
// undo navigator's cursor. toolID identifies the active tool for implicit
// grouping; pass "" if the caller has no notion of a current tool.
//
// StartGroup/EndGroup must go through BeginGroup/EndGroup instead, not
// ApplyLive: they are boundary markers, not document-mutating events.
func (d *Document) ApplyLive(ctx context.Context, e events.Event, toolID string) (docmodel.Document, error) {
	if e.IsGroupBoundary() {
		return docmodel.Document{}, engineerr.Validation("engine.ApplyLive", "eventType", "StartGroup/EndGroup must go through BeginGroup/EndGroup")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := applier.Apply(d.state, e, applier.Live)
	if err != nil {
		return docmodel.Document{}, err
	}

	if opened, reason := d.grouper.Observe(d.engine.Clock.Now(), toolID); opened {
		groupID := ids.NewGroupID()
		d.handle.Recorder.SetImplicitGroup(groupID)
		_ = reason // boundary reason is diagnostic only; grouping needs just the fresh id
	}

	if err := d.handle.Navigator.BranchForNewEvent(ctx); err != nil {
		return docmodel.Document{}, err
	}

	recorded, err := d.handle.Recorder.Record(ctx, e)
	if err != nil {
		return docmodel.Document{}, err
	}
	if recorded.EventSequence >= 0 {
		d.handle.Navigator.NotifyAppended(recorded.EventSequence)
	}

	d.state = next
	d.invalidateHitIndexLocked(affectedArtboard(e, d.state))
	return d.state.Clone(), nil
}

// BeginGroup opens an explicit undo/redo operation group (spec.md §4.7):
// every event recorded until the matching EndGroup carries its
// UndoGroupID. Ends any implicit group first, since explicit pairs take
// precedence.
func (d *Document) BeginGroup(ctx context.Context, label, toolID string) (ids.GroupID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.grouper.ObserveExplicitStart(d.engine.Clock.Now(), toolID)
	groupID, err := d.handle.Recorder.BeginGroup(ctx, label, toolID)
	if err != nil {
		return "", err
	}
	maxSeq, err := d.handle.Store().MaxSequence(ctx, d.handle.DocumentID)
	if err != nil {
		return "", err
	}
	d.handle.Navigator.NotifyAppended(maxSeq)
	return groupID, nil
}

// EndGroup closes the explicit group opened by BeginGroup.
func (d *Document) EndGroup(ctx context.Context, groupID ids.GroupID, label string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.grouper.ObserveExplicitEnd(d.engine.Clock.Now())
	if err := d.handle.Recorder.EndGroup(ctx, groupID, label); err != nil {
		return err
	}
	maxSeq, err := d.handle.Store().MaxSequence(ctx, d.handle.DocumentID)
	if err != nil {
		return err
	}
	d.handle.Navigator.NotifyAppended(maxSeq)
	return nil
}

// ForceBoundary splits operation groups at the current point (spec.md
// §4.7's forceBoundary(reason)), regardless of elapsed idle time or tool.
func (d *Document) ForceBoundary() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.grouper.ForceBoundary()
	d.handle.Recorder.ClearImplicitGroup()
}

// Flush forces durable commit of every sampled, not-yet-appended
// continuous event, per spec.md §4.3's flush() contract, then advances the
// navigator's cursor to whatever sequence that committed.
func (d *Document) Flush(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	seqs, err := d.handle.Recorder.Flush(ctx)
	if err != nil {
		return err
	}
	for _, seq := range seqs {
		if seq > d.handle.Navigator.CurrentSequence() {
			d.handle.Navigator.NotifyAppended(seq)
		}
	}
	return nil
}

// Undo moves the cursor to just before the operation group containing the
// current sequence and returns the replayed state (spec.md §4.8).
func (d *Document) Undo(ctx context.Context) (docmodel.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	result, err := d.handle.Navigator.Undo(ctx)
	if err != nil {
		return docmodel.Document{}, err
	}
	return d.settleReplayLocked(result)
}

// Redo moves the cursor forward to the end of the next operation group.
func (d *Document) Redo(ctx context.Context) (docmodel.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	result, err := d.handle.Navigator.Redo(ctx)
	if err != nil {
		return docmodel.Document{}, err
	}
	return d.settleReplayLocked(result)
}

// NavigateToSequence moves the cursor to an arbitrary validated sequence.
func (d *Document) NavigateToSequence(ctx context.Context, target int64) (docmodel.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	result, err := d.handle.Navigator.NavigateToSequence(ctx, target)
	if err != nil {
		return docmodel.Document{}, err
	}
	return d.settleReplayLocked(result)
}

// settleReplayLocked folds a navigator replay.Result into the document's
// live state: a fatal error or cancellation is returned as-is and leaves
// the live state untouched; otherwise the replayed state (which may carry
// non-fatal warnings) becomes the new live state and every cached hit
// index is dropped, since undo/redo can touch any artboard.
func (d *Document) settleReplayLocked(result replay.Result) (docmodel.Document, error) {
	if result.FatalErr != nil {
		return docmodel.Document{}, result.FatalErr
	}
	if result.Cancelled {
		return docmodel.Document{}, engineerr.New("engine.settleReplay", engineerr.Cancelled)
	}
	// The title is not carried by any event, so the live one is kept.
	result.State.Title = d.state.Title
	d.state = result.State
	d.hitIndexes = make(map[ids.ArtboardID]*hittest.Index)
	return d.state.Clone(), nil
}

// CanUndo/CanRedo report the navigator's cursor bounds.
func (d *Document) CanUndo() bool { return d.handle.Navigator.CanUndo() }

// CanRedo reports whether redo is possible from the current cursor.
func (d *Document) CanRedo(ctx context.Context) (bool, error) {
	return d.handle.Navigator.CanRedo(ctx)
}

// CacheStats exposes the undo navigator's LRU occupancy.
func (d *Document) CacheStats() undo.CacheStats { return d.handle.Navigator.CacheStats() }

// Save flushes pending events and snapshots if due, returning where the
// document landed (spec.md §4.9 save flow).
func (d *Document) Save(ctx context.Context) (orchestrator.SaveResult, error) {
	d.mu.Lock()
	state := d.state
	d.mu.Unlock()
	result, err := orchestrator.Save(ctx, d.handle, state, d.engine.Clock)
	if err == nil {
		d.engine.countDocumentEvent("engine.documents_saved")
	}
	return result, err
}

// Export produces a bounded-range debug export covering [start, end]
// (spec.md §6.3), using the handle's own store for both events and the
// nearest snapshot.
func (d *Document) Export(ctx context.Context, start, end int64) (debugexport.Document, error) {
	store := d.handle.Store()
	return debugexport.Export(ctx, store, store, d.handle.DocumentID, start, end, d.engine.Clock)
}

// Import replays a bounded debug export (spec.md §6.3) into this document's
// store, remapping every event's DocumentID to this document's id, then
// reinitializes the undo navigator and live state from the newly extended
// log. Intended for a freshly created, empty document, matching the CLI's
// import subcommand (spec.md §6.5).
func (d *Document) Import(ctx context.Context, exported debugexport.Document, skipValidation bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := debugexport.Import(ctx, d.handle.Store(), exported, d.handle.DocumentID, skipValidation); err != nil {
		return err
	}

	result, err := d.handle.Navigator.Initialize(ctx)
	if err != nil {
		return err
	}
	if result.FatalErr != nil {
		return result.FatalErr
	}
	if result.Cancelled {
		return engineerr.New("engine.Import", engineerr.Cancelled)
	}
	d.state = result.State
	d.hitIndexes = make(map[ids.ArtboardID]*hittest.Index)
	return nil
}

// HitTest builds (or reuses a cached) spatial index over artboardID's
// objects and returns ordered hits at point under cfg (spec.md §4.10).
func (d *Document) HitTest(artboardID ids.ArtboardID, point geometry.Point, cfg hittest.Config) ([]hittest.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, err := d.hitIndexLocked(artboardID)
	if err != nil {
		return nil, err
	}
	return hittest.HitTest(idx, point, cfg), nil
}

// HitTestBounds runs a broad-phase marquee-selection query over
// artboardID's objects.
func (d *Document) HitTestBounds(artboardID ids.ArtboardID, rect geometry.Rectangle) (map[ids.ObjectID]struct{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, err := d.hitIndexLocked(artboardID)
	if err != nil {
		return nil, err
	}
	return hittest.HitTestBounds(idx, rect), nil
}

func (d *Document) hitIndexLocked(artboardID ids.ArtboardID) (*hittest.Index, error) {
	if idx, ok := d.hitIndexes[artboardID]; ok {
		return idx, nil
	}
	aIdx := d.state.IndexOfArtboard(artboardID)
	if aIdx < 0 {
		return nil, engineerr.New("engine.hitIndex", engineerr.InvariantViolated)
	}
	var objects []docmodel.VectorObject
	for _, layer := range d.state.Artboards[aIdx].Layers {
		objects = append(objects, layer.Objects...)
	}
	idx := hittest.Build(objects)
	d.hitIndexes[artboardID] = idx
	return idx, nil
}

func (d *Document) invalidateHitIndexLocked(artboardID ids.ArtboardID, ok bool) {
	if !ok {
		d.hitIndexes = make(map[ids.ArtboardID]*hittest.Index)
		return
	}
	delete(d.hitIndexes, artboardID)
}

// InvalidateHitIndexes discards every cached spatial index, forcing the
// next HitTest/HitTestBounds call to rebuild from the current state.
func (d *Document) InvalidateHitIndexes() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hitIndexes = make(map[ids.ArtboardID]*hittest.Index)
}

// Close releases the document's backing storage and stops its recorder's
// sampling ticker.
func (d *Document) Close() error {
	return d.handle.Close()
}

// affectedArtboard reports which artboard, if any, an event's mutation is
// scoped to, so ApplyLive can invalidate only that artboard's cached hit
// index rather than the whole document's. A false second return means the
// mutation's scope can't be narrowed (layer reorder, artboard bounds) and
// every cached index should be dropped.
func affectedArtboard(e events.Event, doc docmodel.Document) (ids.ArtboardID, bool) {
	objectID, ok := objectIDOf(e)
	if !ok {
		return "", false
	}
	aIdx, _, _, ok := doc.FindObject(objectID)
	if !ok || aIdx < 0 {
		return "", false
	}
	return doc.Artboards[aIdx].ID, true
}

func objectIDOf(e events.Event) (ids.ObjectID, bool) {
	switch {
	case e.AddAnchor != nil:
		return e.AddAnchor.PathID, true
	case e.MoveAnchor != nil:
		return e.MoveAnchor.PathID, true
	case e.DeleteAnchor != nil:
		return e.DeleteAnchor.PathID, true
	case e.UpdateHandle != nil:
		return e.UpdateHandle.PathID, true
	case e.FinishPath != nil:
		return e.FinishPath.PathID, true
	case e.UpdateShapeParameters != nil:
		return e.UpdateShapeParameters.ShapeID, true
	case e.DeleteObject != nil:
		return e.DeleteObject.ObjectID, true
	case e.MoveObject != nil:
		return e.MoveObject.ObjectID, true
	case e.RotateObject != nil:
		return e.RotateObject.ObjectID, true
	case e.ScaleObject != nil:
		return e.ScaleObject.ObjectID, true
	default:
		return "", false
	}
}
