package undo

import (
	"context"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/eventstore"
	"wiretuner/engine/internal/ids"
	"wiretuner/engine/internal/replay"
	"wiretuner/engine/internal/snapshot"
)

// CacheCapacity is the fixed LRU size for reconstructed states (spec.md
// §4.8).
const CacheCapacity = 10

// ErrNoUndo and ErrNoRedo are the "user-visible no-op error, not fatal"
// results spec.md §7 requires when undoing at the minimum sequence or
// redoing at the maximum.
var (
	ErrNoUndo = errors.New("undo: nothing to undo")
	ErrNoRedo = errors.New("undo: nothing to redo")
)

// CacheStats reports the navigator's LRU cache occupancy.
type CacheStats struct {
	Len      int
	Capacity int
}

// Navigator is the operation-grouped undo/redo cursor of spec.md §4.8: a
// sequence cursor into the event log plus an LRU cache (capacity 10) of
// fully-reconstructed states keyed by sequence.
type Navigator struct {
	store      eventstore.Store
	snapStore  snapshot.Storage
	documentID ids.DocumentID

	mu              sync.Mutex
	currentSequence int64
	cache           *lru.Cache[int64, docmodel.Document]
}

// New constructs a Navigator for documentID. Call Initialize before use to
// position the cursor at the latest sequence.
func New(store eventstore.Store, snapStore snapshot.Storage, documentID ids.DocumentID) *Navigator {
	cache, _ := lru.New[int64, docmodel.Document](CacheCapacity)
	return &Navigator{
		store:           store,
		snapStore:       snapStore,
		documentID:      documentID,
		currentSequence: -1,
		cache:           cache,
	}
}

// Initialize replays to the latest committed sequence and positions the
// cursor there.
func (n *Navigator) Initialize(ctx context.Context) (replay.Result, error) {
	maxSeq, err := n.store.MaxSequence(ctx, n.documentID)
	if err != nil {
		return replay.Result{}, err
	}
	result := n.navigateTo(ctx, maxSeq, true)
	if result.FatalErr == nil && !result.Cancelled {
		n.mu.Lock()
		n.currentSequence = maxSeq
		n.mu.Unlock()
	}
	return result, nil
}

// CurrentSequence returns the navigator's cursor.
func (n *Navigator) CurrentSequence() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.currentSequence
}

// CanUndo reports whether there is an earlier state to undo to.
func (n *Navigator) CanUndo() bool {
	return n.CurrentSequence() > -1
}

// CanRedo reports whether there is a later committed sequence to redo to.
func (n *Navigator) CanRedo(ctx context.Context) (bool, error) {
	maxSeq, err := n.store.MaxSequence(ctx, n.documentID)
	if err != nil {
		return false, err
	}
	return n.CurrentSequence() < maxSeq, nil
}

// navigateTo replays (or serves from cache) the state at target, caching
// the result on a miss. The cache is single-writer under n.mu; cached
// values are cloned both on insert and on every hit so no caller can
// mutate shared state (spec.md §5).
func (n *Navigator) navigateTo(ctx context.Context, target int64, continueOnError bool) replay.Result {
	n.mu.Lock()
	if cached, ok := n.cache.Get(target); ok {
		clone := cached.Clone()
		n.mu.Unlock()
		return replay.Result{State: clone, SnapshotSequence: target}
	}
	n.mu.Unlock()

	result := replay.ReplayToSequence(ctx, n.store, n.snapStore, n.documentID, target, continueOnError)
	if result.FatalErr == nil && !result.Cancelled {
		n.mu.Lock()
		n.cache.Add(target, result.State.Clone())
		n.mu.Unlock()
	}
	return result
}

// NavigateToSequence replays to target unconditionally (validated against
// the log's bounds) and moves the cursor there.
func (n *Navigator) NavigateToSequence(ctx context.Context, target int64) (replay.Result, error) {
	maxSeq, err := n.store.MaxSequence(ctx, n.documentID)
	if err != nil {
		return replay.Result{}, err
	}
	if target < -1 || target > maxSeq {
		return replay.Result{}, errors.New("undo: sequence out of range")
	}
	result := n.navigateTo(ctx, target, true)
	if result.FatalErr == nil && !result.Cancelled {
		n.mu.Lock()
		n.currentSequence = target
		n.mu.Unlock()
	}
	return result, nil
}

// Undo moves the cursor to the sequence immediately before the start of the
// operation group containing the current cursor, and returns the replayed
// state there.
func (n *Navigator) Undo(ctx context.Context) (replay.Result, error) {
	if !n.CanUndo() {
		return replay.Result{}, ErrNoUndo
	}
	cur := n.CurrentSequence()
	lo, _, err := n.groupBounds(ctx, cur)
	if err != nil {
		return replay.Result{}, err
	}
	target := lo - 1
	result := n.navigateTo(ctx, target, true)
	if result.FatalErr == nil && !result.Cancelled {
		n.mu.Lock()
		n.currentSequence = target
		n.mu.Unlock()
	}
	return result, nil
}

// Redo moves the cursor forward to the end of the next operation group and
// returns the replayed state there.
func (n *Navigator) Redo(ctx context.Context) (replay.Result, error) {
	canRedo, err := n.CanRedo(ctx)
	if err != nil {
		return replay.Result{}, err
	}
	if !canRedo {
		return replay.Result{}, ErrNoRedo
	}
	cur := n.CurrentSequence()
	_, hi, err := n.groupBounds(ctx, cur+1)
	if err != nil {
		return replay.Result{}, err
	}
	result := n.navigateTo(ctx, hi, true)
	if result.FatalErr == nil && !result.Cancelled {
		n.mu.Lock()
		n.currentSequence = hi
		n.mu.Unlock()
	}
	return result, nil
}

// groupBounds returns the inclusive [lo, hi] sequence range of the
// operation group containing seq, identified by every member event sharing
// the same non-nil Envelope.UndoGroupID. An event with no UndoGroupID (not
// part of any explicit or implicit group) is its own singleton group.
func (n *Navigator) groupBounds(ctx context.Context, seq int64) (int64, int64, error) {
	e, ok, err := n.eventAt(ctx, seq)
	if err != nil {
		return 0, 0, err
	}
	if !ok || e.UndoGroupID == nil {
		return seq, seq, nil
	}
	groupID := *e.UndoGroupID

	lo := seq
	for lo > 0 {
		prev, ok, err := n.eventAt(ctx, lo-1)
		if err != nil {
			return 0, 0, err
		}
		if !ok || prev.UndoGroupID == nil || *prev.UndoGroupID != groupID {
			break
		}
		lo--
	}

	maxSeq, err := n.store.MaxSequence(ctx, n.documentID)
	if err != nil {
		return 0, 0, err
	}
	hi := seq
	for hi < maxSeq {
		next, ok, err := n.eventAt(ctx, hi+1)
		if err != nil {
			return 0, 0, err
		}
		if !ok || next.UndoGroupID == nil || *next.UndoGroupID != groupID {
			break
		}
		hi++
	}
	return lo, hi, nil
}

func (n *Navigator) eventAt(ctx context.Context, seq int64) (events.Event, bool, error) {
	if seq < 0 {
		return events.Event{}, false, nil
	}
	var found events.Event
	var ok bool
	err := n.store.Range(ctx, n.documentID, seq, seq, func(e events.Event) error {
		found = e
		ok = true
		return nil
	})
	return found, ok, err
}

// ClearCache discards every cached reconstructed state.
func (n *Navigator) ClearCache() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cache.Purge()
}

// CacheStats reports the navigator's LRU cache occupancy.
func (n *Navigator) CacheStats() CacheStats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return CacheStats{Len: n.cache.Len(), Capacity: CacheCapacity}
}

// BranchForNewEvent must be called before a new live event is appended
// while the cursor is behind the log's head. It tombstones the redo branch
// being abandoned (spec.md §9: resolved conservatively toward marking
// `abandoned` rather than physical deletion) and invalidates the cache,
// since cached states beyond the branch point no longer correspond to any
// reachable future of the log.
func (n *Navigator) BranchForNewEvent(ctx context.Context) error {
	cur := n.CurrentSequence()
	maxSeq, err := n.store.MaxSequence(ctx, n.documentID)
	if err != nil {
		return err
	}
	if cur >= maxSeq {
		return nil
	}
	if err := n.store.MarkAbandoned(ctx, n.documentID, cur+1, maxSeq); err != nil {
		return err
	}
	n.ClearCache()
	return nil
}

// NotifyAppended advances the cursor to sequence after the engine has
// successfully appended a new live event there.
func (n *Navigator) NotifyAppended(sequence int64) {
	n.mu.Lock()
	n.currentSequence = sequence
	n.mu.Unlock()
}
