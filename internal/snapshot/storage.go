package snapshot

import "wiretuner/engine/internal/ids"

// Storage is the persistence contract a snapshot backend must satisfy
// (spec.md §4.5, §6.1). boltstore.Store already exposes exactly this method
// set against its snapshots bucket; Memstore (memstore.go) is the in-process
// reference used by replay tests.
type Storage interface {
	WriteSnapshot(documentID ids.DocumentID, sequence int64, data []byte) error
	LatestSnapshotAtOrBefore(documentID ids.DocumentID, target int64) (data []byte, sequence int64, ok bool, err error)
	OlderSnapshotBefore(documentID ids.DocumentID, sequence int64) (data []byte, seq int64, ok bool, err error)
	PruneSnapshots(documentID ids.DocumentID, keepCount int) error
}
