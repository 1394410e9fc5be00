package snapshot

import (
	"sort"
	"sync"

	"wiretuner/engine/internal/ids"
)

// Memstore is an in-process reference Storage implementation, grounded on
// the same mutex-guarded-map shape as eventstore/memstore.Store. It backs
// replay tests that don't need a real .wiretuner file.
type Memstore struct {
	mu   sync.Mutex
	docs map[ids.DocumentID]map[int64][]byte
}

// NewMemstore constructs an empty in-memory snapshot store.
func NewMemstore() *Memstore {
	return &Memstore{docs: make(map[ids.DocumentID]map[int64][]byte)}
}

// WriteSnapshot implements Storage.
func (m *Memstore) WriteSnapshot(documentID ids.DocumentID, sequence int64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bySeq, ok := m.docs[documentID]
	if !ok {
		bySeq = make(map[int64][]byte)
		m.docs[documentID] = bySeq
	}
	cloned := append([]byte(nil), data...)
	bySeq[sequence] = cloned
	return nil
}

// LatestSnapshotAtOrBefore implements Storage.
func (m *Memstore) LatestSnapshotAtOrBefore(documentID ids.DocumentID, target int64) ([]byte, int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bySeq := m.docs[documentID]
	if len(bySeq) == 0 {
		return nil, 0, false, nil
	}
	seqs := make([]int64, 0, len(bySeq))
	for seq := range bySeq {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	best := int64(-1)
	for _, seq := range seqs {
		if seq <= target {
			best = seq
		}
	}
	if best < 0 {
		return nil, 0, false, nil
	}
	return append([]byte(nil), bySeq[best]...), best, true, nil
}

// OlderSnapshotBefore implements Storage.
func (m *Memstore) OlderSnapshotBefore(documentID ids.DocumentID, sequence int64) ([]byte, int64, bool, error) {
	return m.LatestSnapshotAtOrBefore(documentID, sequence-1)
}

// PruneSnapshots implements Storage.
func (m *Memstore) PruneSnapshots(documentID ids.DocumentID, keepCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bySeq := m.docs[documentID]
	if len(bySeq) <= keepCount {
		return nil
	}
	seqs := make([]int64, 0, len(bySeq))
	for seq := range bySeq {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for _, seq := range seqs[:len(seqs)-keepCount] {
		delete(bySeq, seq)
	}
	return nil
}
