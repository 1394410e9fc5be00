// Package boltstore is the durable reference realization of the event
// store and snapshot storage contracts (spec.md §6.1), backed by
// go.etcd.io/bbolt. A document is one ".wiretuner" bbolt file holding three
// top-level buckets: metadata, events, and snapshots, mirroring the column
// layout in spec.md §6.1. bbolt serializes all transactions against a
// single file, which gives the per-document single-writer guarantee of
// spec.md §5 for free within one file.
package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/eventstore"
	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/ids"
	"wiretuner/engine/logging"
)

var (
	bucketMetadata  = []byte("metadata")
	bucketEvents    = []byte("events")
	bucketSnapshots = []byte("snapshots")

	metadataKey = []byte("meta")
)

// Metadata is the contents of the metadata bucket's single entry.
type Metadata struct {
	DocumentID    ids.DocumentID `json:"documentId"`
	FormatVersion int            `json:"formatVersion"`
	SchemaVersion int            `json:"schemaVersion"`
	CreatedAt     int64          `json:"createdAt"`
	UpdatedAt     int64          `json:"updatedAt"`
}

// CurrentFormatVersion is the on-disk bucket-layout version.
const CurrentFormatVersion = 1

type handle struct {
	db       *bbolt.DB
	notifyCh chan int64
}

// Store is the bbolt-backed Store/SnapshotStorage realization, keyed by the
// document whose .wiretuner file is currently open.
type Store struct {
	mu        sync.Mutex
	handles   map[ids.DocumentID]*handle
	publisher logging.Publisher
	clock     logging.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher attaches a telemetry publisher for slow-append warnings.
func WithPublisher(pub logging.Publisher) Option {
	return func(s *Store) { s.publisher = pub }
}

// WithClock overrides the clock used for timing (tests).
func WithClock(clock logging.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

// New constructs a Store with no documents open yet.
func New(opts ...Option) *Store {
	s := &Store{
		handles:   make(map[ids.DocumentID]*handle),
		publisher: logging.NopPublisher{},
		clock:     logging.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens (creating if absent) the .wiretuner bbolt file at path and
// registers it under documentID. If the file is new, metadata is
// initialized with schemaVersion.
func (s *Store) Open(documentID ids.DocumentID, path string, schemaVersion int) error {
	db, err := bbolt.Open(path, 0o644, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return engineerr.Wrap("boltstore.Open", engineerr.StorageFull, err)
	}

	now := time.Now().UnixMilli()
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMetadata, bucketEvents, bucketSnapshots} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMetadata)
		if meta.Get(metadataKey) == nil {
			m := Metadata{
				DocumentID:    documentID,
				FormatVersion: CurrentFormatVersion,
				SchemaVersion: schemaVersion,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			return meta.Put(metadataKey, data)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return engineerr.Wrap("boltstore.Open", engineerr.CorruptStore, err)
	}

	s.mu.Lock()
	s.handles[documentID] = &handle{db: db, notifyCh: make(chan int64, 1)}
	s.mu.Unlock()
	return nil
}

// Close closes the bbolt file backing documentID, if open.
func (s *Store) Close(documentID ids.DocumentID) error {
	s.mu.Lock()
	h, ok := s.handles[documentID]
	delete(s.handles, documentID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return h.db.Close()
}

func (s *Store) handleFor(documentID ids.DocumentID) (*handle, error) {
	s.mu.Lock()
	h, ok := s.handles[documentID]
	s.mu.Unlock()
	if !ok {
		return nil, engineerr.New("boltstore", engineerr.FileNotFound)
	}
	return h, nil
}

// Metadata returns the stored metadata for documentID.
func (s *Store) Metadata(documentID ids.DocumentID) (Metadata, error) {
	h, err := s.handleFor(documentID)
	if err != nil {
		return Metadata{}, err
	}
	var m Metadata
	err = h.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMetadata).Get(metadataKey)
		if data == nil {
			return engineerr.New("boltstore.Metadata", engineerr.CorruptStore)
		}
		return json.Unmarshal(data, &m)
	})
	return m, err
}

// SetSchemaVersion updates the stored schema version after a migration.
func (s *Store) SetSchemaVersion(documentID ids.DocumentID, version int) error {
	h, err := s.handleFor(documentID)
	if err != nil {
		return err
	}
	return h.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMetadata)
		data := meta.Get(metadataKey)
		var m Metadata
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		m.SchemaVersion = version
		m.UpdatedAt = time.Now().UnixMilli()
		out, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return meta.Put(metadataKey, out)
	})
}

func seqKey(seq int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(seq))
	return buf
}

func keySeq(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key))
}

func (h *handle) notify(seq int64) {
	select {
	case h.notifyCh <- seq:
	default:
		select {
		case <-h.notifyCh:
		default:
		}
		select {
		case h.notifyCh <- seq:
		default:
		}
	}
}

// Append implements eventstore.Store.
func (s *Store) Append(ctx context.Context, documentID ids.DocumentID, event events.Event) (int64, error) {
	seqs, err := s.AppendBatch(ctx, documentID, []events.Event{event})
	if err != nil {
		return -1, err
	}
	return seqs[0], nil
}

// AppendBatch implements eventstore.Store.
func (s *Store) AppendBatch(ctx context.Context, documentID ids.DocumentID, batch []events.Event) ([]int64, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	h, err := s.handleFor(documentID)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var seqs []int64
	err = h.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketEvents)
		next := int64(0)
		if k, _ := bucket.Cursor().Last(); k != nil {
			next = keySeq(k) + 1
		}
		seqs = make([]int64, len(batch))
		for i, e := range batch {
			e.EventSequence = next + int64(i)
			data, err := events.Marshal(e)
			if err != nil {
				return engineerr.Wrap("boltstore.AppendBatch", engineerr.CorruptEvent, err)
			}
			if err := bucket.Put(seqKey(e.EventSequence), data); err != nil {
				return err
			}
			seqs[i] = e.EventSequence
		}
		return nil
	})
	if err != nil {
		return nil, engineerr.Wrap("boltstore.AppendBatch", engineerr.StorageFull, err)
	}

	h.notify(seqs[len(seqs)-1])

	if elapsed := time.Since(start); elapsed.Nanoseconds() > eventstore.SlowAppendThreshold {
		s.publisher.Publish(ctx, logging.Event{
			Type:     "eventstore.slow_append",
			Time:     s.clock.Now(),
			Severity: logging.SeverityWarn,
			Category: "eventstore",
			Extra: map[string]any{
				"documentId": string(documentID),
				"elapsedMs":  elapsed.Milliseconds(),
			},
		})
	}

	return seqs, nil
}

// Range implements eventstore.Store.
func (s *Store) Range(ctx context.Context, documentID ids.DocumentID, fromSeq, toSeq int64, fn func(events.Event) error) error {
	h, err := s.handleFor(documentID)
	if err != nil {
		return err
	}
	return h.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketEvents)
		c := bucket.Cursor()
		for k, v := c.Seek(seqKey(fromSeq)); k != nil; k, v = c.Next() {
			seq := keySeq(k)
			if toSeq >= 0 && seq > toSeq {
				break
			}
			select {
			case <-ctx.Done():
				return engineerr.Wrap("boltstore.Range", engineerr.Cancelled, ctx.Err())
			default:
			}
			e, err := events.Unmarshal(v)
			if err != nil {
				return engineerr.Wrap("boltstore.Range", engineerr.CorruptEvent, err)
			}
			if err := fn(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// MaxSequence implements eventstore.Store.
func (s *Store) MaxSequence(ctx context.Context, documentID ids.DocumentID) (int64, error) {
	h, err := s.handleFor(documentID)
	if err != nil {
		return -1, err
	}
	var max int64 = -1
	err = h.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketEvents)
		if k, _ := bucket.Cursor().Last(); k != nil {
			max = keySeq(k)
		}
		return nil
	})
	return max, err
}

// PruneBefore implements eventstore.Store.
func (s *Store) PruneBefore(ctx context.Context, documentID ids.DocumentID, seq int64, hasSnapshotAtOrAfter bool) error {
	if !hasSnapshotAtOrAfter {
		return engineerr.New("boltstore.PruneBefore", engineerr.InvariantViolated)
	}
	h, err := s.handleFor(documentID)
	if err != nil {
		return err
	}
	return h.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketEvents)
		c := bucket.Cursor()
		var toDelete [][]byte
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if keySeq(k) >= seq {
				break
			}
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
		for _, k := range toDelete {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkAbandoned implements eventstore.Store.
func (s *Store) MarkAbandoned(ctx context.Context, documentID ids.DocumentID, fromSeq, toSeq int64) error {
	h, err := s.handleFor(documentID)
	if err != nil {
		return err
	}
	return h.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketEvents)
		c := bucket.Cursor()
		for k, v := c.Seek(seqKey(fromSeq)); k != nil; k, v = c.Next() {
			seq := keySeq(k)
			if seq > toSeq {
				break
			}
			e, err := events.Unmarshal(v)
			if err != nil {
				return engineerr.Wrap("boltstore.MarkAbandoned", engineerr.CorruptEvent, err)
			}
			e.Abandoned = true
			data, err := events.Marshal(e)
			if err != nil {
				return err
			}
			if err := bucket.Put(k, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Notifications implements eventstore.Store.
func (s *Store) Notifications(documentID ids.DocumentID) <-chan int64 {
	h, err := s.handleFor(documentID)
	if err != nil {
		closed := make(chan int64)
		close(closed)
		return closed
	}
	return h.notifyCh
}

// WriteSnapshot persists raw, already-encoded snapshot bytes at sequence.
func (s *Store) WriteSnapshot(documentID ids.DocumentID, sequence int64, data []byte) error {
	h, err := s.handleFor(documentID)
	if err != nil {
		return err
	}
	return h.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put(seqKey(sequence), data)
	})
}

// LatestSnapshotAtOrBefore returns the snapshot bytes and sequence of the
// highest-sequence snapshot with sequence <= target, or ok=false if none
// exists.
func (s *Store) LatestSnapshotAtOrBefore(documentID ids.DocumentID, target int64) (data []byte, sequence int64, ok bool, err error) {
	h, handleErr := s.handleFor(documentID)
	if handleErr != nil {
		return nil, 0, false, handleErr
	}
	err = h.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketSnapshots).Cursor()
		k, v := c.Seek(seqKey(target))
		if k == nil || keySeq(k) > target {
			k, v = c.Prev()
		}
		if k == nil || keySeq(k) > target {
			return nil
		}
		sequence = keySeq(k)
		data = append([]byte(nil), v...)
		ok = true
		return nil
	})
	return data, sequence, ok, err
}

// OlderSnapshotBefore returns the snapshot immediately older than sequence,
// used by the replayer's corruption fallback walk.
func (s *Store) OlderSnapshotBefore(documentID ids.DocumentID, sequence int64) (data []byte, seq int64, ok bool, err error) {
	return s.LatestSnapshotAtOrBefore(documentID, sequence-1)
}

// PruneSnapshots retains only the newest keepCount snapshots.
func (s *Store) PruneSnapshots(documentID ids.DocumentID, keepCount int) error {
	h, err := s.handleFor(documentID)
	if err != nil {
		return err
	}
	return h.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		var keys [][]byte
		c := bucket.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		if len(keys) <= keepCount {
			return nil
		}
		for _, k := range keys[:len(keys)-keepCount] {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
