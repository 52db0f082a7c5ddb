package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmcdole/gallerysync/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketRecords = []byte("records") // id -> JSON metadata
	bucketContent = []byte("content") // id -> raw payload
	bucketOrder   = []byte("order")   // big-endian seq -> id
	bucketMeta    = []byte("meta")
)

var keyPageCursor = []byte("page_cursor")

type boltBackend struct {
	db *bolt.DB
}

func openBoltBackend(path string) (*boltBackend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketRecords, bucketContent, bucketOrder, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &boltBackend{db: db}, nil
}

func (b *boltBackend) close() error {
	return b.db.Close()
}

// === Generic helpers ===

func itob(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// readRecord decodes the metadata of id and, when complete, its payload.
// Both reads happen in tx so content and retrievedAt are seen together.
func readRecord(tx *bolt.Tx, id []byte, withContent bool) (domain.CachedRecord, bool, error) {
	var rec domain.CachedRecord
	v := tx.Bucket(bucketRecords).Get(id)
	if v == nil {
		return rec, false, nil
	}
	if err := json.Unmarshal(v, &rec); err != nil {
		return rec, false, fmt.Errorf("decode record %q: %w", id, err)
	}
	if withContent && rec.HasContent() {
		if c := tx.Bucket(bucketContent).Get(id); c != nil {
			rec.Content = make([]byte, len(c))
			copy(rec.Content, c)
		} else {
			rec.Content = []byte{}
		}
	}
	return rec, true, nil
}

func putRecord(tx *bolt.Tx, rec domain.CachedRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketRecords).Put([]byte(rec.ID), data)
}

// insertRecord assigns the next insertion sequence and writes rec.
func insertRecord(tx *bolt.Tx, rec domain.CachedRecord) (uint64, error) {
	order := tx.Bucket(bucketOrder)
	seq, err := order.NextSequence()
	if err != nil {
		return 0, err
	}
	rec.Seq = seq
	if err := putRecord(tx, rec); err != nil {
		return 0, err
	}
	if err := order.Put(itob(seq), []byte(rec.ID)); err != nil {
		return 0, err
	}
	return seq, nil
}

// === Writes ===

func (b *boltBackend) upsertSkeleton(id, title, sourceURL string) (domain.UpsertOutcome, uint64, error) {
	var (
		outcome domain.UpsertOutcome
		seq     uint64
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketRecords).Get([]byte(id)) != nil {
			outcome = domain.UpsertAlreadyExists
			return nil
		}
		var err error
		seq, err = insertRecord(tx, domain.CachedRecord{ID: id, Title: title, SourceURL: sourceURL})
		if err != nil {
			return err
		}
		outcome = domain.UpsertInserted
		return nil
	})
	return outcome, seq, err
}

func (b *boltBackend) attachContent(id string, content []byte, retrievedAt string) (domain.AttachOutcome, uint64, error) {
	var (
		outcome domain.AttachOutcome
		seq     uint64
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		key := []byte(id)
		rec, ok, err := readRecord(tx, key, false)
		if err != nil {
			return err
		}

		switch {
		case !ok:
			seq, err = insertRecord(tx, domain.CachedRecord{ID: id, RetrievedAt: retrievedAt})
			if err != nil {
				return err
			}
			outcome = domain.AttachNotFound
		case rec.HasContent():
			outcome = domain.AttachAlreadyComplete
			return nil
		default:
			rec.RetrievedAt = retrievedAt
			if err := putRecord(tx, rec); err != nil {
				return err
			}
			seq = rec.Seq
			outcome = domain.AttachUpdated
		}

		return tx.Bucket(bucketContent).Put(key, content)
	})
	return outcome, seq, err
}

// === Reads ===

func (b *boltBackend) get(id string) (domain.CachedRecord, bool, error) {
	var (
		rec domain.CachedRecord
		ok  bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		var err error
		rec, ok, err = readRecord(tx, []byte(id), true)
		return err
	})
	return rec, ok, err
}

func (b *boltBackend) list(offset, limit int, withContent bool) ([]domain.CachedRecord, error) {
	var recs []domain.CachedRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketOrder).Cursor()
		skipped := 0
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(recs) >= limit {
				break
			}
			rec, ok, err := readRecord(tx, v, withContent)
			if err != nil {
				return err
			}
			if ok {
				recs = append(recs, rec)
			}
		}
		return nil
	})
	return recs, err
}

func (b *boltBackend) listMissing() ([]domain.CachedRecord, error) {
	var recs []domain.CachedRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketOrder).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			rec, ok, err := readRecord(tx, v, false)
			if err != nil {
				return err
			}
			if ok && rec.IsSkeleton() {
				recs = append(recs, rec)
			}
		}
		return nil
	})
	return recs, err
}

func (b *boltBackend) count() (int, error) {
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketOrder).Stats().KeyN
		return nil
	})
	return n, err
}

// === Feed position ===

func (b *boltBackend) pageCursor() (int, error) {
	var page int
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get(keyPageCursor); len(v) == 8 {
			page = int(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return page, err
}

func (b *boltBackend) savePageCursor(page int) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyPageCursor, itob(uint64(page)))
	})
}
