package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var rootBucket = []byte("history")

// BoltStore keeps entries in a bbolt file: one nested bucket per user, keyed by a monotonically
// increasing sequence.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the store at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error { return s.db.Close() }

// Record appends e to its user's bucket in a single write transaction.
func (s *BoltStore) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.UserID == "" {
		return errors.New("history entry has no user id")
	}

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	tx, err := s.db.Begin(true)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	user, err := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(e.UserID))
	if err != nil {
		return fmt.Errorf("user bucket: %w", err)
	}
	seq, err := user.NextSequence()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if err := user.Put(seqKey(seq), value); err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return tx.Commit()
}

// Recent walks the user's bucket backwards. An unknown user has no entries.
func (s *BoltStore) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	out := []Entry{}
	err := s.db.View(func(tx *bolt.Tx) error {
		user := tx.Bucket(rootBucket).Bucket([]byte(userID))
		if user == nil {
			return nil
		}
		c := user.Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
