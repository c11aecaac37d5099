package dedupe

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var updatesBucket = []byte("updates")

// Bolt persists claimed keys in a bbolt file so they survive restarts.
type Bolt struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string, ttl time.Duration) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(updatesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db, ttl: ttl, now: time.Now}, nil
}

// Claim implements Store. Expired keys are swept in the same transaction
// once every pruneEvery claims.
func (b *Bolt) Claim(_ context.Context, key string) (fresh bool, err error) {
	now := b.now()
	err = b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(updatesBucket)
		if v := bucket.Get([]byte(key)); len(v) == 8 {
			at := time.Unix(0, int64(binary.BigEndian.Uint64(v)))
			if now.Sub(at) < b.ttl {
				return nil
			}
		}
		if bucket.Sequence()%pruneEvery == 0 {
			if err := b.prune(bucket, now); err != nil {
				return err
			}
		}
		if _, err := bucket.NextSequence(); err != nil {
			return err
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(now.UnixNano()))
		if err := bucket.Put([]byte(key), buf[:]); err != nil {
			return err
		}
		fresh = true
		return nil
	})
	return fresh, err
}

func (b *Bolt) prune(bucket *bolt.Bucket, now time.Time) error {
	var stale [][]byte
	err := bucket.ForEach(func(k, v []byte) error {
		if len(v) != 8 || now.Sub(time.Unix(0, int64(binary.BigEndian.Uint64(v)))) >= b.ttl {
			stale = append(stale, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range stale {
		if err := bucket.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Store.
func (b *Bolt) Close() error {
	return b.db.Close()
}
