package pairings

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/agentstation/leimap/pkg/constants"
	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/logging"
)

const bucketName = "pairings"

// Bolt is a Store backed by a bbolt database file.
type Bolt struct {
	db   *bolt.DB
	path string
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", dir, err)
		}
	}
	db, err := bolt.Open(path, constants.SecureFilePermissions, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("init", path, err)
	}
	logging.Debug().Str("path", path).Msg("Opened pairings database")
	return &Bolt{db: db, path: path}, nil
}

// Path returns the database file.
func (b *Bolt) Path() string {
	return b.path
}

// Save implements Store.
func (b *Bolt) Save(ctx context.Context, pairings []entities.Pairing) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var total int
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		for _, p := range pairings {
			if !p.Valid() {
				continue
			}
			data, err := json.Marshal(p.Selected)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(p.Target), data); err != nil {
				return err
			}
		}
		return bucket.ForEach(func(_, _ []byte) error {
			total++
			return nil
		})
	})
	if err != nil {
		return 0, errors.WrapIO("save", b.path, err)
	}
	return total, nil
}

// List implements Store.
func (b *Bolt) List(ctx context.Context) ([]entities.Pairing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []entities.Pairing{}
	err := b.db.View(func(tx *bolt.Tx) error {
		// Keys iterate in byte order, which is target order.
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var m entities.Match
			if err := json.Unmarshal(v, &m); err != nil {
				return errors.WrapParse("json", string(k), err)
			}
			out = append(out, entities.Pairing{Target: string(k), Selected: &m})
			return nil
		})
	})
	if err != nil {
		return nil, errors.WrapIO("list", b.path, err)
	}
	return out, nil
}

// Reset implements Store.
func (b *Bolt) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	if err != nil {
		return errors.WrapIO("reset", b.path, err)
	}
	return nil
}

// Close implements Store.
func (b *Bolt) Close() error {
	return b.db.Close()
}
