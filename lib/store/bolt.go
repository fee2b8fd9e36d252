package store

import (
	"context"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/pthm/editable"
)

// Bolt stores msgpack-encoded records in one bucket per target argument.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the database file at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return &Bolt{db: db}, nil
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Put stores a record and returns its id. An empty id takes the bucket's
// next sequence number.
func (b *Bolt) Put(bucket, id string, data editable.Data) (string, error) {
	v, err := msgpack.Marshal(map[string]any(data))
	if err != nil {
		return "", err
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		if id == "" {
			seq, err := bk.NextSequence()
			if err != nil {
				return err
			}
			id = strconv.FormatUint(seq, 10)
		}
		return bk.Put([]byte(id), v)
	})
	return id, err
}

// Get returns a stored record.
func (b *Bolt) Get(bucket, id string) (editable.Data, error) {
	var d editable.Data
	err := b.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket([]byte(bucket))
		if bk == nil {
			return ErrNotFound
		}
		v := bk.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		var m map[string]any
		if err := msgpack.Unmarshal(v, &m); err != nil {
			return err
		}
		d = editable.Data(m)
		return nil
	})
	return d, err
}

// Execute is the body of the bolt target.
func (b *Bolt) Execute(ctx context.Context, t *editable.BaseTarget, payload editable.Data) (editable.Data, error) {
	bucket, err := location(t)
	if err != nil {
		return nil, err
	}
	id, _ := payload.ID()
	id, err = b.Put(bucket, id, payload.Clean())
	if err != nil {
		return nil, &editable.TargetError{Kind: TypeStoreError, Detail: err.Error(), Payload: payload}
	}
	return reply(payload, id), nil
}

// RegisterBolt registers b as target kind "bolt" on ed.
func RegisterBolt(ed *editable.Editor, b *Bolt) error {
	return ed.HandleTarget(KindBolt, b.Execute)
}
