// Package store provides persistent targets: a SQLite table store and a
// bbolt bucket store. Each registers itself as a target kind on an editor;
// the descriptor's first argument names the table or bucket:
//
//	<div data-edit-target="sqlite:customers" data-edit-id="42">...</div>
//	<div data-edit-target="bolt:settings">...</div>
//
// Records are keyed by the container's data-edit-id, or by a generated
// sequence number when the container has none.
package store

import (
	"errors"

	"github.com/pthm/editable"
)

// Target kinds.
const (
	KindSQLite = "sqlite"
	KindBolt   = "bolt"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: record not found")

// Reason reported by store targets that cannot run.
const TypeStoreError = "StoreError"

func location(t *editable.BaseTarget) (string, error) {
	args := t.Args()
	if len(args) == 0 || args[0] == "" {
		return "", &editable.TargetError{Kind: TypeStoreError, Detail: t.Kind + " target needs a table name"}
	}
	return args[0], nil
}

// reply is the data reported back to the container: the submitted payload
// with the record id it was stored under.
func reply(payload editable.Data, id string) editable.Data {
	out := payload.Clean()
	out[editable.KeyID] = id
	return out
}
