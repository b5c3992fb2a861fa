// ABOUTME: Byte-level key/value backend contract shared by every store.
// ABOUTME: Implementations: memory, badger, charm (cloud-synced) and sqlite.
package kv

import "errors"

// ErrNotFound is returned by Backend.Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Backend stores opaque values by key.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// Syncer is implemented by backends that replicate to a remote.
type Syncer interface {
	Sync() error
}

// WriteResult records the outcome of one persisted write.
type WriteResult struct {
	Key string
	Err error
}

// OK reports whether the write reached the backend.
func (r WriteResult) OK() bool {
	return r.Err == nil
}
