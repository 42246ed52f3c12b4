// Package store defines the narrow persistence ports the engine consumes:
// a key/value capability for runtime state and side effects, and a
// definition store for service definitions. Real deployments plug in
// their own backends; the in-memory and directory-backed implementations
// here cover tests and single-node use.
package store

import "errors"

// ErrNotFound is returned when a key or definition does not exist.
var ErrNotFound = errors.New("not found")

// KV is the key/value persistence capability. Implementations must be
// safe for concurrent use.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
}
