package storage

import (
	"errors"
	"time"
)

var (
	// ErrNotFound means that the key (or the sorted set member) does not exist
	ErrNotFound = errors.New("not found")
	// ErrWrongType means that the key holds a value of another type
	ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	// ErrNotInteger means that the stored value cannot be incremented
	ErrNotInteger = errors.New("ERR value is not an integer or out of range")
	// ErrCorrupted means that an entry carries a type tag the storage does not define
	ErrCorrupted = errors.New("entry has an unknown type tag")
)

type SetOptions struct {
	TTL    time.Duration // key lifetime, only used when Expire is set
	Expire bool          // if true, the key is removed once TTL elapses. TTL <= 0 removes it at once
}

// Storage is a common interface for working with the keyspace
type Storage interface {
	// Get returns the scalar stored at key
	Get(key string) (string, error)

	// Set writes a scalar, replacing any previous value and expiration
	Set(key, value string, options SetOptions)

	// Delete deletes the key. Returns true if the key existed and was deleted
	Delete(key string) bool

	// Incr increments the integer stored at key. created is true when the key did not exist
	Incr(key string) (value int64, created bool, err error)

	// Size returns the number of addressable elements: one per scalar, one per sorted set member
	Size() int

	// Snapshot returns a copy of every live entry
	Snapshot() map[string]Entity

	// ZAdd inserts or updates a member. Returns 1 if the member is new, 0 if its score was updated
	ZAdd(key string, score float64, member string) (added int, created bool, err error)

	// ZCard returns the number of members of the sorted set at key
	ZCard(key string) (int, error)

	// ZRank returns the 0-based position of member
	ZRank(key, member string) (int, error)

	// ZRange returns member names between start and stop inclusive. Negative indices count from the end
	ZRange(key string, start, stop int) ([]string, error)
}
