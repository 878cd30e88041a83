package storage

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// entry is a single keyspace slot. A new entry is allocated on every SET,
// so a pending timer can tell whether the key still holds the value that armed it
type entry struct {
	value    Entity
	expireAt int64 // unix nanoseconds. 0 means no TTL
	timer    *time.Timer
}

// expired reports whether the entry is logically gone at now
func (e *entry) expired(now int64) bool {
	return e.expireAt != 0 && now >= e.expireAt
}

// Keyspace is a thread-safe mapping from keys to typed values.
// Readers share the lock, writers and expiry timers take it exclusively
type Keyspace struct {
	data   map[string]*entry
	mu     sync.RWMutex
	logger *zap.Logger
	closed bool
}

var _ Storage = (*Keyspace)(nil)

// NewKeyspace creates an empty keyspace
func NewKeyspace(logger *zap.Logger) *Keyspace {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Keyspace{
		data:   make(map[string]*entry),
		logger: logger,
	}
}

// lookup returns a live entry. Must be called with the lock held
func (k *Keyspace) lookup(key string, now int64) (*entry, bool) {
	e, ok := k.data[key]
	if !ok || e.expired(now) {
		return nil, false
	}
	return e, true
}

// lookupWrite is lookup for writers: an expired entry is reclaimed on the spot
func (k *Keyspace) lookupWrite(key string, now int64) (*entry, bool) {
	e, ok := k.data[key]
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		k.drop(key, e)
		return nil, false
	}
	return e, true
}

// drop removes the entry and cancels its timer. Must be called with the write lock held
func (k *Keyspace) drop(key string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(k.data, key)
}

// Get returns the scalar stored at key
func (k *Keyspace) Get(key string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	e, ok := k.lookup(key, time.Now().UnixNano())
	if !ok {
		return "", ErrNotFound
	}

	switch e.value.Type {
	case TypeString:
		return e.value.Str, nil
	case TypeZSet:
		return "", ErrWrongType
	default:
		return "", corrupted(key, e)
	}
}

// Set writes a scalar, replacing any previous value and cancelling its pending expiration
func (k *Keyspace) Set(key, value string, options SetOptions) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if old, ok := k.data[key]; ok {
		k.drop(key, old)
	}

	if options.Expire && options.TTL <= 0 {
		// already past its deadline, nothing to store
		return
	}

	e := &entry{value: NewStringEntity(value)}
	k.data[key] = e

	if options.Expire {
		e.expireAt = deadline(time.Now().UnixNano(), options.TTL)
		if !k.closed {
			e.timer = time.AfterFunc(options.TTL, func() {
				k.expire(key, e)
			})
		}
	}
}

// deadline returns now+ttl in unix nanoseconds, saturated at math.MaxInt64
func deadline(now int64, ttl time.Duration) int64 {
	if int64(ttl) > math.MaxInt64-now {
		return math.MaxInt64
	}
	return now + int64(ttl)
}

// expire is the timer callback. It removes the key only if it still holds e
func (k *Keyspace) expire(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if cur, ok := k.data[key]; !ok || cur != e {
		return
	}
	delete(k.data, key)

	if k.logger.Core().Enabled(zap.DebugLevel) {
		k.logger.Debug("key expired", zap.String("key", key))
	}
}

// Delete deletes the key. Returns true if the key existed and was deleted
func (k *Keyspace) Delete(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.lookupWrite(key, time.Now().UnixNano())
	if !ok {
		return false
	}
	k.drop(key, e)
	return true
}

// Incr increments the integer stored at key, creating it with 1 if absent.
// The expiration of an existing key is kept
func (k *Keyspace) Incr(key string) (int64, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.lookupWrite(key, time.Now().UnixNano())
	if !ok {
		k.data[key] = &entry{value: NewStringEntity("1")}
		return 1, true, nil
	}

	switch e.value.Type {
	case TypeString:
		n, err := strconv.ParseInt(e.value.Str, 10, 64)
		if err != nil || n == math.MaxInt64 {
			return 0, false, ErrNotInteger
		}
		n++
		e.value.Str = strconv.FormatInt(n, 10)
		return n, false, nil
	case TypeZSet:
		return 0, false, ErrWrongType
	default:
		return 0, false, corrupted(key, e)
	}
}

// Size returns the number of addressable elements: one per scalar, one per sorted set member
func (k *Keyspace) Size() int {
	k.mu.RLock()
	defer k.mu.RUnlock()

	now := time.Now().UnixNano()
	size := 0

	for key, e := range k.data {
		if e.expired(now) {
			continue
		}
		switch e.value.Type {
		case TypeString:
			size++
		case TypeZSet:
			size += e.value.ZSet.Card()
		default:
			k.logger.Error("skipping corrupted entry", zap.Error(corrupted(key, e)))
		}
	}

	return size
}

// Len returns the number of live keys
func (k *Keyspace) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()

	now := time.Now().UnixNano()
	n := 0
	for _, e := range k.data {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of every live entry. Sorted sets are copied too,
// so the result stays consistent after the lock is released
func (k *Keyspace) Snapshot() map[string]Entity {
	k.mu.RLock()
	defer k.mu.RUnlock()

	now := time.Now().UnixNano()
	out := make(map[string]Entity, len(k.data))

	for key, e := range k.data {
		if e.expired(now) {
			continue
		}
		switch e.value.Type {
		case TypeString:
			out[key] = e.value
		case TypeZSet:
			out[key] = NewZSetEntity(e.value.ZSet.clone())
		default:
			k.logger.Error("skipping corrupted entry", zap.Error(corrupted(key, e)))
		}
	}

	return out
}

// ZAdd inserts or updates a member, creating the sorted set if the key is absent
func (k *Keyspace) ZAdd(key string, score float64, member string) (int, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.lookupWrite(key, time.Now().UnixNano())
	if !ok {
		z := NewSortedSet()
		z.Add(score, member)
		k.data[key] = &entry{value: NewZSetEntity(z)}
		return 1, true, nil
	}

	switch e.value.Type {
	case TypeZSet:
		return e.value.ZSet.Add(score, member), false, nil
	case TypeString:
		return 0, false, ErrWrongType
	default:
		return 0, false, corrupted(key, e)
	}
}

// zset returns the sorted set stored at key. Must be called with the lock held
func (k *Keyspace) zset(key string) (*SortedSet, error) {
	e, ok := k.lookup(key, time.Now().UnixNano())
	if !ok {
		return nil, ErrNotFound
	}

	switch e.value.Type {
	case TypeZSet:
		return e.value.ZSet, nil
	case TypeString:
		return nil, ErrWrongType
	default:
		return nil, corrupted(key, e)
	}
}

// ZCard returns the number of members of the sorted set at key
func (k *Keyspace) ZCard(key string) (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	z, err := k.zset(key)
	if err != nil {
		return 0, err
	}
	return z.Card(), nil
}

// ZRank returns the 0-based position of member in the sorted set at key
func (k *Keyspace) ZRank(key, member string) (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	z, err := k.zset(key)
	if err != nil {
		return 0, err
	}

	rank, ok := z.Rank(member)
	if !ok {
		return 0, ErrNotFound
	}
	return rank, nil
}

// ZRange returns member names between start and stop inclusive
func (k *Keyspace) ZRange(key string, start, stop int) ([]string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	z, err := k.zset(key)
	if err != nil {
		return []string{}, err
	}
	return z.Range(start, stop), nil
}

// Close cancels every pending expiration timer. Expired deadlines are still
// honoured by reads, the keyspace just stops reclaiming memory in the background
func (k *Keyspace) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.closed = true
	for _, e := range k.data {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
	}
}

func corrupted(key string, e *entry) error {
	return fmt.Errorf("key %q: %w (%d)", key, ErrCorrupted, e.value.Type)
}
