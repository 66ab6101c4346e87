// Package hash implements the extendible hash directory used as the
// buffer pool's page table. Grounded on
// original_source/src/hash/extendible_hash.cpp and .h, generalized from
// the C++ template<K,V> to Go generics, with the actual bit-mixing
// delegated to github.com/cespare/xxhash/v2 (HashKey) rather than a
// hand-rolled hash function — see SPEC_FULL.md's dependency-wiring
// section. The directory-doubling/bucket-split structure itself is
// unchanged from the original.
package hash

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
)

// bucket holds the (key, value) pairs that share a directory prefix, up
// to capacity entries, plus the number of hash bits that distinguish it
// from its former sibling.
type bucket[K comparable, V any] struct {
	mu         sync.Mutex
	items      map[K]V
	localDepth int
	capacity   int
}

func newBucket[K comparable, V any](capacity, localDepth int) *bucket[K, V] {
	return &bucket[K, V]{items: make(map[K]V, capacity), localDepth: localDepth, capacity: capacity}
}

// ExtendibleHash is a directory-of-buckets hash table: directory length is
// always 2^globalDepth, and directory slots i, j alias the same bucket iff
// they agree on the low localDepth bits of i and j.
type ExtendibleHash[K comparable, V any] struct {
	mu          sync.RWMutex
	directory   []*bucket[K, V]
	globalDepth int
	capacity    int
	hasher      func(K) uint64
	log         *logrus.Logger
}

// KeyHasher maps a key to its 64-bit hash. Callers instantiating
// ExtendibleHash for a concrete K supply one of these (see
// hash.Uint32Hasher below, which xxhash-mixes a 32-bit projection).
type KeyHasher[K any] func(K) uint64

// Uint32Hasher builds a KeyHasher for any type convertible to a 32-bit
// integer via the supplied projection, xxhash-mixing its 4 little-endian
// bytes. The buffer pool uses this for page.PageID.
func Uint32Hasher[K any](toInt32 func(K) int32) KeyHasher[K] {
	return func(k K) uint64 {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(toInt32(k)))
		return xxhash.Sum64(b[:])
	}
}

// New constructs an ExtendibleHash with the given per-bucket capacity and
// key hasher, starting at global depth 0 with a single empty bucket.
func New[K comparable, V any](capacity int, hasher KeyHasher[K], log *logrus.Logger) *ExtendibleHash[K, V] {
	return &ExtendibleHash[K, V]{
		directory:   []*bucket[K, V]{newBucket[K, V](capacity, 0)},
		globalDepth: 0,
		capacity:    capacity,
		hasher:      hasher,
		log:         log,
	}
}

// HashKey returns k's 64-bit hash; its low globalDepth bits select k's
// directory slot.
func (h *ExtendibleHash[K, V]) HashKey(k K) uint64 {
	return h.hasher(k)
}

func (h *ExtendibleHash[K, V]) dirIndexLocked(k K) uint64 {
	mask := uint64(1)<<uint(h.globalDepth) - 1
	return h.HashKey(k) & mask
}

// Find looks up k, scanning its bucket for equality.
func (h *ExtendibleHash[K, V]) Find(k K) (V, bool) {
	h.mu.RLock()
	b := h.directory[h.dirIndexLocked(k)]
	h.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.items[k]
	return v, ok
}

// Remove deletes k if present, reporting whether it was.
func (h *ExtendibleHash[K, V]) Remove(k K) bool {
	h.mu.RLock()
	b := h.directory[h.dirIndexLocked(k)]
	h.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.items[k]; !ok {
		return false
	}
	delete(b.items, k)
	return true
}

// GetGlobalDepth returns the current directory depth.
func (h *ExtendibleHash[K, V]) GetGlobalDepth() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.globalDepth
}

// GetLocalDepth returns the local depth of the bucket at directory index
// bucketIndex.
func (h *ExtendibleHash[K, V]) GetLocalDepth(bucketIndex int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if bucketIndex < 0 || bucketIndex >= len(h.directory) {
		return -1
	}
	b := h.directory[bucketIndex]
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.localDepth
}

// GetNumBuckets returns the number of distinct buckets referenced by the
// directory (buckets may be aliased by more than one slot).
func (h *ExtendibleHash[K, V]) GetNumBuckets() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[*bucket[K, V]]struct{})
	for _, b := range h.directory {
		seen[b] = struct{}{}
	}
	return len(seen)
}

// Insert stores (k, v), splitting the target bucket (and, if needed,
// doubling the directory) as many times as necessary to make room. Last
// write wins for a duplicate key, per spec.md §4.2.
func (h *ExtendibleHash[K, V]) Insert(k K, v V) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.insertLocked(k, v)
}

// insertLocked places (k, v), splitting as many times as needed. h.mu must
// already be held for writing; reinsertion of a split bucket's
// snapshotted items recurses through this same path so an item that
// still collides after one split (e.g. a false split where every
// snapshotted key shares the newly-significant bit) keeps splitting
// instead of silently exceeding bucket capacity.
func (h *ExtendibleHash[K, V]) insertLocked(k K, v V) {
	for {
		idx := h.dirIndexLocked(k)
		b := h.directory[idx]

		b.mu.Lock()
		if _, exists := b.items[k]; exists || len(b.items) < b.capacity {
			b.items[k] = v
			b.mu.Unlock()
			return
		}
		b.mu.Unlock()

		h.splitBucket(int(idx))
	}
}

// splitBucket runs the four-step split protocol from spec.md §4.2 on the
// bucket currently at directory index idx, then reinserts its snapshotted
// contents. Must be called with h.mu held for writing.
func (h *ExtendibleHash[K, V]) splitBucket(idx int) {
	old := h.directory[idx]

	old.mu.Lock()
	if old.localDepth == h.globalDepth {
		// Step 1: double the directory.
		h.directory = append(h.directory, h.directory...)
		h.globalDepth++
		if h.log != nil {
			h.log.WithField("global_depth", h.globalDepth).Info("hash: directory doubled")
		}
	}

	// Step 2: bump the overflowing bucket's local depth.
	old.localDepth++
	newLocalDepth := old.localDepth

	// Step 3: of the directory indices aliasing `old`, reassign those whose
	// newly-significant bit (bit newLocalDepth-1) is set to a fresh bucket
	// with the same (new) local depth. When the bucket's local depth had
	// caught up with the global depth this is exactly the upper half.
	newBkt := newBucket[K, V](h.capacity, newLocalDepth)
	highBit := 1 << uint(newLocalDepth-1)
	for i, b := range h.directory {
		if b == old && i&highBit != 0 {
			h.directory[i] = newBkt
		}
	}

	// Step 4: snapshot and clear the overflowing bucket, then reinsert.
	items := old.items
	old.items = make(map[K]V, old.capacity)
	old.mu.Unlock()

	if h.log != nil {
		h.log.WithFields(logrus.Fields{"local_depth": newLocalDepth, "moved": len(items)}).Info("hash: bucket split")
	}

	for k, v := range items {
		h.insertLocked(k, v)
	}
}
