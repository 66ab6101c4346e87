package bptree

import (
	"fmt"

	"coredb/page"
	"coredb/txn"
)

// Iterator walks a tree's leaves in ascending key order over the leaf
// forward chain, holding exactly one leaf frame pinned at a time.
// Grounded on the teacher's pin-carrying iterator pattern
// (storage_engine/access/indexfile_manager/bplustree/iterator.go) and
// b_plus_tree.cpp's Begin/IndexIterator.
type Iterator struct {
	tree  *Tree
	frame *page.Frame
	leaf  page.LeafPage
	index int
	done  bool
}

// Begin returns an iterator positioned at the tree's first entry. tc is
// threaded through unread, per spec.md's txn.Context contract.
func (t *Tree) Begin(tc txn.Context) (*Iterator, error) {
	if t.IsEmpty() {
		return &Iterator{tree: t, done: true}, nil
	}
	f, err := t.findLeafPage(nil, true)
	if err != nil {
		return nil, fmt.Errorf("bptree: begin: %w", err)
	}
	return &Iterator{tree: t, frame: f, leaf: t.leaf(f), index: 0, done: false}, nil
}

// Seek returns an iterator positioned at the first entry whose key is >=
// key, or an exhausted iterator if none exists. tc is threaded through
// unread, per spec.md's txn.Context contract.
func (t *Tree) Seek(key []byte, tc txn.Context) (*Iterator, error) {
	if t.IsEmpty() {
		return &Iterator{tree: t, done: true}, nil
	}
	f, err := t.findLeafPage(key, false)
	if err != nil {
		return nil, fmt.Errorf("bptree: seek: %w", err)
	}
	leaf := t.leaf(f)
	idx := leaf.KeyIndex(key, t.cmp)
	it := &Iterator{tree: t, frame: f, leaf: leaf, index: idx}
	it.skipToNextLeafIfExhausted()
	return it, nil
}

// skipToNextLeafIfExhausted advances across the leaf chain while the
// current leaf has no more entries at or after index, unpinning each
// exhausted leaf along the way.
func (it *Iterator) skipToNextLeafIfExhausted() {
	for !it.done && it.index >= it.leaf.Size() {
		next := it.leaf.NextPageID()
		it.tree.pool.UnpinPage(it.frame.ID, false)
		if next == page.InvalidPageID {
			it.frame = nil
			it.done = true
			return
		}
		f, err := it.tree.pool.FetchPage(next)
		if err != nil {
			it.frame = nil
			it.done = true
			return
		}
		it.frame = f
		it.leaf = it.tree.leaf(f)
		it.index = 0
	}
}

// IsEnd reports whether the iterator has been exhausted.
func (it *Iterator) IsEnd() bool { return it.done }

// Key returns the current entry's key. Only valid when !IsEnd().
func (it *Iterator) Key() []byte { return it.leaf.KeyAt(it.index) }

// Value returns the current entry's value. Only valid when !IsEnd().
func (it *Iterator) Value() []byte { return it.leaf.ValueAt(it.index) }

// Next advances the iterator by one entry, crossing into the next leaf
// via the forward chain as needed.
func (it *Iterator) Next() {
	if it.done {
		return
	}
	it.index++
	it.skipToNextLeafIfExhausted()
}

// Close releases the currently held leaf frame, if any. Callers that
// iterate to exhaustion don't need to call it, but any early break out of
// a scan must.
func (it *Iterator) Close() {
	if it.frame != nil && !it.done {
		it.tree.pool.UnpinPage(it.frame.ID, false)
		it.frame = nil
		it.done = true
	}
}
