package bptree

import (
	"fmt"

	"coredb/page"
	"coredb/txn"
)

// Insert places (key, value) into the tree. Returns false without
// modifying anything if key already exists — this index does not support
// duplicate keys, matching b_plus_tree.cpp's Insert/InsertIntoLeaf. tc is
// threaded through unread, per spec.md's txn.Context contract.
func (t *Tree) Insert(key, value []byte, tc txn.Context) (bool, error) {
	if t.IsEmpty() {
		return true, t.startNewTree(key, value)
	}
	return t.insertIntoLeaf(key, value)
}

// startNewTree allocates the first leaf, root, and header record for a
// tree that has no pages yet.
func (t *Tree) startNewTree(key, value []byte) error {
	f, id, err := t.pool.NewPage()
	if err != nil {
		return fmt.Errorf("bptree: startNewTree: %w", err)
	}
	leaf := t.leaf(f)
	leaf.Init(id, page.InvalidPageID)
	leaf.Insert(key, value, t.cmp)

	t.root = id
	if err := t.updateRootRecord(true); err != nil {
		t.pool.UnpinPage(id, true)
		return err
	}
	t.pool.UnpinPage(id, true)
	return nil
}

func (t *Tree) insertIntoLeaf(key, value []byte) (bool, error) {
	f, err := t.findLeafPage(key, false)
	if err != nil {
		return false, err
	}
	leaf := t.leaf(f)

	if _, ok := leaf.Lookup(key, t.cmp); ok {
		t.pool.UnpinPage(f.ID, false)
		return false, nil
	}

	if leaf.Size() < leaf.MaxSize() {
		leaf.Insert(key, value, t.cmp)
		t.pool.UnpinPage(f.ID, true)
		return true, nil
	}

	// Overflow: split first, then place the triggering entry into
	// whichever half it belongs, per spec.md §4.4.3.
	newFrame, newID, err := t.pool.NewPage()
	if err != nil {
		t.pool.UnpinPage(f.ID, false)
		return false, fmt.Errorf("bptree: split leaf: %w", err)
	}
	newLeaf := t.leaf(newFrame)
	newLeaf.Init(newID, leaf.ParentPageID())
	leaf.MoveHalfTo(newLeaf)

	// Corrected Open Question: preserve the original forward-chain
	// pointer instead of overwriting it blindly.
	newLeaf.SetNextPageID(leaf.NextPageID())
	leaf.SetNextPageID(newID)

	if t.cmp(key, newLeaf.KeyAt(0)) < 0 {
		leaf.Insert(key, value, t.cmp)
	} else {
		newLeaf.Insert(key, value, t.cmp)
	}

	if err := t.insertIntoParent(f, newLeaf.KeyAt(0), newFrame); err != nil {
		return false, err
	}
	return true, nil
}
