package bptree

import (
	"fmt"

	"coredb/page"
	"coredb/txn"
)

// Remove deletes key from the tree if present. A missing key is a no-op,
// matching b_plus_tree.cpp's Remove. tc is threaded through unread, per
// spec.md's txn.Context contract.
func (t *Tree) Remove(key []byte, tc txn.Context) error {
	if t.IsEmpty() {
		return nil
	}
	f, err := t.findLeafPage(key, false)
	if err != nil {
		return err
	}
	leaf := t.leaf(f)
	if _, ok := leaf.Lookup(key, t.cmp); !ok {
		t.pool.UnpinPage(f.ID, false)
		return nil
	}
	leaf.RemoveAndDeleteRecord(key, t.cmp)
	return t.coalesceOrRedistribute(f, true)
}

// coalesceOrRedistribute rebalances an under-full node against a sibling,
// or hands the root to adjustRoot. f arrives pinned;
// every path unpins or deletes it. Grounded on
// b_plus_tree.cpp's CoalesceOrRedistribute.
func (t *Tree) coalesceOrRedistribute(f *page.Frame, isLeaf bool) error {
	if f.ID == t.root {
		return t.adjustRoot(f, isLeaf)
	}

	h := page.Header(f.Data)
	if h.Size() >= h.MinSize() {
		t.pool.UnpinPage(f.ID, true)
		return nil
	}

	parentID := h.ParentPageID()
	parentFrame, err := t.pool.FetchPage(parentID)
	if err != nil {
		t.pool.UnpinPage(f.ID, true)
		return fmt.Errorf("bptree: coalesceOrRedistribute: fetch parent: %w", err)
	}
	parent := t.internal(parentFrame)
	index := parent.ValueIndex(f.ID)

	var siblingID page.PageID
	if index == 0 {
		siblingID = parent.ValueAt(1)
	} else {
		siblingID = parent.ValueAt(index - 1)
	}
	siblingFrame, err := t.pool.FetchPage(siblingID)
	if err != nil {
		t.pool.UnpinPage(f.ID, true)
		t.pool.UnpinPage(parentID, false)
		return fmt.Errorf("bptree: coalesceOrRedistribute: fetch sibling: %w", err)
	}
	siblingHeader := page.Header(siblingFrame.Data)

	if siblingHeader.Size()+h.Size() > h.MaxSize() {
		if isLeaf {
			t.redistributeLeaf(siblingFrame, f, index, parent)
		} else {
			if err := t.redistributeInternal(siblingFrame, f, index, parent); err != nil {
				t.pool.UnpinPage(siblingID, true)
				t.pool.UnpinPage(f.ID, true)
				t.pool.UnpinPage(parentID, true)
				return err
			}
		}
		t.pool.UnpinPage(siblingID, true)
		t.pool.UnpinPage(f.ID, true)
		t.pool.UnpinPage(parentID, true)
		return nil
	}

	// Underflow big enough that redistribution can't help: coalesce.
	// DeletePage requires its target be unpinned first, so the page being
	// removed is unpinned before, not after, the delete call.
	if index == 0 {
		// f is leftmost; its right sibling merges into f, parent entry 1
		// (the separator between f and sibling) is removed.
		if isLeaf {
			t.coalesceLeaf(f, siblingFrame, parent, 1)
		} else {
			if err := t.coalesceInternal(f, siblingFrame, parent, 1); err != nil {
				t.pool.UnpinPage(f.ID, true)
				t.pool.UnpinPage(siblingID, true)
				t.pool.UnpinPage(parentID, true)
				return err
			}
		}
		t.pool.UnpinPage(siblingID, true)
		t.pool.DeletePage(siblingID)
		t.pool.UnpinPage(f.ID, true)
	} else {
		// f merges into its left sibling; parent entry `index` (the
		// separator between sibling and f) is removed.
		if isLeaf {
			t.coalesceLeaf(siblingFrame, f, parent, index)
		} else {
			if err := t.coalesceInternal(siblingFrame, f, parent, index); err != nil {
				t.pool.UnpinPage(f.ID, true)
				t.pool.UnpinPage(siblingID, true)
				t.pool.UnpinPage(parentID, true)
				return err
			}
		}
		t.pool.UnpinPage(f.ID, true)
		t.pool.DeletePage(f.ID)
		t.pool.UnpinPage(siblingID, true)
	}

	return t.coalesceOrRedistribute(parentFrame, false)
}

// coalesceLeaf merges src (deleted afterward) into dst's tail and removes
// parent's entry at removeIndex.
func (t *Tree) coalesceLeaf(dst, src *page.Frame, parent page.InternalPage, removeIndex int) {
	t.leaf(src).MoveAllTo(t.leaf(dst))
	parent.Remove(removeIndex)
}

// coalesceInternal merges src into dst, first replacing src's placeholder
// key[0] with the separator being removed from the parent (per spec.md's
// Coalesce description for internal nodes), then reparenting every moved
// child to dst.
func (t *Tree) coalesceInternal(dst, src *page.Frame, parent page.InternalPage, removeIndex int) error {
	srcPage := t.internal(src)
	dstPage := t.internal(dst)
	srcPage.SetKeyAt(0, parent.KeyAt(removeIndex))
	srcPage.MoveAllTo(dstPage)
	parent.Remove(removeIndex)
	return t.reparentChildren(dstPage, dst.ID)
}

// redistributeLeaf rebalances by moving one entry between sibling and
// node, per spec.md's Redistribute for leaves.
func (t *Tree) redistributeLeaf(siblingFrame, nodeFrame *page.Frame, index int, parent page.InternalPage) {
	sibling := t.leaf(siblingFrame)
	node := t.leaf(nodeFrame)
	if index == 0 {
		sibling.MoveFirstToEndOf(node, parent)
	} else {
		sibling.MoveLastToFrontOf(node, index, parent)
	}
}

// redistributeInternal rebalances by rotating one (key, child) pair
// between sibling and node, reparenting the moved child and fixing the
// separator in parent. Grounded on b_plus_tree_internal_page.cpp's
// MoveFirstToEndOf/CopyLastFrom and MoveLastToFrontOf/CopyFirstFrom.
func (t *Tree) redistributeInternal(siblingFrame, nodeFrame *page.Frame, index int, parent page.InternalPage) error {
	sibling := t.internal(siblingFrame)
	node := t.internal(nodeFrame)

	if index == 0 {
		// sibling is the right neighbor: rotate its first child to
		// node's tail through the parent separator at 1.
		oldSeparator := append([]byte(nil), parent.KeyAt(1)...)
		newKey, movedChild := sibling.PopFirst()
		node.PushBack(oldSeparator, movedChild)
		parent.SetKeyAt(1, newKey)
		return t.reparentOne(movedChild, nodeFrame.ID)
	}

	// sibling is the left neighbor: rotate its last child to node's head
	// through the parent separator at index.
	oldSeparator := append([]byte(nil), parent.KeyAt(index)...)
	newKey, movedChild := sibling.PopLast()
	node.PushFront(oldSeparator, movedChild)
	parent.SetKeyAt(index, newKey)
	return t.reparentOne(movedChild, nodeFrame.ID)
}

func (t *Tree) reparentOne(childID, newParentID page.PageID) error {
	f, err := t.pool.FetchPage(childID)
	if err != nil {
		return fmt.Errorf("bptree: reparent %d: %w", childID, err)
	}
	page.Header(f.Data).SetParentPageID(newParentID)
	t.pool.UnpinPage(childID, true)
	return nil
}

// adjustRoot handles the two root-shrinking cases spec.md §4.4.4
// describes: an emptied leaf root, and an internal root left with a
// single child. Only called from within coalesceOrRedistribute.
func (t *Tree) adjustRoot(f *page.Frame, isLeaf bool) error {
	h := page.Header(f.Data)

	if isLeaf {
		if h.Size() == 0 {
			t.pool.UnpinPage(f.ID, false)
			t.pool.DeletePage(f.ID)
			t.root = page.InvalidPageID
			return t.deleteRootRecord()
		}
		t.pool.UnpinPage(f.ID, true)
		return nil
	}

	if h.Size() == 1 {
		root := t.internal(f)
		childID := root.RemoveAndReturnOnlyChild()
		t.pool.UnpinPage(f.ID, false)
		t.pool.DeletePage(f.ID)

		t.root = childID
		if err := t.updateRootRecord(false); err != nil {
			return err
		}
		childFrame, err := t.pool.FetchPage(childID)
		if err != nil {
			return fmt.Errorf("bptree: adjustRoot: fetch new root: %w", err)
		}
		page.Header(childFrame.Data).SetParentPageID(page.InvalidPageID)
		t.pool.UnpinPage(childID, true)
		return nil
	}

	t.pool.UnpinPage(f.ID, true)
	return nil
}
