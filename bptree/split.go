package bptree

import (
	"fmt"

	"coredb/page"
)

// insertIntoParent adopts newFrame into oldFrame's parent, splitting that
// parent (and recursing) if it's already full. Both oldFrame and newFrame
// arrive pinned; every exit path unpins them exactly once, mirroring
// b_plus_tree.cpp's InsertIntoParent.
func (t *Tree) insertIntoParent(oldFrame *page.Frame, promotedKey []byte, newFrame *page.Frame) error {
	if oldFrame.ID == t.root {
		parentFrame, parentID, err := t.pool.NewPage()
		if err != nil {
			t.pool.UnpinPage(oldFrame.ID, true)
			t.pool.UnpinPage(newFrame.ID, true)
			return fmt.Errorf("bptree: insertIntoParent: new root: %w", err)
		}
		parent := t.internal(parentFrame)
		parent.Init(parentID, page.InvalidPageID)
		parent.PopulateNewRoot(oldFrame.ID, promotedKey, newFrame.ID)

		page.Header(oldFrame.Data).SetParentPageID(parentID)
		page.Header(newFrame.Data).SetParentPageID(parentID)

		t.root = parentID
		if err := t.updateRootRecord(false); err != nil {
			t.pool.UnpinPage(oldFrame.ID, true)
			t.pool.UnpinPage(newFrame.ID, true)
			t.pool.UnpinPage(parentID, true)
			return err
		}
		t.pool.UnpinPage(oldFrame.ID, true)
		t.pool.UnpinPage(newFrame.ID, true)
		t.pool.UnpinPage(parentID, true)
		return nil
	}

	parentID := page.Header(oldFrame.Data).ParentPageID()
	parentFrame, err := t.pool.FetchPage(parentID)
	if err != nil {
		t.pool.UnpinPage(oldFrame.ID, true)
		t.pool.UnpinPage(newFrame.ID, true)
		return fmt.Errorf("bptree: insertIntoParent: fetch parent: %w", err)
	}
	parent := t.internal(parentFrame)

	if parent.Size() < parent.MaxSize() {
		parent.InsertNodeAfter(oldFrame.ID, promotedKey, newFrame.ID)
		t.pool.UnpinPage(oldFrame.ID, true)
		t.pool.UnpinPage(newFrame.ID, true)
		t.pool.UnpinPage(parentID, true)
		return nil
	}

	// Parent is full: split it, then the half that now holds oldFrame
	// adopts the new (promotedKey, newFrame) entry right after it.
	newParentFrame, newParentID, err := t.pool.NewPage()
	if err != nil {
		t.pool.UnpinPage(oldFrame.ID, true)
		t.pool.UnpinPage(newFrame.ID, true)
		t.pool.UnpinPage(parentID, false)
		return fmt.Errorf("bptree: insertIntoParent: split parent: %w", err)
	}
	newParent := t.internal(newParentFrame)
	newParent.Init(newParentID, parent.ParentPageID())
	parent.MoveHalfTo(newParent)

	if err := t.reparentChildren(newParent, newParentID); err != nil {
		t.pool.UnpinPage(oldFrame.ID, true)
		t.pool.UnpinPage(newFrame.ID, true)
		t.pool.UnpinPage(parentID, true)
		t.pool.UnpinPage(newParentID, true)
		return err
	}

	if parent.ValueIndex(oldFrame.ID) != -1 {
		parent.InsertNodeAfter(oldFrame.ID, promotedKey, newFrame.ID)
	} else {
		newParent.InsertNodeAfter(oldFrame.ID, promotedKey, newFrame.ID)
		page.Header(newFrame.Data).SetParentPageID(newParentID)
	}
	t.pool.UnpinPage(oldFrame.ID, true)
	t.pool.UnpinPage(newFrame.ID, true)

	return t.insertIntoParent(parentFrame, newParent.KeyAt(0), newParentFrame)
}

// reparentChildren fixes the parent pointer of every child now living in
// internal (used right after MoveHalfTo/MoveAllTo move a range of
// children into it).
func (t *Tree) reparentChildren(internal page.InternalPage, newParentID page.PageID) error {
	n := internal.Size()
	for i := 0; i < n; i++ {
		childID := internal.ValueAt(i)
		childFrame, err := t.pool.FetchPage(childID)
		if err != nil {
			return fmt.Errorf("bptree: reparent child %d: %w", childID, err)
		}
		page.Header(childFrame.Data).SetParentPageID(newParentID)
		t.pool.UnpinPage(childID, true)
	}
	return nil
}
