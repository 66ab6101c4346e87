package bptree

import (
	"fmt"

	"coredb/page"
)

// findLeafPage descends from the root to the leaf that would contain key,
// or the leftmost leaf if leftmost is true. Returns the pinned leaf frame;
// the caller must unpin it. Grounded on b_plus_tree.cpp's FindLeafPage.
func (t *Tree) findLeafPage(key []byte, leftmost bool) (*page.Frame, error) {
	id := t.root
	f, err := t.pool.FetchPage(id)
	if err != nil {
		return nil, fmt.Errorf("bptree: findLeafPage: %w", err)
	}
	for !t.isLeafFrame(f) {
		internal := t.internal(f)
		var next page.PageID
		if leftmost {
			next = internal.ValueAt(0)
		} else {
			next = internal.Lookup(key, t.cmp)
		}
		t.pool.UnpinPage(f.ID, false)
		f, err = t.pool.FetchPage(next)
		if err != nil {
			return nil, fmt.Errorf("bptree: findLeafPage: %w", err)
		}
	}
	return f, nil
}
