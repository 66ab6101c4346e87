package bptree

import (
	"encoding/binary"
	"fmt"
	"strings"

	"coredb/page"
)

// ToString renders a level-order dump of the tree for debugging, in the
// spirit of b_plus_tree.cpp's ToString/QueueUpChildren BFS. Every node is
// printed with its page id; verbose adds its parent id and, for leaves,
// its next page id. Assumes int64
// keys, matching dbkey.Int64Key, since the page layer stores raw bytes
// with no self-describing type.
func (t *Tree) ToString(verbose bool) (string, error) {
	if t.IsEmpty() {
		return "<empty tree>", nil
	}

	var b strings.Builder
	type queued struct {
		id    page.PageID
		depth int
	}
	queue := []queued{{t.root, 0}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		f, err := t.pool.FetchPage(item.id)
		if err != nil {
			return "", fmt.Errorf("bptree: tostring: fetch %d: %w", item.id, err)
		}

		indent := strings.Repeat("  ", item.depth)
		if t.isLeafFrame(f) {
			leaf := t.leaf(f)
			fmt.Fprintf(&b, "%sleaf[%d]", indent, item.id)
			if verbose {
				fmt.Fprintf(&b, " parent=%d next=%d", leaf.ParentPageID(), leaf.NextPageID())
			}
			b.WriteString(": ")
			for i := 0; i < leaf.Size(); i++ {
				if i > 0 {
					b.WriteString(",")
				}
				fmt.Fprintf(&b, "%d", decodeInt64(leaf.KeyAt(i)))
			}
			b.WriteString("\n")
		} else {
			internal := t.internal(f)
			fmt.Fprintf(&b, "%sinternal[%d]", indent, item.id)
			if verbose {
				fmt.Fprintf(&b, " parent=%d", internal.ParentPageID())
			}
			b.WriteString(": ")
			n := internal.Size()
			for i := 0; i < n; i++ {
				if i > 0 {
					b.WriteString(",")
				}
				fmt.Fprintf(&b, "%d", internal.ValueAt(i))
				if i > 0 {
					fmt.Fprintf(&b, "(%d)", decodeInt64(internal.KeyAt(i)))
				}
				queue = append(queue, queued{internal.ValueAt(i), item.depth + 1})
			}
			b.WriteString("\n")
		}
		t.pool.UnpinPage(item.id, false)
	}

	return b.String(), nil
}

func decodeInt64(b []byte) int64 {
	if len(b) < 8 {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}
